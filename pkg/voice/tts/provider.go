// Package tts provides text-to-speech functionality.
package tts

import "context"

// Provider is the interface for text-to-speech services.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Synthesize converts text to audio.
	Synthesize(ctx context.Context, text string, opts SynthesizeOptions) (*Synthesis, error)
}

// SynthesizeOptions configures synthesis.
type SynthesizeOptions struct {
	Voice  string // Provider-specific voice id
	Model  string // Provider-specific model
	Format string // Output format (default: "mp3_44100_128")
}

// Synthesis is the result of text-to-speech.
type Synthesis struct {
	Audio  []byte // Encoded audio
	Format string // Audio format of the payload
}
