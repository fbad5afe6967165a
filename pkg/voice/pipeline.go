// Package voice ties speech-to-text and text-to-speech providers into a
// single degradation-tolerant facade for the interview gateway.
package voice

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/voxhire/voxhire/pkg/voice/stt"
	"github.com/voxhire/voxhire/pkg/voice/tts"
)

// DefaultCallTimeout bounds each provider call so a hung collaborator
// cannot stall an interview turn indefinitely.
const DefaultCallTimeout = 30 * time.Second

// Config configures a Pipeline.
type Config struct {
	STT stt.Provider // nil disables transcription
	TTS tts.Provider // nil disables synthesis

	Logger      *slog.Logger
	CallTimeout time.Duration // per-call bound, defaults to DefaultCallTimeout

	STTModel    string // transcription model override
	Language    string // transcription language hint
	AudioFormat string // inbound audio format hint
	Voice       string // synthesis voice id
}

// Pipeline wraps the voice providers with bounded timeouts and
// swallow-and-log failure semantics. A failed transcription yields an
// empty string and a failed synthesis yields nil audio; callers decide
// how to degrade.
type Pipeline struct {
	stt stt.Provider
	tts tts.Provider
	log *slog.Logger

	callTimeout time.Duration
	sttModel    string
	language    string
	audioFormat string
	voice       string
}

// NewPipeline creates a pipeline from the given config.
func NewPipeline(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Pipeline{
		stt:         cfg.STT,
		tts:         cfg.TTS,
		log:         logger.With("component", "voice_pipeline"),
		callTimeout: timeout,
		sttModel:    cfg.STTModel,
		language:    cfg.Language,
		audioFormat: cfg.AudioFormat,
		voice:       cfg.Voice,
	}
}

// Transcribe converts an audio payload to text. It returns "" when no STT
// provider is configured, the audio is empty, or the provider fails.
func (p *Pipeline) Transcribe(ctx context.Context, audio []byte) string {
	if p.stt == nil || len(audio) == 0 {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	start := time.Now()
	transcript, err := p.stt.Transcribe(ctx, bytes.NewReader(audio), stt.TranscribeOptions{
		Model:    p.sttModel,
		Language: p.language,
		Format:   p.audioFormat,
	})
	if err != nil {
		p.log.Warn("transcription failed",
			"provider", p.stt.Name(),
			"audio_bytes", len(audio),
			"elapsed", time.Since(start),
			"error", err)
		return ""
	}
	return transcript.Text
}

// Synthesize converts text to audio. It returns nil when no TTS provider
// is configured, the text is empty, or the provider fails; the caller
// falls back to a text-only reply.
func (p *Pipeline) Synthesize(ctx context.Context, text string) []byte {
	if p.tts == nil || text == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	start := time.Now()
	synthesis, err := p.tts.Synthesize(ctx, text, tts.SynthesizeOptions{
		Voice: p.voice,
	})
	if err != nil {
		p.log.Warn("synthesis failed",
			"provider", p.tts.Name(),
			"text_len", len(text),
			"elapsed", time.Since(start),
			"error", err)
		return nil
	}
	return synthesis.Audio
}
