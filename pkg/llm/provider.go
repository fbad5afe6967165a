// Package llm provides the language-model collaborator client used for
// question generation and answer scoring.
package llm

import "context"

// Request is a single completion request.
type Request struct {
	System      string  // System prompt, optional.
	Prompt      string  // User prompt.
	MaxTokens   int     // 0 uses the provider default.
	Temperature float64 // 0 uses the provider default.
}

// Completer produces one text completion per request. Implementations do not
// retry; callers decide how to degrade on failure.
type Completer interface {
	// Name returns the provider identifier.
	Name() string

	// Complete returns the model's text reply for the request.
	Complete(ctx context.Context, req Request) (string, error)
}
