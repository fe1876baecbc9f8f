package llm

import "context"

// GenerateRequest carries one prompt completion request to a backend.
type GenerateRequest struct {
	Model       string
	Prompt      string
	MaxLength   int
	Temperature float64
}

// Provider is a text generation backend. Given a prompt and sampling
// parameters it returns the completion text. Raw completion backends may echo
// the prompt at the start of the output; callers are expected to strip it.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	// Ping reports whether the backend is reachable and the model is usable.
	Ping(ctx context.Context) error
}
