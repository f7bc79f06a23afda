package llm

import (
	"context"
	"errors"
)

// ErrNoCompletion is returned when the inference server answered but the
// completion text is missing from its response.
var ErrNoCompletion = errors.New("no completion in response")

// Provider abstracts a single-shot completion backend (Ollama, an
// OpenAI-compatible server, ...).
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Name() string
}

// GenerateRequest is the input for a non-streamed completion.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// GenerateResponse is the output of a non-streamed completion.
type GenerateResponse struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Content   string `json:"content"`
	LatencyMs int64  `json:"latency_ms"`
}
