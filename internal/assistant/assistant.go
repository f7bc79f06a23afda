// Package assistant turns a user's transcribed message into a single reply
// from the local inference server.
//
// Failures talking to the inference server never escape this package: they
// are logged and replaced with a fixed apology so the caller always has a
// reply to show.
package assistant

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nikhilbhutani/voicerelay/internal/llm"
	"github.com/nikhilbhutani/voicerelay/internal/prompt"
)

const (
	// Instruction is prepended to every user message.
	Instruction = "Act like a personal assistant. You can respond to questions, translate sentences, summarize news, and give recommendations. Keep responses concise - 2 to 3 sentences maximum."

	// NoCompletionReply is returned when the server answered without a completion.
	NoCompletionReply = "Sorry, I could not process that."

	// UnavailableReply is returned when the server could not be reached or
	// sent something unreadable.
	UnavailableReply = "Sorry, I'm having trouble connecting to the AI model. Make sure Ollama is running."
)

var promptTemplate = prompt.MustParse("{{instruction}}\n\nUser: {{message}}\n\nAssistant:")

// Exchange is one message and the reply produced for it.
type Exchange struct {
	UserMessage string `json:"userMessage"`
	Response    string `json:"response"`
	Provider    string `json:"provider,omitempty"`
	LatencyMs   int64  `json:"latency_ms,omitempty"`
	// Recovered is set when Response is one of the apology strings.
	Recovered bool `json:"-"`
}

type Assistant struct {
	provider llm.Provider
	model    string
}

func New(provider llm.Provider, model string) *Assistant {
	return &Assistant{provider: provider, model: model}
}

// BuildPrompt wraps message in the assistant instruction.
func BuildPrompt(message string) string {
	out, err := promptTemplate.Execute(map[string]string{
		"instruction": Instruction,
		"message":     message,
	})
	if err != nil {
		// Both variables are always supplied.
		panic(err)
	}
	return out
}

// Reply returns the model's answer to userMessage, or an apology string if
// the inference server could not produce one.
func (a *Assistant) Reply(ctx context.Context, userMessage string) string {
	return a.Exchange(ctx, userMessage).Response
}

// Exchange runs one prompt/completion round trip.
func (a *Assistant) Exchange(ctx context.Context, userMessage string) Exchange {
	ex := Exchange{UserMessage: userMessage, Provider: a.provider.Name()}

	resp, err := a.provider.Generate(ctx, llm.GenerateRequest{
		Model:  a.model,
		Prompt: BuildPrompt(userMessage),
	})
	switch {
	case errors.Is(err, llm.ErrNoCompletion):
		slog.Warn("inference response had no completion",
			"provider", a.provider.Name(),
			"model", a.model,
			"error", err,
		)
		ex.Response = NoCompletionReply
		ex.Recovered = true
	case err != nil:
		slog.Error("inference call failed",
			"provider", a.provider.Name(),
			"model", a.model,
			"error", err,
		)
		ex.Response = UnavailableReply
		ex.Recovered = true
	default:
		ex.Response = resp.Content
		ex.LatencyMs = resp.LatencyMs
	}

	return ex
}
