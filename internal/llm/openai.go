package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider sends completions to an OpenAI-compatible /v1/completions
// endpoint, such as the one Ollama exposes under /v1.
type OpenAIProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(baseURL, apiKey string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	resp, err := p.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoCompletion
	}

	model := resp.Model
	if model == "" {
		model = req.Model
	}

	return &GenerateResponse{
		Provider:  "openai",
		Model:     model,
		Content:   resp.Choices[0].Text,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai ping: %w", err)
	}
	return nil
}
