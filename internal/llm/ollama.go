package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewOllamaProvider talks to the Ollama HTTP API at baseURL. The client has no
// timeout: a slow local model holds the caller until it answers or the
// request context ends.
func NewOllamaProvider(baseURL string) *OllamaProvider {
	return &OllamaProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

type ollamaGenerateReq struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Response is a pointer so that an absent field can be told apart from an
// empty completion. An explicit null counts as absent.
type ollamaGenerateResp struct {
	Model           string  `json:"model"`
	Response        *string `json:"response"`
	Done            bool    `json:"done"`
	Error           string  `json:"error,omitempty"`
	TotalDuration   int64   `json:"total_duration"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

func (p *OllamaProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	body, err := json.Marshal(ollamaGenerateReq{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	// The status code is not checked: Ollama reports failures as a JSON body
	// with an "error" field, which decodes fine and carries no completion.
	var oResp ollamaGenerateResp
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return nil, fmt.Errorf("ollama decode (status %d): %w", resp.StatusCode, err)
	}

	slog.Debug("ollama response",
		"status", resp.StatusCode,
		"model", oResp.Model,
		"done", oResp.Done,
		"eval_count", oResp.EvalCount,
		"error", oResp.Error,
	)

	if oResp.Response == nil {
		if oResp.Error != "" {
			return nil, fmt.Errorf("ollama: %s: %w", oResp.Error, ErrNoCompletion)
		}
		return nil, ErrNoCompletion
	}

	return &GenerateResponse{
		Provider:  "ollama",
		Model:     req.Model,
		Content:   *oResp.Response,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *OllamaProvider) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("ollama ping request: %w", err)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("ollama ping: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama ping: unexpected status %d", resp.StatusCode)
	}
	return nil
}
