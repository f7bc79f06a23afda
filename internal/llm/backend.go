package llm

import (
	"fmt"

	"github.com/nikhilbhutani/voicerelay/internal/config"
)

// NewProvider builds the provider selected by cfg.Backend.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Backend {
	case config.BackendOllama, "":
		return NewOllamaProvider(cfg.OllamaURL), nil
	case config.BackendOpenAI:
		return NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIKey), nil
	default:
		return nil, fmt.Errorf("provider %q not supported", cfg.Backend)
	}
}
