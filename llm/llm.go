package llm

import (
	"context"
	"fmt"

	"github.com/fabfab/cvchat/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Request is a single, non-streaming completion call.
type Request struct {
	Model       string
	Temperature float64
	Messages    []Message
}

type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type Options struct {
	Provider string

	APIKey  string
	BaseURL string

	OllamaHost string
}

func NewClient(ctx context.Context, cfg config.Config) (Client, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGroq:
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("groq provider selected but GROQ_API_KEY not set")
		}
		return NewOpenAIClient(Options{Provider: config.ProviderGroq, APIKey: cfg.GroqAPIKey, BaseURL: cfg.GroqBaseURL}), nil
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIClient(Options{Provider: config.ProviderOpenAI, APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL}), nil
	case config.ProviderOllama:
		return NewOllamaClient(Options{Provider: config.ProviderOllama, OllamaHost: cfg.OllamaHost}), nil
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider selected but GEMINI_API_KEY not set")
		}
		return NewGeminiClient(ctx, Options{Provider: config.ProviderGemini, APIKey: cfg.GeminiAPIKey})
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}

// Close releases provider resources when the client holds any.
func Close(c Client) error {
	if closer, ok := c.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
