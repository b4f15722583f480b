package llm

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// openAIClient talks to any OpenAI compatible chat completion endpoint,
// Groq included.
type openAIClient struct {
	client   *openai.Client
	provider string
}

func NewOpenAIClient(opts Options) Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	provider := opts.Provider
	if provider == "" {
		provider = "openai"
	}

	return &openAIClient{
		client:   openai.NewClientWithConfig(cfg),
		provider: provider,
	}
}

func (c *openAIClient) Generate(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: wireTemperature(req.Temperature),
	}

	chatReq.Messages = make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		chatReq.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("create %s chat completion: %w", c.provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s chat completion returned no choices", c.provider)
	}

	return resp.Choices[0].Message.Content, nil
}

// wireTemperature keeps an explicit zero on the wire; the request struct
// omits zero values.
func wireTemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
