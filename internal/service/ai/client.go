package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoClient indicates generation was requested without configured
// credentials; callers treat it like any other upstream failure.
var ErrNoClient = errors.New("generation client not configured")

// Client is the boundary to the remote text-generation service: one prompt in,
// raw text out. No retry or idempotency is assumed.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient talks to an OpenAI-compatible completion endpoint, which is how
// the generative-language service is exposed.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a generation client for the given credential, endpoint
// and model.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

// Generate runs a single non-streamed completion for the prompt.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
