package llm

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAI is a completion client backed by the OpenAI chat API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a new OpenAI completion client.
func NewOpenAI(model, apiKey string) (*OpenAI, error) {
	cfg := openai.DefaultConfig(apiKey)
	client := openai.NewClientWithConfig(cfg)
	return &OpenAI{client: client, model: model}, nil
}

// Generate sends the prompt as a single user message and returns the first
// choice. The response format is pinned to a JSON object so structured-output
// prompts cannot come back wrapped in prose.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Client = (*OpenAI)(nil)
