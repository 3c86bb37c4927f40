package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini is a completion client backed by the Gemini API.
type Gemini struct {
	model *genai.GenerativeModel
}

// NewGemini creates a new Gemini completion client.
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	generativeModel := client.GenerativeModel(model)
	// JSON-only responses; the classifier prompt relies on this.
	generativeModel.ResponseMIMEType = "application/json"

	return &Gemini{model: generativeModel}, nil
}

// Generate sends the prompt and unwraps the first text part of the first
// candidate into a plain string.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini client failed to generate content: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				return string(text), nil
			}
		}
	}
	return "", fmt.Errorf("gemini response was empty or in an unexpected format")
}

var _ Client = (*Gemini)(nil)
