package llm

import (
	"context"
	"fmt"

	"Atlas_KB/internal/config"
)

// Client is the completion contract the classification orchestrator consumes.
// Implementations are constrained to return a single JSON object when the
// prompt demands one; the caller still validates the payload.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewClient creates a completion client for the configured provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.OpenAI.Model, cfg.OpenAI.APIKey)
	case "gemini":
		return NewGemini(ctx, cfg.Gemini.Model, cfg.Gemini.APIKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
