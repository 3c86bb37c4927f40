package embedding

import (
	"context"
	"fmt"

	"Atlas_KB/internal/config"
)

// NewEmdModel creates an embedding model for the configured provider.
func NewEmdModel(ctx context.Context, cfg config.EmbeddingConfig) (Embedding, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGoogleModel(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "openai":
		return NewOpenAIModel(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
