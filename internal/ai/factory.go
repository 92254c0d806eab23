package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vovarama1992/dislike-coach/internal/config"
)

// NewClient builds the model client for the configured provider.
func NewClient(ctx context.Context, cfg *config.Config, log *slog.Logger) (AI, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c, err := NewOpenAIClient(cfg.Model(), cfg.ModelTimeout, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderGemini, "":
		c, err := NewGeminiClient(ctx, cfg.Model(), cfg.ModelTimeout, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: unsupported LLM_PROVIDER %q (supported: gemini, openai)", config.ErrConfiguration, cfg.Provider)
	}
}
