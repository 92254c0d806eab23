package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/Vovarama1992/dislike-coach/internal/config"
	"github.com/Vovarama1992/dislike-coach/internal/logger"
)

// contentGenerator is the part of genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

type GeminiClient struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	backoff Backoff
	log     *slog.Logger
}

// NewGeminiClient creates a Gemini client. A missing API key is a
// configuration error reported here, once.
func NewGeminiClient(ctx context.Context, cfg config.ModelConfig, timeout time.Duration, log *slog.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is missing", config.ErrConfiguration)
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	l := log.With("component", "gemini_client")
	l.Info("Gemini client initialized", "model", cfg.Model)

	return &GeminiClient{
		models:  gi.Models,
		model:   cfg.Model,
		timeout: timeout,
		backoff: DefaultBackoff(l),
		log:     l,
	}, nil
}

func (c *GeminiClient) GetReply(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](Temperature),
		MaxOutputTokens:   MaxOutputTokens,
		ResponseMIMEType:  "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)}

	return c.backoff.Do(ctx, func(ctx context.Context) (string, error) {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		start := time.Now()
		resp, err := c.models.GenerateContent(ctx, c.model, contents, genCfg)
		if err != nil {
			c.log.WarnContext(ctx, "Gemini API call failed", "error", err)
			return "", fmt.Errorf("gemini API call failed: %w", err)
		}

		text, err := c.extractText(ctx, resp)
		if err != nil {
			return "", err
		}

		c.log.DebugContext(ctx, "Gemini response received",
			"duration_ms", time.Since(start).Milliseconds(),
			"preview", logger.Truncate(text, 180),
		)
		return text, nil
	})
}

func (c *GeminiClient) extractText(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("gemini returned no response")
	}

	if pf := resp.PromptFeedback; pf != nil && pf.BlockReason != "" && pf.BlockReason != genai.BlockedReasonUnspecified {
		reason := string(pf.BlockReason)
		if pf.BlockReasonMessage != "" {
			reason = pf.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reason)
		return "", fmt.Errorf("gemini request blocked by safety filter: %s", reason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing content", "finish_reason", finishReason)
		return "", fmt.Errorf("gemini returned no content, finish reason: %s", finishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}
