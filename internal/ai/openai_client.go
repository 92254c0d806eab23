package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/dislike-coach/internal/config"
	"github.com/Vovarama1992/dislike-coach/internal/logger"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIClient struct {
	client  chatCompleter
	model   string
	timeout time.Duration
	backoff Backoff
	log     *slog.Logger
}

func NewOpenAIClient(cfg config.ModelConfig, timeout time.Duration, log *slog.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is missing", config.ErrConfiguration)
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	l := log.With("component", "openai_client")
	l.Info("OpenAI client initialized", "model", model)

	return &OpenAIClient{
		client:  openai.NewClient(cfg.APIKey),
		model:   model,
		timeout: timeout,
		backoff: DefaultBackoff(l),
		log:     l,
	}, nil
}

func (c *OpenAIClient) GetReply(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: Temperature,
		MaxTokens:   MaxOutputTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	return c.backoff.Do(ctx, func(ctx context.Context) (string, error) {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			c.log.WarnContext(ctx, "OpenAI error", "error", err)
			return "", fmt.Errorf("openai API call failed: %w", err)
		}

		if len(resp.Choices) == 0 {
			c.log.WarnContext(ctx, "OpenAI returned empty choices")
			return "", fmt.Errorf("openai returned no choices")
		}

		raw := resp.Choices[0].Message.Content
		c.log.DebugContext(ctx, "OpenAI raw response", "preview", logger.Truncate(raw, 180))

		return raw, nil
	})
}
