package ai

import "context"

// AI is the text-generation model behind an analysis. It knows nothing about
// conversations or coaching results: one system instruction and one user
// prompt in, raw model text out.
type AI interface {
	GetReply(
		ctx context.Context,
		systemPrompt string,
		userPrompt string,
	) (string, error)
}

// Generation settings shared by every provider.
const (
	Temperature     = 0.2
	MaxOutputTokens = 8192
)
