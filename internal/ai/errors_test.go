package ai

import (
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"genai 429", &genai.APIError{Code: 429, Message: "quota"}, true},
		{"genai resource exhausted", fmt.Errorf("wrapped: %w", &genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"}), true},
		{"genai server error", &genai.APIError{Code: 500, Status: "INTERNAL"}, false},
		{"genai value 429", fmt.Errorf("gemini API call failed: %w", genai.APIError{Code: 429, Message: "quota"}), true},
		{"genai value resource exhausted", genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED", Message: "quota"}, true},
		{"genai value server error", genai.APIError{Code: 503, Status: "UNAVAILABLE", Message: "overloaded"}, false},
		{"openai api 429", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, true},
		{"openai request 429", &openai.RequestError{HTTPStatusCode: 429, Err: errors.New("too many")}, true},
		{"openai 401", &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}, false},
		{"message fallback", errors.New("upstream said 429"), true},
		{"plain error", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimited(tt.err))
		})
	}
}
