package coach

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/dislike-coach/internal/mcp"
)

func TestAnalyzeToolDescriptor(t *testing.T) {
	tool := AnalyzeTool(&stubService{})

	assert.Equal(t, "analyze_dislike", tool.Name)
	assert.Equal(t, "Analyze a disliked LLM response", tool.Title)
	assert.Equal(t, "Summarize a failed exchange and suggest a better follow-up prompt.", tool.Description)
	assert.True(t, json.Valid(tool.InputSchema))
	assert.True(t, json.Valid(tool.OutputSchema))
}

func TestAnalyzeToolCall(t *testing.T) {
	svc := &stubService{res: &AnalysisResult{Summary: "s", RootCauses: []string{}, SuggestedPrompt: "p", Alternatives: []string{}, Confidence: 1}}
	tool := AnalyzeTool(svc)

	res, err := tool.Handler(context.Background(), json.RawMessage(validBody))
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	assert.Contains(t, res.Content[0].Text, "\n  \"summary\": \"s\"")
	assert.Equal(t, svc.res, res.StructuredContent)
	assert.False(t, res.IsError)
}

func TestAnalyzeToolInvalidArguments(t *testing.T) {
	svc := &stubService{}
	_, err := AnalyzeTool(svc).Handler(context.Background(), json.RawMessage(`{"messages":[]}`))

	var rpcErr *mcp.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, mcp.JSONRPCInvalidParams, rpcErr.Code)
	assert.Empty(t, svc.reqs)
}

func TestAnalyzeToolServiceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := AnalyzeTool(&stubService{err: boom}).Handler(context.Background(), json.RawMessage(validBody))
	assert.ErrorIs(t, err, boom)
}
