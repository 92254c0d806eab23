package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Vovarama1992/dislike-coach/internal/mcp"
)

const (
	ToolName        = "analyze_dislike"
	toolTitle       = "Analyze a disliked LLM response"
	toolDescription = "Summarize a failed exchange and suggest a better follow-up prompt."
)

// AnalyzeTool describes the analyze operation as an MCP tool backed by svc.
func AnalyzeTool(svc Service) mcp.Tool {
	return mcp.Tool{
		Name:         ToolName,
		Title:        toolTitle,
		Description:  toolDescription,
		InputSchema:  json.RawMessage(InputSchema),
		OutputSchema: json.RawMessage(OutputSchema),
		Handler: func(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
			req, err := DecodeRequest(args)
			if err != nil {
				if errors.Is(err, ErrValidation) {
					return nil, mcp.InvalidParams("%v", err)
				}
				return nil, err
			}

			res, err := svc.Analyze(ctx, req)
			if err != nil {
				return nil, err
			}

			text, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("encode result: %w", err)
			}
			out := mcp.TextResult(string(text))
			out.StructuredContent = res
			return out, nil
		},
	}
}
