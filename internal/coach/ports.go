package coach

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation transcript, in chronological order.
type Message struct {
	Role    Role   `json:"role" validate:"oneof=user assistant system tool"`
	Content string `json:"content"`
}

// AnalysisRequest is the conversation whose last answer the user disliked.
// Optional fields are nil when the caller did not send them.
type AnalysisRequest struct {
	Messages    []Message `json:"messages" validate:"min=2,dive"`
	ChatID      *string   `json:"chat_id,omitempty"`
	Model       *string   `json:"model,omitempty"`
	UserComment *string   `json:"user_comment,omitempty"`
	TaskHint    *string   `json:"task_hint,omitempty"`
}

// AnalysisResult is the coaching result returned to the caller.
type AnalysisResult struct {
	Summary         string   `json:"summary"`
	RootCauses      []string `json:"root_causes"`
	SuggestedPrompt string   `json:"suggested_prompt"`
	Alternatives    []string `json:"alternatives"`
	Confidence      float64  `json:"confidence"`
}

// Service runs one analysis: prompt, model call, repair, validation and at
// most one stricter retry.
type Service interface {
	Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error)
}
