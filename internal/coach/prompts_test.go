package coach

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestBuildPrompt(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "merge two CSVs on user_id"},
		{Role: RoleAssistant, Content: "you can just merge them"},
		{Role: RoleUser, Content: "keep the latest timestamp"},
		{Role: RoleAssistant, Content: "done"},
	}

	p := BuildPrompt(msgs, strPtr("wrong columns"), strPtr("python pandas"))

	assert.True(t, strings.HasPrefix(p, "\nYou are a PROMPT REWRITER for LLM chats.\n"))
	assert.True(t, strings.HasSuffix(p, "\n"))
	assert.Contains(t, p, "Full conversation:\n"+
		"USER: merge two CSVs on user_id\n"+
		"ASSISTANT: you can just merge them\n"+
		"USER: keep the latest timestamp\n"+
		"ASSISTANT: done\n")
	assert.Contains(t, p, "Last user message (for focus):\nkeep the latest timestamp\n")
	assert.Contains(t, p, "User comment (may be empty):\nwrong columns\n")
	assert.Contains(t, p, "Task hint (may be empty):\npython pandas\n")
	assert.Contains(t, p, `CRITICAL RULES FOR "suggested_prompt":`)
	assert.Contains(t, p, "Examples of BAD suggested_prompt (DO NOT WRITE THESE):")
	assert.Contains(t, p, "Examples of GOOD suggested_prompt (STYLE TO FOLLOW):")
}

func TestBuildPromptPlaceholders(t *testing.T) {
	msgs := []Message{
		{Role: RoleSystem, Content: "be terse"},
		{Role: RoleAssistant, Content: "ok"},
	}

	p := BuildPrompt(msgs, nil, nil)

	assert.Contains(t, p, "Last user message (for focus):\n(unknown last user message)\n")
	assert.Contains(t, p, "User comment (may be empty):\n(none)\n")
	assert.Contains(t, p, "Task hint (may be empty):\n(none)\n")
	assert.Contains(t, p, "SYSTEM: be terse\nASSISTANT: ok")
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "100% sure? use %s and %d"},
		{Role: RoleTool, Content: "{\"ok\":true}"},
	}
	a := BuildPrompt(msgs, strPtr("meh"), nil)
	b := BuildPrompt(msgs, strPtr("meh"), nil)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "USER: 100% sure? use %s and %d\nTOOL: {\"ok\":true}")
}

func TestBuildPromptEmptyCommentIsKept(t *testing.T) {
	p := BuildPrompt([]Message{{Role: RoleUser, Content: "a"}, {Role: RoleAssistant, Content: "b"}}, strPtr(""), nil)
	assert.Contains(t, p, "User comment (may be empty):\n\n")
}
