package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/dislike-coach/internal/coach"
	"github.com/Vovarama1992/dislike-coach/internal/config"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "dislike-coach 1.0.0\n", out.String())
}

func TestAnalyzeRejectsInvalidRequestBeforeConfig(t *testing.T) {
	root := newRootCmd()
	root.SetIn(strings.NewReader(`{"messages":[{"role":"user","content":"only one"}]}`))
	root.SetArgs([]string{"analyze"})

	err := root.Execute()
	assert.ErrorIs(t, err, coach.ErrValidation)
}

func TestAnalyzeMissingCredential(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	root := newRootCmd()
	root.SetIn(strings.NewReader(`{"messages":[{"role":"user","content":"a"},{"role":"assistant","content":"b"}]}`))
	root.SetArgs([]string{"analyze", "--comment", "too vague"})

	err := root.Execute()
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestAnalyzeMissingFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"analyze", "--file", "/nonexistent/request.json"})

	err := root.Execute()
	assert.ErrorContains(t, err, "read request")
}
