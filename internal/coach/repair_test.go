package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepair(t *testing.T) {
	want := map[string]any{"a": float64(1)}

	tests := []struct {
		name string
		in   string
	}{
		{"plain", `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```"},
		{"fenced upper case with prose", "Here you go:\n```JSON\n{\"a\":1}\n```\nanything else?"},
		{"trailing object", `noise {"a":1}`},
		{"trailing object and newline", "noise {\"a\":1}\n"},
		{"broken fence falls back to trailing", "```json\noops\n```\n{\"a\":1}"},
		{"braces in leading prose", `Use {placeholders} where needed. Result: {"a":1}`},
		{"trailing whitespace after last object", "see {x}\n{\"a\":1}\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Repair(tt.in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRepairLastObjectIgnoresBracesInStrings(t *testing.T) {
	got, err := Repair(`note {x} then {"a":{"b":"}{"},"c":"say \"{\""}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": "}{"},
		"c": `say "{"`,
	}, got)
}

func TestRepairFails(t *testing.T) {
	for _, in := range []string{"not json at all", "", "{a:1}", `{"a":1} trailing`, "see {x} and {y}"} {
		_, err := Repair(in)
		require.Error(t, err, in)
		assert.ErrorIs(t, err, ErrUnparsableOutput)
	}
}

func TestRepairPreview(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	_, err := Repair(string(long))

	var ue *UnparsableOutputError
	require.ErrorAs(t, err, &ue)
	assert.Len(t, ue.Preview, previewLen)
}
