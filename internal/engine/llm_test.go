package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "## Title\nHello", "## Title\nHello"},
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"markdown fence", "```markdown\n## Title\n```", "## Title"},
		{"bare fence", "```\nhello\n```", "hello"},
		{"inner fences kept", "## Quiz\n```json\n[]\n```", "## Quiz\n```json\n[]\n```"},
		{"whitespace", "  \n hi \n", "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCallLLMUsesCompleter(t *testing.T) {
	Init(Config{Complete: func(_ context.Context, system, prompt string) (string, error) {
		return "```\n" + system + "|" + prompt + "\n```", nil
	}})

	got, err := CallLLM(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "sys|user", got)
}

func TestCallLLMErrors(t *testing.T) {
	Init(Config{})
	_, err := CallLLM(context.Background(), "", "x")
	assert.ErrorIs(t, err, ErrNoLLM)

	boom := errors.New("quota")
	Init(Config{Complete: func(context.Context, string, string) (string, error) { return "", boom }})
	before := metrics.LLMErrors.Load()
	_, err = CallLLMShort(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before+1, metrics.LLMErrors.Load())
}
