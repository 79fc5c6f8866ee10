package summarizer

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		env      map[string]string
		wantNil  bool
		wantErr  bool
	}{
		{name: "default is hf", provider: "", wantNil: true},
		{name: "explicit hf", provider: "hf", wantNil: true},
		{name: "noop", provider: "noop"},
		{name: "openai with key", provider: "openai", env: map[string]string{"OPENAI_API_KEY": "sk-test"}},
		{name: "openai without key", provider: "openai", wantErr: true},
		{name: "claude with key", provider: "claude", env: map[string]string{"ANTHROPIC_API_KEY": "sk-ant-test"}},
		{name: "claude without key", provider: "claude", wantErr: true},
		{name: "unknown provider", provider: "bard", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SUMMARY_PROVIDER", tt.provider)
			t.Setenv("OPENAI_API_KEY", tt.env["OPENAI_API_KEY"])
			t.Setenv("ANTHROPIC_API_KEY", tt.env["ANTHROPIC_API_KEY"])

			s, err := FromEnv(discard())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, s)
			} else {
				assert.NotNil(t, s)
			}
		})
	}
}

func TestNoOp_Summarize(t *testing.T) {
	n := NewNoOp()

	short, err := n.Summarize(context.Background(), "short text")
	require.NoError(t, err)
	assert.Equal(t, "short text", short)

	long, err := n.Summarize(context.Background(), strings.Repeat("a", noOpMaxChars+100))
	require.NoError(t, err)
	assert.Len(t, long, noOpMaxChars+3)
	assert.True(t, strings.HasSuffix(long, "..."))
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt("Missile strike reported.")
	assert.Contains(t, p, "90 words")
	assert.True(t, strings.HasSuffix(p, "Missile strike reported."))
}

func TestTruncateInput(t *testing.T) {
	assert.Equal(t, "short", truncateInput("short"))

	long := truncateInput(strings.Repeat("x", maxInputChars+50))
	assert.Len(t, long, maxInputChars+3)
}
