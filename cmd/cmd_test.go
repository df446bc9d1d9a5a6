package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codesight/internal/config"
	"codesight/internal/proxy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"GROQ_API_KEY", "CODESIGHT_API_KEY", "CODESIGHT_PROVIDER", "CODESIGHT_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	detectExplain = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDetectFromStdin(t *testing.T) {
	out, err := execute(t, "def greet(name):\n    print(name)\n", "detect")
	require.NoError(t, err)
	assert.Equal(t, "python\n", out)
}

func TestDetectFromFileWithExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc main() {}\n"), 0o644))

	out, err := execute(t, "", "detect", "--explain", path)
	require.NoError(t, err)
	assert.Equal(t, "go\t(rule: go)\n", out)
}

func TestDetectBlankInput(t *testing.T) {
	out, err := execute(t, "  \n", "detect", "--explain")
	require.NoError(t, err)
	assert.Equal(t, "plain-text\t(rule: none)\n", out)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	t.Setenv("CODESIGHT_PROVIDER", "anthropic")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "detect"})
	err := rootCmd.Execute()
	assert.ErrorContains(t, err, "invalid provider")
}

func TestNewCompleter(t *testing.T) {
	ctx := context.Background()

	t.Run("no key", func(t *testing.T) {
		c := config.DefaultConfig()
		got, err := newCompleter(ctx, c, zap.NewNop())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("openai", func(t *testing.T) {
		c := config.DefaultConfig()
		c.Proxy.APIKey = "gsk-test"
		got, err := newCompleter(ctx, c, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &proxy.OpenAICompleter{}, got)
	})
}

func TestHandlerWithoutKeyFailsWithConfigurationError(t *testing.T) {
	h, err := newHandler(context.Background(), config.DefaultConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = h.Chat(context.Background(), proxy.Request{Agent: "deep-analysis", UserMessage: "hi"})
	assert.ErrorIs(t, err, proxy.ErrMissingCredential)
}
