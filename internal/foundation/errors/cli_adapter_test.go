package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitSuccess},
		{"validation", ValidationError("bad flag").Build(), ExitValidation},
		{"config", ConfigError("needs newer engine").Build(), ExitConfig},
		{"generator", GeneratorError("doxygen failed").Build(), ExitGenerator},
		{"docs", DocsError("unknown directive").Build(), ExitBuild},
		{"filesystem", FileSystemError("copy failed").Build(), ExitBuild},
		{"runtime", RuntimeError("watcher died").Build(), ExitRuntime},
		{"notify", NewError(CategoryNotify, "publish failed").Build(), ExitRuntime},
		{"wrapped", fmt.Errorf("build: %w", DocsError("bad page").Build()), ExitBuild},
		{"internal", InternalError("bug").Build(), ExitInternal},
		{"unclassified", stderrors.New("unknown"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := GeneratorError("An error has occurred while executing Doxygen\nerror: bad header").
		WithContext("exit_code", 2).
		Build()

	quiet := NewCLIErrorAdapter(false, slog.Default())
	assert.Equal(t, "Error: An error has occurred while executing Doxygen\nerror: bad header", quiet.FormatError(err))

	verbose := NewCLIErrorAdapter(true, slog.Default())
	out := verbose.FormatError(err)
	assert.Contains(t, out, "[generator:fatal]")
	assert.Contains(t, out, "exit_code: 2")

	hinted := ConfigError("needs newer engine").WithHint("upgrade docorch").Build()
	assert.Equal(t, "Error: needs newer engine\nHint: upgrade docorch", quiet.FormatError(hinted))

	assert.Equal(t, "Error: plain", quiet.FormatError(stderrors.New("plain")))
	assert.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var buf bytes.Buffer
	var code int
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	adapter.out = &buf
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("missing config").Build())

	assert.Equal(t, ExitConfig, code)
	assert.Equal(t, "Error: missing config\n", buf.String())
}
