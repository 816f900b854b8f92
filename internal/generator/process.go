package generator

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ProcessSpec describes one child process.
type ProcessSpec struct {
	// Name labels the process in logs and metrics.
	Name string
	Path string
	Args []string
	Dir  string
	// Env is appended to the inherited environment.
	Env   []string
	Stdin string
}

// ProcessResult is the outcome of a process that ran to completion.
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Combined returns stdout followed by stderr, separated by a newline.
// Empty streams are skipped.
func (r ProcessResult) Combined() string {
	parts := make([]string, 0, 2)
	if r.Stdout != "" {
		parts = append(parts, r.Stdout)
	}
	if r.Stderr != "" {
		parts = append(parts, r.Stderr)
	}
	return strings.Join(parts, "\n")
}

// Executor runs a process to completion. The error is reserved for failures
// to launch or wait for the process; a non-zero exit is reported through
// ProcessResult.ExitCode.
type Executor interface {
	Execute(ctx context.Context, spec ProcessSpec) (ProcessResult, error)
}

// ExecExecutor runs processes with os/exec.
type ExecExecutor struct{}

func (ExecExecutor) Execute(ctx context.Context, spec ProcessSpec) (ProcessResult, error) {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...) //nolint:gosec // binaries come from the build configuration
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	cmd.Stdin = strings.NewReader(spec.Stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := ProcessResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("%s interrupted: %w", spec.Name, ctx.Err())
	}
	return res, err
}
