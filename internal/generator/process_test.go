package generator

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessResult_Combined(t *testing.T) {
	cases := []struct {
		name string
		res  ProcessResult
		want string
	}{
		{"both", ProcessResult{Stdout: "generating xml", Stderr: "warning: x"}, "generating xml\nwarning: x"},
		{"stdout only", ProcessResult{Stdout: "ok"}, "ok"},
		{"stderr only", ProcessResult{Stderr: "error: bad header"}, "error: bad header"},
		{"empty", ProcessResult{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.res.Combined())
		})
	}
}

func TestExecExecutor_CapturesStreamsAndExitCode(t *testing.T) {
	res, err := ExecExecutor{}.Execute(context.Background(), ProcessSpec{
		Name: "sh",
		Path: "/bin/sh",
		Args: []string{"-c", `echo "generating"; echo "error: bad header" >&2; exit 2`},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "generating\n", res.Stdout)
	assert.Equal(t, "error: bad header\n", res.Stderr)
}

func TestExecExecutor_StdinEnvAndDir(t *testing.T) {
	dir := t.TempDir()
	res, err := ExecExecutor{}.Execute(context.Background(), ProcessSpec{
		Path:  "/bin/sh",
		Args:  []string{"-c", `cat; echo "$LIGHTGBM_BUILD_DOC"; pwd -P`},
		Env:   []string{"LIGHTGBM_BUILD_DOC=1"},
		Dir:   dir,
		Stdin: "INPUT=c_api.h\nGENERATE_XML=YES",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, "INPUT=c_api.h\nGENERATE_XML=YES1\n"+resolved+"\n", res.Stdout)
}

func TestExecExecutor_LaunchFailure(t *testing.T) {
	_, err := ExecExecutor{}.Execute(context.Background(), ProcessSpec{Path: filepath.Join(t.TempDir(), "no-such-doxygen")})
	require.Error(t, err)
}

func TestExecExecutor_Canceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := ExecExecutor{}.Execute(ctx, ProcessSpec{Name: "sleep", Path: "/bin/sh", Args: []string{"-c", "exec sleep 5"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
