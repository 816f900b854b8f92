package generator

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
)

func withLookPath(t *testing.T, available map[string]string) {
	t.Helper()
	orig := execLookPath
	t.Cleanup(func() { execLookPath = orig })
	execLookPath = func(name string) (string, error) {
		if p, ok := available[name]; ok {
			return p, nil
		}
		return "", exec.ErrNotFound
	}
}

func TestCheckTools_AllFound(t *testing.T) {
	withLookPath(t, map[string]string{"doxygen": "/usr/bin/doxygen", "bash": "/bin/bash"})
	statuses, err := CheckTools([]ToolRequirement{
		{Name: "doxygen", Purpose: "C API symbol extraction"},
		{Name: "bash"},
	})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "/usr/bin/doxygen", statuses[0].Path)
	assert.True(t, statuses[1].Found())
}

func TestCheckTools_Alternatives(t *testing.T) {
	withLookPath(t, map[string]string{"gtar": "/usr/local/bin/gtar"})
	statuses, err := CheckTools([]ToolRequirement{{Name: "tar", Alternatives: []string{"gtar"}}})
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/gtar", statuses[0].Path)
}

func TestCheckTools_Missing(t *testing.T) {
	withLookPath(t, map[string]string{})
	statuses, err := CheckTools([]ToolRequirement{
		{Name: "doxygen", Purpose: "C API symbol extraction"},
		{Name: "Rscript", Optional: true},
		{Name: "R", Purpose: "R package build"},
	})
	require.Error(t, err)
	assert.Len(t, statuses, 3)
	assert.True(t, errors.HasCategory(err, errors.CategoryGenerator))
	ce, _ := errors.AsClassified(err)
	assert.Equal(t, "missing required tools: doxygen (C API symbol extraction), R (R package build)", ce.Message())
}
