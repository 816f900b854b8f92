package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCopyDir_Tree(t *testing.T) {
	src := t.TempDir()
	write(t, filepath.Join(src, "index.html"), "<h1>lightgbm</h1>")
	write(t, filepath.Join(src, "reference", "lgb.train.html"), "train")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0o755))

	dst := filepath.Join(t.TempDir(), "out", "R")
	require.NoError(t, CopyDir(src, dst))

	assert.Equal(t, "<h1>lightgbm</h1>", read(t, filepath.Join(dst, "index.html")))
	assert.Equal(t, "train", read(t, filepath.Join(dst, "reference", "lgb.train.html")))
	assert.DirExists(t, filepath.Join(dst, "empty"))
}

func TestCopyDir_MergesIntoExisting(t *testing.T) {
	src := t.TempDir()
	write(t, filepath.Join(src, "index.html"), "new")

	dst := t.TempDir()
	write(t, filepath.Join(dst, "index.html"), "old")
	write(t, filepath.Join(dst, "stale.html"), "keep")

	require.NoError(t, CopyDir(src, dst))
	assert.Equal(t, "new", read(t, filepath.Join(dst, "index.html")))
	assert.Equal(t, "keep", read(t, filepath.Join(dst, "stale.html")))
}

func TestCopyDir_MissingSource(t *testing.T) {
	err := CopyDir(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestCopyFile_PreservesMode(t *testing.T) {
	src := filepath.Join(t.TempDir(), "run.sh")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"), 0o755))
	dst := filepath.Join(t.TempDir(), "bin", "run.sh")

	require.NoError(t, CopyFile(src, dst))
	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}
