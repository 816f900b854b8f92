package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHead(t *testing.T) {
	repoPath := t.TempDir()
	repo, err := git.PlainInit(repoPath, false)
	require.NoError(t, err)

	docs := filepath.Join(repoPath, "docs")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "index.md"), []byte("# Docs\n"), 0o644))

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(".")
	require.NoError(t, err)
	when := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hash, err := w.Commit("Add docs\n\nLonger body.", &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: when},
	})
	require.NoError(t, err)

	c, ok, err := Head(docs)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, hash.String(), c.Hash)
	assert.Equal(t, hash.String()[:7], c.Short)
	assert.Equal(t, "master", c.Branch)
	assert.Equal(t, "Test User", c.Author)
	assert.Equal(t, "Add docs", c.Subject)
	assert.True(t, c.When.Equal(when))
}

func TestHead_NotARepository(t *testing.T) {
	_, ok, err := Head(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHead_NoCommits(t *testing.T) {
	repoPath := t.TempDir()
	_, err := git.PlainInit(repoPath, false)
	require.NoError(t, err)

	_, ok, err := Head(repoPath)
	require.NoError(t, err)
	assert.False(t, ok)
}
