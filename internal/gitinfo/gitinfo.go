// Package gitinfo reads the commit a documentation build was made from.
package gitinfo

import (
	stderrors "errors"
	"time"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
)

// Commit describes the HEAD commit of the repository holding the docs.
type Commit struct {
	Hash    string    `json:"hash"`
	Short   string    `json:"short"`
	Branch  string    `json:"branch,omitempty"` // empty on a detached HEAD
	Author  string    `json:"author,omitempty"`
	When    time.Time `json:"when,omitzero"`
	Subject string    `json:"subject,omitempty"`
}

// Head returns the HEAD commit of the repository containing path. The
// repository is searched upwards from path. ok is false when path is not
// inside a repository or the repository has no commits yet.
func Head(path string) (c Commit, ok bool, err error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return Commit{}, false, nil
		}
		return Commit{}, false, errors.WrapError(err, errors.CategoryRuntime, "failed to open git repository").
			WithContext("path", path).Build()
	}

	ref, err := repo.Head()
	if err != nil {
		// Unborn branch.
		return Commit{}, false, nil
	}

	obj, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return Commit{}, false, errors.WrapError(err, errors.CategoryRuntime, "failed to read HEAD commit").
			WithContext("path", path).WithContext("hash", ref.Hash().String()).Build()
	}

	hash := obj.Hash.String()
	c = Commit{
		Hash:    hash,
		Short:   hash[:7],
		Author:  obj.Author.Name,
		When:    obj.Author.When,
		Subject: firstLine(obj.Message),
	}
	if ref.Name().IsBranch() {
		c.Branch = ref.Name().Short()
	}
	return c, true, nil
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
