package engine

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
)

// discover returns the slash-separated paths of every source page below the
// source directory, minus exclude patterns and the output directory.
func (a *App) discover() ([]string, error) {
	fsys := os.DirFS(a.opts.SourceDir)
	matches, err := doublestar.Glob(fsys, "**/*"+a.opts.SourceSuffix, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryDocs, "failed to discover source pages").
			Fatal().WithContext("dir", a.opts.SourceDir).Build()
	}

	excludes := append([]string(nil), a.opts.ExcludePatterns...)
	if rel, err := filepath.Rel(a.opts.SourceDir, a.opts.OutputDir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		excludes = append(excludes, filepath.ToSlash(rel)+"/**")
	}

	pages := make([]string, 0, len(matches))
	for _, m := range matches {
		excluded, err := matchesAny(excludes, m)
		if err != nil {
			return nil, err
		}
		if !excluded {
			pages = append(pages, m)
		}
	}
	sort.Strings(pages)
	return pages, nil
}

func matchesAny(patterns []string, name string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, name)
		if err != nil {
			return false, errors.WrapError(err, errors.CategoryConfig, "invalid exclude pattern").
				Fatal().WithContext("pattern", p).Build()
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
