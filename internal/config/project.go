package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
)

// ReadVersion reads the project version from the version file at the
// repository root. Release-candidate markers are normalised: "4.0.0rc1"
// becomes "4.0.0-rc1".
func (c *Config) ReadVersion() (string, error) {
	p := c.resolve(c.RepoRootPath(), c.Project.VersionFile)
	data, err := os.ReadFile(filepath.Clean(p))
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryConfig, "failed to read version file").Fatal().
			WithContext("path", p).Build()
	}
	return NormalizeVersion(string(data)), nil
}

// NormalizeVersion trims whitespace and rewrites "rc" as "-rc".
func NormalizeVersion(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), "rc", "-rc")
}

// Copyright renders the copyright line for the given time.
func (c *Config) Copyright(now time.Time) string {
	holder := c.Project.CopyrightHolder
	if holder == "" {
		holder = c.Project.Author
	}
	if holder == "" {
		return fmt.Sprintf("%d", now.Year())
	}
	return fmt.Sprintf("%d, %s", now.Year(), holder)
}
