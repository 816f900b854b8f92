package docsetup

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
)

// DefaultMarkerName is the first-run marker kept in the docs directory.
const DefaultMarkerName = "_FIRST_RUN.flag"

// Marker is a zero-byte file whose presence means the expensive one-time
// package documentation build has already been scheduled.
type Marker struct {
	path string
}

// NewMarker returns a marker at path.
func NewMarker(path string) *Marker {
	return &Marker{path: path}
}

// Path returns the marker location.
func (m *Marker) Path() string { return m.path }

// FirstRun reports whether the marker is absent.
func (m *Marker) FirstRun() (bool, error) {
	_, err := os.Stat(m.path)
	switch {
	case err == nil:
		return false, nil
	case os.IsNotExist(err):
		return true, nil
	default:
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to check first-run marker").
			Fatal().WithContext("path", m.path).Build()
	}
}

// Touch creates the marker. An existing marker is left untouched.
func (m *Marker) Touch() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create marker directory").
			Fatal().WithContext("path", m.path).Build()
	}
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create first-run marker").
			Fatal().WithContext("path", m.path).Build()
	}
	return f.Close()
}
