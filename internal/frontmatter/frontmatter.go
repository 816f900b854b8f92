// Package frontmatter separates the optional YAML header of a source page from
// its Markdown body.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnterminated is returned when a page opens a YAML header but never closes it.
var ErrUnterminated = errors.New("frontmatter opened with --- but never closed")

// Meta is the subset of page metadata the renderer understands. Unknown keys
// are kept in Params and exposed to the page layout.
type Meta struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Template    string         `yaml:"template"`
	Params      map[string]any `yaml:",inline"`
}

// Split separates a `---` delimited YAML header from the Markdown body.
// Both LF and CRLF line endings are recognised. When the page has no header,
// header is nil and body is the full input.
func Split(content []byte) (header []byte, body []byte, err error) {
	nl := lineEnding(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], nil
	}

	closing := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		// A header closed at end of file has no trailing newline.
		if bytes.HasSuffix(rest, []byte(nl+"---")) {
			return rest[:len(rest)-len(nl+"---")+len(nl)], []byte{}, nil
		}
		return nil, nil, ErrUnterminated
	}
	return rest[:idx+len(nl)], rest[idx+len(closing):], nil
}

// Parse decodes a YAML header produced by Split. An empty header yields a
// zero Meta.
func Parse(header []byte) (Meta, error) {
	var m Meta
	if len(bytes.TrimSpace(header)) == 0 {
		return m, nil
	}
	if err := yaml.Unmarshal(header, &m); err != nil {
		return Meta{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	return m, nil
}

func lineEnding(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
