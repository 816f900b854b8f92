package markdown

import "github.com/yuin/goldmark"

// Options controls how Markdown is parsed for link analysis.
type Options struct {
	// Extensions are applied to the parser so analysis sees the same tree the
	// renderer does (for example GFM autolinks).
	Extensions []goldmark.Extender
}

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

type Link struct {
	Kind        LinkKind
	Destination string
}
