package docsetup

import (
	"github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/docorch/internal/engine"
)

// IgnoredDirective accepts any arguments and content and renders nothing.
// It stands in for the API-doc directive when C-API docs are disabled so
// pages using it still build.
type IgnoredDirective struct{}

var _ engine.Directive = IgnoredDirective{}

// Run returns no nodes and no error.
func (IgnoredDirective) Run(engine.DirectiveCall) ([]ast.Node, error) { return nil, nil }
