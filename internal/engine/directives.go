package engine

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
)

// DirectiveCall is one use of a directive in a page.
type DirectiveCall struct {
	Name    string
	Args    []string
	Content []byte
	File    string
	Line    int
}

// Directive expands a fenced block written as
//
//	```{name} arg1 arg2
//	content
//	```
//
// into zero or more nodes that replace the block.
type Directive interface {
	Run(call DirectiveCall) ([]ast.Node, error)
}

// DirectiveFunc adapts a function to Directive.
type DirectiveFunc func(call DirectiveCall) ([]ast.Node, error)

func (f DirectiveFunc) Run(call DirectiveCall) ([]ast.Node, error) { return f(call) }

// AddDirective registers d under name, replacing any earlier registration.
func (a *App) AddDirective(name string, d Directive) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.directives[name] = d
}

// Directive returns the handler registered under name.
func (a *App) Directive(name string) (Directive, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.directives[name]
	return d, ok
}

// KindFragment is the node kind of Fragment.
var KindFragment = ast.NewNodeKind("Fragment")

// Fragment is a block of pre-rendered HTML produced by a directive.
type Fragment struct {
	ast.BaseBlock
	HTML []byte
}

// NewFragment returns a Fragment holding html.
func NewFragment(html []byte) *Fragment {
	return &Fragment{HTML: html}
}

func (f *Fragment) Kind() ast.NodeKind { return KindFragment }

func (f *Fragment) IsRaw() bool { return true }

func (f *Fragment) Dump(source []byte, level int) {
	ast.DumpHelper(f, source, level, map[string]string{"HTML": string(f.HTML)}, nil)
}

type fragmentRenderer struct{}

func (fragmentRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindFragment, func(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			_, _ = w.Write(n.(*Fragment).HTML)
		}
		return ast.WalkSkipChildren, nil
	})
}

var (
	pageKey      = parser.NewContextKey()
	pageErrorKey = parser.NewContextKey()
)

type pageInfo struct {
	file       string
	lineOffset int
}

func pageError(pc parser.Context) error {
	if err, ok := pc.Get(pageErrorKey).(error); ok {
		return err
	}
	return nil
}

func setPageError(pc parser.Context, err error) {
	if pageError(pc) == nil {
		pc.Set(pageErrorKey, err)
	}
}

// directiveResolver replaces directive blocks with the nodes their handler
// returns. An unregistered directive fails the page.
type directiveResolver struct {
	lookup func(name string) (Directive, bool)
}

func (r *directiveResolver) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	src := reader.Source()
	page, _ := pc.Get(pageKey).(pageInfo)

	var blocks []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if fb, ok := n.(*ast.FencedCodeBlock); ok && entering {
			blocks = append(blocks, fb)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, fb := range blocks {
		name, args, ok := parseDirectiveInfo(fb, src)
		if !ok {
			continue
		}
		line := page.lineOffset + bytes.Count(src[:fb.Info.Segment.Start], []byte("\n")) + 1

		d, found := r.lookup(name)
		if !found {
			setPageError(pc, errors.WrapError(ErrUnknownDirective, errors.CategoryDocs,
				fmt.Sprintf("unknown directive type %q", name)).Fatal().
				WithContext("directive", name).
				WithContext("file", page.file).
				WithContext("line", line).Build())
			return
		}

		nodes, err := d.Run(DirectiveCall{
			Name:    name,
			Args:    args,
			Content: blockContent(fb, src),
			File:    page.file,
			Line:    line,
		})
		if err != nil {
			setPageError(pc, errors.WrapError(fmt.Errorf("%w: %w", ErrDirectiveFailed, err), errors.CategoryDocs,
				fmt.Sprintf("directive %q failed", name)).Fatal().
				WithContext("directive", name).
				WithContext("file", page.file).
				WithContext("line", line).Build())
			return
		}

		parent := fb.Parent()
		for _, n := range nodes {
			parent.InsertBefore(parent, fb, n)
		}
		parent.RemoveChild(parent, fb)
	}
}

// parseDirectiveInfo splits an info string of the form "{name} args...".
func parseDirectiveInfo(fb *ast.FencedCodeBlock, src []byte) (string, []string, bool) {
	if fb.Info == nil {
		return "", nil, false
	}
	info := strings.TrimSpace(string(fb.Info.Segment.Value(src)))
	if !strings.HasPrefix(info, "{") {
		return "", nil, false
	}
	end := strings.IndexByte(info, '}')
	if end < 2 {
		return "", nil, false
	}
	name := strings.TrimSpace(info[1:end])
	if name == "" || strings.ContainsAny(name, " \t") {
		return "", nil, false
	}
	return name, strings.Fields(info[end+1:]), true
}

func blockContent(fb *ast.FencedCodeBlock, src []byte) []byte {
	var buf bytes.Buffer
	lines := fb.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}
