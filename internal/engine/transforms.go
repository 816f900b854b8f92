package engine

import (
	"log/slog"
	"sort"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/docorch/internal/logfields"
)

// DirectivePriority is where directive resolution runs among the transforms.
const DirectivePriority = 100

// TransformInfo describes a registered transform.
type TransformInfo struct {
	Name     string
	Priority int
}

type transformEntry struct {
	TransformInfo
	t parser.ASTTransformer
}

// AddTransform registers a tree transform (idempotent by name). Transforms run
// after parsing in ascending priority, ties broken by name.
func (a *App) AddTransform(name string, t parser.ASTTransformer, priority int) {
	if t == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.transforms[name]; ok {
		slog.Debug("Transform already registered", logfields.Transform(name))
		return
	}
	a.transforms[name] = transformEntry{TransformInfo: TransformInfo{Name: name, Priority: priority}, t: t}
	slog.Debug("Registered transform", logfields.Transform(name), logfields.Priority(priority))
}

// Transforms lists registered transforms in execution order.
func (a *App) Transforms() []TransformInfo {
	entries := a.sortedTransforms()
	out := make([]TransformInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.TransformInfo)
	}
	return out
}

func (a *App) sortedTransforms() []transformEntry {
	a.mu.Lock()
	items := make([]transformEntry, 0, len(a.transforms))
	for _, e := range a.transforms {
		items = append(items, e)
	}
	a.mu.Unlock()
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority == items[j].Priority {
			return items[i].Name < items[j].Name
		}
		return items[i].Priority < items[j].Priority
	})
	return items
}

// pipeline runs transforms in a fixed order and stops once a page error is
// recorded in the parser context.
type pipeline struct {
	steps []parser.ASTTransformer
}

func (p *pipeline) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	for _, step := range p.steps {
		if pageError(pc) != nil {
			return
		}
		step.Transform(doc, reader, pc)
	}
}

func (a *App) pipeline() *pipeline {
	entries := a.sortedTransforms()
	steps := make([]parser.ASTTransformer, 0, len(entries))
	for _, e := range entries {
		steps = append(steps, e.t)
	}
	return &pipeline{steps: steps}
}
