package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
	"git.home.luguber.info/inful/docorch/internal/markdown"
	"git.home.luguber.info/inful/docorch/internal/metrics"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newTestApp(t *testing.T, files map[string]string) (*App, string) {
	t.Helper()
	src := t.TempDir()
	for name, content := range files {
		writeFile(t, filepath.Join(src, filepath.FromSlash(name)), content)
	}
	app, err := New(Options{
		SourceDir:       src,
		OutputDir:       filepath.Join(src, "_build", "html"),
		ExcludePatterns: []string{"_build/**", "**/.DS_Store"},
		StaticDirs:      []string{filepath.Join(src, "_static")},
		Site:            SiteInfo{Project: "LightGBM", Version: "4.6.0", Release: "4.6.0", Copyright: "2026, Microsoft Corporation"},
	})
	require.NoError(t, err)
	return app, app.OutputDir()
}

func TestNew_RequiresDirectories(t *testing.T) {
	_, err := New(Options{OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = New(Options{SourceDir: t.TempDir()})
	require.Error(t, err)
}

func TestNew_NeedsVersion(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Options{SourceDir: dir, OutputDir: dir, NeedsVersion: "1.0"})
	require.NoError(t, err)

	_, err = New(Options{SourceDir: dir, OutputDir: dir, NeedsVersion: "99.1.0"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionRequirement)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = New(Options{SourceDir: dir, OutputDir: dir, NeedsVersion: "not-a-version"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestTransforms_OrderAndIdempotence(t *testing.T) {
	app, _ := newTestApp(t, nil)
	app.AddTransform("refs", markdown.NewRefRewriter("", ""), 210)
	app.AddTransform("early", markdown.NewRefRewriter("", ""), 50)
	app.AddTransform("also-210", markdown.NewRefRewriter("", ""), 210)
	app.AddTransform("refs", markdown.NewRefRewriter("", ""), 5)

	assert.Equal(t, []TransformInfo{
		{Name: "early", Priority: 50},
		{Name: "directives", Priority: DirectivePriority},
		{Name: "also-210", Priority: 210},
		{Name: "refs", Priority: 210},
	}, app.Transforms())
}

func TestAssets(t *testing.T) {
	app, _ := newTestApp(t, nil)
	app.AddJSFile("js/script.js", WithDefer())
	app.AddJavaScript("js/script.js")
	app.AddJavaScript("js/legacy.js")

	assert.Equal(t, []Script{
		{Path: "js/script.js", Defer: true},
		{Path: "js/legacy.js"},
	}, app.Scripts())
}

func TestBuild_RendersPages(t *testing.T) {
	app, out := newTestApp(t, map[string]string{
		"index.md":             "# LightGBM\n\nSee [parameters](./Parameters.md#core-parameters) and [FAQ](./FAQ.md).\n",
		"Parameters.md":        "---\ntitle: Parameters Reference\ndescription: All parameters\n---\n# Parameters\n\n## Core Parameters\n",
		"FAQ.md":               "Questions without a heading.\n",
		"dev/Python-Intro.md":  "# Python Intro\n\n[back](../index.md)\n",
		"_static/js/script.js": "console.log('hi')\n",
		"_build/html/old.md":   "# stale\n",
		".DS_Store":            "x",
	})
	app.AddTransform("refs", markdown.NewRefRewriter(".md", ".html"), 210)
	app.AddJSFile("js/script.js")

	report, err := app.Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.NotEmpty(t, report.BuildID)
	assert.Equal(t, metrics.BuildOutcomeSuccess, report.Outcome)

	require.Len(t, report.Pages, 4)
	titles := map[string]string{}
	links := map[string]int{}
	for _, p := range report.Pages {
		titles[p.Source] = p.Title
		links[p.Source] = p.Links
		assert.NotEmpty(t, p.Fingerprint, p.Source)
	}
	assert.Equal(t, 2, links["index.md"])
	assert.Equal(t, 0, links["FAQ.md"])
	assert.Equal(t, map[string]string{
		"FAQ.md":              "FAQ",
		"Parameters.md":       "Parameters Reference",
		"dev/Python-Intro.md": "Python Intro",
		"index.md":            "LightGBM",
	}, titles)

	index := readFile(t, filepath.Join(out, "index.html"))
	assert.Contains(t, index, `href="./Parameters.html#core-parameters"`)
	assert.Contains(t, index, `href="./FAQ.html"`)
	assert.Contains(t, index, `<script src="_static/js/script.js"></script>`)
	assert.Contains(t, index, "&copy; Copyright 2026, Microsoft Corporation.")

	params := readFile(t, filepath.Join(out, "Parameters.html"))
	assert.Contains(t, params, `<h2 id="core-parameters">Core Parameters</h2>`)
	assert.Contains(t, params, `<meta name="description" content="All parameters">`)

	nested := readFile(t, filepath.Join(out, "dev", "Python-Intro.html"))
	assert.Contains(t, nested, `<script src="../_static/js/script.js"></script>`)
	assert.Contains(t, nested, `href="../index.html"`)

	assert.FileExists(t, filepath.Join(out, "_static", "js", "script.js"))
	assert.NoFileExists(t, filepath.Join(out, "_build", "html", "old.html"))
}

func TestBuild_Events(t *testing.T) {
	app, out := newTestApp(t, map[string]string{"index.md": "# Home\n"})
	var seen []string
	app.Connect(EventBuilderInited, func(_ context.Context, ev Event) error {
		seen = append(seen, string(ev.Name))
		_, err := os.Stat(filepath.Join(out, "index.html"))
		assert.True(t, os.IsNotExist(err), "builder-inited must run before pages are written")
		return nil
	})
	app.Connect(EventBuildFinished, func(_ context.Context, ev Event) error {
		seen = append(seen, string(ev.Name))
		assert.NoError(t, ev.Err)
		assert.FileExists(t, filepath.Join(out, "index.html"))
		return nil
	})

	_, err := app.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"builder-inited", "build-finished"}, seen)
}

func TestBuild_InitFailureSkipsFinished(t *testing.T) {
	app, out := newTestApp(t, map[string]string{"index.md": "# Home\n"})
	gen := errors.GeneratorError("An error has occurred while executing Doxygen").Build()
	finished := false
	app.Connect(EventBuilderInited, func(context.Context, Event) error { return gen })
	app.Connect(EventBuildFinished, func(context.Context, Event) error { finished = true; return nil })

	report, err := app.Build(context.Background())
	require.Error(t, err)
	assert.Same(t, gen, err)
	assert.False(t, finished)
	assert.Equal(t, metrics.BuildOutcomeFailed, report.Outcome)
	assert.NoFileExists(t, filepath.Join(out, "index.html"))
}

func TestBuild_FinishedListenerErrorFailsBuild(t *testing.T) {
	app, _ := newTestApp(t, map[string]string{"index.md": "# Home\n"})
	app.Connect(EventBuildFinished, func(context.Context, Event) error {
		return errors.FileSystemError("package documentation site not found").Build()
	})

	_, err := app.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestBuild_UnknownDirective(t *testing.T) {
	app, _ := newTestApp(t, map[string]string{
		"C-API.md": "---\ntitle: C API\n---\n# C API\n\n```{doxygenfile} c_api.h\n```\n",
	})
	var finishedErr error
	app.Connect(EventBuildFinished, func(_ context.Context, ev Event) error { finishedErr = ev.Err; return nil })

	_, err := app.Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownDirective)
	assert.True(t, errors.HasCategory(err, errors.CategoryDocs))
	assert.Same(t, err, finishedErr)

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, "doxygenfile", ce.Context()["directive"])
	assert.Equal(t, "C-API.md", ce.Context()["file"])
	assert.Equal(t, 6, ce.Context()["line"])
}

func TestBuild_DirectiveFragments(t *testing.T) {
	app, out := newTestApp(t, map[string]string{
		"C-API.md": "# C API\n\n```{doxygenfile} c_api.h\n:project: LightGBM\n```\n\nAfter.\n\n```{note}\n```\n\n```python\nimport lightgbm\n```\n",
	})
	var calls []DirectiveCall
	app.AddDirective("doxygenfile", DirectiveFunc(func(call DirectiveCall) ([]ast.Node, error) {
		calls = append(calls, call)
		return []ast.Node{NewFragment([]byte(fmt.Sprintf("<dl class=\"api\">%s</dl>\n", call.Args[0])))}, nil
	}))
	app.AddDirective("note", DirectiveFunc(func(DirectiveCall) ([]ast.Node, error) { return nil, nil }))

	_, err := app.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, calls, 1)
	assert.Equal(t, []string{"c_api.h"}, calls[0].Args)
	assert.Equal(t, ":project: LightGBM\n", string(calls[0].Content))
	assert.Equal(t, 3, calls[0].Line)

	page := readFile(t, filepath.Join(out, "C-API.html"))
	assert.Contains(t, page, `<dl class="api">c_api.h</dl>`)
	assert.Contains(t, page, "<p>After.</p>")
	assert.Contains(t, page, `<code class="language-python">`)
	assert.NotContains(t, page, "{doxygenfile}")
	assert.NotContains(t, page, "{note}")
}

func TestBuild_DirectiveError(t *testing.T) {
	app, _ := newTestApp(t, map[string]string{"index.md": "```{doxygenfile} missing.h\n```\n"})
	cause := stderrors.New("compound not found")
	app.AddDirective("doxygenfile", DirectiveFunc(func(DirectiveCall) ([]ast.Node, error) { return nil, cause }))

	_, err := app.Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDirectiveFailed)
	assert.ErrorIs(t, err, cause)
}

func TestBuild_Canceled(t *testing.T) {
	app, _ := newTestApp(t, map[string]string{"index.md": "# Home\n"})
	ctx, cancel := context.WithCancel(context.Background())
	app.Connect(EventBuilderInited, func(context.Context, Event) error { cancel(); return nil })

	report, err := app.Build(ctx)
	require.Error(t, err)
	assert.Equal(t, metrics.BuildOutcomeCanceled, report.Outcome)
}

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "Python Intro", titleFromPath("dev/Python-Intro.md", ".md"))
	assert.Equal(t, "C API", titleFromPath("C-API.md", ".md"))
	assert.Equal(t, "Index", titleFromPath("index.md", ".md"))
	assert.Equal(t, "Gpu Tutorial", titleFromPath("gpu_tutorial.md", ".md"))
}

func TestFirstHeading(t *testing.T) {
	assert.Equal(t, "Quick Start", firstHeading([]byte(`<p>x</p><h1 id="q">Quick <em>Start</em></h1><h1>Other</h1>`)))
	assert.Empty(t, firstHeading([]byte("<h2>Only h2</h2>")))
	assert.Equal(t, "Spaced", firstHeading([]byte("<h1> Spaced </h1>")))
}
