package engine

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
	"git.home.luguber.info/inful/docorch/internal/frontmatter"
	"git.home.luguber.info/inful/docorch/internal/fsutil"
	"git.home.luguber.info/inful/docorch/internal/logfields"
	"git.home.luguber.info/inful/docorch/internal/markdown"
	"git.home.luguber.info/inful/docorch/internal/observability"
)

//go:embed layout.html.tmpl
var layoutSource string

// StaticDir is the output subdirectory static files are copied into.
const StaticDir = "_static"

func parseLayout() (*template.Template, error) {
	return template.New("page").Option("missingkey=error").Parse(layoutSource)
}

type scriptRef struct {
	Src   string
	Type  string
	Async bool
	Defer bool
}

type pageData struct {
	Title       string
	Description string
	Content     template.HTML
	Site        SiteInfo
	Lang        string
	ThemeName   string
	Root        string
	Home        string
	Scripts     []scriptRef
	Commit      string
	Params      map[string]any
}

func (a *App) markdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(a.pipeline(), 0)),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(fragmentRenderer{}, 100)),
		),
	)
}

func (a *App) renderAll(ctx context.Context) ([]PageReport, error) {
	sources, err := a.discover()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(a.opts.OutputDir, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", a.opts.OutputDir).Build()
	}

	md := a.markdown()
	scripts := a.Scripts()
	pages := make([]PageReport, 0, len(sources))
	for _, rel := range sources {
		if err := ctx.Err(); err != nil {
			return pages, errors.WrapError(err, errors.CategoryRuntime, "build canceled").Build()
		}
		page, err := a.renderPage(md, scripts, rel)
		if err != nil {
			return pages, err
		}
		observability.DebugContext(ctx, "Rendered page", logfields.File(page.Source), logfields.Path(page.Output))
		pages = append(pages, page)
	}

	if err := a.copyStatic(); err != nil {
		return pages, err
	}
	return pages, nil
}

func (a *App) renderPage(md goldmark.Markdown, scripts []Script, rel string) (PageReport, error) {
	src, err := os.ReadFile(filepath.Join(a.opts.SourceDir, filepath.FromSlash(rel)))
	if err != nil {
		return PageReport{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to read source page").
			WithContext("file", rel).Build()
	}
	header, body, err := frontmatter.Split(src)
	if err != nil {
		return PageReport{}, errors.WrapError(err, errors.CategoryDocs, "invalid frontmatter").Fatal().
			WithContext("file", rel).Build()
	}
	meta, err := frontmatter.Parse(header)
	if err != nil {
		return PageReport{}, errors.WrapError(err, errors.CategoryDocs, "invalid frontmatter").Fatal().
			WithContext("file", rel).Build()
	}

	pc := parser.NewContext()
	pc.Set(pageKey, pageInfo{file: rel, lineOffset: bytes.Count(src[:len(src)-len(body)], []byte("\n"))})
	doc := md.Parser().Parse(text.NewReader(body), parser.WithContext(pc))
	if err := pageError(pc); err != nil {
		return PageReport{}, err
	}

	var content bytes.Buffer
	if err := md.Renderer().Render(&content, body, doc); err != nil {
		return PageReport{}, errors.WrapError(err, errors.CategoryDocs, "failed to render page").Fatal().
			WithContext("file", rel).Build()
	}

	title := meta.Title
	if title == "" {
		title = firstHeading(content.Bytes())
	}
	if title == "" {
		title = titleFromPath(rel, a.opts.SourceSuffix)
	}

	outRel := strings.TrimSuffix(rel, a.opts.SourceSuffix) + a.opts.OutputSuffix
	root := strings.Repeat("../", strings.Count(outRel, "/"))
	data := pageData{
		Title:       title,
		Description: meta.Description,
		Content:     template.HTML(content.String()), //nolint:gosec // trusted project sources
		Site:        a.opts.Site,
		Lang:        a.opts.Site.Language,
		ThemeName:   a.opts.Site.Theme.Name,
		Root:        root,
		Home:        a.homePage(),
		Scripts:     scriptRefs(root, scripts),
		Commit:      a.opts.Commit,
		Params:      meta.Params,
	}
	if data.Lang == "" {
		data.Lang = "en"
	}
	if data.ThemeName == "" {
		data.ThemeName = "default"
	}

	var out bytes.Buffer
	if err := a.layout.Execute(&out, data); err != nil {
		return PageReport{}, errors.WrapError(err, errors.CategoryDocs, "failed to apply page layout").Fatal().
			WithContext("file", rel).Build()
	}

	target := filepath.Join(a.opts.OutputDir, filepath.FromSlash(outRel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return PageReport{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to create page directory").
			WithContext("path", target).Build()
	}
	if err := os.WriteFile(target, out.Bytes(), 0o644); err != nil {
		return PageReport{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to write page").
			WithContext("path", target).Build()
	}

	report := PageReport{
		Source:      rel,
		Output:      outRel,
		Title:       title,
		Fingerprint: mdfp.CalculateFingerprintFromParts(string(header), string(body)),
	}
	for _, l := range markdown.ExtractLinks(body, markdown.Options{Extensions: []goldmark.Extender{extension.GFM}}) {
		switch l.Kind {
		case markdown.LinkKindImage:
			report.Images++
		case markdown.LinkKindReferenceDefinition:
		default:
			report.Links++
		}
	}
	return report, nil
}

func (a *App) homePage() string {
	master := a.opts.Site.MasterDoc
	if master == "" {
		master = "index"
	}
	return master + a.opts.OutputSuffix
}

func scriptRefs(root string, scripts []Script) []scriptRef {
	out := make([]scriptRef, 0, len(scripts))
	for _, s := range scripts {
		src := s.Path
		if !strings.Contains(src, "://") && !strings.HasPrefix(src, "/") {
			src = root + StaticDir + "/" + src
		}
		out = append(out, scriptRef{Src: src, Type: s.Type, Async: s.Async, Defer: s.Defer})
	}
	return out
}

// firstHeading returns the text of the first <h1> in a rendered fragment.
func firstHeading(fragment []byte) string {
	nodes, err := xhtml.ParseFragment(bytes.NewReader(fragment), &xhtml.Node{Type: xhtml.ElementNode, DataAtom: atom.Body, Data: "body"})
	if err != nil {
		return ""
	}
	for _, n := range nodes {
		if h := findElement(n, atom.H1); h != nil {
			return strings.TrimSpace(nodeText(h))
		}
	}
	return ""
}

func findElement(n *xhtml.Node, a atom.Atom) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *xhtml.Node) string {
	if n.Type == xhtml.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

// titleFromPath derives a title from a page's file name:
// "Python-Intro.md" becomes "Python Intro".
func titleFromPath(rel, suffix string) string {
	name := strings.TrimSuffix(path.Base(rel), suffix)
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English, cases.NoLower).String(name)
}

func (a *App) copyStatic() error {
	dst := filepath.Join(a.opts.OutputDir, StaticDir)
	for _, dir := range a.opts.StaticDirs {
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			slog.Warn("Static directory does not exist", logfields.Dir(dir))
			continue
		}
		if err != nil || !info.IsDir() {
			return errors.FileSystemError("static path is not a directory").WithContext("path", dir).Build()
		}
		if err := fsutil.CopyDir(dir, dst); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to copy static files").
				WithContext("path", dir).Build()
		}
	}
	return nil
}
