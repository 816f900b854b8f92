package linkverify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/docorch/internal/engine"
	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
	"git.home.luguber.info/inful/docorch/internal/logfields"
	"git.home.luguber.info/inful/docorch/internal/observability"
)

// BrokenLink is an internal link whose target does not exist in the
// rendered site.
type BrokenLink struct {
	Page   string `json:"page"` // Page path relative to the site root
	URL    string `json:"url"`
	Tag    string `json:"tag"`
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (b BrokenLink) String() string {
	return fmt.Sprintf("%s:%d: %s (%s)", b.Page, b.Line, b.URL, b.Reason)
}

// Result summarises one verification run.
type Result struct {
	Pages   int          `json:"pages"`
	Checked int          `json:"checked"`
	Broken  []BrokenLink `json:"broken,omitempty"`
}

// Options configure a Verifier.
type Options struct {
	// Skip holds doublestar patterns of site paths whose links are not
	// checked, e.g. "R/**" for a site copied in from elsewhere.
	Skip []string
	// CheckFragments also requires "#anchor" targets to exist.
	CheckFragments bool
}

// Verifier checks the internal links of a rendered site.
type Verifier struct {
	opts Options
}

// New returns a Verifier.
func New(opts Options) *Verifier {
	return &Verifier{opts: opts}
}

type page struct {
	links []*Link
	ids   map[string]bool
}

// Verify walks every HTML page under root and reports links to missing files
// or anchors.
func (v *Verifier) Verify(ctx context.Context, root string) (*Result, error) {
	pages, err := doublestar.Glob(os.DirFS(root), "**/*.html", doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to list rendered pages").
			WithContext("root", root).Build()
	}
	sort.Strings(pages)

	cache := map[string]*page{}
	load := func(rel string) (*page, error) {
		if p, ok := cache[rel]; ok {
			return p, nil
		}
		f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open HTML file").
				WithContext("html_path", rel).Build()
		}
		defer func() { _ = f.Close() }()
		links, ids, err := extract(f)
		if err != nil {
			return nil, err
		}
		p := &page{links: links, ids: ids}
		cache[rel] = p
		return p, nil
	}

	res := &Result{}
	for _, rel := range pages {
		if err := ctx.Err(); err != nil {
			return res, errors.WrapError(err, errors.CategoryRuntime, "link verification canceled").Build()
		}
		if v.skipped(rel) {
			continue
		}
		p, err := load(rel)
		if err != nil {
			return res, err
		}
		res.Pages++
		for _, link := range p.links {
			if !ShouldVerifyLink(link) {
				continue
			}
			res.Checked++
			if reason := v.check(root, rel, link, load); reason != "" {
				res.Broken = append(res.Broken, BrokenLink{
					Page: rel, URL: link.URL, Tag: link.Tag, Line: link.Line, Reason: reason,
				})
			}
		}
	}

	observability.InfoContext(ctx, "Verified internal links",
		logfields.Dir(root),
		slog.Int("pages", res.Pages),
		slog.Int("checked", res.Checked),
		slog.Int("broken", len(res.Broken)))
	return res, nil
}

// check returns why link is broken, or "" when it resolves.
func (v *Verifier) check(root, from string, link *Link, load func(string) (*page, error)) string {
	u, err := url.Parse(link.URL)
	if err != nil {
		return "unparseable URL"
	}

	target := from
	if u.Path != "" {
		if strings.HasPrefix(u.Path, "/") {
			target = strings.TrimPrefix(path.Clean(u.Path), "/")
		} else {
			target = path.Join(path.Dir(from), u.Path)
		}
		if target == ".." || strings.HasPrefix(target, "../") {
			return "points outside the site"
		}
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(target)))
		if err != nil {
			return "target not found"
		}
		if info.IsDir() {
			target = path.Join(target, "index.html")
			if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(target))); err != nil {
				return "directory has no index.html"
			}
		}
	}

	if !v.opts.CheckFragments || u.Fragment == "" || !strings.HasSuffix(target, ".html") {
		return ""
	}
	p, err := load(target)
	if err != nil {
		return "target unreadable"
	}
	if !p.ids[u.Fragment] {
		return "anchor not found"
	}
	return ""
}

func (v *Verifier) skipped(rel string) bool {
	for _, pattern := range v.opts.Skip {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Listener returns a build-finished listener that verifies the output of a
// successful build and fails it when links are broken.
func (v *Verifier) Listener() engine.Listener {
	return func(ctx context.Context, ev engine.Event) error {
		if ev.Err != nil || ev.App == nil {
			return nil
		}
		res, err := v.Verify(ctx, ev.App.OutputDir())
		if err != nil {
			return err
		}
		return res.Err()
	}
}

// Err returns a docs error listing the broken links, or nil.
func (r *Result) Err() error {
	if r == nil || len(r.Broken) == 0 {
		return nil
	}
	lines := make([]string, 0, len(r.Broken))
	for _, b := range r.Broken {
		lines = append(lines, b.String())
	}
	return errors.DocsError(fmt.Sprintf("%d broken internal links:\n%s", len(r.Broken), strings.Join(lines, "\n"))).
		WithContext("broken", len(r.Broken)).Build()
}
