package markdown

import (
	"regexp"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Default suffixes for source pages and rendered pages.
const (
	DefaultSourceSuffix = ".md"
	DefaultOutputSuffix = ".html"
)

// RefRewriter rewrites relative links to source pages so they point at the
// rendered page instead: "./a.md#x" becomes "./a.html#x" and "../b.md" becomes
// "../b.html".
//
// Only destinations whose path contains "./" and ends in the source suffix
// are touched. The anchor is carried over unchanged and the result never
// matches again, so running the rewriter twice is the same as running it once.
type RefRewriter struct {
	pattern      *regexp.Regexp
	outputSuffix string
}

var _ parser.ASTTransformer = (*RefRewriter)(nil)

// NewRefRewriter returns a rewriter mapping sourceSuffix to outputSuffix.
// Empty arguments fall back to the defaults.
func NewRefRewriter(sourceSuffix, outputSuffix string) *RefRewriter {
	if sourceSuffix == "" {
		sourceSuffix = DefaultSourceSuffix
	}
	if outputSuffix == "" {
		outputSuffix = DefaultOutputSuffix
	}
	return &RefRewriter{
		pattern:      regexp.MustCompile(`^([^#]*\./[^#]+?)(` + regexp.QuoteMeta(sourceSuffix) + `)(#.*)?$`),
		outputSuffix: outputSuffix,
	}
}

// RewriteURL returns u with its source suffix replaced, or u unchanged when
// it is not a relative reference to a source page.
func (r *RefRewriter) RewriteURL(u string) string {
	m := r.pattern.FindStringSubmatch(u)
	if m == nil {
		return u
	}
	return m[1] + r.outputSuffix + m[3]
}

// Transform rewrites the destination of every link in the document.
func (r *RefRewriter) Transform(doc *gmast.Document, _ text.Reader, _ parser.Context) {
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if link, ok := n.(*gmast.Link); ok {
			dest := string(link.Destination)
			if rewritten := r.RewriteURL(dest); rewritten != dest {
				link.Destination = []byte(rewritten)
			}
		}
		return gmast.WalkContinue, nil
	})
}
