//go:build property
// +build property

package markdown

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestRefRewriterProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)
	r := NewRefRewriter(".md", ".html")

	pathGen := gen.OneGenOf(
		gen.RegexMatch(`^\./[a-zA-Z0-9_/.-]{1,24}$`),
		gen.RegexMatch(`^(\.\./){1,3}[a-zA-Z0-9_/.-]{1,24}$`),
	)
	anchorGen := gen.OneGenOf(gen.Const(""), gen.RegexMatch(`^#[a-zA-Z0-9_.#-]{0,12}$`))

	properties.Property("rewriting twice equals rewriting once", prop.ForAll(
		func(path, anchor string) bool {
			u := path + ".md" + anchor
			once := r.RewriteURL(u)
			return r.RewriteURL(once) == once
		},
		pathGen, anchorGen,
	))

	properties.Property("anchor is preserved exactly", prop.ForAll(
		func(path, anchor string) bool {
			if strings.Contains(path, "#") {
				return true
			}
			got := r.RewriteURL(path + ".md" + anchor)
			return got == path+".html"+anchor
		},
		pathGen, anchorGen,
	))

	properties.Property("urls without the suffix are untouched", prop.ForAll(
		func(u string) bool {
			base := u
			if i := strings.IndexByte(u, '#'); i >= 0 {
				base = u[:i]
			}
			if strings.Contains(base, "./") && strings.HasSuffix(base, ".md") {
				return true
			}
			return r.RewriteURL(u) == u
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
