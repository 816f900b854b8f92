package markdown

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

func TestRefRewriter_RewriteURL(t *testing.T) {
	r := NewRefRewriter("", "")
	cases := []struct {
		in   string
		want string
	}{
		{"./Python-Intro.md", "./Python-Intro.html"},
		{"./Python-Intro.md#install", "./Python-Intro.html#install"},
		{"./dir/Page.md#a.md", "./dir/Page.html#a.md"},
		{"./Page.md#", "./Page.html#"},
		{"./Page.md.md", "./Page.md.html"},
		{"https://example.com/a.md", "https://example.com/a.md"},
		{"Page.md", "Page.md"},
		{"../Page.md", "../Page.html"},
		{"../Parameters.md#core", "../Parameters.html#core"},
		{"../../api/Index.md#x.md", "../../api/Index.html#x.md"},
		{"docs/./Page.md", "docs/./Page.html"},
		{"dir/Page.md", "dir/Page.md"},
		{"./.md", "./.md"},
		{"#section", "#section"},
		{"./Page.txt", "./Page.txt"},
		{"./Page.mdx", "./Page.mdx"},
		{"./Page.html#x", "./Page.html#x"},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, r.RewriteURL(tc.in))
		})
	}
}

func TestRefRewriter_CustomSuffix(t *testing.T) {
	r := NewRefRewriter(".rst", ".html")
	assert.Equal(t, "./Installation-Guide.html#linux", r.RewriteURL("./Installation-Guide.rst#linux"))
	assert.Equal(t, "../Parameters.html#core", r.RewriteURL("../Parameters.rst#core"))
	assert.Equal(t, "./Installation-Guide.md", r.RewriteURL("./Installation-Guide.md"))
	// The dot is literal, not a wildcard.
	assert.Equal(t, "./Guide_rst", r.RewriteURL("./Guide_rst"))
}

func TestRefRewriter_Idempotent(t *testing.T) {
	r := NewRefRewriter(".md", ".html")
	for _, u := range []string{"./a.md", "./a.md#b", "./x/y.md#z.md", "./q.md.md", "../a.md#b", "../../x/q.md.md"} {
		once := r.RewriteURL(u)
		assert.Equal(t, once, r.RewriteURL(once), u)
	}
}

func render(t *testing.T, src string, transformers ...util.PrioritizedValue) string {
	t.Helper()
	md := goldmark.New(goldmark.WithParserOptions(parser.WithASTTransformers(transformers...)))
	var buf bytes.Buffer
	require.NoError(t, md.Convert([]byte(src), &buf))
	return buf.String()
}

func TestRefRewriter_Transform(t *testing.T) {
	rw := util.Prioritized(NewRefRewriter(".md", ".html"), 210)
	src := "See [params](./Parameters.md#core-parameters), [ref][r], [up](../README.md#build) and [site](https://lightgbm.readthedocs.io/index.md).\n\n" +
		"[r]: ./FAQ.md\n\n" +
		"`[code](./Code.md)`\n"

	out := render(t, src, rw)
	assert.Contains(t, out, `href="./Parameters.html#core-parameters"`)
	assert.Contains(t, out, `href="./FAQ.html"`)
	assert.Contains(t, out, `href="../README.html#build"`)
	assert.Contains(t, out, `href="https://lightgbm.readthedocs.io/index.md"`)
	assert.Contains(t, out, "<code>[code](./Code.md)</code>")
}

func TestRefRewriter_LeavesImagesAlone(t *testing.T) {
	out := render(t, "![diagram](./diagram.md)\n", util.Prioritized(NewRefRewriter("", ""), 210))
	assert.Contains(t, out, `src="./diagram.md"`)
}
