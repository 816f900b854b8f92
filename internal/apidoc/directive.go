package apidoc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/docorch/internal/engine"
	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
)

// Options configure the directive.
type Options struct {
	// XMLDir holds index.xml and the per-compound files.
	XMLDir  string
	Project string
	// DomainByExtension maps a file extension (without dot) to the language
	// domain used in CSS classes. Unmapped extensions use "cpp".
	DomainByExtension map[string]string
	// IDAttributes are export macros stripped from signatures.
	IDAttributes          []string
	ShowDefineInitializer bool
}

// Directive implements engine.Directive for doxygenfile.
type Directive struct {
	opts Options

	mu    sync.Mutex
	index *doxygenIndex
}

var _ engine.Directive = (*Directive)(nil)

// NewDirective returns a directive reading from opts.XMLDir. The XML is read
// lazily on first use, after the symbol extractor has run.
func NewDirective(opts Options) *Directive {
	return &Directive{opts: opts}
}

// Run renders the reference section for the file named by the first argument.
func (d *Directive) Run(call engine.DirectiveCall) ([]ast.Node, error) {
	if len(call.Args) == 0 {
		return nil, errors.DocsError(call.Name + " needs a file name argument").Build()
	}
	file := call.Args[0]
	if project := option(call.Content, "project"); project != "" && d.opts.Project != "" && project != d.opts.Project {
		return nil, errors.DocsError(fmt.Sprintf("unknown API documentation project %q", project)).
			WithContext("project", d.opts.Project).Build()
	}

	def, err := d.compound(file)
	if err != nil {
		return nil, err
	}
	html, err := d.render(file, def)
	if err != nil {
		return nil, err
	}
	return []ast.Node{engine.NewFragment(html)}, nil
}

func (d *Directive) loadIndex() (*doxygenIndex, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.index != nil {
		return d.index, nil
	}
	p := filepath.Join(d.opts.XMLDir, "index.xml")
	var idx doxygenIndex
	if err := decodeFile(p, &idx); err != nil {
		return nil, err
	}
	d.index = &idx
	return d.index, nil
}

func (d *Directive) compound(file string) (*compoundDef, error) {
	idx, err := d.loadIndex()
	if err != nil {
		return nil, err
	}
	want := path.Clean(filepath.ToSlash(file))
	for _, c := range idx.Compounds {
		if c.Kind != "file" {
			continue
		}
		if c.Name == want || strings.HasSuffix(c.Name, "/"+want) || strings.HasSuffix(want, "/"+c.Name) {
			var cf compoundFile
			if err := decodeFile(filepath.Join(d.opts.XMLDir, c.RefID+".xml"), &cf); err != nil {
				return nil, err
			}
			return &cf.Def, nil
		}
	}
	return nil, errors.DocsError(fmt.Sprintf("file %q not found in API documentation", file)).
		WithContext("dir", d.opts.XMLDir).Build()
}

func decodeFile(p string, v any) error {
	data, err := os.ReadFile(filepath.Clean(p))
	if err != nil {
		return errors.WrapError(err, errors.CategoryDocs, "API documentation XML not found").Fatal().
			WithContext("path", p).Build()
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return errors.WrapError(err, errors.CategoryDocs, "invalid API documentation XML").Fatal().
			WithContext("path", p).Build()
	}
	return nil
}

// option reads ":name: value" lines from a directive body.
func option(content []byte, name string) string {
	prefix := ":" + name + ":"
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}

func (d *Directive) domain(file string) string {
	ext := strings.TrimPrefix(path.Ext(file), ".")
	if dom, ok := d.opts.DomainByExtension[ext]; ok && dom != "" {
		return dom
	}
	return "cpp"
}

// stripAttributes removes export macros from a declaration.
func (d *Directive) stripAttributes(decl string) string {
	if len(d.opts.IDAttributes) == 0 {
		return strings.Join(strings.Fields(decl), " ")
	}
	words := strings.Fields(decl)
	out := words[:0]
	for _, w := range words {
		drop := false
		for _, attr := range d.opts.IDAttributes {
			if w == attr {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

func (d *Directive) render(file string, def *compoundDef) ([]byte, error) {
	view := fileView{
		Domain:  d.domain(file),
		Project: d.opts.Project,
		File:    def.Name,
		Brief:   def.Brief.String(),
	}
	for _, kind := range []struct{ section, title, class string }{
		{"define", "Defines", "macro"},
		{"typedef", "Typedefs", "type"},
		{"enum", "Enums", "enum"},
		{"func", "Functions", "function"},
	} {
		s := sectionView{Title: kind.title, Class: kind.class}
		for _, sec := range def.Sections {
			if sec.Kind != kind.section {
				continue
			}
			for _, m := range sec.Members {
				s.Members = append(s.Members, d.member(m))
			}
		}
		if len(s.Members) > 0 {
			view.Sections = append(view.Sections, s)
		}
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, view); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to render API documentation").Build()
	}
	return buf.Bytes(), nil
}

func (d *Directive) member(m memberDef) memberView {
	mv := memberView{
		ID:       m.Name,
		Brief:    m.Brief.String(),
		Detailed: m.Detailed.String(),
	}
	switch m.Kind {
	case "define":
		sig := m.Name
		if len(m.Params) > 0 {
			names := make([]string, 0, len(m.Params))
			for _, p := range m.Params {
				names = append(names, p.DefName)
			}
			sig += "(" + strings.Join(names, ", ") + ")"
		}
		if d.opts.ShowDefineInitializer && m.Initializer != "" {
			sig += " " + m.Initializer.String()
		}
		mv.Signature = sig
	case "enum":
		mv.Signature = "enum " + m.Name
		for _, v := range m.EnumValues {
			mv.Values = append(mv.Values, enumValueView{
				Name:        v.Name,
				Initializer: v.Initializer.String(),
				Brief:       v.Brief.String(),
			})
		}
	default:
		decl := m.Definition
		if decl == "" {
			decl = m.Type.String() + " " + m.Name
		}
		mv.Signature = d.stripAttributes(decl) + m.ArgsString
	}
	return mv
}

type fileView struct {
	Domain   string
	Project  string
	File     string
	Brief    string
	Sections []sectionView
}

type sectionView struct {
	Title   string
	Class   string
	Members []memberView
}

type memberView struct {
	ID        string
	Signature string
	Brief     string
	Detailed  string
	Values    []enumValueView
}

type enumValueView struct {
	Name        string
	Initializer string
	Brief       string
}

var fileTemplate = template.Must(template.New("apidoc").Parse(`<div class="apidoc {{.Domain}}"{{with .Project}} data-project="{{.}}"{{end}}>
{{- with .Brief}}
<p class="brief">{{.}}</p>
{{- end}}
{{- range .Sections}}
<h2>{{.Title}}</h2>
<dl class="{{$.Domain}} {{.Class}}">
{{- range .Members}}
<dt id="{{.ID}}"><code class="sig">{{.Signature}}</code></dt>
<dd>
{{- with .Brief}}<p>{{.}}</p>{{end}}
{{- with .Detailed}}<p>{{.}}</p>{{end}}
{{- with .Values}}
<ul>
{{- range .}}
<li><code>{{.Name}}{{with .Initializer}} {{.}}{{end}}</code>{{with .Brief}} {{.}}{{end}}</li>
{{- end}}
</ul>
{{- end}}
</dd>
{{- end}}
</dl>
{{- end}}
</div>
`))
