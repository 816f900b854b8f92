package apidoc

import (
	"encoding/xml"
	"strings"
)

type doxygenIndex struct {
	Compounds []indexCompound `xml:"compound"`
}

type indexCompound struct {
	RefID string `xml:"refid,attr"`
	Kind  string `xml:"kind,attr"`
	Name  string `xml:"name"`
}

type compoundFile struct {
	Def compoundDef `xml:"compounddef"`
}

type compoundDef struct {
	ID       string       `xml:"id,attr"`
	Kind     string       `xml:"kind,attr"`
	Name     string       `xml:"compoundname"`
	Brief    richText     `xml:"briefdescription"`
	Detailed richText     `xml:"detaileddescription"`
	Sections []sectionDef `xml:"sectiondef"`
}

type sectionDef struct {
	Kind    string      `xml:"kind,attr"`
	Members []memberDef `xml:"memberdef"`
}

type memberDef struct {
	Kind        string      `xml:"kind,attr"`
	ID          string      `xml:"id,attr"`
	Name        string      `xml:"name"`
	Type        richText    `xml:"type"`
	Definition  string      `xml:"definition"`
	ArgsString  string      `xml:"argsstring"`
	Initializer richText    `xml:"initializer"`
	Params      []param     `xml:"param"`
	EnumValues  []enumValue `xml:"enumvalue"`
	Brief       richText    `xml:"briefdescription"`
	Detailed    richText    `xml:"detaileddescription"`
}

type param struct {
	DefName  string   `xml:"defname"`
	Type     richText `xml:"type"`
	DeclName string   `xml:"declname"`
}

type enumValue struct {
	Name        string   `xml:"name"`
	Initializer richText `xml:"initializer"`
	Brief       richText `xml:"briefdescription"`
}

// richText flattens doxygen's mixed-content markup (para, ref, computeroutput,
// simplesect) into plain text. Paragraphs are separated by a blank line.
type richText string

func (t *richText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case xml.StartElement:
			depth++
			if v.Name.Local == "para" && sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
		case xml.EndElement:
			if depth == 0 {
				*t = richText(normalizeSpace(sb.String()))
				return nil
			}
			depth--
		case xml.CharData:
			sb.Write(v)
		}
	}
}

func (t richText) String() string { return string(t) }

// normalizeSpace collapses runs of blanks inside each paragraph.
func normalizeSpace(s string) string {
	paras := strings.Split(s, "\n\n")
	out := make([]string, 0, len(paras))
	for _, p := range paras {
		if f := strings.Fields(p); len(f) > 0 {
			out = append(out, strings.Join(f, " "))
		}
	}
	return strings.Join(out, "\n\n")
}
