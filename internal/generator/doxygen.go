package generator

import (
	"fmt"
	"strings"
)

// DoxygenFailure is the headline of a failed symbol extraction.
const DoxygenFailure = "An error has occurred while executing Doxygen"

// DoxygenParams configures a symbol extraction run producing XML only.
type DoxygenParams struct {
	// Input is the C header to document.
	Input string
	// OutputDir receives the XML subdirectory.
	OutputDir string
	// XMLSubdir is the XML directory name below OutputDir.
	XMLSubdir string
	// Predefined macros seen by the preprocessor.
	Predefined []string
}

// Lines returns the parameter block, one KEY=VALUE per line.
func (p DoxygenParams) Lines() []string {
	xml := p.XMLSubdir
	if xml == "" {
		xml = "xml"
	}
	predefined := p.Predefined
	if predefined == nil {
		predefined = []string{"__cplusplus"}
	}
	return []string{
		"INPUT=" + p.Input,
		"OUTPUT_DIRECTORY=" + p.OutputDir,
		"GENERATE_HTML=NO",
		"GENERATE_LATEX=NO",
		"GENERATE_XML=YES",
		"XML_OUTPUT=" + xml,
		"XML_PROGRAMLISTING=YES",
		`ALIASES="rst=\verbatim embed:rst:leading-asterisk"`,
		`ALIASES+="endrst=\endverbatim"`,
		"ENABLE_PREPROCESSING=YES",
		"MACRO_EXPANSION=YES",
		"EXPAND_ONLY_PREDEF=NO",
		"SKIP_FUNCTION_MACROS=NO",
		"PREDEFINED=" + strings.Join(predefined, " "),
		"SORT_BRIEF_DOCS=YES",
		"WARN_AS_ERROR=YES",
	}
}

// Block joins Lines with newlines, ready for the child's stdin.
func (p DoxygenParams) Block() string {
	return strings.Join(p.Lines(), "\n")
}

// DoxygenInvocation runs binary with the configuration read from stdin.
func DoxygenInvocation(binary string, p DoxygenParams) (Invocation, error) {
	for name, v := range map[string]string{"input": p.Input, "output directory": p.OutputDir, "xml subdirectory": p.XMLSubdir} {
		if strings.ContainsAny(v, "\r\n") {
			return Invocation{}, invalidParam("doxygen", name, v)
		}
	}
	if binary == "" {
		binary = "doxygen"
	}
	return Invocation{
		Name:           "doxygen",
		FailureMessage: DoxygenFailure,
		EnsureDirs:     []string{p.OutputDir},
		Spec: ProcessSpec{
			Name:  "doxygen",
			Path:  binary,
			Args:  []string{"-"},
			Stdin: p.Block(),
		},
	}, nil
}

func invalidParam(generator, name, value string) error {
	return validationError(fmt.Sprintf("%s parameter %s must be a single line", generator, name), value)
}
