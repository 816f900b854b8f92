package generator

import (
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
)

// execLookPath is replaced in tests.
var execLookPath = exec.LookPath

// ToolRequirement describes an executable a build may need.
type ToolRequirement struct {
	// Name is the primary binary name or path.
	Name string
	// Alternatives satisfy the requirement when Name is missing.
	Alternatives []string
	// Optional tools are reported but never fail the check.
	Optional bool
	// Purpose says why the tool is needed.
	Purpose string
}

// ToolStatus is the result of checking one requirement.
type ToolStatus struct {
	Requirement ToolRequirement
	// Path is where the tool was found; empty when missing.
	Path string
}

// Found reports whether the requirement was satisfied.
func (s ToolStatus) Found() bool { return s.Path != "" }

// CheckTools looks up every requirement on PATH. The statuses are always
// returned; the error lists every missing required tool.
func CheckTools(reqs []ToolRequirement) ([]ToolStatus, error) {
	statuses := make([]ToolStatus, 0, len(reqs))
	var missing []string
	for _, req := range reqs {
		st := ToolStatus{Requirement: req}
		for _, name := range append([]string{req.Name}, req.Alternatives...) {
			if p, err := execLookPath(name); err == nil {
				st.Path = p
				break
			}
		}
		statuses = append(statuses, st)
		if !st.Found() && !req.Optional {
			entry := req.Name
			if req.Purpose != "" {
				entry += " (" + req.Purpose + ")"
			}
			missing = append(missing, entry)
		}
	}
	if len(missing) > 0 {
		return statuses, errors.NewError(errors.CategoryGenerator, "missing required tools: "+strings.Join(missing, ", ")).
			Fatal().WithHint("install the missing tools, or run docorch doctor --all for details").
			WithContext("missing", len(missing)).Build()
	}
	return statuses, nil
}
