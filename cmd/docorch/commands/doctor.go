package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/docorch/internal/config"
	"git.home.luguber.info/inful/docorch/internal/generator"
)

// DoctorCmd implements the 'doctor' command.
type DoctorCmd struct {
	All bool `help:"Check every tool regardless of C_API and READTHEDOCS"`
}

func (d *DoctorCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	flags := config.FlagsFromEnv(os.Getenv)
	if d.All {
		flags = config.Flags{CAPIEnabled: true, Hosted: true}
	}
	return runDoctor(os.Stdout, toolRequirements(cfg, flags))
}

// toolRequirements lists the executables the enabled generators call.
func toolRequirements(cfg *config.Config, flags config.Flags) []generator.ToolRequirement {
	var reqs []generator.ToolRequirement
	if flags.CAPIEnabled {
		reqs = append(reqs, generator.ToolRequirement{Name: cfg.Generators.Doxygen, Purpose: "C API symbol extraction"})
	}
	if flags.Hosted {
		reqs = append(reqs,
			generator.ToolRequirement{Name: cfg.Generators.Shell, Purpose: "R package documentation script"},
			generator.ToolRequirement{Name: "R", Purpose: "R package install"},
			generator.ToolRequirement{Name: "Rscript", Purpose: "roxygen2 and pkgdown"},
			generator.ToolRequirement{Name: cfg.PackageDocs.Tar, Alternatives: []string{"tar"}, Purpose: "R package tarball"},
		)
	}
	return reqs
}

func runDoctor(out io.Writer, reqs []generator.ToolRequirement) error {
	if len(reqs) == 0 {
		fmt.Fprintln(out, "No external generators enabled")
		return nil
	}
	statuses, err := generator.CheckTools(reqs)
	for _, st := range statuses {
		if st.Found() {
			fmt.Fprintf(out, "ok       %-10s %s\n", st.Requirement.Name, st.Path)
		} else {
			fmt.Fprintf(out, "missing  %-10s %s\n", st.Requirement.Name, st.Requirement.Purpose)
		}
	}
	return err
}
