package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docorch/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (VersionCmd) Run(_ *Global, _ *CLI) error {
	fmt.Printf("docorch %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	fmt.Printf("document engine %s\n", version.Engine)
	return nil
}
