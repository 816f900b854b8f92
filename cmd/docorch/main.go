package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docorch/cmd/docorch/commands"
	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
	"git.home.luguber.info/inful/docorch/internal/version"
)

func main() {
	var cli commands.CLI
	parser := kong.Parse(&cli,
		kong.Name("docorch"),
		kong.Description("Build project documentation and orchestrate its external generators."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	err := parser.Run(&commands.Global{Logger: slog.Default()}, &cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
