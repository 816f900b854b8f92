package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docorch/internal/config"
	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
)

// EnvLogLevel overrides the log level when --verbose is not given.
const EnvLogLevel = "DOCORCH_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docorch.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build       BuildCmd   `cmd:"" help:"Build the documentation once"`
	Watch       WatchCmd   `cmd:"" help:"Rebuild the documentation on change or on a schedule"`
	Init        InitCmd    `cmd:"" help:"Write an example configuration file"`
	Doctor      DoctorCmd  `cmd:"" help:"Check that the external generators are installed"`
	VersionInfo VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose, os.Getenv)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel prefers --verbose, then DOCORCH_LOG_LEVEL, then info.
func parseLogLevel(verbose bool, getenv func(string) string) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(getenv(EnvLogLevel))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig loads the configuration and applies an output override.
func loadConfig(root *CLI, output string) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if output != "" {
		abs, err := filepath.Abs(output)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "resolve output directory").Build()
		}
		cfg.Paths.OutputDir = abs
	}
	return cfg, nil
}
