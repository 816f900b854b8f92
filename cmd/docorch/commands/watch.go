package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docorch/internal/config"
	"git.home.luguber.info/inful/docorch/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output      string        `short:"o" help:"Output directory (overrides paths.output_dir)"`
	Interval    time.Duration `help:"Also rebuild on this schedule (0 disables)" default:"0s"`
	Debounce    time.Duration `help:"Quiet period before a change triggers a rebuild" default:"300ms"`
	NoInitial   bool          `name:"no-initial" help:"Do not build before the first change"`
	MetricsFile string        `name:"metrics-file" help:"Write Prometheus metrics to this textfile after each build"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, w.Output)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := newSession(cfg, sessionOptions{
		Flags:       config.FlagsFromEnv(os.Getenv),
		MetricsFile: w.MetricsFile,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("Watching %s (press Ctrl+C to stop)\n", cfg.DocsPath())
	watcher := watch.New(func(ctx context.Context) error {
		_, err := s.Build(ctx)
		return err
	}, watch.Options{
		Roots:        []string{cfg.DocsPath()},
		Ignore:       []string{cfg.OutputPath(), cfg.MarkerPath(), cfg.APIOutputPath()},
		Debounce:     w.Debounce,
		Interval:     w.Interval,
		InitialBuild: !w.NoInitial,
	})
	return watcher.Run(ctx)
}
