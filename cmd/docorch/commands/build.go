package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docorch/internal/config"
	"git.home.luguber.info/inful/docorch/internal/docsetup"
	"git.home.luguber.info/inful/docorch/internal/engine"
	"git.home.luguber.info/inful/docorch/internal/generator"
	"git.home.luguber.info/inful/docorch/internal/gitinfo"
	"git.home.luguber.info/inful/docorch/internal/linkverify"
	"git.home.luguber.info/inful/docorch/internal/logfields"
	"git.home.luguber.info/inful/docorch/internal/metrics"
	"git.home.luguber.info/inful/docorch/internal/notify"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string   `short:"o" help:"Output directory (overrides paths.output_dir)"`
	VerifyLinks bool     `name:"verify-links" help:"Fail the build when rendered pages contain broken internal links"`
	SkipVerify  []string `name:"skip-verify" help:"Site path patterns excluded from link verification" default:"R/**"`
	MetricsFile string   `name:"metrics-file" help:"Write Prometheus metrics to this textfile after the build"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, b.Output)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Println("Starting documentation build")
	s, err := newSession(cfg, sessionOptions{
		Flags:       config.FlagsFromEnv(os.Getenv),
		VerifyLinks: b.VerifyLinks,
		SkipVerify:  b.SkipVerify,
		MetricsFile: b.MetricsFile,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.Build(ctx)
	if err != nil {
		fmt.Println("Build failed")
		return err
	}
	fmt.Printf("Built %d pages into %s\n", len(report.Pages), cfg.OutputPath())
	return nil
}

type sessionOptions struct {
	Flags       config.Flags
	VerifyLinks bool
	SkipVerify  []string
	MetricsFile string
	// Executor runs the external generators; nil uses os/exec.
	Executor generator.Executor
}

// session holds what outlives a single build: metrics, the notifier and the
// source commit. Each Build gets a fresh engine so that the first-run marker
// is re-read every time.
type session struct {
	cfg      *config.Config
	opts     sessionOptions
	recorder metrics.Recorder
	gatherer prom.Gatherer
	notifier *notify.Notifier
	verifier *linkverify.Verifier
	commit   string
	version  string
}

func newSession(cfg *config.Config, opts sessionOptions) (*session, error) {
	s := &session{cfg: cfg, opts: opts, recorder: metrics.NoopRecorder{}}

	metricsFile := opts.MetricsFile
	if metricsFile == "" {
		metricsFile = cfg.Metrics.Textfile
	}
	s.opts.MetricsFile = metricsFile
	if metricsFile != "" {
		pr := metrics.NewPrometheusRecorder(prom.NewRegistry())
		s.recorder = pr
		s.gatherer = pr.Registry()
	}

	if opts.VerifyLinks {
		s.verifier = linkverify.New(linkverify.Options{Skip: opts.SkipVerify, CheckFragments: true})
	}

	if cfg.Notify.NATSURL != "" {
		n, err := notify.Connect(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			return nil, err
		}
		s.notifier = n
	}

	if c, ok, err := gitinfo.Head(cfg.RepoRootPath()); err != nil {
		slog.Warn("Could not read source commit", logfields.Error(err))
	} else if ok {
		s.commit = c.Short
	}

	v, err := cfg.ReadVersion()
	if err != nil {
		slog.Warn("Project version unknown", logfields.Error(err))
	}
	s.version = v
	return s, nil
}

func (s *session) Close() {
	if s.notifier != nil {
		s.notifier.Close()
	}
}

// newApp configures a fresh engine and registers the lifecycle hooks.
func (s *session) newApp() (*engine.App, *docsetup.Plan, error) {
	cfg := s.cfg
	app, err := engine.New(engine.Options{
		SourceDir:       cfg.DocsPath(),
		OutputDir:       cfg.OutputPath(),
		SourceSuffix:    cfg.Engine.SourceSuffix,
		OutputSuffix:    cfg.Engine.OutputSuffix,
		ExcludePatterns: cfg.Engine.ExcludePatterns,
		StaticDirs:      cfg.StaticPaths(),
		NeedsVersion:    cfg.Engine.NeedsVersion,
		Site: engine.SiteInfo{
			Project:   cfg.Project.Name,
			Version:   s.version,
			Release:   s.version,
			Copyright: cfg.Copyright(time.Now()),
			Language:  cfg.Project.Language,
			MasterDoc: cfg.Project.MasterDoc,
			Theme: engine.ThemeInfo{
				Name:    cfg.Theme.Name,
				Logo:    cfg.Theme.Logo,
				Favicon: cfg.Theme.Favicon,
				Options: cfg.Theme.Options,
			},
		},
		Commit:   s.commit,
		Recorder: s.recorder,
	})
	if err != nil {
		return nil, nil, err
	}

	invoker := generator.NewInvoker(s.opts.Executor, s.recorder)
	plan, err := docsetup.New(docsetup.OptionsFromConfig(cfg, s.opts.Flags, invoker)).Register(app)
	if err != nil {
		return nil, nil, err
	}
	if s.verifier != nil {
		app.Connect(engine.EventBuildFinished, s.verifier.Listener())
	}
	if s.notifier != nil {
		app.Connect(engine.EventBuildFinished, s.notifier.Listener())
	}
	return app, plan, nil
}

// Build runs one complete build and exports metrics when configured.
func (s *session) Build(ctx context.Context) (*engine.Report, error) {
	app, _, err := s.newApp()
	if err != nil {
		return nil, err
	}
	report, err := app.Build(ctx)
	if s.gatherer != nil {
		if werr := metrics.WriteTextfile(s.opts.MetricsFile, s.gatherer); werr != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(s.opts.MetricsFile), logfields.Error(werr))
		}
	}
	return report, err
}
