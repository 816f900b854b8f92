package engine

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/blang/semver/v4"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
	"git.home.luguber.info/inful/docorch/internal/logfields"
	"git.home.luguber.info/inful/docorch/internal/metrics"
	"git.home.luguber.info/inful/docorch/internal/observability"
	"git.home.luguber.info/inful/docorch/internal/version"
)

// Default page suffixes.
const (
	DefaultSourceSuffix = ".md"
	DefaultOutputSuffix = ".html"
)

// SiteInfo is project metadata exposed to the page layout.
type SiteInfo struct {
	Project   string
	Version   string
	Release   string
	Copyright string
	Language  string
	MasterDoc string
	Theme     ThemeInfo
}

// ThemeInfo is passed through to the page layout.
type ThemeInfo struct {
	Name    string
	Logo    string
	Favicon string
	Options map[string]any
}

// Options configure an App.
type Options struct {
	SourceDir       string
	OutputDir       string
	SourceSuffix    string
	OutputSuffix    string
	ExcludePatterns []string
	StaticDirs      []string
	// NeedsVersion is the minimum engine version the project requires.
	NeedsVersion string
	Site         SiteInfo
	// Commit is the source revision shown in page footers, if known.
	Commit   string
	Recorder metrics.Recorder
}

// App is one configured engine instance.
type App struct {
	opts     Options
	events   *Events
	layout   *template.Template
	recorder metrics.Recorder

	mu         sync.Mutex
	transforms map[string]transformEntry
	directives map[string]Directive
	scripts    []Script

	buildMu sync.Mutex
}

// New validates opts and returns an App. The directive resolver is registered
// as a transform at DirectivePriority.
func New(opts Options) (*App, error) {
	if opts.SourceDir == "" {
		return nil, errors.ConfigError("engine source directory is required").Build()
	}
	if opts.OutputDir == "" {
		return nil, errors.ConfigError("engine output directory is required").Build()
	}
	if err := checkNeedsVersion(opts.NeedsVersion); err != nil {
		return nil, err
	}
	if opts.SourceSuffix == "" {
		opts.SourceSuffix = DefaultSourceSuffix
	}
	if opts.OutputSuffix == "" {
		opts.OutputSuffix = DefaultOutputSuffix
	}

	var err error
	if opts.SourceDir, err = filepath.Abs(opts.SourceDir); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "resolve source directory").Fatal().Build()
	}
	if opts.OutputDir, err = filepath.Abs(opts.OutputDir); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "resolve output directory").Fatal().Build()
	}

	layout, err := parseLayout()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "parse page layout").Fatal().Build()
	}

	a := &App{
		opts:       opts,
		events:     NewEvents(),
		layout:     layout,
		recorder:   metrics.OrNoop(opts.Recorder),
		transforms: make(map[string]transformEntry),
		directives: make(map[string]Directive),
	}
	a.AddTransform("directives", &directiveResolver{lookup: a.Directive}, DirectivePriority)
	return a, nil
}

func checkNeedsVersion(needs string) error {
	if needs == "" {
		return nil
	}
	need, err := semver.ParseTolerant(needs)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, fmt.Sprintf("invalid engine version requirement %q", needs)).
			Fatal().UserAction().Build()
	}
	have := semver.MustParse(version.Engine)
	if have.LT(need) {
		return errors.WrapError(ErrVersionRequirement, errors.CategoryConfig,
			fmt.Sprintf("this project needs at least engine v%s and therefore cannot be built with engine v%s", need, have)).
			Fatal().WithHint("upgrade docorch").
			WithContext("needs_version", need.String()).
			WithContext("engine_version", have.String()).Build()
	}
	return nil
}

// Options returns the effective options with absolute directories.
func (a *App) Options() Options { return a.opts }

// OutputDir is the absolute output directory.
func (a *App) OutputDir() string { return a.opts.OutputDir }

// Events returns the lifecycle event table.
func (a *App) Events() *Events { return a.events }

// Connect registers a lifecycle listener. See Events.Connect.
func (a *App) Connect(name EventName, fn Listener) int { return a.events.Connect(name, fn) }

// Disconnect removes a lifecycle listener. See Events.Disconnect.
func (a *App) Disconnect(id int) bool { return a.events.Disconnect(id) }

// Build emits EventBuilderInited, renders every page, copies static files and
// emits EventBuildFinished. When an EventBuilderInited listener fails the build
// stops there and EventBuildFinished is not emitted. The returned report is
// never nil.
func (a *App) Build(ctx context.Context) (*Report, error) {
	a.buildMu.Lock()
	defer a.buildMu.Unlock()

	if observability.GetContext(ctx).BuildID == "" {
		ctx = observability.WithBuildID(ctx, observability.NewBuildID())
	}
	start := time.Now()
	report := &Report{
		BuildID:   observability.GetContext(ctx).BuildID,
		Commit:    a.opts.Commit,
		StartedAt: start,
	}
	observability.InfoContext(ctx, "Build started",
		logfields.Dir(a.opts.SourceDir), logfields.Path(a.opts.OutputDir))

	if err := a.emit(ctx, EventBuilderInited, nil); err != nil {
		a.finish(ctx, report, start, err)
		return report, err
	}

	pages, err := a.renderAll(ctx)
	report.Pages = pages

	if ferr := a.emit(ctx, EventBuildFinished, err); ferr != nil {
		if err == nil {
			err = ferr
		} else {
			observability.WarnContext(ctx, "build-finished listener failed after build error", logfields.Error(ferr))
		}
	}
	a.finish(ctx, report, start, err)
	return report, err
}

func (a *App) emit(ctx context.Context, name EventName, buildErr error) error {
	a.recorder.IncEvent(string(name))
	return a.events.Emit(ctx, Event{Name: name, App: a, Err: buildErr})
}

func (a *App) finish(ctx context.Context, report *Report, start time.Time, err error) {
	report.Duration = time.Since(start)
	switch {
	case err == nil:
		report.Outcome = metrics.BuildOutcomeSuccess
	case ctx.Err() != nil:
		report.Outcome = metrics.BuildOutcomeCanceled
	default:
		report.Outcome = metrics.BuildOutcomeFailed
	}
	a.recorder.ObserveBuildDuration(report.Duration)
	a.recorder.IncBuildOutcome(report.Outcome)
	a.recorder.SetPagesRendered(len(report.Pages))

	attrs := []slog.Attr{
		slog.String("outcome", string(report.Outcome)),
		slog.Int("pages", len(report.Pages)),
		logfields.DurationMS(float64(report.Duration.Milliseconds())),
	}
	if err != nil {
		observability.ErrorContext(ctx, "Build failed", append(attrs, logfields.Error(err))...)
		return
	}
	observability.InfoContext(ctx, "Build finished", attrs...)
}
