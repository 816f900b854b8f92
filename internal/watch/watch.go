// Package watch rebuilds the documentation when sources change or on a
// fixed schedule. Builds never overlap.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
	"git.home.luguber.info/inful/docorch/internal/logfields"
)

// DefaultDebounce collapses bursts of file events into one rebuild.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one complete build.
type BuildFunc func(ctx context.Context) error

// Options configure a Watcher.
type Options struct {
	// Roots are watched recursively.
	Roots []string
	// Ignore lists files and directories whose changes never trigger a
	// rebuild, typically the output directory and the first-run marker.
	Ignore   []string
	Debounce time.Duration
	// Interval schedules a rebuild every Interval when non-zero.
	Interval time.Duration
	// InitialBuild runs a build before waiting for changes.
	InitialBuild bool
}

// Watcher serialises builds requested by file events and the scheduler.
type Watcher struct {
	opts  Options
	build BuildFunc

	buildMu sync.Mutex
	builds  int

	timerMu sync.Mutex
	timer   *time.Timer
	reqs    chan struct{}
}

// New returns a Watcher calling build.
func New(build BuildFunc, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	ignore := make([]string, 0, len(opts.Ignore))
	for _, p := range opts.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		ignore = append(ignore, filepath.Clean(p))
	}
	opts.Ignore = ignore
	return &Watcher{opts: opts, build: build, reqs: make(chan struct{}, 1)}
}

// Builds returns the number of builds run so far.
func (w *Watcher) Builds() int {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()
	return w.builds
}

// Trigger requests a rebuild after the debounce delay. Requests arriving
// while a build runs coalesce into a single follow-up build.
func (w *Watcher) Trigger() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.request)
}

func (w *Watcher) request() {
	select {
	case w.reqs <- struct{}{}:
	default:
	}
}

// Run watches until ctx is canceled. Build failures are logged; Run only
// returns an error when watching cannot start.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Fatal().Build()
	}
	defer func() { _ = fsw.Close() }()
	for _, root := range w.opts.Roots {
		if err := w.addDirsRecursive(fsw, root); err != nil {
			return err
		}
	}

	var scheduler gocron.Scheduler
	if w.opts.Interval > 0 {
		scheduler, err = gocron.NewScheduler()
		if err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "failed to create scheduler").Fatal().Build()
		}
		if _, err := scheduler.NewJob(
			gocron.DurationJob(w.opts.Interval),
			gocron.NewTask(w.request),
			gocron.WithName("scheduled-build"),
		); err != nil {
			_ = scheduler.Shutdown()
			return errors.WrapError(err, errors.CategoryConfig, "failed to schedule periodic build").
				WithContext("interval", w.opts.Interval.String()).Build()
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()
	defer wg.Wait()

	if w.opts.InitialBuild {
		w.request()
	}
	slog.Info("Watching for changes",
		slog.Any("roots", w.opts.Roots),
		slog.Duration("interval", w.opts.Interval))

	for {
		select {
		case <-ctx.Done():
			w.timerMu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timerMu.Unlock()
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.reqs:
			w.runBuild(ctx)
		}
	}
}

func (w *Watcher) runBuild(ctx context.Context) {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()
	w.builds++
	if err := w.build(ctx); err != nil {
		slog.Warn("Rebuild failed", logfields.Error(err))
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if w.ignored(ev.Name) {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(fsw, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.Trigger()
}

func (w *Watcher) addDirsRecursive(fsw *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "watch root not accessible").
			WithContext("path", root).Build()
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			slog.Warn("Watch add failed", logfields.Dir(path), logfields.Error(err))
		}
		return nil
	})
}

// ignored reports whether path is hidden, an editor temp file, or inside an
// ignored location.
func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "#") ||
		strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx") {
		return true
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	for _, p := range w.opts.Ignore {
		if path == p || strings.HasPrefix(path, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
