package docsetup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark/parser"

	"git.home.luguber.info/inful/docorch/internal/apidoc"
	"git.home.luguber.info/inful/docorch/internal/config"
	"git.home.luguber.info/inful/docorch/internal/engine"
	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
	"git.home.luguber.info/inful/docorch/internal/fsutil"
	"git.home.luguber.info/inful/docorch/internal/generator"
	"git.home.luguber.info/inful/docorch/internal/logfields"
	"git.home.luguber.info/inful/docorch/internal/markdown"
	"git.home.luguber.info/inful/docorch/internal/observability"
)

// RefRewriterName is the transform name of the link rewriter.
const RefRewriterName = "ref-rewriter"

// Host is the part of the document engine the hooks register with.
// *engine.App satisfies it.
type Host interface {
	Connect(name engine.EventName, fn engine.Listener) int
	AddTransform(name string, t parser.ASTTransformer, priority int)
	AddDirective(name string, d engine.Directive)
}

// JSFileAdder is the current script registration call.
type JSFileAdder interface {
	AddJSFile(path string, opts ...engine.ScriptOption)
}

// LegacyJSAdder is the deprecated script registration call of older engines.
type LegacyJSAdder interface {
	AddJavaScript(path string)
}

// Options configure an Orchestrator.
type Options struct {
	Flags config.Flags
	// MarkerPath is the first-run marker file.
	MarkerPath string

	// DirectiveName is the API-doc directive, "doxygenfile" by default.
	DirectiveName string
	// APIDirective renders API docs when C-API docs are enabled.
	APIDirective engine.Directive

	DoxygenBinary string
	Doxygen       generator.DoxygenParams

	Shell       string
	PackageDocs generator.PackageDocsParams
	// PackageSiteDir is the R package site built by pkgdown.
	PackageSiteDir string
	// OutputDir and OutputSubpath locate the copy of the package site.
	OutputDir     string
	OutputSubpath string

	JSFiles             []string
	SourceSuffix        string
	OutputSuffix        string
	LinkRewritePriority int

	Invoker *generator.Invoker
}

// Plan records what Register scheduled.
type Plan struct {
	CAPIEnabled bool
	Hosted      bool
	FirstRun    bool
	// InitGenerators lists the generators run on builder-inited, in order.
	InitGenerators []string
	// DirectiveStubbed is true when the API-doc directive renders nothing.
	DirectiveStubbed bool
	CopyPackageDocs  bool
	Transforms       []string
	Scripts          []string
	// ScriptCall is the registration method the host supported.
	ScriptCall string
}

// Orchestrator registers the build lifecycle hooks with a host engine.
type Orchestrator struct {
	opts Options
}

// New returns an Orchestrator, filling in defaults.
func New(opts Options) *Orchestrator {
	if opts.DirectiveName == "" {
		opts.DirectiveName = "doxygenfile"
	}
	if opts.MarkerPath == "" {
		opts.MarkerPath = DefaultMarkerName
	}
	if opts.OutputSubpath == "" {
		opts.OutputSubpath = "R"
	}
	if opts.LinkRewritePriority == 0 {
		opts.LinkRewritePriority = 210
	}
	if opts.Invoker == nil {
		opts.Invoker = generator.NewInvoker(generator.ExecExecutor{}, nil)
	}
	return &Orchestrator{opts: opts}
}

// OptionsFromConfig maps the build configuration onto Options.
func OptionsFromConfig(cfg *config.Config, flags config.Flags, invoker *generator.Invoker) Options {
	pd := cfg.PackageDocs
	if invoker == nil {
		invoker = generator.NewInvoker(generator.ExecExecutor{}, nil)
	}
	return Options{
		Flags:         flags,
		MarkerPath:    cfg.MarkerPath(),
		DirectiveName: cfg.APIDocs.Directive,
		APIDirective: apidoc.NewDirective(apidoc.Options{
			XMLDir:                cfg.APIXMLPath(),
			Project:               cfg.APIDocs.Project,
			DomainByExtension:     cfg.APIDocs.DomainByExtension,
			IDAttributes:          cfg.APIDocs.IDAttributes,
			ShowDefineInitializer: cfg.APIDocs.ShowDefineInitializer,
		}),
		DoxygenBinary: cfg.Generators.Doxygen,
		Doxygen: generator.DoxygenParams{
			Input:      cfg.APIHeaderPath(),
			OutputDir:  cfg.APIOutputPath(),
			XMLSubdir:  cfg.APIDocs.XMLSubdir,
			Predefined: cfg.APIDocs.Predefined,
		},
		Shell: cfg.Generators.Shell,
		PackageDocs: generator.PackageDocsParams{
			RepoRoot:    cfg.RepoRootPath(),
			BuildScript: pd.BuildScript,
			TarballGlob: pd.Tarball,
			PkgdownSrc:  pd.PkgdownDir,
			StagingDir:  pd.StagingDir,
			RLibs:       pd.RLibs,
			Tar:         pd.Tar,
			Seed:        pd.Seed,
		},
		PackageSiteDir:      cfg.PackageSitePath(),
		OutputDir:           cfg.OutputPath(),
		OutputSubpath:       pd.OutputSubpath,
		JSFiles:             cfg.Engine.JSFiles,
		SourceSuffix:        cfg.Engine.SourceSuffix,
		OutputSuffix:        cfg.Engine.OutputSuffix,
		LinkRewritePriority: cfg.Engine.LinkRewritePriority,
		Invoker:             invoker.WithEnv(cfg.Generators.Env),
	}
}

// Register connects the lifecycle hooks to host. Nothing runs until the host
// emits its events, except for the first-run marker which is created as the
// last step of a successful registration when a hosted first run is detected.
func (o *Orchestrator) Register(host Host) (*Plan, error) {
	plan := &Plan{CAPIEnabled: o.opts.Flags.CAPIEnabled, Hosted: o.opts.Flags.Hosted}

	if o.opts.Flags.CAPIEnabled {
		inv, err := generator.DoxygenInvocation(o.opts.DoxygenBinary, o.opts.Doxygen)
		if err != nil {
			return nil, err
		}
		host.Connect(engine.EventBuilderInited, o.runGenerator(inv))
		plan.InitGenerators = append(plan.InitGenerators, inv.Name)
		if o.opts.APIDirective != nil {
			host.AddDirective(o.opts.DirectiveName, o.opts.APIDirective)
		}
	} else {
		host.AddDirective(o.opts.DirectiveName, IgnoredDirective{})
		plan.DirectiveStubbed = true
	}

	var firstRunMarker *Marker
	if o.opts.Flags.Hosted {
		marker := NewMarker(o.opts.MarkerPath)
		first, err := marker.FirstRun()
		if err != nil {
			return nil, err
		}
		if first {
			inv, err := generator.PackageDocsInvocation(o.opts.Shell, o.opts.PackageDocs)
			if err != nil {
				return nil, err
			}
			firstRunMarker = marker
			host.Connect(engine.EventBuilderInited, o.runGenerator(inv))
			plan.InitGenerators = append(plan.InitGenerators, inv.Name)
			plan.FirstRun = true
		}
		host.Connect(engine.EventBuildFinished, o.copyPackageDocs)
		plan.CopyPackageDocs = true
	}

	host.AddTransform(RefRewriterName, markdown.NewRefRewriter(o.opts.SourceSuffix, o.opts.OutputSuffix), o.opts.LinkRewritePriority)
	plan.Transforms = append(plan.Transforms, RefRewriterName)

	call, err := addScripts(host, o.opts.JSFiles)
	if err != nil {
		return nil, err
	}
	plan.Scripts = append(plan.Scripts, o.opts.JSFiles...)
	plan.ScriptCall = call

	// The marker is written only once nothing else can fail.
	if firstRunMarker != nil {
		if err := firstRunMarker.Touch(); err != nil {
			return nil, err
		}
	}

	slog.Info("Registered build hooks",
		slog.Bool("c_api", plan.CAPIEnabled),
		slog.Bool("hosted", plan.Hosted),
		slog.Bool("first_run", plan.FirstRun),
		slog.Any("init_generators", plan.InitGenerators),
		slog.Bool("directive_stubbed", plan.DirectiveStubbed))
	return plan, nil
}

func (o *Orchestrator) runGenerator(inv generator.Invocation) engine.Listener {
	return func(ctx context.Context, _ engine.Event) error {
		return o.opts.Invoker.Invoke(observability.WithStage(ctx, inv.Name), inv)
	}
}

// addScripts prefers AddJSFile and falls back to the deprecated AddJavaScript.
func addScripts(host Host, files []string) (string, error) {
	if len(files) == 0 {
		return "", nil
	}
	if h, ok := host.(JSFileAdder); ok {
		for _, f := range files {
			h.AddJSFile(f)
		}
		return "AddJSFile", nil
	}
	if h, ok := host.(LegacyJSAdder); ok {
		for _, f := range files {
			h.AddJavaScript(f)
		}
		return "AddJavaScript", nil
	}
	return "", errors.ConfigError("document engine supports neither AddJSFile nor AddJavaScript").Build()
}

// copyPackageDocs copies the R package site into <output>/<subpath> after a
// successful build.
func (o *Orchestrator) copyPackageDocs(ctx context.Context, ev engine.Event) error {
	if ev.Err != nil {
		observability.WarnContext(ctx, "Skipping package documentation copy after failed build", logfields.Error(ev.Err))
		return nil
	}
	src := o.opts.PackageSiteDir
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return errors.FileSystemError("package documentation site not found").
			WithContext("path", src).Build()
	}

	dst := filepath.Join(o.opts.OutputDir, o.opts.OutputSubpath)
	if err := fsutil.CopyDir(src, dst); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to copy package documentation").
			Fatal().WithContext("path", src).WithContext("dest", dst).Build()
	}
	observability.InfoContext(ctx, "Copied package documentation", logfields.Dir(src), logfields.Path(dst))
	return nil
}
