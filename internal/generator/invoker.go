package generator

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
	"git.home.luguber.info/inful/docorch/internal/logfields"
	"git.home.luguber.info/inful/docorch/internal/metrics"
	"git.home.luguber.info/inful/docorch/internal/observability"
)

// Invocation is one external generator run.
type Invocation struct {
	Name string
	// FailureMessage is the headline of the error raised when the run fails.
	FailureMessage string
	// EnsureDirs are created before the process starts.
	EnsureDirs []string
	Spec       ProcessSpec
}

// Invoker runs invocations one at a time.
type Invoker struct {
	executor Executor
	recorder metrics.Recorder
	env      []string
}

// NewInvoker returns an Invoker over executor. A nil recorder disables metrics.
func NewInvoker(executor Executor, recorder metrics.Recorder) *Invoker {
	if executor == nil {
		executor = ExecExecutor{}
	}
	return &Invoker{executor: executor, recorder: metrics.OrNoop(recorder)}
}

// WithEnv returns a copy of the Invoker that adds env to every process.
func (i *Invoker) WithEnv(env map[string]string) *Invoker {
	cp := *i
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cp.env = make([]string, 0, len(keys))
	for _, k := range keys {
		cp.env = append(cp.env, k+"="+env[k])
	}
	return &cp
}

// Invoke runs inv and blocks until the process exits.
func (i *Invoker) Invoke(ctx context.Context, inv Invocation) error {
	for _, dir := range inv.EnsureDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create generator output directory").
				Fatal().WithContext("path", dir).WithContext("generator", inv.Name).Build()
		}
	}

	spec := inv.Spec
	if spec.Name == "" {
		spec.Name = inv.Name
	}
	spec.Env = append(append([]string(nil), i.env...), spec.Env...)

	observability.InfoContext(ctx, "Running generator", logfields.Generator(inv.Name), logfields.Path(spec.Path))
	start := time.Now()
	res, err := i.executor.Execute(ctx, spec)
	elapsed := time.Since(start)
	i.recorder.ObserveGeneratorDuration(inv.Name, elapsed)

	if err != nil {
		i.recorder.IncGeneratorResult(inv.Name, metrics.ResultLaunch)
		return errors.WrapError(err, errors.CategoryGenerator, inv.FailureMessage).
			Fatal().WithHint(fmt.Sprintf("install %s or disable the generator that needs it", spec.Path)).
			WithContext("generator", inv.Name).
			WithContext("path", spec.Path).Build()
	}

	output := res.Combined()
	if res.ExitCode != 0 {
		i.recorder.IncGeneratorResult(inv.Name, metrics.ResultFailed)
		observability.ErrorContext(ctx, "Generator failed",
			logfields.Generator(inv.Name), logfields.ExitCode(res.ExitCode), logfields.Output(output))
		return errors.GeneratorError(fmt.Sprintf("%s\n%s", inv.FailureMessage, output)).
			WithContext("generator", inv.Name).
			WithContext("exit_code", res.ExitCode).Build()
	}

	i.recorder.IncGeneratorResult(inv.Name, metrics.ResultSuccess)
	observability.InfoContext(ctx, "Generator finished",
		logfields.Generator(inv.Name),
		logfields.DurationMS(float64(elapsed.Milliseconds())),
		logfields.Output(output))
	return nil
}
