package metrics

import "time"

// ResultLabel enumerates generator result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultLaunch  ResultLabel = "launch_error"
)

// BuildOutcomeLabel enumerates final build outcomes.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for builds, lifecycle events and
// external generator runs. Implementations may forward to Prometheus.
type Recorder interface {
	ObserveGeneratorDuration(generator string, d time.Duration)
	IncGeneratorResult(generator string, result ResultLabel)
	IncEvent(event string)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	SetPagesRendered(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveGeneratorDuration(string, time.Duration) {}
func (NoopRecorder) IncGeneratorResult(string, ResultLabel)         {}
func (NoopRecorder) IncEvent(string)                                {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)             {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)              {}
func (NoopRecorder) SetPagesRendered(int)                           {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
