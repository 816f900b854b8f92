package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	reg               *prom.Registry
	generatorDuration *prom.HistogramVec
	generatorResults  *prom.CounterVec
	events            *prom.CounterVec
	buildDuration     prom.Histogram
	buildOutcome      *prom.CounterVec
	pagesRendered     prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.generatorDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docorch",
			Name:      "generator_duration_seconds",
			Help:      "Duration of external generator runs",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"generator"})
		pr.generatorResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docorch",
			Name:      "generator_results_total",
			Help:      "External generator runs by result",
		}, []string{"generator", "result"})
		pr.events = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docorch",
			Name:      "lifecycle_events_total",
			Help:      "Lifecycle events emitted by the engine",
		}, []string{"event"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docorch",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docorch",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.pagesRendered = prom.NewGauge(prom.GaugeOpts{
			Namespace: "docorch",
			Name:      "pages_rendered",
			Help:      "Pages rendered by the last build",
		})
		reg.MustRegister(pr.generatorDuration, pr.generatorResults, pr.events, pr.buildDuration, pr.buildOutcome, pr.pagesRendered)
	})
	return pr
}

// Registry returns the registry the metrics were registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveGeneratorDuration(generator string, d time.Duration) {
	if p == nil || p.generatorDuration == nil {
		return
	}
	p.generatorDuration.WithLabelValues(generator).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncGeneratorResult(generator string, result ResultLabel) {
	if p == nil || p.generatorResults == nil {
		return
	}
	p.generatorResults.WithLabelValues(generator, string(result)).Inc()
}

func (p *PrometheusRecorder) IncEvent(event string) {
	if p == nil || p.events == nil {
		return
	}
	p.events.WithLabelValues(event).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetPagesRendered(n int) {
	if p == nil || p.pagesRendered == nil {
		return
	}
	p.pagesRendered.Set(float64(n))
}
