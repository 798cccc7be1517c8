package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kdsvisual"

// Highlight lookup outcomes.
const (
	OutcomeMatched = "matched"
	OutcomeNoMatch = "no_match"
	OutcomeEmpty   = "empty"
)

// layoutBuckets cover 100µs to 2.5s: small trees lay out in microseconds,
// thousands of leaves take tens of milliseconds.
var layoutBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5}

// Metrics holds the Prometheus collectors. Each instance owns its registry,
// so tests can create as many as they like. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	layoutRuns    prometheus.Counter
	layoutSeconds prometheus.Histogram
	degenerate    prometheus.Counter
	highlights    *prometheus.CounterVec
	renders       *prometheus.CounterVec
	loadFailures  prometheus.Counter
	sessions      prometheus.Gauge
	nodeWarnings  prometheus.Counter
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		layoutRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "layout_runs_total",
			Help: "Completed layout passes.",
		}),
		layoutSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "layout_duration_seconds",
			Help:    "Time spent computing a layout and rendering its scene.",
			Buckets: layoutBuckets,
		}),
		degenerate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "layout_deferred_total",
			Help: "Layouts deferred because the viewport had no area.",
		}),
		highlights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "highlight_lookups_total",
			Help: "Target species lookups by outcome.",
		}, []string{"outcome"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "renders_total",
			Help: "Rendered outputs by format.",
		}, []string{"format"}),
		loadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tree_load_failures_total",
			Help: "Tree documents that failed to load.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "view_sessions_active",
			Help: "Open interactive view sessions.",
		}),
		nodeWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "malformed_nodes_total",
			Help: "Malformed tree nodes recovered during normalization.",
		}),
	}
	m.registry.MustRegister(
		m.layoutRuns, m.layoutSeconds, m.degenerate, m.highlights, m.renders,
		m.loadFailures, m.sessions, m.nodeWarnings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLayout records one completed layout pass.
func (m *Metrics) ObserveLayout(d time.Duration) {
	if m == nil {
		return
	}
	m.layoutRuns.Inc()
	m.layoutSeconds.Observe(d.Seconds())
}

// LayoutDeferred records a layout skipped for lack of a viewport.
func (m *Metrics) LayoutDeferred() {
	if m == nil {
		return
	}
	m.degenerate.Inc()
}

// ObserveHighlight records a lookup outcome (OutcomeMatched, OutcomeNoMatch or OutcomeEmpty).
func (m *Metrics) ObserveHighlight(outcome string) {
	if m == nil {
		return
	}
	m.highlights.WithLabelValues(outcome).Inc()
}

// Rendered records an output in the given format (scene, svg, chart, ...).
func (m *Metrics) Rendered(format string) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(format).Inc()
}

// LoadFailed records a failed tree load.
func (m *Metrics) LoadFailed() {
	if m == nil {
		return
	}
	m.loadFailures.Inc()
}

// MalformedNodes adds n recovered node warnings.
func (m *Metrics) MalformedNodes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.nodeWarnings.Add(float64(n))
}

// SessionOpened and SessionClosed track live view sessions.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}
