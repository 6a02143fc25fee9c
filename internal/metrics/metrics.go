// Package metrics exposes pricer counters on a private Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pricer"

// Metrics holds the counters recorded by the fetch client and the analysis
// run. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FetchAttempts   *prometheus.CounterVec
	ItemsAnalyzed   *prometheus.CounterVec
	AnchorsFlagged  prometheus.Counter
	FetchDurationMs prometheus.Histogram
}

// New builds the counters and registers them, together with the Go runtime
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Marketplace requests by auth mode and outcome.",
		}, []string{"mode", "outcome"}),
		ItemsAnalyzed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_analyzed_total",
			Help:      "Items priced, by clean-book regime.",
		}, []string{"regime"}),
		AnchorsFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anchors_flagged_total",
			Help:      "Listings flagged as suspected anchors.",
		}),
		FetchDurationMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_ms",
			Help:      "Duration of one item fetch including retries.",
			Buckets:   prometheus.ExponentialBuckets(50, 2, 10),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.FetchAttempts,
		m.ItemsAnalyzed,
		m.AnchorsFlagged,
		m.FetchDurationMs,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordFetch(mode, outcome string) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) ObserveFetchDuration(ms float64) {
	if m == nil {
		return
	}
	m.FetchDurationMs.Observe(ms)
}

func (m *Metrics) RecordItem(regime string, anchors int) {
	if m == nil {
		return
	}
	m.ItemsAnalyzed.WithLabelValues(regime).Inc()
	m.AnchorsFlagged.Add(float64(anchors))
}
