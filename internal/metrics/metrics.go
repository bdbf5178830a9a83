// Package metrics exposes Prometheus collectors for the pipeline engine and HTTP layer.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "etl"

// Replay outcomes
const (
	OutcomeSuccess        = "success"
	OutcomeRawUnavailable = "raw_unavailable"
)

// Metrics holds every collector the application updates
type Metrics struct {
	registry *prometheus.Registry

	StepsRecorded  *prometheus.CounterVec
	StepsRejected  *prometheus.CounterVec
	StepsSkipped   *prometheus.CounterVec
	Replays        *prometheus.CounterVec
	ReplayDuration prometheus.Histogram
	RowsLoaded     *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StepsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "steps_recorded_total",
			Help:      "Steps appended to a source pipeline.",
		}, []string{"op"}),
		StepsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "steps_rejected_total",
			Help:      "Step requests that produced no step.",
		}, []string{"op", "reason"}),
		StepsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "steps_skipped_total",
			Help:      "Steps of an unrecognized kind skipped during apply.",
		}, []string{"op"}),
		Replays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "replays_total",
			Help:      "Pipeline replays from raw data by outcome.",
		}, []string{"outcome"}),
		ReplayDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "replay_duration_seconds",
			Help:      "Time spent loading raw data and applying a pipeline.",
			Buckets:   prometheus.DefBuckets,
		}),
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Rows written to relational tables.",
		}, []string{"mode"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
	}

	m.registry.MustRegister(
		m.StepsRecorded,
		m.StepsRejected,
		m.StepsSkipped,
		m.Replays,
		m.ReplayDuration,
		m.RowsLoaded,
		m.HTTPRequests,
	)
	return m
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) StepRecorded(op string) {
	if m == nil {
		return
	}
	m.StepsRecorded.WithLabelValues(op).Inc()
}

func (m *Metrics) StepRejected(op, reason string) {
	if m == nil {
		return
	}
	m.StepsRejected.WithLabelValues(op, reason).Inc()
}

func (m *Metrics) StepSkipped(op string) {
	if m == nil {
		return
	}
	m.StepsSkipped.WithLabelValues(op).Inc()
}

// ReplayFinished records one replay attempt
func (m *Metrics) ReplayFinished(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Replays.WithLabelValues(outcome).Inc()
	m.ReplayDuration.Observe(duration.Seconds())
}

func (m *Metrics) RowsWritten(mode string, rows int) {
	if m == nil {
		return
	}
	m.RowsLoaded.WithLabelValues(mode).Add(float64(rows))
}

func (m *Metrics) RequestServed(method string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
