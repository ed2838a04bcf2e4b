// Package metrics holds the Prometheus collectors of one sweep. Each App gets
// its own registry so parallel apps (and tests) never share counters.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for WorkItems.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Metrics is the set of collectors exported on /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	// WorkItems counts finished WorkItems by combination and outcome.
	WorkItems *prometheus.CounterVec
	// Failures counts reported failures by kind.
	Failures *prometheus.CounterVec
	// InvocationDuration records solver wall time in seconds.
	InvocationDuration *prometheus.HistogramVec
	// InFlight is the number of solver processes currently running.
	InFlight prometheus.Gauge
	// Aggregations counts rebuilt accumulated tables.
	Aggregations prometheus.Counter
}

// New creates the collectors and registers them, with the Go and process
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		WorkItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "vrpbench_work_items_total", Help: "Finished work items by combination and outcome."},
			[]string{"combination", "outcome"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "vrpbench_failures_total", Help: "Reported failures by kind."},
			[]string{"kind"},
		),
		InvocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vrpbench_invocation_duration_seconds",
				Help:    "Solver invocation wall time in seconds.",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600, 1800},
			},
			[]string{"combination"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "vrpbench_invocations_in_flight", Help: "Solver processes currently running."},
		),
		Aggregations: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "vrpbench_aggregations_total", Help: "Accumulated tables rebuilt."},
		),
	}
	m.Registry.MustRegister(
		m.WorkItems,
		m.Failures,
		m.InvocationDuration,
		m.InFlight,
		m.Aggregations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveInvocation records one solver run.
func (m *Metrics) ObserveInvocation(combination string, d time.Duration) {
	if m == nil {
		return
	}
	m.InvocationDuration.WithLabelValues(combination).Observe(d.Seconds())
}

// WorkItemDone counts a finished WorkItem.
func (m *Metrics) WorkItemDone(combination, outcome string) {
	if m == nil {
		return
	}
	m.WorkItems.WithLabelValues(combination, outcome).Inc()
}

// Failure counts a reported failure.
func (m *Metrics) Failure(kind string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
