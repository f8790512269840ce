// Package metrics registers the Prometheus collectors for the
// optimization service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics bundles the service collectors on their own registry, so
// tests can build isolated instances.
type Metrics struct {
	Registry *prometheus.Registry

	RunsSubmitted prometheus.Counter
	RunsFinished  *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	Evaluations   prometheus.Counter
	JobsInFlight  prometheus.Gauge
	JobsQueued    prometheus.Gauge
}

// New builds and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RunsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optkit",
			Subsystem: "runs",
			Name:      "submitted_total",
			Help:      "Optimization runs accepted by the API.",
		}),
		RunsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "optkit",
			Subsystem: "runs",
			Name:      "finished_total",
			Help:      "Finished runs by terminal state and engine status.",
		}, []string{"state", "status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "optkit",
			Subsystem: "runs",
			Name:      "duration_seconds",
			Help:      "Wall time of one optimization run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optkit",
			Subsystem: "objective",
			Name:      "evaluations_total",
			Help:      "Objective evaluations across all runs.",
		}),
		JobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "optkit",
			Subsystem: "jobs",
			Name:      "in_flight",
			Help:      "Jobs currently executing on the worker pool.",
		}),
		JobsQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "optkit",
			Subsystem: "jobs",
			Name:      "queued",
			Help:      "Jobs waiting for a worker.",
		}),
	}

	m.Registry.MustRegister(
		m.RunsSubmitted,
		m.RunsFinished,
		m.RunDuration,
		m.Evaluations,
		m.JobsInFlight,
		m.JobsQueued,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
