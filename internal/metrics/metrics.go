// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RanksComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_ranks_computed_total",
			Help: "Total number of phrase ranks computed",
		},
		[]string{"operation"},
	)

	InvalidInputs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_rank_invalid_inputs_total",
			Help: "Total number of rank inputs rejected by validation",
		},
		[]string{"source"},
	)

	JobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_jobs_finished_total",
			Help: "Total number of background jobs finished, by type and status",
		},
		[]string{"job_type", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vibe_job_duration_seconds",
			Help:    "Duration of background jobs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job_type"},
	)

	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vibe_jobs_active",
			Help: "Number of background jobs currently running",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_cache_lookups_total",
			Help: "Top-N cache lookups by result",
		},
		[]string{"result"},
	)
)
