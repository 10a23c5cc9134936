// Package metrics exposes Prometheus instrumentation for the worker's
// claim loop and job outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsClaimedTotal counts jobs claimed by this worker process.
	JobsClaimedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewlog_jobs_claimed_total",
			Help: "Total number of jobs claimed from the queue",
		},
		[]string{"job_type"},
	)

	// JobsSucceededTotal counts jobs that reached SUCCEEDED.
	JobsSucceededTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewlog_jobs_succeeded_total",
			Help: "Total number of jobs that completed successfully",
		},
		[]string{"job_type"},
	)

	// JobsRetriedTotal counts handler failures that were re-queued with backoff.
	JobsRetriedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewlog_jobs_retried_total",
			Help: "Total number of jobs re-queued for retry after a handler failure",
		},
		[]string{"job_type"},
	)

	// JobsFailedTotal counts jobs that exhausted their retry budget.
	JobsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewlog_jobs_failed_total",
			Help: "Total number of jobs marked permanently failed",
		},
		[]string{"job_type"},
	)

	// ClaimErrorsTotal counts store-level failures during the claim cycle.
	ClaimErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crewlog_claim_errors_total",
			Help: "Total number of store errors during claim cycles",
		},
	)

	// JobDurationSeconds observes handler execution duration.
	JobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crewlog_job_duration_seconds",
			Help:    "Handler execution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.4min
		},
		[]string{"job_type"},
	)
)
