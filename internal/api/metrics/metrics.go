// Package metrics defines and registers all custom Prometheus metrics for the
// tracking system. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics use promauto, so importing the package registers them with the
// default Prometheus registry; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracking"

// ── Sample ingest metrics ─────────────────────────────────────────────────────

// SamplesProcessedTotal counts samples that completed processing successfully.
// Label:
//   - trip_id: the trip the sample belongs to
var SamplesProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "samples_processed_total",
		Help:      "Total number of position samples successfully processed.",
	},
	[]string{"trip_id"},
)

// SamplesErrorsTotal counts samples that failed processing.
// Label:
//   - reason: short description of the failure (e.g. "invalid_coordinates", "insert_failed")
var SamplesErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "samples_errors_total",
		Help:      "Total number of position samples that failed processing.",
	},
	[]string{"reason"},
)

// SamplesDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new sample, processed)
var SamplesDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "samples_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// SamplesQueueDepth tracks the current number of samples waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var SamplesQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "samples_queue_depth",
		Help:      "Current number of samples pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// SampleProcessingDuration measures how long a single sample takes to process
// end-to-end.
// Label:
//   - result: "ok" or "error"
var SampleProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sample_processing_duration_seconds",
		Help:      "Duration of sample processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"result"},
)

// ── Live position metrics ─────────────────────────────────────────────────────

// PositionLookupsTotal counts live-position reads.
// Label:
//   - result: "ok", "no_samples", or "error"
var PositionLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "position_lookups_total",
		Help:      "Total number of live position lookups, labelled by result.",
	},
	[]string{"result"},
)
