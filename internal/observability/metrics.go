package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// namespace defines the global prefix for all metrics (e.g., gavel_...).
const namespace = "gavel"

// evalLatencyBuckets defines custom buckets for the evaluation hot path.
// Standard buckets are too coarse (starting at 5ms), so we add 1ms and 2ms
// resolution. Range: 1ms to 500ms.
var evalLatencyBuckets = []float64{.001, .002, .005, .010, .015, .020, .025, .030, .050, .100, .500}

var (
	// -------------------------------------------------------------------------
	// API (HTTP)
	// -------------------------------------------------------------------------

	// APIReqDuration measures the latency of HTTP requests.
	// Metric: gavel_api_http_handling_seconds
	APIReqDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "http_handling_seconds",
		Help:      "Time taken to handle HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// APIReqTotal counts the total number of HTTP requests.
	// Metric: gavel_api_http_requests_total
	APIReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests",
	}, []string{"method", "path", "code"})

	// -------------------------------------------------------------------------
	// EVALUATION
	// -------------------------------------------------------------------------

	// EvaluationDuration measures the latency of full compliance evaluations
	// (rule fetch excluded; engine pass only).
	// Metric: gavel_evaluation_handling_seconds
	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "evaluation",
		Name:      "handling_seconds",
		Help:      "Time taken to evaluate a filing against the selected rules",
		Buckets:   evalLatencyBuckets,
	})

	// EvaluationsTotal counts evaluations by outcome.
	// Metric: gavel_evaluation_total
	EvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "evaluation",
		Name:      "total",
		Help:      "Total compliance evaluations by outcome",
	}, []string{"outcome"}) // allowed, blocked

	// EvaluationRulesSelected tracks how many rules survive selection per
	// evaluation, for sizing the cache and spotting runaway rule sets.
	EvaluationRulesSelected = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "evaluation",
		Name:      "rules_selected",
		Help:      "Number of rules selected per evaluation",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})

	// --- Cache L1 Metrics (Otter) ---

	CacheL1Hits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "l1_hits_total",
		Help:      "Total L1 cache hits (in-memory)",
	})

	CacheL1Misses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "l1_misses_total",
		Help:      "Total L1 cache misses",
	})

	CacheL1Items = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "l1_items_count",
		Help:      "Current number of court rule sets in the L1 cache",
	})

	CacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "invalidations_total",
		Help:      "Total cache invalidation events from rule mutations",
	})

	// -------------------------------------------------------------------------
	// SYNCER (Workers)
	// -------------------------------------------------------------------------

	// SyncerSyncDuration measures the wall time of one full sync cycle
	// across all courts.
	// Metric: gavel_syncer_sync_duration_seconds
	SyncerSyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "sync_duration_seconds",
		Help:      "Wall time of one full DB-to-Redis sync cycle",
		Buckets:   prometheus.DefBuckets,
	})

	SyncerCourtsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "courts_total",
		Help:      "Total per-court sync attempts",
	}, []string{"status"}) // success, fail
)
