package metrics

import "github.com/prometheus/client_golang/prometheus"

// Sync pipeline Prometheus metrics.
var (
	StoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsync",
			Name:      "store_operations_total",
			Help:      "Total number of mapping store operations",
		},
		[]string{"op", "status"}, // status: "ok" / "error"
	)

	IndexerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsync",
			Name:      "indexer_requests_total",
			Help:      "Total number of indexing API requests",
		},
		[]string{"route", "status"},
	)

	IndexerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsync",
			Name:      "indexer_request_duration_seconds",
			Help:      "Indexing API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"route"},
	)

	SyncEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsync",
			Name:      "sync_events_total",
			Help:      "Total number of processed lifecycle events",
		},
		[]string{"op", "outcome"},
	)

	SyncEventDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsync",
			Name:      "sync_event_duration_seconds",
			Help:      "Lifecycle event processing duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"op"},
	)
)
