package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var registerOnce sync.Once

// Register adds every docsync metric to the default registry. It is called
// from the composition root and is safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestDuration,
			HTTPRequestsTotal,
			StoreOperationsTotal,
			IndexerRequestsTotal,
			IndexerRequestDuration,
			SyncEventsTotal,
			SyncEventDuration,
		)
	})
}
