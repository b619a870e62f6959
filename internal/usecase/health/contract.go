package health

import "context"

// DBPinger checks mapping store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexerChecker checks that the remote indexing API is reachable.
type IndexerChecker interface {
	HealthCheck(ctx context.Context) error
}
