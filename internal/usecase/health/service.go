package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the indexing API is unreachable while storage works.
	Degraded Status = "degraded"
	// Unhealthy indicates the mapping store is unavailable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used as Report.Checks keys.
const (
	ComponentDatabase = "database"
	ComponentIndexer  = "indexer"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	indexer IndexerChecker
}

// New creates a Service. indexer can be nil.
func New(db DBPinger, indexer IndexerChecker) *Service {
	return &Service{db: db, indexer: indexer}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	checks[ComponentDatabase] = result(s.db.Ping(ctx))

	if s.indexer != nil {
		checks[ComponentIndexer] = result(s.indexer.HealthCheck(ctx))
		if checks[ComponentIndexer] == CheckError {
			status = Degraded
		}
	}

	if checks[ComponentDatabase] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
