package sync

import (
	"github.com/kailas-cloud/docsync/internal/domain/reconcile"
)

// Op is the lifecycle event being synchronized.
type Op string

// Lifecycle events.
const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Outcome summarizes how an event ended.
type Outcome string

// Event outcomes.
const (
	// OutcomeSynced: the remote API confirmed and the local store matches.
	OutcomeSynced Outcome = "synced"
	// OutcomePartial: some local writes failed, or the remote delete failed but local rows were cleared.
	OutcomePartial Outcome = "partial"
	// OutcomeNoop: the remote API returned no document IDs; nothing was written.
	OutcomeNoop Outcome = "noop"
	// OutcomeFailed: the event left no trace in the local store.
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped: the entity was not eligible for synchronization.
	OutcomeSkipped Outcome = "skipped"
)

// Report describes what one lifecycle event did. It is informational only.
type Report struct {
	Op       Op
	EntityID int64
	Outcome  Outcome
	// DocIDs are the remote IDs confirmed (insert, update) or removed (delete).
	DocIDs []string
	// Results holds per-document store outcomes for insert.
	Results []reconcile.Result
	// Err is the first failure encountered, nil when synced.
	Err error
}

func newReport(op Op, entityID int64) Report {
	return Report{Op: op, EntityID: entityID, DocIDs: []string{}}
}

func (r Report) withOutcome(o Outcome, err error) Report {
	r.Outcome = o
	r.Err = err
	return r
}
