// Package reconcile describes the per-document outcome of writing remote document
// IDs into the local mapping store.
package reconcile

// Status is the outcome of reconciling a single document ID.
type Status string

// Reconciliation status values.
const (
	StatusStored Status = "stored"
	StatusFailed Status = "failed"
)

// Result is the outcome of storing one document ID mapping.
type Result struct {
	docID    string
	recordID int64
	status   Status
	err      error
}

// NewStored creates a successful result with the store-assigned record ID.
func NewStored(docID string, recordID int64) Result {
	return Result{docID: docID, recordID: recordID, status: StatusStored}
}

// NewFailed creates a failed result.
func NewFailed(docID string, err error) Result {
	return Result{docID: docID, status: StatusFailed, err: err}
}

// DocID returns the remote document identifier.
func (r Result) DocID() string { return r.docID }

// RecordID returns the mapping row identity, zero when the write failed.
func (r Result) RecordID() int64 { return r.recordID }

// Status returns the outcome.
func (r Result) Status() Status { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts stored and failed results.
func Summary(results []Result) (stored, failed int) {
	for _, r := range results {
		if r.status == StatusStored {
			stored++
		} else {
			failed++
		}
	}
	return stored, failed
}
