package sync

import (
	"context"

	"github.com/kailas-cloud/docsync/internal/domain/payload"
)

// Gateway sends feed payloads to the remote indexing API.
// A nil response with a non-nil error means the call failed.
type Gateway interface {
	Feed(ctx context.Context, p payload.Feed) (*payload.FeedResponse, error)
}

// Store is the document mapping store.
type Store interface {
	Add(ctx context.Context, entityID int64, docID, docType string) (recordID int64, err error)
	DocIDs(ctx context.Context, entityID int64) []string
	Delete(ctx context.Context, entityID int64) (removed int64, err error)
	Replace(ctx context.Context, entityID int64, docIDs []string, docType string) error
}
