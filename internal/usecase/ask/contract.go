package ask

import (
	"context"

	"github.com/kailas-cloud/docsync/internal/domain/payload"
)

// Gateway relays questions to the remote indexing API.
type Gateway interface {
	Ask(ctx context.Context, p payload.Ask) (*payload.AskResponse, error)
}
