package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/docsync/internal/domain"
)

// MappingStore is the persistence substrate for entity-to-document mappings.
// Every driver (postgres, sqlite, redis/valkey) implements it.
type MappingStore interface {
	Pinger
	MappingWriter
	MappingReader
	Migrate(ctx context.Context) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MappingWriter mutates mapping rows.
type MappingWriter interface {
	// Insert stores one row and returns its record ID.
	Insert(ctx context.Context, m domain.Mapping) (int64, error)
	// DeleteAll removes every row of the entity and returns how many were removed.
	DeleteAll(ctx context.Context, entityID int64) (int64, error)
	// Replace atomically swaps all rows of the entity for one row per docID.
	// On failure the previous rows are left untouched.
	Replace(ctx context.Context, entityID int64, docIDs []string, docType string) error
}

// MappingReader reads mapping rows in insertion order.
type MappingReader interface {
	DocIDs(ctx context.Context, entityID int64) ([]string, error)
	List(ctx context.Context, entityID int64) ([]domain.Mapping, error)
}

// WaitForReady polls p.Ping every 100ms until it succeeds or timeout expires.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return &Error{Op: OpPing, Err: ctx.Err()}
		case <-ticker.C:
			if err := p.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
