// Package mapping is the Document Mapping Store: entity-to-document
// associations kept on top of any db.MappingStore driver.
package mapping

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsync/internal/db"
	"github.com/kailas-cloud/docsync/internal/domain"
)

// Operation labels for logs and docsync_store_operations_total.
const (
	opAdd     = "add"
	opDocIDs  = "doc_ids"
	opDelete  = "delete"
	opReplace = "replace"
	opList    = "list"
)

// store is the consumer interface for mapping rows (ISP).
type store interface {
	db.MappingWriter
	db.MappingReader
}

// Repo implements usecase/sync.Store and usecase/health reads.
type Repo struct {
	store  store
	opsTot *prometheus.CounterVec
	logger *zap.Logger
}

// New creates a mapping repository.
// opsTotal is a counter vec with labels "op" and "status" ("ok"/"error"); nil disables it.
func New(s store, opsTotal *prometheus.CounterVec, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, opsTot: opsTotal, logger: logger}
}

// Add records that docID was produced from entityID. An empty docType means "default".
func (r *Repo) Add(ctx context.Context, entityID int64, docID, docType string) (int64, error) {
	docType = domain.DocTypeOrDefault(docType)
	recordID, err := r.store.Insert(ctx, domain.Mapping{EntityID: entityID, DocID: docID, DocType: docType})
	if err != nil {
		r.fail(opAdd, err, zap.Int64("entity_id", entityID), zap.String("doc_id", docID))
		return 0, fmt.Errorf("add mapping %d->%s: %w: %w", entityID, docID, domain.ErrStorage, err)
	}

	r.ok(opAdd, "mapping added",
		zap.Int64("entity_id", entityID),
		zap.String("doc_id", docID),
		zap.String("doc_type", docType),
		zap.Int64("record_id", recordID),
	)
	return recordID, nil
}

// DocIDs returns the entity's document IDs in insertion order.
// Storage errors are logged and yield an empty result.
func (r *Repo) DocIDs(ctx context.Context, entityID int64) []string {
	ids, err := r.store.DocIDs(ctx, entityID)
	if err != nil {
		r.fail(opDocIDs, err, zap.Int64("entity_id", entityID))
		return []string{}
	}
	if ids == nil {
		return []string{}
	}
	return ids
}

// Delete removes every mapping of the entity and returns how many rows went away.
func (r *Repo) Delete(ctx context.Context, entityID int64) (int64, error) {
	n, err := r.store.DeleteAll(ctx, entityID)
	if err != nil {
		r.fail(opDelete, err, zap.Int64("entity_id", entityID))
		return 0, fmt.Errorf("delete mappings of %d: %w: %w", entityID, domain.ErrStorage, err)
	}

	r.ok(opDelete, "mappings deleted", zap.Int64("entity_id", entityID), zap.Int64("removed", n))
	return n, nil
}

// Replace swaps the entity's mappings for docIDs. On error the previous
// mappings are still in place.
func (r *Repo) Replace(ctx context.Context, entityID int64, docIDs []string, docType string) error {
	docType = domain.DocTypeOrDefault(docType)
	if err := r.store.Replace(ctx, entityID, docIDs, docType); err != nil {
		r.fail(opReplace, err, zap.Int64("entity_id", entityID), zap.Strings("doc_ids", docIDs))
		return fmt.Errorf("replace mappings of %d: %w: %w", entityID, domain.ErrStorage, err)
	}

	r.ok(opReplace, "mappings replaced",
		zap.Int64("entity_id", entityID),
		zap.Strings("doc_ids", docIDs),
		zap.String("doc_type", docType),
	)
	return nil
}

// Mappings returns the full rows of the entity.
func (r *Repo) Mappings(ctx context.Context, entityID int64) ([]domain.Mapping, error) {
	rows, err := r.store.List(ctx, entityID)
	if err != nil {
		r.fail(opList, err, zap.Int64("entity_id", entityID))
		return nil, fmt.Errorf("list mappings of %d: %w: %w", entityID, domain.ErrStorage, err)
	}
	r.inc(opList, "ok")
	if rows == nil {
		rows = []domain.Mapping{}
	}
	return rows, nil
}

func (r *Repo) ok(op, msg string, fields ...zap.Field) {
	r.inc(op, "ok")
	r.logger.Info(msg, fields...)
}

func (r *Repo) fail(op string, err error, fields ...zap.Field) {
	r.inc(op, "error")
	fields = append(fields, zap.String("op", op), zap.Error(err))
	r.logger.Error("storage failure", fields...)
}

func (r *Repo) inc(op, status string) {
	if r.opsTot != nil {
		r.opsTot.WithLabelValues(op, status).Inc()
	}
}
