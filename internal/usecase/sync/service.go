// Package sync keeps the remote document index and the local mapping store
// in step with entity lifecycle events. None of its operations return an
// error: failures are logged and summarized in the Report.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsync/internal/domain"
	"github.com/kailas-cloud/docsync/internal/domain/payload"
	"github.com/kailas-cloud/docsync/internal/domain/reconcile"
	"github.com/kailas-cloud/docsync/internal/metrics"
)

// ErrNoDocuments is recorded when the remote API confirmed no document IDs.
var ErrNoDocuments = errors.New("remote API returned no document ids")

// Service orchestrates insert, update and delete synchronization.
type Service struct {
	gateway Gateway
	store   Store
	docType string
	logger  *zap.Logger
}

// New creates a sync service.
func New(gw Gateway, store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gateway: gw,
		store:   store,
		docType: domain.DefaultDocType,
		logger:  logger,
	}
}

// WithDocType sets the type tag written to new mappings.
func (s *Service) WithDocType(docType string) *Service {
	if docType != "" {
		s.docType = docType
	}
	return s
}

// Insert indexes a newly created entity and records every returned document ID.
// Store failures for single documents do not stop the others.
func (s *Service) Insert(ctx context.Context, e domain.Entity) Report {
	defer s.observe(OpInsert, time.Now())
	rep := newReport(OpInsert, e.ID)
	log := s.logger.With(zap.String("op", string(OpInsert)), zap.Int64("entity_id", e.ID))

	if err := e.Validate(); err != nil {
		return s.finish(log, rep.withOutcome(OutcomeSkipped, err))
	}

	resp, err := s.gateway.Feed(ctx, payload.NewAdd(e))
	if err != nil {
		return s.finish(log, rep.withOutcome(OutcomeFailed, err))
	}
	if !resp.HasDocIDs() {
		return s.finish(log, rep.withOutcome(OutcomeNoop, nil))
	}

	rep.Results = make([]reconcile.Result, 0, len(resp.DocIDs))
	var firstErr error
	for _, docID := range resp.DocIDs {
		recordID, err := s.store.Add(ctx, e.ID, docID, s.docType)
		if err != nil {
			rep.Results = append(rep.Results, reconcile.NewFailed(docID, err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		rep.Results = append(rep.Results, reconcile.NewStored(docID, recordID))
		rep.DocIDs = append(rep.DocIDs, docID)
	}

	stored, failed := reconcile.Summary(rep.Results)
	switch {
	case failed == 0:
		rep = rep.withOutcome(OutcomeSynced, nil)
	case stored == 0:
		rep = rep.withOutcome(OutcomeFailed, firstErr)
	default:
		rep = rep.withOutcome(OutcomePartial,
			fmt.Errorf("%d of %d mappings not stored: %w", failed, stored+failed, firstErr))
	}
	return s.finish(log, rep)
}

// Update re-indexes an entity under its current document IDs and replaces
// the mappings with the IDs the remote API returns.
func (s *Service) Update(ctx context.Context, e domain.Entity) Report {
	defer s.observe(OpUpdate, time.Now())
	rep := newReport(OpUpdate, e.ID)
	log := s.logger.With(zap.String("op", string(OpUpdate)), zap.Int64("entity_id", e.ID))

	if err := e.Validate(); err != nil {
		return s.finish(log, rep.withOutcome(OutcomeSkipped, err))
	}

	current := s.store.DocIDs(ctx, e.ID)
	resp, err := s.gateway.Feed(ctx, payload.NewUpdate(e, current))
	if err != nil {
		return s.finish(log, rep.withOutcome(OutcomeFailed, err))
	}
	if !resp.HasDocIDs() {
		return s.finish(log, rep.withOutcome(OutcomeNoop, nil))
	}

	if err := s.store.Replace(ctx, e.ID, resp.DocIDs, s.docType); err != nil {
		return s.finish(log, rep.withOutcome(OutcomeFailed, err))
	}
	rep.DocIDs = resp.DocIDs
	return s.finish(log, rep.withOutcome(OutcomeSynced, nil))
}

// Delete removes the entity's documents remotely and always clears its
// local mappings, whatever the remote API answered.
func (s *Service) Delete(ctx context.Context, e domain.Entity) Report {
	defer s.observe(OpDelete, time.Now())
	rep := newReport(OpDelete, e.ID)
	log := s.logger.With(zap.String("op", string(OpDelete)), zap.Int64("entity_id", e.ID))

	if err := e.Validate(); err != nil {
		return s.finish(log, rep.withOutcome(OutcomeSkipped, err))
	}

	current := s.store.DocIDs(ctx, e.ID)
	_, feedErr := s.gateway.Feed(ctx, payload.NewDelete(current))

	if _, err := s.store.Delete(ctx, e.ID); err != nil {
		return s.finish(log, rep.withOutcome(OutcomeFailed, errors.Join(feedErr, err)))
	}
	rep.DocIDs = current
	if feedErr != nil {
		return s.finish(log, rep.withOutcome(OutcomePartial, feedErr))
	}
	return s.finish(log, rep.withOutcome(OutcomeSynced, nil))
}

// finish logs the event outcome and records it in metrics.
func (s *Service) finish(log *zap.Logger, rep Report) Report {
	metrics.SyncEventsTotal.WithLabelValues(string(rep.Op), string(rep.Outcome)).Inc()

	fields := []zap.Field{zap.String("outcome", string(rep.Outcome)), zap.Strings("doc_ids", rep.DocIDs)}
	switch rep.Outcome {
	case OutcomeSynced:
		log.Info("entity synchronized", fields...)
	case OutcomeNoop:
		log.Info("entity not indexed", append(fields, zap.Error(ErrNoDocuments))...)
	case OutcomeSkipped:
		log.Warn("entity skipped", append(fields, zap.Error(rep.Err))...)
	default:
		log.Error("entity synchronization failed", append(fields, zap.Error(rep.Err))...)
	}
	return rep
}

func (s *Service) observe(op Op, start time.Time) {
	metrics.SyncEventDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
}
