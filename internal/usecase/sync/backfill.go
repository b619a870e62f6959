package sync

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docsync/internal/domain"
)

// DefaultBackfillConcurrency bounds parallel events when the caller passes zero.
const DefaultBackfillConcurrency = 4

// Backfill synchronizes existing entities: Update when the entity already has
// mappings, Insert otherwise. Distinct entities run concurrently, at most
// concurrency at a time; a repeated ID keeps its last body and runs once.
// Reports come back in first-seen order.
func (s *Service) Backfill(ctx context.Context, entities []domain.Entity, concurrency int) []Report {
	if concurrency <= 0 {
		concurrency = DefaultBackfillConcurrency
	}

	unique := dedupe(entities)
	reports := make([]Report, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, e := range unique {
		g.Go(func() error {
			reports[i] = s.backfillOne(gctx, e)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	s.logger.Info("backfill finished", zap.Int("entities", len(unique)), zap.Any("outcomes", tally(reports)))
	return reports
}

func (s *Service) backfillOne(ctx context.Context, e domain.Entity) Report {
	if err := ctx.Err(); err != nil {
		return newReport(OpInsert, e.ID).withOutcome(OutcomeSkipped, err)
	}
	if e.Validate() == nil && len(s.store.DocIDs(ctx, e.ID)) > 0 {
		return s.Update(ctx, e)
	}
	return s.Insert(ctx, e)
}

func dedupe(entities []domain.Entity) []domain.Entity {
	pos := make(map[int64]int, len(entities))
	out := make([]domain.Entity, 0, len(entities))
	for _, e := range entities {
		if i, ok := pos[e.ID]; ok {
			out[i] = e
			continue
		}
		pos[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}

func tally(reports []Report) map[Outcome]int {
	m := make(map[Outcome]int)
	for _, r := range reports {
		m[r.Outcome]++
	}
	return m
}
