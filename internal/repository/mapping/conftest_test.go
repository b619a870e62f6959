package mapping

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/docsync/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	insertFn    func(ctx context.Context, m domain.Mapping) (int64, error)
	deleteAllFn func(ctx context.Context, entityID int64) (int64, error)
	replaceFn   func(ctx context.Context, entityID int64, docIDs []string, docType string) error
	docIDsFn    func(ctx context.Context, entityID int64) ([]string, error)
	listFn      func(ctx context.Context, entityID int64) ([]domain.Mapping, error)
}

func (m *mockStore) Insert(ctx context.Context, mp domain.Mapping) (int64, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, mp)
	}
	return 1, nil
}

func (m *mockStore) DeleteAll(ctx context.Context, entityID int64) (int64, error) {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx, entityID)
	}
	return 0, nil
}

func (m *mockStore) Replace(ctx context.Context, entityID int64, docIDs []string, docType string) error {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, entityID, docIDs, docType)
	}
	return nil
}

func (m *mockStore) DocIDs(ctx context.Context, entityID int64) ([]string, error) {
	if m.docIDsFn != nil {
		return m.docIDsFn(ctx, entityID)
	}
	return nil, nil
}

func (m *mockStore) List(ctx context.Context, entityID int64) ([]domain.Mapping, error) {
	if m.listFn != nil {
		return m.listFn(ctx, entityID)
	}
	return nil, nil
}

type testEnv struct {
	repo  *Repo
	store *mockStore
	logs  *observer.ObservedLogs
	ops   *prometheus.CounterVec
}

func newTestRepo(t *testing.T) *testEnv {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	ops := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "test_store_operations_total"},
		[]string{"op", "status"},
	)
	ms := &mockStore{}
	return &testEnv{
		repo:  New(ms, ops, zap.New(core)),
		store: ms,
		logs:  logs,
		ops:   ops,
	}
}
