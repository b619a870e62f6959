package sync

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/docsync/internal/domain"
	"github.com/kailas-cloud/docsync/internal/domain/payload"
)

var (
	errNetwork = errors.New("dial tcp: connection refused")
	errDisk    = errors.New("disk I/O error")
)

// mockGateway records every payload and answers via feedFn.
type mockGateway struct {
	mu     stdsync.Mutex
	sent   []payload.Feed
	feedFn func(ctx context.Context, p payload.Feed) (*payload.FeedResponse, error)
}

func (m *mockGateway) Feed(ctx context.Context, p payload.Feed) (*payload.FeedResponse, error) {
	m.mu.Lock()
	m.sent = append(m.sent, p)
	m.mu.Unlock()
	if m.feedFn != nil {
		return m.feedFn(ctx, p)
	}
	return &payload.FeedResponse{}, nil
}

func (m *mockGateway) calls() []payload.Feed {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]payload.Feed(nil), m.sent...)
}

func respond(ids ...string) func(context.Context, payload.Feed) (*payload.FeedResponse, error) {
	return func(context.Context, payload.Feed) (*payload.FeedResponse, error) {
		return &payload.FeedResponse{DocIDs: ids}, nil
	}
}

func failFeed(context.Context, payload.Feed) (*payload.FeedResponse, error) {
	return nil, errors.Join(domain.ErrTransport, errNetwork)
}

// memStore is an in-memory Store; the *Fn hooks inject failures.
type memStore struct {
	mu      stdsync.Mutex
	rows    map[int64][]string
	nextID  int64
	addFn   func(entityID int64, docID string) error
	delFn   func(entityID int64) error
	replFn  func(entityID int64, docIDs []string) error
	readErr bool
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[int64][]string)}
}

func (m *memStore) Add(_ context.Context, entityID int64, docID, _ string) (int64, error) {
	if m.addFn != nil {
		if err := m.addFn(entityID, docID); err != nil {
			return 0, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.rows[entityID] = append(m.rows[entityID], docID)
	return m.nextID, nil
}

func (m *memStore) DocIDs(_ context.Context, entityID int64) []string {
	if m.readErr {
		return []string{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.rows[entityID]...)
}

func (m *memStore) Delete(_ context.Context, entityID int64) (int64, error) {
	if m.delFn != nil {
		if err := m.delFn(entityID); err != nil {
			return 0, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.rows[entityID]))
	delete(m.rows, entityID)
	return n, nil
}

func (m *memStore) Replace(_ context.Context, entityID int64, docIDs []string, _ string) error {
	if m.replFn != nil {
		if err := m.replFn(entityID, docIDs); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[entityID] = append([]string{}, docIDs...)
	return nil
}

func (m *memStore) seed(entityID int64, ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[entityID] = append([]string{}, ids...)
}

type testEnv struct {
	svc   *Service
	gw    *mockGateway
	store *memStore
	logs  *observer.ObservedLogs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	gw := &mockGateway{}
	st := newMemStore()
	return &testEnv{
		svc:   New(gw, st, zap.New(core)),
		gw:    gw,
		store: st,
		logs:  logs,
	}
}

func entity(id int64, body string) domain.Entity {
	return domain.Entity{ID: id, Body: body}
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
