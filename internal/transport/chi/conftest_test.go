package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsync/internal/domain"
	askuc "github.com/kailas-cloud/docsync/internal/usecase/ask"
	healthuc "github.com/kailas-cloud/docsync/internal/usecase/health"
	syncuc "github.com/kailas-cloud/docsync/internal/usecase/sync"
)

type mockSyncer struct {
	got      []domain.Entity
	insertFn func(ctx context.Context, e domain.Entity) syncuc.Report
}

func (m *mockSyncer) Insert(ctx context.Context, e domain.Entity) syncuc.Report {
	m.got = append(m.got, e)
	if m.insertFn != nil {
		return m.insertFn(ctx, e)
	}
	return syncuc.Report{Op: syncuc.OpInsert, EntityID: e.ID, Outcome: syncuc.OutcomeSynced}
}

func (m *mockSyncer) Update(_ context.Context, e domain.Entity) syncuc.Report {
	m.got = append(m.got, e)
	return syncuc.Report{Op: syncuc.OpUpdate, EntityID: e.ID, Outcome: syncuc.OutcomeNoop}
}

func (m *mockSyncer) Delete(_ context.Context, e domain.Entity) syncuc.Report {
	m.got = append(m.got, e)
	return syncuc.Report{Op: syncuc.OpDelete, EntityID: e.ID, Outcome: syncuc.OutcomeSynced}
}

type mockAsker struct {
	answer askuc.Answer
}

func (m *mockAsker) Ask(context.Context, string) askuc.Answer { return m.answer }

type mockMappings struct {
	rows []domain.Mapping
	err  error
}

func (m *mockMappings) Mappings(context.Context, int64) ([]domain.Mapping, error) {
	return m.rows, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type testEnv struct {
	handler  http.Handler
	sync     *mockSyncer
	ask      *mockAsker
	mappings *mockMappings
	health   *mockHealth
}

func newTestEnv(t *testing.T, apiKeys ...string) *testEnv {
	t.Helper()
	env := &testEnv{
		sync:     &mockSyncer{},
		ask:      &mockAsker{},
		mappings: &mockMappings{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{healthuc.ComponentDatabase: healthuc.CheckOK},
		}},
	}
	srv := NewServer(env.sync, env.ask, env.mappings, env.health, zap.NewNop())
	env.handler = NewRouter(srv, apiKeys, zap.NewNop())
	return env
}

func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	return rr
}
