package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/docsync/internal/domain"
	chiTransport "github.com/kailas-cloud/docsync/internal/transport/chi"
)

// stubIndex mints one doc id per fed entity.
type stubIndex struct {
	mu      sync.Mutex
	deleted []string
}

func (s *stubIndex) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var body struct {
		EntityID string   `json:"entity_id"`
		IDs      []string `json:"ids"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	switch r.URL.Path {
	case "/feed/add", "/feed/update":
		_ = json.NewEncoder(w).Encode(map[string][]string{"doc_ids": {"doc-" + body.EntityID}})
	case "/feed/delete":
		s.deleted = append(s.deleted, body.IDs...)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	case "/ask":
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "forty-two"})
	default:
		http.NotFound(w, r)
	}
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`http:
  port: 18080
database:
  driver: sqlite
  dsn: %s
indexer:
  base_url: %s
  timeout_sec: 2
logging:
  level: error
`, filepath.Join(dir, "docsync.db"), baseURL)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeReports(t *testing.T, out string) []chiTransport.ReportResponse {
	t.Helper()
	var reports []chiTransport.ReportResponse
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var r chiTransport.ReportResponse
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r), sc.Text())
		reports = append(reports, r)
	}
	return reports
}

func TestSyncCmd_Lifecycle(t *testing.T) {
	idx := &stubIndex{}
	srv := httptest.NewServer(idx)
	defer srv.Close()
	cfg := writeConfig(t, srv.URL)

	out, err := run(t, "", "--env", "local", "--config", cfg, "sync", "insert", "--id", "7", "--body", "hello")
	require.NoError(t, err)
	reports := decodeReports(t, out)
	require.Len(t, reports, 1)
	assert.Equal(t, "synced", reports[0].Outcome)
	assert.Equal(t, []string{"doc-7"}, reports[0].DocIDs)

	out, err = run(t, "", "--env", "local", "--config", cfg, "mappings", "7")
	require.NoError(t, err)
	var list chiTransport.MappingListResponse
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "doc-7", list.Items[0].DocID)
	assert.Equal(t, "default", list.Items[0].DocType)

	out, err = run(t, "", "--env", "local", "--config", cfg, "sync", "delete", "--id", "7")
	require.NoError(t, err)
	reports = decodeReports(t, out)
	require.Len(t, reports, 1)
	assert.Equal(t, "synced", reports[0].Outcome)
	assert.Equal(t, []string{"doc-7"}, idx.deleted)
}

func TestSyncCmd_InvalidEntityIsSkipped(t *testing.T) {
	srv := httptest.NewServer(&stubIndex{})
	defer srv.Close()
	cfg := writeConfig(t, srv.URL)

	out, err := run(t, "", "--env", "local", "--config", cfg, "sync", "insert", "--id=-1")
	require.NoError(t, err)
	reports := decodeReports(t, out)
	require.Len(t, reports, 1)
	assert.Equal(t, "skipped", reports[0].Outcome)
}

func TestSyncCmd_RemoteFailureExitsNonZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	cfg := writeConfig(t, srv.URL)

	out, err := run(t, "", "--env", "local", "--config", cfg, "sync", "insert", "--id", "3", "--body", "x")
	require.ErrorIs(t, err, errEventFailed)
	reports := decodeReports(t, out)
	require.Len(t, reports, 1)
	assert.Equal(t, "failed", reports[0].Outcome)
}

func TestSyncCmd_BackfillFromStdin(t *testing.T) {
	srv := httptest.NewServer(&stubIndex{})
	defer srv.Close()
	cfg := writeConfig(t, srv.URL)

	stdin := `{"id":1,"body":"a"}

{"id":2,"body":"b"}
{"id":1,"body":"a2"}
`
	out, err := run(t, stdin, "--env", "local", "--config", cfg, "sync", "backfill", "--concurrency", "2")
	require.NoError(t, err)
	reports := decodeReports(t, out)
	require.Len(t, reports, 2)
	assert.Equal(t, int64(1), reports[0].EntityID)
	assert.Equal(t, int64(2), reports[1].EntityID)
	for _, r := range reports {
		assert.Equal(t, "insert", r.Op)
		assert.Equal(t, "synced", r.Outcome)
	}

	// Second pass finds existing mappings and updates.
	out, err = run(t, `{"id":2,"body":"b2"}`, "--env", "local", "--config", cfg, "sync", "backfill")
	require.NoError(t, err)
	reports = decodeReports(t, out)
	require.Len(t, reports, 1)
	assert.Equal(t, "update", reports[0].Op)
}

func TestReadEntities(t *testing.T) {
	got, err := readEntities(strings.NewReader("{\"id\":5,\"body\":\"x\"}\n{\"id\":6}\n"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Entity{{ID: 5, Body: "x"}, {ID: 6}}, got)

	_, err = readEntities(strings.NewReader("{\"id\":5}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestAskCmd(t *testing.T) {
	srv := httptest.NewServer(&stubIndex{})
	defer srv.Close()
	cfg := writeConfig(t, srv.URL)

	out, err := run(t, "", "--env", "local", "--config", cfg, "ask", "what", "is", "it?")
	require.NoError(t, err)
	assert.Equal(t, "Response: forty-two\n", out)
}

func TestMappingsCmd_InvalidID(t *testing.T) {
	_, err := run(t, "", "mappings", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid entity id")
}
