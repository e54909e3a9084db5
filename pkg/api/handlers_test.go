package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/mimir/pkg/table"
)

const testAPIKey = "test-key"

func setupTestServer(t *testing.T) (*Server[int64, float32], http.Handler) {
	t.Helper()

	tbl, err := table.Open[int64, float32](table.Options{
		Path:      filepath.Join(t.TempDir(), "db"),
		Namespace: "embeddings",
		RowWidth:  2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { tbl.Close() })

	server := NewServer(tbl, ServerConfig{APIKey: testAPIKey}, nil)
	return server, server.Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuth(t *testing.T) {
	_, h := setupTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing key")

	req = httptest.NewRequest("GET", "/api/v1/health", nil)
	req.Header.Set("X-API-Key", "wrong")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "wrong key")

	w = doJSON(t, h, "GET", "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_CountsAttempts(t *testing.T) {
	_, h := setupTestServer(t)

	rejected := testutil.ToFloat64(serverMetrics.authRequestsTotal.WithLabelValues(statusError))
	accepted := testutil.ToFloat64(serverMetrics.authRequestsTotal.WithLabelValues(statusSuccess))

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/api/v1/health", nil)
	req.Header.Set("X-API-Key", "wrong")
	h.ServeHTTP(httptest.NewRecorder(), req)

	doJSON(t, h, "GET", "/api/v1/health", nil)

	assert.Equal(t, rejected+2,
		testutil.ToFloat64(serverMetrics.authRequestsTotal.WithLabelValues(statusError)),
		"both rejected requests should be counted")
	assert.Equal(t, accepted+1,
		testutil.ToFloat64(serverMetrics.authRequestsTotal.WithLabelValues(statusSuccess)),
		"the authenticated request should be counted")
}

func TestInsertAndFind(t *testing.T) {
	_, h := setupTestServer(t)

	w := doJSON(t, h, "POST", "/api/v1/table/insert", InsertRequest[int64, float32]{
		Keys:   []int64{1, 2},
		Values: []float32{1.0, 2.0, 3.0, 4.0},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, h, "POST", "/api/v1/table/find", FindRequest[int64, float32]{
		Keys:     []int64{1, 2, 3},
		Defaults: []float32{0.0, 0.0},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	require.True(t, resp.Success)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var found FindResponse[float32]
	require.NoError(t, json.Unmarshal(data, &found))
	assert.Equal(t, []float32{1, 2, 3, 4, 0, 0}, found.Values)
}

func TestFind_BadShape(t *testing.T) {
	_, h := setupTestServer(t)

	w := doJSON(t, h, "POST", "/api/v1/table/find", FindRequest[int64, float32]{
		Keys:     []int64{1},
		Defaults: []float32{0.0, 0.0, 0.0},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decodeResponse(t, w).Success)
}

func TestRemoveAndClear(t *testing.T) {
	_, h := setupTestServer(t)

	w := doJSON(t, h, "POST", "/api/v1/table/insert", InsertRequest[int64, float32]{
		Keys:   []int64{1, 2, 3},
		Values: []float32{1, 1, 2, 2, 3, 3},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, "POST", "/api/v1/table/remove", RemoveRequest[int64]{Keys: []int64{2}})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, "POST", "/api/v1/table/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, "POST", "/api/v1/table/find", FindRequest[int64, float32]{
		Keys:     []int64{1, 2, 3},
		Defaults: []float32{-1, -1},
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestExportImport(t *testing.T) {
	_, h := setupTestServer(t)
	path := filepath.Join(t.TempDir(), "embeddings.dump")

	w := doJSON(t, h, "POST", "/api/v1/table/insert", InsertRequest[int64, float32]{
		Keys:   []int64{7},
		Values: []float32{7.5, 8.5},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, "POST", "/api/v1/table/export", DumpRequest{Path: path})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, h, "POST", "/api/v1/table/import", DumpRequest{Path: path})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestImport_MissingArtifact(t *testing.T) {
	_, h := setupTestServer(t)

	w := doJSON(t, h, "POST", "/api/v1/table/import", DumpRequest{
		Path: filepath.Join(t.TempDir(), "absent.dump"),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStats(t *testing.T) {
	_, h := setupTestServer(t)

	w := doJSON(t, h, "GET", "/api/v1/table/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var stats StatsResponse
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.Equal(t, "embeddings", stats.Namespace)
	assert.Equal(t, 2, stats.RowWidth)
	assert.Equal(t, 0, stats.Size)
}

func TestMetricsEndpointUnprotected(t *testing.T) {
	_, h := setupTestServer(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
