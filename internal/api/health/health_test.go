package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Conversly/tripshare/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }

type fakeSchema struct {
	version int
	pending []int
	err     error
}

func (f fakeSchema) Version(context.Context) (int, error)   { return f.version, f.err }
func (f fakeSchema) Pending(context.Context) ([]int, error) { return f.pending, f.err }

func serve(db Pinger, schema SchemaChecker, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, db, schema)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLive(t *testing.T) {
	w := serve(fakeDB{err: errors.New("down")}, nil, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReady(t *testing.T) {
	w := serve(fakeDB{}, fakeSchema{version: 6}, "/readyz")
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, 6, resp.SchemaVersion)

	w = serve(fakeDB{err: errors.New("connection refused")}, fakeSchema{version: 6}, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serve(fakeDB{}, fakeSchema{version: 4, pending: []int{5, 6}}, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "2 version(s) pending")

	w = serve(fakeDB{}, fakeSchema{err: errors.New("boom")}, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serve(fakeDB{}, nil, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	w := serve(fakeDB{}, nil, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
