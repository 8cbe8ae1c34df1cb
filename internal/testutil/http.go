package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// NewEngine returns a test-mode gin engine with the custom validators and
// the error-rendering middleware the server uses.
func NewEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, utils.RegisterValidators())

	r := gin.New()
	r.Use(shared.Recovery())
	return r
}

func NewTokens(t *testing.T) *shared.TokenManager {
	t.Helper()
	tm, err := shared.NewTokenManager("test-secret", time.Hour, "tripshare")
	require.NoError(t, err)
	return tm
}

// Token issues a bearer token for u.
func Token(t *testing.T, tm *shared.TokenManager, u *types.User) string {
	t.Helper()
	token, _, err := tm.Issue(u)
	require.NoError(t, err)
	return token
}

// Do sends a request with an optional JSON body and bearer token.
func Do(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the recorded response body into a new T.
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
