package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLivenessHandler(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"service":"office2md"`)
	assert.Contains(t, w.Body.String(), `"version":"test"`)
	assert.Contains(t, w.Body.String(), `"timestamp"`)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestReadinessHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "accessible", resp.Checks["staging"])
		assert.Equal(t, "available", resp.Checks["converter"])
		assert.Equal(t, "available", resp.Details["converter_custom"])
		assert.Equal(t, "0", resp.Details["sessions"])
	})

	t.Run("sweeps orphaned staged files", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, afero.WriteFile(env.memFs, "/staging/orphan.pdf", []byte("x"), 0o600))
		past := time.Now().Add(-2 * time.Hour)
		require.NoError(t, env.memFs.Chtimes("/staging/orphan.pdf", past, past))

		w := env.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"staging_swept":"1"`)
		exists, _ := afero.Exists(env.memFs, "/staging/orphan.pdf")
		assert.False(t, exists)
	})

	t.Run("staging inaccessible", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.memFs.RemoveAll("/staging"))

		w := env.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"unhealthy"`)
		assert.Contains(t, w.Body.String(), `"staging":"inaccessible"`)
	})

	t.Run("no converter available", func(t *testing.T) {
		env := newTestEnv(t)
		env.conv.available = false

		w := env.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"converter":"unavailable"`)
	})
}
