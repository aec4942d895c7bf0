package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/backend"
)

func TestHealthWithEnabledBackend(t *testing.T) {
	t.Parallel()

	reg := backend.NewRegistry("")
	require.NoError(t, reg.Register(&backend.Endpoint{
		ID: "mock", Enabled: true, BackendType: "qdrant", Backend: &mockBackend{},
	}))

	rec := httptest.NewRecorder()
	HealthRouter(reg, true, true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status          string `json:"status"`
		EnabledBackends int    `json:"enabled_backends"`
		ChatEnabled     bool   `json:"chat_enabled"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.EnabledBackends)
	assert.True(t, body.ChatEnabled)
}

func TestHealthWithoutBackends(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	HealthRouter(backend.NewRegistry(""), false, false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
}
