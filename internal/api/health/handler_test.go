package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor/pkg/logger"
)

func TestHandlePing(t *testing.T) {
	handler := New(logger.Get(), "financial-advisor-multiagent", "1.0.0")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	handler.HandlePing(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status PingStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "financial-advisor-multiagent", status.Service)
	assert.Equal(t, "1.0.0", status.Version)
	assert.NotEmpty(t, status.Uptime)
	assert.NotEmpty(t, status.Timestamp)
}

func TestHandleLiveness(t *testing.T) {
	handler := New(logger.Get(), "financial-advisor-multiagent", "1.0.0")

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()
	handler.HandleLiveness(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alive", body["status"])
}
