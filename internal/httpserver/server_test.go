package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/metrics"
)

func TestHealth(t *testing.T) {
	s := New(":0", zap.NewNop())
	s.AddCheck("sessions", func(context.Context) error { return nil })

	app := httptest.NewServer(s.Router())
	defer app.Close()

	resp, err := http.Get(app.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["sessions"])
}

func TestHealthDegraded(t *testing.T) {
	s := New(":0", zap.NewNop())
	s.AddCheck("sessions", func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMetricsExposed(t *testing.T) {
	metrics.APIRequest(http.MethodGet, "api/tutoring/user/me/", http.StatusOK)
	metrics.ChatMessage("out")

	s := New(":0", zap.NewNop())
	app := httptest.NewServer(s.Router())
	defer app.Close()

	resp, err := http.Get(app.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tutoring_bot_api_requests_total")
	assert.Contains(t, string(data), "tutoring_bot_chat_messages_total")
}
