package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*mux.Router, *Engine) {
	t.Helper()
	e := newTestEngine(&fakePublisher{}, 2, 50*time.Millisecond)
	t.Cleanup(func() { e.Stop() })
	r := mux.NewRouter()
	NewAPIHandler(e, discardLogger()).RegisterRoutes(r)
	return r, e
}

func call(t *testing.T, r http.Handler, method, path string) map[string]any {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestStartStopEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	body := call(t, r, http.MethodPost, "/api/producer/start")
	assert.Equal(t, "STARTED", body["status"])
	assert.Equal(t, "Started successfully", body["message"])

	body = call(t, r, http.MethodPost, "/api/producer/start")
	assert.Equal(t, "ALREADY_RUNNING", body["status"])
	assert.Equal(t, "Already running", body["message"])

	body = call(t, r, http.MethodPost, "/api/producer/stop")
	assert.Equal(t, "STOPPED", body["status"])
	assert.Equal(t, "Stopped successfully", body["message"])

	body = call(t, r, http.MethodPost, "/api/producer/stop")
	assert.Equal(t, "ALREADY_STOPPED", body["status"])
	assert.Equal(t, "Already stopped", body["message"])
}

func TestStatusEndpoint(t *testing.T) {
	r, e := newTestRouter(t)

	body := call(t, r, http.MethodGet, "/api/producer/status")
	assert.Equal(t, false, body["running"])
	assert.EqualValues(t, 2, body["sensorCount"])
	assert.NotContains(t, body, "uptimeMs")

	require.True(t, e.Start())
	body = call(t, r, http.MethodGet, "/api/producer/status")
	assert.Equal(t, true, body["running"])
	assert.Contains(t, body, "uptimeMs")
	assert.Contains(t, body, "uptimeFormatted")
}

func TestStartRequiresPost(t *testing.T) {
	r, e := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/producer/start", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, e.Status().Running)
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	body := call(t, r, http.MethodGet, "/health")
	assert.Equal(t, "UP", body["status"])
	assert.Equal(t, serviceName, body["service"])
	assert.Contains(t, body, "system")
}
