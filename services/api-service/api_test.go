package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/httpserver"
)

func newTestRouter(t *testing.T) (*mux.Router, *miniredis.Miniredis) {
	t.Helper()
	svc, mr := newTestService(t)
	r := mux.NewRouter()
	NewAPIHandler(svc, discardLogger()).RegisterRoutes(r)
	return r, mr
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLatestEndpoint(t *testing.T) {
	r, mr := newTestRouter(t)
	putReading(t, mr, "101", 22.5, 1013.25)

	rec := do(r, http.MethodGet, "/api/sensors/latest?sensorId=101", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "101", body["sensorId"])
	assert.Equal(t, 1013.25, body["pressure"])

	rec = do(r, http.MethodGet, "/api/sensors/latest?sensorId=999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodGet, "/api/sensors/latest?sensorId=%20", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errBody httpserver.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "/api/sensors/latest", errBody.Path)
	assert.Equal(t, "Bad Request", errBody.Error)
}

func TestAllEndpointEmptyIsArray(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodGet, "/api/sensors/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestBatchEndpoint(t *testing.T) {
	r, mr := newTestRouter(t)
	putReading(t, mr, "A", 20, 1000)

	rec := do(r, http.MethodPost, "/api/sensors/batch", `["A","B"]`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body, "A")
	assert.NotContains(t, body, "B")

	rec = do(r, http.MethodPost, "/api/sensors/batch", `{"ids":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPost, "/api/sensors/batch", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatisticsEndpointEmpty(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodGet, "/api/sensors/statistics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 0, body["totalSensors"])
	assert.NotContains(t, body, "averageTemperature")
}

func TestListAndHealthEndpoints(t *testing.T) {
	r, mr := newTestRouter(t)
	putReading(t, mr, "102", 20, 1000)
	putReading(t, mr, "101", 20, 1000)

	body := decodeBody(t, do(r, http.MethodGet, "/api/sensors/list", ""))
	assert.Equal(t, []any{"101", "102"}, body["sensorIds"])
	assert.EqualValues(t, 2, body["count"])

	for _, path := range []string{"/api/sensors/health", "/health"} {
		body = decodeBody(t, do(r, http.MethodGet, path, ""))
		assert.Equal(t, "UP", body["status"])
		assert.Equal(t, serviceName, body["service"])
		assert.EqualValues(t, 2, body["activeSensors"])
	}
}

func TestExistsEndpoint(t *testing.T) {
	r, mr := newTestRouter(t)
	putReading(t, mr, "101", 20, 1000)

	body := decodeBody(t, do(r, http.MethodGet, "/api/sensors/exists/101", ""))
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, "101", body["sensorId"])

	body = decodeBody(t, do(r, http.MethodGet, "/api/sensors/exists/102", ""))
	assert.Equal(t, false, body["exists"])
}

func TestWrongMethodIsNotAllowed(t *testing.T) {
	r, _ := newTestRouter(t)

	assert.Equal(t, http.StatusMethodNotAllowed, do(r, http.MethodGet, "/api/sensors/batch", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(r, http.MethodPost, "/api/sensors/latest", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/sensors/unknown", "").Code)
}
