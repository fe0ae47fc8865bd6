package main

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/httpserver"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/sysstats"
)

const serviceName = "consumer-service"

// APIHandler vystavuje health a přímé čtení z úložiště přes Pipeline.
type APIHandler struct {
	pipeline *Pipeline
	logger   *slog.Logger
}

func NewAPIHandler(p *Pipeline, logger *slog.Logger) *APIHandler {
	return &APIHandler{pipeline: p, logger: logger}
}

func (h *APIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/consumer/sensors/{sensorId}", h.handleLookup).Methods(http.MethodGet)
	r.HandleFunc("/api/consumer/sensors/{sensorId}/exists", h.handleExists).Methods(http.MethodGet)
}

// handleHealth: GET /health
func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	count := h.pipeline.ProcessedCount()
	h.logger.Debug("Health check", "messages_processed", count)

	httpserver.WriteJSON(w, http.StatusOK, map[string]any{
		"status":            "UP",
		"service":           serviceName,
		"messagesProcessed": count,
		"timestamp":         httpserver.NowMillis(),
		"system":            sysstats.Collect(h.logger),
	})
}

// handleLookup: GET /api/consumer/sensors/{sensorId}
func (h *APIHandler) handleLookup(w http.ResponseWriter, r *http.Request) {
	sensorID := mux.Vars(r)["sensorId"]

	rd, ok := h.pipeline.Lookup(r.Context(), sensorID)
	if !ok {
		httpserver.WriteError(w, r, http.StatusNotFound, "Sensor not found with ID: "+sensorID)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, rd)
}

// handleExists: GET /api/consumer/sensors/{sensorId}/exists
func (h *APIHandler) handleExists(w http.ResponseWriter, r *http.Request) {
	sensorID := mux.Vars(r)["sensorId"]

	httpserver.WriteJSON(w, http.StatusOK, map[string]any{
		"sensorId":  sensorID,
		"exists":    h.pipeline.Exists(r.Context(), sensorID),
		"timestamp": httpserver.NowMillis(),
	})
}
