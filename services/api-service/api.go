package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/httpserver"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/sysstats"
)

const serviceName = "api-service"

// maxBatchBody: tělo /batch je jen seznam ID, víc nepřijímáme.
const maxBatchBody = 1 << 20

// APIHandler sdružuje metody pro obsluhu HTTP požadavků.
type APIHandler struct {
	svc    *Service
	logger *slog.Logger
}

// NewAPIHandler vytváří novou instanci handleru.
func NewAPIHandler(svc *Service, logger *slog.Logger) *APIHandler {
	return &APIHandler{svc: svc, logger: logger}
}

// RegisterRoutes mapuje URL cesty na handlery.
func (h *APIHandler) RegisterRoutes(r *mux.Router) {
	// Bez Subrouteru, aby špatná metoda dávala 405 a ne 404.
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/sensors/latest", h.handleLatest).Methods(http.MethodGet)
	r.HandleFunc("/api/sensors/all", h.handleAll).Methods(http.MethodGet)
	r.HandleFunc("/api/sensors/batch", h.handleBatch).Methods(http.MethodPost)
	r.HandleFunc("/api/sensors/statistics", h.handleStatistics).Methods(http.MethodGet)
	r.HandleFunc("/api/sensors/list", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/sensors/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/sensors/exists/{sensorId}", h.handleExists).Methods(http.MethodGet)
}

// handleLatest: GET /api/sensors/latest?sensorId=101
func (h *APIHandler) handleLatest(w http.ResponseWriter, r *http.Request) {
	sensorID := r.URL.Query().Get("sensorId")
	if strings.TrimSpace(sensorID) == "" {
		httpserver.WriteError(w, r, http.StatusBadRequest, "sensorId must not be blank")
		return
	}
	h.logger.Info("Čtu data senzoru", "sensor_id", sensorID)

	rd, ok := h.svc.GetLatest(r.Context(), sensorID)
	if !ok {
		httpserver.WriteError(w, r, http.StatusNotFound, "Sensor not found with ID: "+sensorID)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, rd)
}

// handleAll: GET /api/sensors/all
func (h *APIHandler) handleAll(w http.ResponseWriter, r *http.Request) {
	httpserver.WriteJSON(w, http.StatusOK, h.svc.GetAll(r.Context()))
}

// handleBatch: POST /api/sensors/batch, tělo ["101","102"]
func (h *APIHandler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var ids []string
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBody))
	if err := dec.Decode(&ids); err != nil {
		h.logger.Warn("Neplatné tělo batch požadavku", "error", err)
		httpserver.WriteError(w, r, http.StatusBadRequest, "request body must be a JSON array of sensor IDs")
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, h.svc.GetBatch(r.Context(), ids))
}

// handleStatistics: GET /api/sensors/statistics
func (h *APIHandler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	httpserver.WriteJSON(w, http.StatusOK, h.svc.GetStatistics(r.Context()))
}

// handleList: GET /api/sensors/list
func (h *APIHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ids := h.svc.ListSensorIDs(r.Context())
	httpserver.WriteJSON(w, http.StatusOK, map[string]any{
		"sensorIds": ids,
		"count":     len(ids),
		"timestamp": httpserver.NowMillis(),
	})
}

// handleHealth: GET /health a GET /api/sensors/health
func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpserver.WriteJSON(w, http.StatusOK, map[string]any{
		"status":        "UP",
		"service":       serviceName,
		"timestamp":     httpserver.NowMillis(),
		"activeSensors": len(h.svc.ListSensorIDs(r.Context())),
		"system":        sysstats.Collect(h.logger),
	})
}

// handleExists: GET /api/sensors/exists/{sensorId}
func (h *APIHandler) handleExists(w http.ResponseWriter, r *http.Request) {
	sensorID := mux.Vars(r)["sensorId"]
	httpserver.WriteJSON(w, http.StatusOK, map[string]any{
		"sensorId":  sensorID,
		"exists":    h.svc.SensorExists(r.Context(), sensorID),
		"timestamp": httpserver.NowMillis(),
	})
}
