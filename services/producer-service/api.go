package main

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/httpserver"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/sysstats"
)

const serviceName = "producer-service"

// ControlResponse je odpověď na start/stop.
type ControlResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// APIHandler ovládá simulaci přes HTTP.
type APIHandler struct {
	engine *Engine
	logger *slog.Logger
}

func NewAPIHandler(e *Engine, logger *slog.Logger) *APIHandler {
	return &APIHandler{engine: e, logger: logger}
}

func (h *APIHandler) RegisterRoutes(r *mux.Router) {
	// Přímo na rootu, ne přes Subrouter: jen tak mux vrací 405 na špatnou metodu.
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/producer/start", h.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/api/producer/stop", h.handleStop).Methods(http.MethodPost)
	r.HandleFunc("/api/producer/status", h.handleStatus).Methods(http.MethodGet)
}

// handleStart: POST /api/producer/start
func (h *APIHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Požadavek na start simulace")

	resp := ControlResponse{Status: "ALREADY_RUNNING", Message: "Already running"}
	if h.engine.Start() {
		resp = ControlResponse{Status: "STARTED", Message: "Started successfully"}
	}
	httpserver.WriteJSON(w, http.StatusOK, resp)
}

// handleStop: POST /api/producer/stop
func (h *APIHandler) handleStop(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Požadavek na zastavení simulace")

	resp := ControlResponse{Status: "ALREADY_STOPPED", Message: "Already stopped"}
	if h.engine.Stop() {
		resp = ControlResponse{Status: "STOPPED", Message: "Stopped successfully"}
	}
	httpserver.WriteJSON(w, http.StatusOK, resp)
}

// handleStatus: GET /api/producer/status
func (h *APIHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	httpserver.WriteJSON(w, http.StatusOK, h.engine.Status())
}

// handleHealth: GET /health
func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := h.engine.Status()
	httpserver.WriteJSON(w, http.StatusOK, map[string]any{
		"status":       "UP",
		"service":      serviceName,
		"running":      st.Running,
		"messagesSent": st.MessagesSent,
		"timestamp":    httpserver.NowMillis(),
		"system":       sysstats.Collect(h.logger),
	})
}
