// Package httpserver je společný HTTP základ všech služeb: router, CORS,
// access log, recovery, /metrics a graceful shutdown.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/metrics"
)

// shutdownTimeout: kolik času dostanou rozpracované requesty při vypínání.
const shutdownTimeout = 5 * time.Second

// Options drží nastavení serveru, které se liší mezi službami.
type Options struct {
	Port string

	// AllowedOrigins pro CORS. Prázdné = "*" (dashboard běží na jiném portu).
	AllowedOrigins []string

	// AccessLog: kam psát Apache-style access log. nil = stdout.
	AccessLog io.Writer
}

// NewRouter vytvoří mux router s metrikami a /metrics endpointem.
func NewRouter(m *metrics.Metrics) *mux.Router {
	r := mux.NewRouter()
	if m != nil {
		r.Use(m.Middleware)
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}
	return r
}

// New obalí handler middlewary. Pořadí: access log -> recovery -> CORS -> router.
func New(opts Options, router http.Handler, logger *slog.Logger) *http.Server {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	accessLog := opts.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	var h http.Handler = c.Handler(router)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(panicLogger{logger}), handlers.PrintRecoveryStack(true))(h)
	h = handlers.LoggingHandler(accessLog, h)

	return &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run spustí server a blokuje, dokud se nezruší ctx (pak graceful shutdown)
// nebo server nespadne.
func Run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server naslouchá", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// ErrorResponse je jednotný tvar chybové odpovědi API.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

// WriteJSON nastaví hlavičku, status a zapíše tělo.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError zapíše ErrorResponse s textem statusu jako "error".
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) error {
	return WriteJSON(w, status, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	})
}

// NowMillis: časová značka v odpovědích je epoch v milisekundách.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

type panicLogger struct {
	logger *slog.Logger
}

func (p panicLogger) Println(v ...interface{}) {
	p.logger.Error("panic in HTTP handler", "detail", v)
}
