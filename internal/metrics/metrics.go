// Package metrics drží Prometheus čítače pro všechny služby.
// Každá instance má vlastní registry, takže testy mohou vytvářet kolik chtějí.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	messagesSent      prometheus.Counter
	publishErrors     prometheus.Counter
	encodeErrors      prometheus.Counter
	activeGenerators  prometheus.Gauge
	messagesProcessed prometheus.Counter
	decodeErrors      prometheus.Counter
	storeErrors       *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
}

// New zaregistruje čítače s konstantním labelem service.
func New(service string) *Metrics {
	labels := prometheus.Labels{"service": service}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "sensor_messages_sent_total",
			Help:        "Readings acknowledged by the broker.",
			ConstLabels: labels,
		}),
		publishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "sensor_publish_errors_total",
			Help:        "Readings the broker rejected or that timed out.",
			ConstLabels: labels,
		}),
		encodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "sensor_encode_errors_total",
			Help:        "Readings that could not be serialized.",
			ConstLabels: labels,
		}),
		activeGenerators: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "sensor_active_generators",
			Help:        "Running per-sensor generator goroutines.",
			ConstLabels: labels,
		}),
		messagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "sensor_messages_processed_total",
			Help:        "Messages decoded and stored.",
			ConstLabels: labels,
		}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "sensor_decode_errors_total",
			Help:        "Messages discarded because the payload was not a valid reading.",
			ConstLabels: labels,
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "sensor_store_errors_total",
			Help:        "Failed key-value store operations by operation.",
			ConstLabels: labels,
		}, []string{"op"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "HTTP requests by route and status.",
			ConstLabels: labels,
		}, []string{"route", "status"}),
	}

	m.registry.MustRegister(
		m.messagesSent,
		m.publishErrors,
		m.encodeErrors,
		m.activeGenerators,
		m.messagesProcessed,
		m.decodeErrors,
		m.storeErrors,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler vystaví /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry pro testy (testutil.ToFloat64 apod.).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Všechny Inc* metody tolerují nil, služby tak v testech metriky mít nemusí.

func (m *Metrics) IncSent() {
	if m != nil {
		m.messagesSent.Inc()
	}
}

func (m *Metrics) IncPublishError() {
	if m != nil {
		m.publishErrors.Inc()
	}
}

func (m *Metrics) IncEncodeError() {
	if m != nil {
		m.encodeErrors.Inc()
	}
}

func (m *Metrics) GeneratorStarted() {
	if m != nil {
		m.activeGenerators.Inc()
	}
}

func (m *Metrics) GeneratorStopped() {
	if m != nil {
		m.activeGenerators.Dec()
	}
}

func (m *Metrics) IncProcessed() {
	if m != nil {
		m.messagesProcessed.Inc()
	}
}

func (m *Metrics) IncDecodeError() {
	if m != nil {
		m.decodeErrors.Inc()
	}
}

func (m *Metrics) IncStoreError(op string) {
	if m != nil {
		m.storeErrors.WithLabelValues(op).Inc()
	}
}

// Middleware počítá requesty podle šablony routy (/api/sensors/exists/{sensorId}),
// ne podle konkrétní URL, aby nevznikal label pro každé ID.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.httpRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
