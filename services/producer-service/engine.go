package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/bus"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/metrics"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/reading"
)

// defaultGracePeriod: jak dlouho Stop čeká na kooperativní ukončení generátorů.
const defaultGracePeriod = 5 * time.Second

// EngineConfig je neměnné nastavení simulace.
type EngineConfig struct {
	Topic       string
	SensorCount int
	Interval    time.Duration
	// BaseOffset + i (i = 1..SensorCount) = sensorId. Výchozí 100 -> "101", "102", ...
	BaseOffset  int
	GracePeriod time.Duration
}

// Status je snímek stavu simulace pro /api/producer/status.
type Status struct {
	Running         bool   `json:"running"`
	SensorCount     int    `json:"sensorCount"`
	MessagesSent    uint64 `json:"messagesSent"`
	UptimeMs        *int64 `json:"uptimeMs,omitempty"`
	UptimeFormatted string `json:"uptimeFormatted,omitempty"`
}

// simRun je jeden běh simulace (mezi Start a Stop).
type simRun struct {
	// quit je kooperativní signál ukončení.
	quit chan struct{}
	// cancel je vynucené zrušení po grace period. Po čistém zastavení se
	// nevolá, rozpracované publish doběhnou s timeoutem publisheru.
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Engine spouští jeden generátor (goroutinu) na senzor.
//
// running a messagesSent jsou jediný stav, na který sahá víc goroutin,
// proto atomiky. lifecycle serializuje jen Start/Stop, nikdy se nedrží
// během publish ani sleep.
type Engine struct {
	cfg       EngineConfig
	publisher bus.Publisher
	catalog   Locator
	logger    *slog.Logger
	metrics   *metrics.Metrics

	// newGaussian vrací zdroj N(0,1) pro jeden generátor. Testy ho podvrhnou.
	newGaussian func(sensorIndex int) func() float64

	running      atomic.Bool
	messagesSent atomic.Uint64
	startedAt    atomic.Int64 // UnixMilli, 0 = neběží

	lifecycle sync.Mutex
	current   *simRun
}

// NewEngine - konstruktor. catalog může být nil (vše výchozí).
func NewEngine(cfg EngineConfig, pub bus.Publisher, catalog Locator, logger *slog.Logger, m *metrics.Metrics) *Engine {
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = defaultGracePeriod
	}
	return &Engine{
		cfg:         cfg,
		publisher:   pub,
		catalog:     catalog,
		logger:      logger,
		metrics:     m,
		newGaussian: pcgGaussian,
	}
}

// pcgGaussian: každý generátor má vlastní PCG, žádný sdílený zámek nad RNG.
func pcgGaussian(sensorIndex int) func() float64 {
	r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(sensorIndex)))
	return r.NormFloat64
}

// Start spustí simulaci. Vrací false, pokud už běží (bez vedlejších efektů).
func (e *Engine) Start() bool {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if !e.running.CompareAndSwap(false, true) {
		e.logger.Info("Simulace už běží")
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &simRun{quit: make(chan struct{}), cancel: cancel}
	e.current = r
	e.startedAt.Store(time.Now().UnixMilli())

	for i := 1; i <= e.cfg.SensorCount; i++ {
		r.wg.Add(1)
		go func(index int) {
			defer r.wg.Done()
			e.generate(ctx, r.quit, index)
		}(i)
	}

	e.logger.Info("Spuštěna simulace senzorů", "sensor_count", e.cfg.SensorCount, "interval", e.cfg.Interval)
	return true
}

// Stop zastaví simulaci: pošle signál, počká grace period a zbytek zruší
// přes context. Vrací false, pokud neběží.
func (e *Engine) Stop() bool {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if !e.running.CompareAndSwap(true, false) {
		e.logger.Info("Simulace neběží")
		return false
	}
	e.startedAt.Store(0)

	r := e.current
	e.current = nil
	close(r.quit)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(e.cfg.GracePeriod):
		e.logger.Warn("Generátory neskončily včas, ruším je", "grace_period", e.cfg.GracePeriod)
		r.cancel()
		<-done
	}

	e.logger.Info("Simulace zastavena", "messages_sent", e.messagesSent.Load())
	return true
}

// Status vrací snímek stavu. Uptime jen pokud simulace běží.
func (e *Engine) Status() Status {
	s := Status{
		Running:      e.running.Load(),
		SensorCount:  e.cfg.SensorCount,
		MessagesSent: e.messagesSent.Load(),
	}
	if started := e.startedAt.Load(); s.Running && started > 0 {
		uptime := time.Now().UnixMilli() - started
		if uptime < 0 {
			uptime = 0
		}
		s.UptimeMs = &uptime
		s.UptimeFormatted = formatUptime(uptime)
	}
	return s
}

// formatUptime: H:MM:SS, hodiny bez omezení.
func formatUptime(ms int64) string {
	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes%60, seconds%60)
}

// generate je smyčka jednoho senzoru. Tiky jednoho senzoru se nepřekrývají,
// signál ukončení se kontroluje na začátku každé iterace i během spánku.
func (e *Engine) generate(ctx context.Context, quit <-chan struct{}, index int) {
	sensorID := strconv.Itoa(e.cfg.BaseOffset + index)
	gaussian := e.newGaussian(index)
	log := e.logger.With("sensor_id", sensorID)

	e.metrics.GeneratorStarted()
	defer e.metrics.GeneratorStopped()

	timer := time.NewTimer(e.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-quit:
			log.Debug("Senzor zastaven")
			return
		case <-ctx.Done():
			log.Debug("Senzor zrušen")
			return
		default:
		}

		e.tick(ctx, log, sensorID, index, gaussian)

		timer.Reset(e.cfg.Interval)
		select {
		case <-quit:
			log.Debug("Senzor zastaven")
			return
		case <-ctx.Done():
			log.Debug("Senzor zrušen")
			return
		case <-timer.C:
		}
	}
}

// tick vyrobí a odešle jeden reading. Chyby jen loguje, smyčka jede dál.
func (e *Engine) tick(ctx context.Context, log *slog.Logger, sensorID string, index int, gaussian func() float64) {
	info := e.describe(sensorID, index)

	temperature := reading.Round2(20 + gaussian()*5)
	pressure := reading.Round2(1013.25 + gaussian()*100)
	r := reading.New(sensorID, info.SensorType, temperature, pressure, info.Location)

	payload, err := reading.Encode(r)
	if err != nil {
		log.Error("Chyba serializace readingu", "error", err)
		e.metrics.IncEncodeError()
		return
	}

	// Ack přijde z jiné goroutiny, generátor na něj nečeká.
	e.publisher.Publish(ctx, e.cfg.Topic, sensorID, payload, func(err error) {
		if err != nil {
			log.Error("Odeslání do Kafky selhalo", "error", err)
			e.metrics.IncPublishError()
			return
		}
		e.messagesSent.Add(1)
		e.metrics.IncSent()
		log.Debug("Odesláno", "temperature", temperature, "pressure", pressure)
	})
}

// describe doplní location a sensorType z katalogu, jinak výchozí hodnoty.
func (e *Engine) describe(sensorID string, index int) SensorInfo {
	info := SensorInfo{}
	if e.catalog != nil {
		if found, ok := e.catalog.Locate(sensorID); ok {
			info = found
		}
	}
	if info.Location == "" {
		info.Location = "Location-" + strconv.Itoa(index)
	}
	if info.SensorType == "" {
		info.SensorType = reading.DefaultSensorType
	}
	return info
}
