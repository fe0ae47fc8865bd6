package main

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/bus"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/metrics"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/reading"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/store"
)

// storeTimeout: DB operace nesmí viset věčně, jinak by zablokovala partition.
const storeTimeout = 5 * time.Second

// Pipeline přebírá zprávy z Kafky a ukládá poslední hodnotu senzoru do Valkey.
// HandleMessage volá consumer souběžně (jeden worker na partition), proto je
// jediný sdílený stav atomický čítač.
type Pipeline struct {
	store   store.Store
	prefix  string
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics

	processed atomic.Uint64
}

// NewPipeline - konstruktor. ttl = jak dlouho klíč přežije bez nové zprávy.
func NewPipeline(st store.Store, prefix string, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		store:   st,
		prefix:  prefix,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

// HandleMessage zpracuje jednu zprávu. Nikdy nepanikaří a nevrací chybu:
// vadná zpráva se zaloguje a zahodí, čítač se zvedne jen po úspěšném zápisu.
func (p *Pipeline) HandleMessage(ctx context.Context, msg bus.Message) {
	p.logger.Debug("Přijata zpráva",
		"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "key", msg.Key)

	// A. Deserializace JSONu
	r, err := reading.Decode(msg.Payload)
	if err != nil {
		p.logger.Error("Neplatný JSON formát", "payload", string(msg.Payload), "error", err,
			"partition", msg.Partition, "offset", msg.Offset)
		p.metrics.IncDecodeError()
		return
	}

	// B. Normalizovaný JSON do Valkey (klíč "<prefix><sensorId>")
	value, err := reading.Encode(r)
	if err != nil {
		p.logger.Error("Chyba serializace", "sensor_id", r.SensorID, "error", err)
		p.metrics.IncDecodeError()
		return
	}

	key := p.prefix + r.SensorID
	saveCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := p.store.Set(saveCtx, key, string(value), p.ttl); err != nil {
		// Žádný retry, žádné redelivery. Příští zpráva senzoru hodnotu stejně přepíše.
		p.logger.Error("Chyba při ukládání dat", "key", key, "sensor_id", r.SensorID, "error", err)
		p.metrics.IncStoreError("set")
		return
	}

	count := p.processed.Add(1)
	p.metrics.IncProcessed()
	p.logger.Info("Data uložena",
		"key", key,
		"sensor_id", r.SensorID,
		"temperature", r.Temperature,
		"pressure", r.Pressure,
		"total_processed", count)
}

// ProcessedCount vrací počet úspěšně uložených zpráv.
func (p *Pipeline) ProcessedCount() uint64 {
	return p.processed.Load()
}

// Lookup čte poslední hodnotu přímo z Valkey. Chyba úložiště = "nenalezeno".
func (p *Pipeline) Lookup(ctx context.Context, sensorID string) (reading.Reading, bool) {
	key := p.prefix + sensorID
	val, found, err := p.store.Get(ctx, key)
	if err != nil {
		p.logger.Error("Chyba při čtení senzoru", "sensor_id", sensorID, "error", err)
		p.metrics.IncStoreError("get")
		return reading.Reading{}, false
	}
	if !found {
		return reading.Reading{}, false
	}

	r, err := reading.Decode(val)
	if err != nil {
		p.logger.Error("Uložená hodnota není platný reading", "key", key, "error", err)
		return reading.Reading{}, false
	}
	return r, true
}

// Exists ověří, jestli pro senzor existuje klíč.
func (p *Pipeline) Exists(ctx context.Context, sensorID string) bool {
	ok, err := p.store.Exists(ctx, p.prefix+sensorID)
	if err != nil {
		p.logger.Error("Chyba při ověření existence senzoru", "sensor_id", sensorID, "error", err)
		p.metrics.IncStoreError("exists")
		return false
	}
	return ok
}
