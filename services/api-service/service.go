package main

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/metrics"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/reading"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/store"
)

// Statistics je agregace nad posledními hodnotami všech senzorů.
//
// Agregáty jsou pointery: bez aktivních senzorů v odpovědi úplně chybí,
// 0.0 by se nedala odlišit od skutečné nulové teploty.
type Statistics struct {
	TotalSensors       int      `json:"totalSensors"`
	ActiveSensors      int      `json:"activeSensors"`
	AverageTemperature *float64 `json:"averageTemperature,omitempty"`
	AveragePressure    *float64 `json:"averagePressure,omitempty"`
	MinTemperature     *float64 `json:"minTemperature,omitempty"`
	MaxTemperature     *float64 `json:"maxTemperature,omitempty"`
	Timestamp          int64    `json:"timestamp"` // epoch ms
}

// Service je read-only pohled na Valkey. Žádná metoda nevrací chybu:
// chyby úložiště se zalogují a výsledek je prázdný (fail-open).
type Service struct {
	store   store.Store
	prefix  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService - konstruktor. prefix musí odpovídat tomu, co zapisuje consumer.
func NewService(st store.Store, prefix string, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: st, prefix: prefix, logger: logger, metrics: m}
}

// GetLatest vrací poslední reading senzoru. false = klíč chybí nebo je nečitelný.
func (s *Service) GetLatest(ctx context.Context, sensorID string) (reading.Reading, bool) {
	return s.readKey(ctx, s.prefix+sensorID)
}

// GetAll vrací všechny čitelné readings seřazené podle sensorId.
// Vadný záznam se přeskočí, ostatní se vrátí.
func (s *Service) GetAll(ctx context.Context) []reading.Reading {
	keys, ok := s.scan(ctx)
	if !ok {
		return []reading.Reading{}
	}
	return s.readAll(ctx, keys)
}

// GetBatch vrací mapu sensorId -> reading. Senzory bez dat v mapě nejsou.
func (s *Service) GetBatch(ctx context.Context, sensorIDs []string) map[string]reading.Reading {
	result := make(map[string]reading.Reading, len(sensorIDs))
	for _, id := range sensorIDs {
		if r, ok := s.GetLatest(ctx, id); ok {
			result[id] = r
		}
	}
	return result
}

// GetStatistics: totalSensors = všechny klíče (i nečitelné),
// activeSensors = úspěšně dekódované readings.
func (s *Service) GetStatistics(ctx context.Context) Statistics {
	stats := Statistics{Timestamp: time.Now().UnixMilli()}

	keys, ok := s.scan(ctx)
	if !ok {
		return stats
	}
	readings := s.readAll(ctx, keys)

	stats.TotalSensors = len(keys)
	stats.ActiveSensors = len(readings)
	if len(readings) == 0 {
		return stats
	}

	var sumTemp, sumPressure float64
	minTemp, maxTemp := readings[0].Temperature, readings[0].Temperature
	for _, r := range readings {
		sumTemp += r.Temperature
		sumPressure += r.Pressure
		minTemp = min(minTemp, r.Temperature)
		maxTemp = max(maxTemp, r.Temperature)
	}
	n := float64(len(readings))

	stats.AverageTemperature = rounded(sumTemp / n)
	stats.AveragePressure = rounded(sumPressure / n)
	stats.MinTemperature = rounded(minTemp)
	stats.MaxTemperature = rounded(maxTemp)
	return stats
}

// ListSensorIDs vrací ID senzorů (klíče bez prefixu) seřazená vzestupně.
func (s *Service) ListSensorIDs(ctx context.Context) []string {
	keys, ok := s.scan(ctx)
	if !ok {
		return []string{}
	}

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, s.prefix))
	}
	sort.Strings(ids)
	return ids
}

// SensorExists ověří existenci klíče. Chyba úložiště = false.
func (s *Service) SensorExists(ctx context.Context, sensorID string) bool {
	ok, err := s.store.Exists(ctx, s.prefix+sensorID)
	if err != nil {
		s.logger.Error("Chyba při ověření existence senzoru", "sensor_id", sensorID, "error", err)
		s.metrics.IncStoreError("exists")
		return false
	}
	return ok
}

func (s *Service) scan(ctx context.Context) ([]string, bool) {
	keys, err := s.store.ScanKeys(ctx, s.prefix)
	if err != nil {
		s.logger.Error("Chyba při procházení klíčů", "prefix", s.prefix, "error", err)
		s.metrics.IncStoreError("scan")
		return nil, false
	}
	return keys, true
}

func (s *Service) readAll(ctx context.Context, keys []string) []reading.Reading {
	readings := make([]reading.Reading, 0, len(keys))
	for _, key := range keys {
		if r, ok := s.readKey(ctx, key); ok {
			readings = append(readings, r)
		}
	}
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].SensorID < readings[j].SensorID
	})
	return readings
}

func (s *Service) readKey(ctx context.Context, key string) (reading.Reading, bool) {
	val, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Error("Chyba při čtení klíče", "key", key, "error", err)
		s.metrics.IncStoreError("get")
		return reading.Reading{}, false
	}
	if !found {
		// Klíč mezitím mohl expirovat (TTL).
		return reading.Reading{}, false
	}

	r, err := reading.Decode(val)
	if err != nil {
		s.logger.Warn("Nečitelný záznam, přeskakuji", "key", key, "error", err)
		s.metrics.IncDecodeError()
		return reading.Reading{}, false
	}
	return r, true
}

func rounded(v float64) *float64 {
	r := reading.Round2(v)
	return &r
}
