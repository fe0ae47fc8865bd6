package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SensorInfo jsou popisná data senzoru, která generátor vkládá do readingu.
type SensorInfo struct {
	Location   string
	SensorType string
}

// Locator dodává generátorům popis senzoru podle jeho ID.
// false = senzor v katalogu není, generátor použije výchozí hodnoty.
type Locator interface {
	Locate(sensorID string) (SensorInfo, bool)
}

// rowQuerier je podmnožina pgxpool.Pool (kvůli testům bez databáze).
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Catalog drží cache tabulky sensor_catalog.
// Implementuje thread-safe přístup k mapě, čte ji každý generátor každý tik.
type Catalog struct {
	db     rowQuerier
	logger *slog.Logger

	// mu chrání mapu 'cache' před souběžným zápisem (refresh) a čtením (generátory).
	mu sync.RWMutex

	// Klíč mapy je sensorId ("101"), hodnota popis senzoru.
	cache map[string]SensorInfo
}

// NewCatalog - konstruktor
func NewCatalog(db *pgxpool.Pool, logger *slog.Logger) *Catalog {
	return newCatalog(db, logger)
}

func newCatalog(db rowQuerier, logger *slog.Logger) *Catalog {
	return &Catalog{
		db:     db,
		logger: logger,
		cache:  make(map[string]SensorInfo),
	}
}

// LoadSensors načte aktivní senzory a prohodí cache.
// Operace je drahá (IO, síť), proto jen při startu a periodicky.
func (c *Catalog) LoadSensors(ctx context.Context) error {
	c.logger.Debug("Obnovuji katalog senzorů z DB")

	query := `
		SELECT
			sensor_id,
			location,
			sensor_type
		FROM sensor_catalog
		WHERE is_active = true
	`

	rows, err := c.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("SQL query failed: %w", err)
	}
	defer rows.Close()

	// Novou mapu stavíme bokem, hlavní cache se zamyká jen na prohození.
	newCache := make(map[string]SensorInfo)
	for rows.Next() {
		var id string
		var location, sensorType *string // NULL = výchozí hodnota

		if err := rows.Scan(&id, &location, &sensorType); err != nil {
			c.logger.Error("Failed to scan row", "error", err)
			continue
		}

		var info SensorInfo
		if location != nil {
			info.Location = *location
		}
		if sensorType != nil {
			info.SensorType = *sensorType
		}
		newCache[id] = info
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("SQL rows failed: %w", err)
	}

	c.mu.Lock()
	c.cache = newCache
	c.mu.Unlock()

	c.logger.Info("Katalog senzorů načten", "loaded_sensors", len(newCache))
	return nil
}

// Locate vrací popis senzoru z cache. Nevyplněná pole řeší volající.
func (c *Catalog) Locate(sensorID string) (SensorInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, ok := c.cache[sensorID]
	return info, ok
}

// StartAutoRefresh obnovuje cache v daném intervalu, dokud neskončí ctx.
// Nový senzor v DB se tak projeví bez restartu.
func (c *Catalog) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		c.logger.Warn("Neplatný interval obnovy katalogu, auto-refresh vypnut", "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.LoadSensors(ctx); err != nil {
				c.logger.Error("Failed to auto-refresh catalog", "error", err)
			}
		}
	}
}
