package main

import (
	"fmt"
	"time"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/config"
)

// Config drží nastavení simulace, Kafky a volitelně Postgres katalogu a MQTT.
type Config struct {
	KafkaBrokers []string
	Topic        string

	SensorCount    int
	SensorInterval time.Duration
	BaseOffset     int
	// AutoStart: spustit simulaci hned po startu služby (jinak až přes /start).
	AutoStart bool

	// PostgresURL: prázdné = bez katalogu, všechny senzory mají výchozí popis.
	PostgresURL            string
	CatalogRefreshInterval time.Duration

	// MQTTBroker: prázdné = logy jen na stdout.
	MQTTBroker string

	HTTPPort       string
	AllowedOrigins []string
	LogLevel       string
}

func LoadConfig() (Config, error) {
	count, err := config.GetInt("SENSOR_COUNT", 5)
	if err != nil {
		return Config{}, err
	}
	interval, err := config.GetDuration("SENSOR_INTERVAL", time.Second)
	if err != nil {
		return Config{}, err
	}
	offset, err := config.GetInt("SENSOR_BASE_OFFSET", 100)
	if err != nil {
		return Config{}, err
	}
	refresh, err := config.GetDuration("CATALOG_REFRESH_INTERVAL", time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		KafkaBrokers: config.SplitCSV(config.GetEnv("KAFKA_BROKERS", "kafka:9092")),
		Topic:        config.GetEnv("SENSOR_TOPIC", "sensor-data"),

		SensorCount:    count,
		SensorInterval: interval,
		BaseOffset:     offset,
		AutoStart:      config.GetBool("SENSOR_AUTOSTART", false),

		PostgresURL:            config.GetEnv("POSTGRES_URL", ""),
		CatalogRefreshInterval: refresh,

		MQTTBroker: config.GetEnv("MQTT_BROKER", ""),

		HTTPPort:       config.GetEnv("HTTP_PORT", "8081"),
		AllowedOrigins: config.SplitCSV(config.GetEnv("CORS_ALLOWED_ORIGINS", "")),
		LogLevel:       config.GetEnv("LOG_LEVEL", "info"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate odmítne hodnoty, se kterými by simulace nešla spustit: nulový
// interval je smyčka bez čekání, nulový refresh shodí time.NewTicker.
func (c Config) Validate() error {
	if c.SensorCount < 0 {
		return fmt.Errorf("SENSOR_COUNT nesmí být záporný: %d", c.SensorCount)
	}
	if c.SensorInterval <= 0 {
		return fmt.Errorf("SENSOR_INTERVAL musí být kladný: %s", c.SensorInterval)
	}
	if c.CatalogRefreshInterval <= 0 {
		return fmt.Errorf("CATALOG_REFRESH_INTERVAL musí být kladný: %s", c.CatalogRefreshInterval)
	}
	return nil
}
