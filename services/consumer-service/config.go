package main

import (
	"time"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/config"
)

// Config drží nastavení připojení pro Kafku, Valkey a volitelně MQTT (logy).
type Config struct {
	KafkaBrokers []string
	Topic        string
	GroupID      string
	// Počet readerů ve consumer group = kolik partitions zpracováváme paralelně.
	Concurrency int

	// Adresa pro Valkey (Redis)
	// Formát: host:port (např. valkey:6379)
	ValkeyAddr string
	KeyPrefix  string
	ReadingTTL time.Duration

	// MQTTBroker: prázdné = logy jen na stdout.
	MQTTBroker string

	HTTPPort       string
	AllowedOrigins []string
	LogLevel       string
}

func LoadConfig() (Config, error) {
	concurrency, err := config.GetInt("CONSUMER_CONCURRENCY", 3)
	if err != nil {
		return Config{}, err
	}
	ttl, err := config.GetDuration("READING_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}

	return Config{
		KafkaBrokers: config.SplitCSV(config.GetEnv("KAFKA_BROKERS", "kafka:9092")),
		Topic:        config.GetEnv("SENSOR_TOPIC", "sensor-data"),
		GroupID:      config.GetEnv("CONSUMER_GROUP_ID", "sensor-consumer-group"),
		Concurrency:  concurrency,

		ValkeyAddr: config.GetEnv("VALKEY_ADDR", "valkey:6379"),
		KeyPrefix:  config.GetEnv("REDIS_KEY_PREFIX", "sensor:"),
		ReadingTTL: ttl,

		MQTTBroker: config.GetEnv("MQTT_BROKER", ""),

		HTTPPort:       config.GetEnv("HTTP_PORT", "8082"),
		AllowedOrigins: config.SplitCSV(config.GetEnv("CORS_ALLOWED_ORIGINS", "")),
		LogLevel:       config.GetEnv("LOG_LEVEL", "info"),
	}, nil
}
