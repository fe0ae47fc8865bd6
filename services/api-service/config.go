package main

import (
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/config"
)

// Config drží nastavení čtecí služby.
type Config struct {
	// Adresa pro Valkey (Redis), formát host:port
	ValkeyAddr string
	KeyPrefix  string

	// MQTTBroker: prázdné = logy jen na stdout.
	MQTTBroker string

	HTTPPort       string
	AllowedOrigins []string
	LogLevel       string
}

func LoadConfig() Config {
	return Config{
		ValkeyAddr: config.GetEnv("VALKEY_ADDR", "valkey:6379"),
		KeyPrefix:  config.GetEnv("REDIS_KEY_PREFIX", "sensor:"),

		MQTTBroker: config.GetEnv("MQTT_BROKER", ""),

		HTTPPort:       config.GetEnv("HTTP_PORT", "8080"),
		AllowedOrigins: config.SplitCSV(config.GetEnv("CORS_ALLOWED_ORIGINS", "")),
		LogLevel:       config.GetEnv("LOG_LEVEL", "info"),
	}
}
