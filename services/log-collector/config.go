package main

import (
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/config"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/logging"
)

// Config drží veškeré nastavení pro službu Log Collector.
type Config struct {
	// MQTTBroker: Adresa brokera (např. tcp://mosquitto:1883)
	MQTTBroker string

	// MQTTClientID: základ ID klienta, suffix se doplní při připojení.
	MQTTClientID string

	// LogTopic: Topic, na kterém posloucháme logy (např. "logs/#")
	LogTopic string

	// LogDir: Cesta k adresáři, kam budeme ukládat soubory s logy.
	// V Dockeru to bude typicky namapovaný volume.
	LogDir string

	LogLevel string
}

// LoadConfig načte konfiguraci z OS. Pokud proměnná chybí, použije default.
func LoadConfig() Config {
	return Config{
		MQTTBroker:   config.GetEnv("MQTT_BROKER", "tcp://mosquitto:1883"),
		MQTTClientID: config.GetEnv("MQTT_CLIENT_ID", "log-collector"),

		// Defaultně posloucháme vše pod logs/
		LogTopic: config.GetEnv("LOG_TOPIC", logging.TopicPrefix+"/#"),

		// Defaultní cesta uvnitř kontejneru
		LogDir: config.GetEnv("LOG_DIR", "/var/log/sensor-monitoring"),

		LogLevel: config.GetEnv("LOG_LEVEL", "info"),
	}
}
