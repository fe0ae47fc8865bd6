package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/logging"
)

// Collector zapisuje logy služeb z MQTT do souborů <dir>/<služba>.log.
type Collector struct {
	dir    string
	logger *slog.Logger

	// mu: jeden zápis najednou, řádky různých zpráv se nesmí prolnout.
	mu sync.Mutex
}

// NewCollector připraví adresář pro logy (včetně podadresářů).
func NewCollector(dir string, logger *slog.Logger) (*Collector, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("nelze vytvořit adresář pro logy %s: %w", dir, err)
	}
	return &Collector{dir: dir, logger: logger}, nil
}

// HandleMessage je MQTT callback, volá se pro každou logovací zprávu.
func (c *Collector) HandleMessage(_ mqtt.Client, msg mqtt.Message) {
	topic := msg.Topic()

	serviceName, ok := ServiceFromTopic(topic)
	if !ok {
		c.logger.Warn("Ignoruji zprávu se špatným formátem topicu", "topic", topic)
		return
	}

	if err := c.Append(serviceName, msg.Payload()); err != nil {
		c.logger.Error("Chyba při zápisu do souboru", "service", serviceName, "error", err)
	}
}

// ServiceFromTopic vytáhne název služby z "logs/<služba>[/...]".
// Název musí být použitelný jako název souboru (žádné "..", "/" ani prázdno).
func ServiceFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 || parts[0] != logging.TopicPrefix {
		return "", false
	}

	name := parts[1]
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `\`) {
		return "", false
	}
	return name, true
}

// Append otevře (nebo vytvoří) soubor služby a připíše řádek.
// Open-Write-Close pro každý zápis, ať funguje externí rotace logů.
func (c *Collector) Append(serviceName string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	filename := filepath.Join(c.dir, serviceName+".log")
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	// slog JSON handler řádek ukončuje sám, MQTT payload od jiných klientů nemusí.
	line := strings.TrimRight(string(data), "\n") + "\n"
	if _, err := f.WriteString(line); err != nil {
		return err
	}
	return nil
}
