// Package logging staví slog logger, který píše JSON na stdout a volitelně
// i do MQTT (topic logs/<služba>), odkud si ho bere log-collector.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ParseLevel převede LOG_LEVEL ("debug", "info", "warn", "error") na slog.Level.
// Neznámá hodnota = info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New vytvoří JSON logger se službou v každém záznamu.
// extra writery (např. MqttLogWriter) dostanou stejné řádky jako stdout.
func New(service, level string, extra ...io.Writer) *slog.Logger {
	return newJSON(service, level, Writer(extra...))
}

func newJSON(service, level string, out io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})).With("service", service)
}

// Setup je společný start loggeru pro všechny služby.
// S prázdným mqttBroker loguje jen na stdout. Nedostupné MQTT není fatální,
// služba poběží dál a jen o tom zaloguje varování.
// Vrací i writer (pro HTTP access log) a funkci pro odpojení MQTT.
func Setup(service, level, mqttBroker string) (*slog.Logger, io.Writer, func()) {
	noop := func() {}
	if mqttBroker == "" {
		return New(service, level), Writer(), noop
	}

	client, err := ConnectMQTT(mqttBroker, service, 5*time.Second)
	if err != nil {
		logger := New(service, level)
		logger.Warn("MQTT nedostupné, loguji jen na stdout", "broker", mqttBroker, "error", err)
		return logger, Writer(), noop
	}

	mqttWriter := NewMqttLogWriter(client, service)
	out := Writer(mqttWriter)
	logger := newJSON(service, level, out)
	logger.Info("Loguji do MQTT i Stdout", "topic", mqttWriter.Topic())
	return logger, out, func() { client.Disconnect(250) }
}

// Writer vrací stdout, případně MultiWriter přes stdout a další výstupy.
// Stejný writer používá i HTTP access log.
func Writer(extra ...io.Writer) io.Writer {
	outs := []io.Writer{os.Stdout}
	for _, w := range extra {
		if w != nil {
			outs = append(outs, w)
		}
	}
	if len(outs) == 1 {
		return os.Stdout
	}
	return io.MultiWriter(outs...)
}
