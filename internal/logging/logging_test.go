package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (doneToken) Error() error { return nil }

type fakeMQTT struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	retained []bool
}

func (f *fakeMQTT) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload.([]byte))
	f.retained = append(f.retained, retained)
	return doneToken{}
}

func TestMqttLogWriterPublishesCopy(t *testing.T) {
	fake := &fakeMQTT{}
	w := NewMqttLogWriter(fake, "consumer-service")
	assert.Equal(t, "logs/consumer-service", w.Topic())

	buf := []byte(`{"msg":"hello"}`)
	n, err := w.Write(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	buf[2] = 'X'
	require.Len(t, fake.payloads, 1)
	assert.Equal(t, `{"msg":"hello"}`, string(fake.payloads[0]))
	assert.Equal(t, "logs/consumer-service", fake.topics[0])
	assert.False(t, fake.retained[0])
}

func TestLoggerFansOutToMqtt(t *testing.T) {
	fake := &fakeMQTT{}
	logger := New("api-service", "debug", NewMqttLogWriter(fake, "api-service"))

	logger.Debug("sensor lookup", "sensor_id", "101")

	require.Len(t, fake.payloads, 1)
	assert.Contains(t, string(fake.payloads[0]), `"service":"api-service"`)
	assert.Contains(t, string(fake.payloads[0]), `"sensor_id":"101"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestWriterWithoutExtrasIsStdout(t *testing.T) {
	assert.Equal(t, os.Stdout, Writer())
	assert.Equal(t, os.Stdout, Writer(nil))
}

func TestSetupWithoutBrokerLogsToStdout(t *testing.T) {
	logger, out, closeFn := Setup("api-service", "info", "")
	defer closeFn()

	assert.NotNil(t, logger)
	assert.Equal(t, os.Stdout, out)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
