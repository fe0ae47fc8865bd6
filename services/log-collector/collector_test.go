package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

func newTestCollector(t *testing.T) (*Collector, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "logs")
	c, err := NewCollector(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c, dir
}

func TestServiceFromTopic(t *testing.T) {
	cases := map[string]struct {
		want string
		ok   bool
	}{
		"logs/api-service":           {"api-service", true},
		"logs/producer-service/info": {"producer-service", true},
		"logs":                       {"", false},
		"logs/":                      {"", false},
		"logs/..":                    {"", false},
		"metrics/api-service":        {"", false},
	}
	for topic, tc := range cases {
		got, ok := ServiceFromTopic(topic)
		assert.Equal(t, tc.ok, ok, topic)
		assert.Equal(t, tc.want, got, topic)
	}
}

func TestHandleMessageAppendsLines(t *testing.T) {
	c, dir := newTestCollector(t)

	c.HandleMessage(nil, fakeMessage{topic: "logs/api-service", payload: []byte(`{"msg":"one"}` + "\n")})
	c.HandleMessage(nil, fakeMessage{topic: "logs/api-service", payload: []byte(`{"msg":"two"}`)})
	c.HandleMessage(nil, fakeMessage{topic: "logs/consumer-service", payload: []byte(`{"msg":"three"}`)})

	data, err := os.ReadFile(filepath.Join(dir, "api-service.log"))
	require.NoError(t, err)
	assert.Equal(t, "{\"msg\":\"one\"}\n{\"msg\":\"two\"}\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "consumer-service.log"))
	require.NoError(t, err)
	assert.Equal(t, "{\"msg\":\"three\"}\n", string(data))
}

func TestHandleMessageIgnoresBadTopic(t *testing.T) {
	c, dir := newTestCollector(t)

	c.HandleMessage(nil, fakeMessage{topic: "logs", payload: []byte("x")})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
