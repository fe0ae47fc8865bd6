package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/bus"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/metrics"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(t *testing.T) (*Pipeline, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	st := store.NewRedisStoreFromClient(rdb)
	return NewPipeline(st, "sensor:", time.Hour, discardLogger(), metrics.New("test")), mr
}

func msg(payload string) bus.Message {
	return bus.Message{Topic: "sensor-data", Key: "101", Partition: 0, Offset: 7, Payload: []byte(payload)}
}

const validPayload = `{"sensorId":"101","sensorType":"TEMP_PRESSURE","temperature":22.5,` +
	`"pressure":1013.25,"timestamp":"2025-01-01T10:00:00Z","location":"Location-1"}`

func TestHandleMessageStoresWithTTL(t *testing.T) {
	p, mr := newTestPipeline(t)

	p.HandleMessage(context.Background(), msg(validPayload))

	assert.Equal(t, uint64(1), p.ProcessedCount())
	require.True(t, mr.Exists("sensor:101"))
	assert.Equal(t, time.Hour, mr.TTL("sensor:101"))

	stored, err := mr.Get("sensor:101")
	require.NoError(t, err)
	assert.JSONEq(t, validPayload, stored)
}

func TestHandleMessageOverwritesLatest(t *testing.T) {
	p, mr := newTestPipeline(t)
	ctx := context.Background()

	p.HandleMessage(ctx, msg(validPayload))
	p.HandleMessage(ctx, msg(`{"sensorId":"101","temperature":30,"pressure":1000,"timestamp":"2025-01-01T10:00:01Z"}`))

	assert.Equal(t, uint64(2), p.ProcessedCount())
	assert.Len(t, mr.Keys(), 1)

	r, ok := p.Lookup(ctx, "101")
	require.True(t, ok)
	assert.Equal(t, 30.0, r.Temperature)
}

func TestHandleMessageMalformedPayload(t *testing.T) {
	p, mr := newTestPipeline(t)
	ctx := context.Background()

	for _, payload := range []string{"not json", `{"temperature":1}`, ""} {
		p.HandleMessage(ctx, msg(payload))
	}

	assert.Zero(t, p.ProcessedCount())
	assert.Empty(t, mr.Keys())
}

func TestHandleMessageAcceptsWrappedString(t *testing.T) {
	p, mr := newTestPipeline(t)

	p.HandleMessage(context.Background(), msg(`"{\"sensorId\":\"102\",\"temperature\":1.5}"`))

	assert.Equal(t, uint64(1), p.ProcessedCount())
	assert.True(t, mr.Exists("sensor:102"))
}

type failingStore struct{ store.Store }

func (failingStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("valkey down")
}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("valkey down")
}

func (failingStore) Exists(context.Context, string) (bool, error) {
	return false, errors.New("valkey down")
}

func TestHandleMessageStoreFailureNotCounted(t *testing.T) {
	p := NewPipeline(failingStore{}, "sensor:", time.Hour, discardLogger(), nil)
	ctx := context.Background()

	p.HandleMessage(ctx, msg(validPayload))

	assert.Zero(t, p.ProcessedCount())
	_, ok := p.Lookup(ctx, "101")
	assert.False(t, ok)
	assert.False(t, p.Exists(ctx, "101"))
}

func TestLookupReadsBothStoredFormats(t *testing.T) {
	p, mr := newTestPipeline(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("sensor:101", validPayload))
	require.NoError(t, mr.Set("sensor:102", `"{\"sensorId\":\"102\",\"temperature\":5}"`))
	require.NoError(t, mr.Set("sensor:103", "garbage"))

	r, ok := p.Lookup(ctx, "101")
	require.True(t, ok)
	assert.Equal(t, "Location-1", r.Location)

	r, ok = p.Lookup(ctx, "102")
	require.True(t, ok)
	assert.Equal(t, 5.0, r.Temperature)

	_, ok = p.Lookup(ctx, "103")
	assert.False(t, ok)
	_, ok = p.Lookup(ctx, "999")
	assert.False(t, ok)
}

func TestExists(t *testing.T) {
	p, mr := newTestPipeline(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("sensor:101", validPayload))

	assert.True(t, p.Exists(ctx, "101"))
	assert.False(t, p.Exists(ctx, "102"))
}
