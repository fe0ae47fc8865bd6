package reading

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSetsTimestamp(t *testing.T) {
	before := time.Now().UTC()
	r := New("101", DefaultSensorType, 21.5, 1000.25, "Location-1")

	assert.Equal(t, "101", r.SensorID)
	assert.Equal(t, DefaultSensorType, r.SensorType)
	assert.False(t, r.Timestamp.IsZero())
	assert.False(t, r.Timestamp.Before(before.Add(-time.Second)))
	assert.Equal(t, time.UTC, r.Timestamp.Location())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	readings := []Reading{
		New("101", DefaultSensorType, 23.45, 1013.25, "Location-1"),
		New("sensor-x", "CUSTOM", -40.01, 0, ""),
		New("102", DefaultSensorType, 9999.99, -5.5, "Hala B"),
	}

	for _, r := range readings {
		b, err := Encode(r)
		require.NoError(t, err)

		got, err := Decode(b)
		require.NoError(t, err)
		assert.True(t, r.Timestamp.Equal(got.Timestamp))
		got.Timestamp = r.Timestamp
		assert.Equal(t, r, got)
	}
}

func TestEncodeUsesWireFieldNames(t *testing.T) {
	r := New("101", DefaultSensorType, 1, 2, "Location-1")
	b, err := Encode(r)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	for _, k := range []string{"sensorId", "sensorType", "temperature", "pressure", "timestamp", "location"} {
		assert.Contains(t, fields, k)
	}
}

func TestDecodeAcceptsWrappedJSONString(t *testing.T) {
	r := New("103", DefaultSensorType, 19.99, 990.1, "Location-3")
	inner, err := Encode(r)
	require.NoError(t, err)
	wrapped, err := json.Marshal(string(inner))
	require.NoError(t, err)

	got, err := Decode(string(wrapped))
	require.NoError(t, err)
	assert.Equal(t, "103", got.SensorID)
	assert.Equal(t, 19.99, got.Temperature)
}

func TestDecodeAcceptsStructuredValues(t *testing.T) {
	r := New("104", DefaultSensorType, 1, 2, "x")

	got, err := Decode(r)
	require.NoError(t, err)
	assert.Equal(t, r, got)

	got, err = Decode(&r)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	cases := map[string]any{
		"malformed":      "{ bad json",
		"empty id":       `{"sensorId":"","temperature":1}`,
		"wrapped broken": `"{ nope"`,
		"number":         42,
		"nil":            nil,
		"nil pointer":    (*Reading)(nil),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(in)
			assert.Error(t, err)
		})
	}

	_, err := Decode(`{"temperature":1}`)
	assert.ErrorIs(t, err, ErrMissingSensorID)
}

func TestRound2HalfUp(t *testing.T) {
	assert.Equal(t, 20.13, Round2(20.125))
	assert.Equal(t, 1013.25, Round2(1013.25))
	assert.Equal(t, 0.01, Round2(0.005))
	assert.Equal(t, -1.23, Round2(-1.234))
	assert.Equal(t, 21.67, Round2(65.0/3.0))
}
