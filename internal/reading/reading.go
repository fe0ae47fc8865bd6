package reading

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultSensorType je typ, který generuje simulátor, pokud katalog neřekne jinak.
const DefaultSensorType = "TEMP_PRESSURE"

// ErrMissingSensorID vrací Decode, pokud záznam nemá vyplněné sensorId.
var ErrMissingSensorID = errors.New("reading: sensorId is empty")

// Reading je jeden vzorek telemetrie ze senzoru.
// Stejná struktura putuje přes Kafku i do Valkey, proto musí JSON klíče
// odpovídat tomu, co čtou všechny tři služby.
type Reading struct {
	SensorID    string    `json:"sensorId"`
	SensorType  string    `json:"sensorType"`
	Temperature float64   `json:"temperature"` // °C, bez validace rozsahu
	Pressure    float64   `json:"pressure"`    // hPa, bez validace rozsahu
	Timestamp   time.Time `json:"timestamp"`   // Vždy UTC
	Location    string    `json:"location"`
}

// New vytvoří Reading s časovou značkou "teď" (UTC).
func New(sensorID, sensorType string, temperature, pressure float64, location string) Reading {
	return Reading{
		SensorID:    sensorID,
		SensorType:  sensorType,
		Temperature: temperature,
		Pressure:    pressure,
		Timestamp:   time.Now().UTC(),
		Location:    location,
	}
}

// Encode serializuje Reading do JSONu (payload pro Kafku i hodnota ve Valkey).
func Encode(r Reading) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode reading %q: %w", r.SensorID, err)
	}
	return b, nil
}

// Decode převede uloženou hodnotu na Reading.
//
// Úložiště může obsahovat dvě reprezentace podle toho, kdo zapisoval:
//   - JSON objekt ({"sensorId": ...}),
//   - JSON string, uvnitř kterého je teprve objekt ("{\"sensorId\": ...}").
//
// Vstupem může být i už dekódovaný Reading (např. z in-memory cache).
func Decode(stored any) (Reading, error) {
	var raw []byte
	switch v := stored.(type) {
	case Reading:
		return validate(v)
	case *Reading:
		if v == nil {
			return Reading{}, errors.New("reading: nil value")
		}
		return validate(*v)
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		return Reading{}, errors.New("reading: nil value")
	default:
		return Reading{}, fmt.Errorf("reading: unsupported stored type %T", stored)
	}

	// 1. pokus: strukturovaný objekt
	var r Reading
	objErr := json.Unmarshal(raw, &r)
	if objErr == nil {
		return validate(r)
	}

	// 2. pokus: JSON string obalující objekt
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return Reading{}, fmt.Errorf("decode reading: %w", objErr)
	}
	if err := json.Unmarshal([]byte(inner), &r); err != nil {
		return Reading{}, fmt.Errorf("decode wrapped reading: %w", err)
	}
	return validate(r)
}

func validate(r Reading) (Reading, error) {
	if r.SensorID == "" {
		return Reading{}, ErrMissingSensorID
	}
	return r, nil
}

// Round2 zaokrouhlí na 2 desetinná místa metodou half-up nad škálovanou
// hodnotou: floor(v*100 + 0.5) / 100.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
