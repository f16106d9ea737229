package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field alias lists accepted from the feed, in lookup order.
var (
	TemperatureKeys = []string{"temperature", "temp", "Temperature"}
	HumidityKeys    = []string{"humidity", "hum", "Humidity"}
	DistanceKeys    = []string{"distance", "dist", "Distance"}
	VibrationKeys   = []string{"magnitude", "vibration", "vib", "Vibration"}
	SmokeKeys       = []string{"smokeValue", "smoke", "gas"}
	AirStatusKeys   = []string{"airStatus"}
)

const (
	// AirStatusNormal is assumed when the feed omits the air status flag.
	AirStatusNormal = "Normal"
	// AirStatusSmoke is the sentinel the smoke sensor reports on detection.
	AirStatusSmoke = "SMOKE DETECTED"
)

// Snapshot is one push of the full sensor state from the feed.
// Fields hold decoded JSON values: float64, string, bool, nil or nested values.
type Snapshot struct {
	Fields     map[string]interface{} `json:"fields"`
	Timestamp  int64                  `json:"timestamp,omitempty"` // epoch ms, 0 when absent
	Key        string                 `json:"key,omitempty"`
	ReceivedAt time.Time              `json:"received_at"`
}

// NewSnapshot builds a Snapshot from already decoded fields. The map is copied.
func NewSnapshot(fields map[string]interface{}, receivedAt time.Time) Snapshot {
	copied := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s := Snapshot{Fields: copied, ReceivedAt: receivedAt}
	if ts, ok := ToFloat(copied["timestamp"]); ok {
		s.Timestamp = int64(ts)
	}
	return s
}

// ParseSnapshot decodes a raw JSON object pushed by the feed.
// A JSON null payload yields an empty snapshot.
func ParseSnapshot(raw []byte, receivedAt time.Time) (Snapshot, error) {
	var fields map[string]interface{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return NewSnapshot(nil, receivedAt), nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return NewSnapshot(fields, receivedAt), nil
}

// Pick returns the first present, non-null, non-empty value among keys,
// or fallback when none is found.
func (s Snapshot) Pick(keys []string, fallback interface{}) interface{} {
	for _, k := range keys {
		v, ok := s.Fields[k]
		if !ok || v == nil {
			continue
		}
		if str, isStr := v.(string); isStr && str == "" {
			continue
		}
		return v
	}
	return fallback
}

// Has reports whether any alias resolves to a usable value.
func (s Snapshot) Has(keys []string) bool {
	return s.Pick(keys, nil) != nil
}

// TimestampOr returns the snapshot timestamp, or fallback (epoch ms) when absent.
func (s Snapshot) TimestampOr(fallback int64) int64 {
	if s.Timestamp != 0 {
		return s.Timestamp
	}
	return fallback
}

// AirStatus returns the air status flag, defaulting to AirStatusNormal.
func (s Snapshot) AirStatus() string {
	v := s.Pick(AirStatusKeys, nil)
	if v == nil {
		return AirStatusNormal
	}
	return fmt.Sprint(v)
}

// ToFloat converts a decoded reading into a float. Strings are parsed after
// trimming; anything else that is not numeric reports false.
func ToFloat(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// FloatPtr returns a pointer to the numeric form of v, or nil.
func FloatPtr(v interface{}) *float64 {
	f, ok := ToFloat(v)
	if !ok {
		return nil
	}
	return &f
}
