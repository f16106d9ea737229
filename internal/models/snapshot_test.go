package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnapshot_TimestampAndFields(t *testing.T) {
	snap, err := ParseSnapshot([]byte(`{"temp": 21.5, "timestamp": 1700000000000, "airStatus": "Normal"}`), time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(1700000000000), snap.Timestamp)
	assert.Equal(t, 21.5, snap.Pick(TemperatureKeys, nil))
	assert.Equal(t, "Normal", snap.AirStatus())
}

func TestParseSnapshot_EmptyAndNull(t *testing.T) {
	snap, err := ParseSnapshot(nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, snap.Fields)

	snap, err = ParseSnapshot([]byte("null"), time.Now())
	require.NoError(t, err)
	assert.Empty(t, snap.Fields)
	assert.Equal(t, AirStatusNormal, snap.AirStatus())
}

func TestParseSnapshot_InvalidJSON(t *testing.T) {
	_, err := ParseSnapshot([]byte(`{"temp":`), time.Now())
	assert.Error(t, err)
}

func TestPick_SkipsNullAndEmpty(t *testing.T) {
	snap := NewSnapshot(map[string]interface{}{
		"temperature": nil,
		"temp":        "",
		"Temperature": 30.0,
	}, time.Now())

	assert.Equal(t, 30.0, snap.Pick(TemperatureKeys, nil))
	assert.Equal(t, 0, snap.Pick(VibrationKeys, 0))
	assert.False(t, snap.Has(HumidityKeys))
}

func TestPick_OrderedAliases(t *testing.T) {
	snap := NewSnapshot(map[string]interface{}{"vibration": 1.0, "magnitude": 2.0}, time.Now())
	assert.Equal(t, 2.0, snap.Pick(VibrationKeys, 0))
}

func TestNewSnapshot_CopiesFields(t *testing.T) {
	fields := map[string]interface{}{"temp": 1.0}
	snap := NewSnapshot(fields, time.Now())
	fields["temp"] = 99.0
	assert.Equal(t, 1.0, snap.Fields["temp"])
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"float", 2.5, 2.5, true},
		{"int", 3, 3, true},
		{"string", " 4.25 ", 4.25, true},
		{"json number", json.Number("7"), 7, true},
		{"garbage", "abc", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"nan string", "NaN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdate_Card(t *testing.T) {
	u := Update{Cards: []MetricCard{{Metric: MetricHumidity, Unit: "%"}}}
	card, ok := u.Card(MetricHumidity)
	require.True(t, ok)
	assert.Equal(t, "%", card.Unit)

	_, ok = u.Card(MetricDistance)
	assert.False(t, ok)
}
