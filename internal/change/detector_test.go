package change

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sensor-dashboard/internal/models"
)

func snap(fields map[string]interface{}) models.Snapshot {
	return models.NewSnapshot(fields, time.Unix(0, 0))
}

func TestHasChanged_FirstObservation(t *testing.T) {
	d := NewSensorDetector()
	assert.True(t, d.HasChanged(snap(nil), nil))
}

func TestHasChanged_SameSnapshot(t *testing.T) {
	d := NewSensorDetector()
	s := snap(map[string]interface{}{"temperature": 21.0, "humidity": 40.0, "timestamp": 5000.0})
	assert.False(t, d.HasChanged(s, &s))
}

func TestHasChanged_Epsilon(t *testing.T) {
	d := NewSensorDetector()
	prev := snap(map[string]interface{}{"temperature": 21.0})

	assert.False(t, d.HasChanged(snap(map[string]interface{}{"temperature": 21.005}), &prev))
	assert.True(t, d.HasChanged(snap(map[string]interface{}{"temperature": 21.02}), &prev))
}

func TestHasChanged_PresenceFlips(t *testing.T) {
	d := NewSensorDetector()
	empty := snap(map[string]interface{}{})
	withHum := snap(map[string]interface{}{"humidity": 50.0})

	assert.True(t, d.HasChanged(withHum, &empty), "appears")
	assert.True(t, d.HasChanged(empty, &withHum), "disappears")

	blank := snap(map[string]interface{}{"humidity": ""})
	assert.False(t, d.HasChanged(blank, &empty), "empty string counts as absent")
}

func TestHasChanged_AliasesResolveToSameMetric(t *testing.T) {
	d := NewSensorDetector()
	prev := snap(map[string]interface{}{"temp": 20.0})
	next := snap(map[string]interface{}{"Temperature": 20.0})
	assert.False(t, d.HasChanged(next, &prev))
}

func TestHasChanged_NonNumericStrings(t *testing.T) {
	d := NewSensorDetector()
	prev := snap(map[string]interface{}{"vibration": "calm"})
	assert.False(t, d.HasChanged(snap(map[string]interface{}{"vibration": "calm"}), &prev))
	assert.True(t, d.HasChanged(snap(map[string]interface{}{"vibration": "rough"}), &prev))
}

func TestHasChanged_TimestampWindow(t *testing.T) {
	d := NewSensorDetector()
	prev := snap(map[string]interface{}{"temperature": 20.0, "timestamp": 10000.0})

	assert.False(t, d.HasChanged(snap(map[string]interface{}{"temperature": 20.0, "timestamp": 11000.0}), &prev))
	assert.True(t, d.HasChanged(snap(map[string]interface{}{"temperature": 20.0, "timestamp": 11001.0}), &prev))
	assert.True(t, d.HasChanged(snap(map[string]interface{}{"temperature": 20.0, "timestamp": 8000.0}), &prev))
}

func TestSmokeDetector_IgnoresSensorFieldsAndTimestamp(t *testing.T) {
	d := NewSmokeDetector()
	prev := snap(map[string]interface{}{"smoke": 120.0, "temperature": 20.0, "timestamp": 1000.0})
	next := snap(map[string]interface{}{"smoke": 120.0, "temperature": 30.0, "timestamp": 90000.0})
	assert.False(t, d.HasChanged(next, &prev))

	alarm := snap(map[string]interface{}{"smoke": 120.0, "airStatus": models.AirStatusSmoke})
	assert.True(t, d.HasChanged(alarm, &prev))
}

func TestSmokeDetector_MissingAirStatusIsNormal(t *testing.T) {
	d := NewSmokeDetector()
	prev := snap(map[string]interface{}{"gas": 10.0})
	next := snap(map[string]interface{}{"gas": 10.0, "airStatus": "Normal"})
	assert.False(t, d.HasChanged(next, &prev))
}

func TestGate_AdmitsOnlyChanges(t *testing.T) {
	g := NewGate(NewSensorDetector())
	s := snap(map[string]interface{}{"temperature": 36.0})

	assert.True(t, g.Admit(s))
	assert.False(t, g.Admit(s))
	assert.True(t, g.Admit(snap(map[string]interface{}{"temperature": 30.0})))

	g.Reset()
	assert.True(t, g.Admit(snap(map[string]interface{}{"temperature": 30.0})))
}
