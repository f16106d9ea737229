// Package change decides whether an inbound snapshot differs enough from the
// last recorded one to be worth a history entry.
package change

import (
	"fmt"
	"math"

	"sensor-dashboard/internal/models"
)

const (
	// Epsilon is the smallest numeric difference counted as a change.
	Epsilon = 0.01
	// TimestampWindowMs is the timestamp drift that marks a new reading on its own.
	TimestampWindowMs = 1000
)

// Field is one tracked metric, resolved through its aliases. Default is
// substituted when no alias is present.
type Field struct {
	Name    string
	Keys    []string
	Default interface{}
}

// SensorFields are tracked by the general sensor history.
var SensorFields = []Field{
	{Name: "temperature", Keys: models.TemperatureKeys},
	{Name: "humidity", Keys: models.HumidityKeys},
	{Name: "distance", Keys: models.DistanceKeys},
	{Name: "vibration", Keys: models.VibrationKeys},
}

// SmokeFields are tracked by the smoke history.
var SmokeFields = []Field{
	{Name: "smoke", Keys: models.SmokeKeys},
	{Name: "airStatus", Keys: models.AirStatusKeys, Default: models.AirStatusNormal},
}

// Detector compares snapshots over a fixed field set.
type Detector struct {
	fields          []Field
	epsilon         float64
	timestampWindow int64
}

// NewDetector builds a Detector. A timestampWindow of 0 disables the timestamp rule.
func NewDetector(fields []Field, timestampWindow int64) *Detector {
	return &Detector{fields: fields, epsilon: Epsilon, timestampWindow: timestampWindow}
}

// NewSensorDetector tracks SensorFields and the snapshot timestamp.
func NewSensorDetector() *Detector {
	return NewDetector(SensorFields, TimestampWindowMs)
}

// NewSmokeDetector tracks SmokeFields only.
func NewSmokeDetector() *Detector {
	return NewDetector(SmokeFields, 0)
}

// HasChanged reports whether next differs meaningfully from prev.
// A nil prev always counts as a change.
func (d *Detector) HasChanged(next models.Snapshot, prev *models.Snapshot) bool {
	if prev == nil {
		return true
	}
	for _, f := range d.fields {
		nv := next.Pick(f.Keys, f.Default)
		pv := prev.Pick(f.Keys, f.Default)
		if valueChanged(nv, pv, d.epsilon) {
			return true
		}
	}
	if d.timestampWindow > 0 {
		drift := next.Timestamp - prev.Timestamp
		if drift < 0 {
			drift = -drift
		}
		if drift > d.timestampWindow {
			return true
		}
	}
	return false
}

func valueChanged(next, prev interface{}, epsilon float64) bool {
	switch {
	case next == nil && prev == nil:
		return false
	case next == nil || prev == nil:
		return true
	}
	nf, nok := models.ToFloat(next)
	pf, pok := models.ToFloat(prev)
	if nok && pok {
		return math.Abs(nf-pf) > epsilon
	}
	return fmt.Sprint(next) != fmt.Sprint(prev)
}

// Gate remembers the last admitted snapshot and admits only changed ones.
type Gate struct {
	detector *Detector
	last     *models.Snapshot
}

// NewGate wraps a detector.
func NewGate(d *Detector) *Gate {
	return &Gate{detector: d}
}

// Admit records s and returns true when it differs from the last admitted snapshot.
func (g *Gate) Admit(s models.Snapshot) bool {
	if !g.detector.HasChanged(s, g.last) {
		return false
	}
	kept := s
	g.last = &kept
	return true
}

// Reset forgets the last admitted snapshot so the next one is always admitted.
func (g *Gate) Reset() {
	g.last = nil
}
