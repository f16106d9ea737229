// Package classifier maps raw sensor readings to severity tiers. Every function
// is total: nil, malformed and NaN inputs map to a defined classification.
package classifier

import (
	"fmt"

	"sensor-dashboard/internal/models"
)

const (
	// QuakeThreshold is the magnitude at which vibration reaches tier medium.
	QuakeThreshold = 2.0
	// StrongQuakeThreshold is the magnitude at which vibration reaches tier high.
	StrongQuakeThreshold = 4.0

	SmokeDangerLevel  = 600.0
	SmokeWarningLevel = 300.0
)

var (
	noReading   = models.Classification{Severity: models.SeverityWarn, Label: "N/A", Note: "No reading"}
	invalidData = models.Classification{Severity: models.SeverityWarn, Label: "N/A", Note: "Invalid data"}
)

// Temperature classifies a reading in degrees Celsius.
func Temperature(value interface{}) models.Classification {
	if value == nil {
		return noReading
	}
	v, ok := models.ToFloat(value)
	if !ok {
		return invalidData
	}
	switch {
	case v >= 35:
		return models.Classification{Severity: models.SeverityCritical, Label: "Critical", Note: "Too hot"}
	case v <= 5:
		return models.Classification{Severity: models.SeverityWarn, Label: "Low", Note: "Too cold"}
	default:
		return models.Classification{Severity: models.SeverityOK, Label: "OK", Note: "Comfort range"}
	}
}

// Humidity classifies a relative humidity percentage.
func Humidity(value interface{}) models.Classification {
	if value == nil {
		return noReading
	}
	v, ok := models.ToFloat(value)
	if !ok {
		return invalidData
	}
	switch {
	case v >= 80:
		return models.Classification{Severity: models.SeverityWarn, Label: "High", Note: "High humidity"}
	case v <= 30:
		return models.Classification{Severity: models.SeverityWarn, Label: "Low", Note: "Too dry"}
	default:
		return models.Classification{Severity: models.SeverityOK, Label: "OK", Note: "Stable"}
	}
}

// Vibration classifies a vibration magnitude. Nil is pending, unparseable is an error.
func Vibration(value interface{}) models.Classification {
	if value == nil {
		return models.Classification{Severity: models.SeverityWarn, Label: "N/A", Note: "No reading", Tier: models.TierLow, Status: "Pending"}
	}
	mag, ok := models.ToFloat(value)
	if !ok {
		return models.Classification{Severity: models.SeverityWarn, Label: "N/A", Note: "Invalid data", Tier: models.TierLow, Status: "Error"}
	}
	return VibrationMagnitude(mag)
}

// VibrationMagnitude classifies an already parsed magnitude.
func VibrationMagnitude(mag float64) models.Classification {
	switch {
	case mag >= StrongQuakeThreshold:
		return models.Classification{Severity: models.SeverityCritical, Label: "DANGER", Note: "EVACUATE IMMEDIATELY", Tier: models.TierHigh, Status: "Strong Quake"}
	case mag >= QuakeThreshold:
		return models.Classification{Severity: models.SeverityWarn, Label: "WARNING", Note: "Seek safe location", Tier: models.TierMedium, Status: "Minor Quake"}
	default:
		return models.Classification{Severity: models.SeverityOK, Label: "NORMAL", Note: "Safe conditions", Tier: models.TierLow, Status: "Normal"}
	}
}

// IsSmokeDanger reports the smoke card danger rule.
func IsSmokeDanger(value interface{}, airStatus string) bool {
	if airStatus == models.AirStatusSmoke {
		return true
	}
	v, ok := models.ToFloat(value)
	return ok && v > SmokeDangerLevel
}

// Smoke classifies the smoke reading. Level WARNING is only used to annotate
// history rows; the card itself is either danger or safe.
func Smoke(value interface{}, airStatus string) models.SmokeClassification {
	if airStatus == "" {
		airStatus = models.AirStatusNormal
	}
	out := models.SmokeClassification{
		Danger:    IsSmokeDanger(value, airStatus),
		Level:     models.SmokeNormal,
		Value:     models.FloatPtr(value),
		AirStatus: airStatus,
	}
	if value != nil {
		out.Raw = fmt.Sprint(value)
	}
	switch {
	case out.Danger:
		out.Level = models.SmokeDanger
	case out.Value != nil && *out.Value > SmokeWarningLevel:
		out.Level = models.SmokeWarning
	}
	return out
}
