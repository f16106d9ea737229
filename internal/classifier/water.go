package classifier

import (
	"fmt"

	"sensor-dashboard/internal/models"
)

// WaterPolicy selects one of the two water distance threshold sets.
type WaterPolicy string

const (
	// WaterFarWarning: <=2 cm critical, <=4 cm warn.
	WaterFarWarning WaterPolicy = "far-warning"
	// WaterNearCritical: <=1 cm critical, <=2 cm warn, <=4 cm normal.
	WaterNearCritical WaterPolicy = "near-critical"
)

// ParseWaterPolicy accepts the policy names plus the short aliases "a" and "b".
func ParseWaterPolicy(s string) (WaterPolicy, error) {
	switch s {
	case string(WaterFarWarning), "a", "A":
		return WaterFarWarning, nil
	case string(WaterNearCritical), "b", "B":
		return WaterNearCritical, nil
	default:
		return "", fmt.Errorf("unknown water policy %q", s)
	}
}

func (p WaterPolicy) String() string {
	return string(p)
}

// Distance classifies a water distance in centimetres under policy p.
// An unknown policy falls back to WaterFarWarning.
func (p WaterPolicy) Distance(value interface{}) models.Classification {
	if value == nil {
		return noReading
	}
	v, ok := models.ToFloat(value)
	if !ok {
		return invalidData
	}
	if p == WaterNearCritical {
		return nearCritical(v)
	}
	return farWarning(v)
}

func farWarning(v float64) models.Classification {
	switch {
	case v <= 2:
		return models.Classification{Severity: models.SeverityCritical, Label: "Critical", Note: "Water very close"}
	case v <= 4:
		return models.Classification{Severity: models.SeverityWarn, Label: "Watch", Note: "Watch the level"}
	default:
		return models.Classification{Severity: models.SeverityOK, Label: "OK", Note: "Safe distance"}
	}
}

func nearCritical(v float64) models.Classification {
	switch {
	case v <= 1:
		return models.Classification{Severity: models.SeverityCritical, Label: "DANGER", Note: "EVACUATE - Flood danger!"}
	case v <= 2:
		return models.Classification{Severity: models.SeverityWarn, Label: "WARNING", Note: "Warning - Water rising"}
	case v <= 4:
		return models.Classification{Severity: models.SeverityOK, Label: "NORMAL", Note: "Normal water level"}
	default:
		return models.Classification{Severity: models.SeverityOK, Label: "OK", Note: "Safe distance"}
	}
}
