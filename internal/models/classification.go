package models

// Severity is the card severity tier.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarn     Severity = "warn"
	SeverityCritical Severity = "critical"
)

// Tier is the vibration card tier.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Metric names a logical sensor metric.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricHumidity    Metric = "humidity"
	MetricDistance    Metric = "distance"
	MetricVibration   Metric = "vibration"
	MetricSmoke       Metric = "smoke"
)

// Classification is derived from a single reading and never stored on its own.
// Tier and Status are only set for vibration.
type Classification struct {
	Severity Severity `json:"severity"`
	Label    string   `json:"label"`
	Note     string   `json:"note"`
	Tier     Tier     `json:"tier,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// SmokeLevel annotates smoke history rows.
type SmokeLevel string

const (
	SmokeNormal  SmokeLevel = "Normal"
	SmokeWarning SmokeLevel = "WARNING"
	SmokeDanger  SmokeLevel = "DANGER"
)

// SmokeClassification is the smoke card state plus the history annotation.
type SmokeClassification struct {
	Danger    bool       `json:"danger"`
	Level     SmokeLevel `json:"level"`
	Value     *float64   `json:"value"`
	Raw       string     `json:"raw,omitempty"`
	AirStatus string     `json:"air_status"`
}
