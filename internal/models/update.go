package models

import "time"

// Connectivity states reported to presentation adapters.
const (
	StatusConnecting = "Connecting"
	StatusLive       = "Live"
	StatusFeedError  = "Live feed error"
)

// Phase is the alert/hold phase.
type Phase string

const (
	PhaseIdle Phase = "idle"
	PhaseHeld Phase = "held"
)

// MetricCard is the resolved state of one metric card.
type MetricCard struct {
	Metric         Metric         `json:"metric"`
	Value          *float64       `json:"value"`
	Unit           string         `json:"unit"`
	Classification Classification `json:"classification"`
}

// VibrationState is the smoothed vibration card state.
type VibrationState struct {
	Phase          Phase          `json:"phase"`
	Classification Classification `json:"classification"`
	Value          float64        `json:"value"`
	HoldStartedAt  *time.Time     `json:"hold_started_at,omitempty"`
	HoldExpiresAt  *time.Time     `json:"hold_expires_at,omitempty"`
	DisplayHeld    bool           `json:"display_held"`
	Shaking        bool           `json:"shaking"`
}

// Banner is the dashboard alert banner.
type Banner struct {
	Visible bool     `json:"visible"`
	Message string   `json:"message,omitempty"`
	Shown   []string `json:"shown,omitempty"`
}

// Series is a chart series in arrival order.
type Series struct {
	Distance  []float64 `json:"distance"`
	Vibration []float64 `json:"vibration"`
}

// Update is everything a presentation adapter receives per update cycle.
type Update struct {
	Variant      string              `json:"variant"`
	Status       string              `json:"status"`
	Error        string              `json:"error,omitempty"`
	UpdatedAt    int64               `json:"updated_at,omitempty"`
	Cards        []MetricCard        `json:"cards"`
	Smoke        SmokeClassification `json:"smoke"`
	Vibration    VibrationState      `json:"vibration"`
	Banner       Banner              `json:"banner"`
	History      []HistoryEntry      `json:"history"`
	SmokeHistory []SmokeEntry        `json:"smoke_history"`
	DistanceStat Stats               `json:"distance_stats"`
	VibStat      Stats               `json:"vibration_stats"`
	Chart        Series              `json:"chart"`
}

// Card returns the card for metric, if present.
func (u Update) Card(metric Metric) (MetricCard, bool) {
	for _, c := range u.Cards {
		if c.Metric == metric {
			return c, true
		}
	}
	return MetricCard{}, false
}
