// Package presenter shapes monitor updates into the view each page variant
// renders and keeps the latest view per variant.
package presenter

import (
	"sensor-dashboard/internal/config"
	"sensor-dashboard/internal/models"
)

// HistoryRow is one row of the app history table.
type HistoryRow struct {
	Timestamp   int64    `json:"timestamp"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Distance    *float64 `json:"distance"`
}

// AppView is the compact mobile page: cards, vibration and a short history table.
type AppView struct {
	Variant   string                `json:"variant"`
	Status    string                `json:"status"`
	Error     string                `json:"error,omitempty"`
	UpdatedAt int64                 `json:"updated_at,omitempty"`
	Cards     []models.MetricCard   `json:"cards"`
	Vibration models.VibrationState `json:"vibration"`
	History   []HistoryRow          `json:"history"`
}

// DashboardView adds the banner, statistics and charts.
type DashboardView struct {
	Variant        string                     `json:"variant"`
	Status         string                     `json:"status"`
	Error          string                     `json:"error,omitempty"`
	UpdatedAt      int64                      `json:"updated_at,omitempty"`
	Cards          []models.MetricCard        `json:"cards"`
	Smoke          models.SmokeClassification `json:"smoke"`
	Vibration      models.VibrationState      `json:"vibration"`
	Banner         models.Banner              `json:"banner"`
	DistanceStats  models.Stats               `json:"distance_stats"`
	VibrationStats models.Stats               `json:"vibration_stats"`
	Chart          models.Series              `json:"chart"`
}

// TelemetryView carries both history logs.
type TelemetryView struct {
	Variant      string                     `json:"variant"`
	Status       string                     `json:"status"`
	Error        string                     `json:"error,omitempty"`
	UpdatedAt    int64                      `json:"updated_at,omitempty"`
	Cards        []models.MetricCard        `json:"cards"`
	Smoke        models.SmokeClassification `json:"smoke"`
	Vibration    models.VibrationState      `json:"vibration"`
	History      []models.HistoryEntry      `json:"history"`
	SmokeHistory []models.SmokeEntry        `json:"smoke_history"`
}

// Shape returns the view for u.Variant. Unknown variants get the full update.
func Shape(u models.Update) interface{} {
	switch u.Variant {
	case config.VariantApp:
		rows := make([]HistoryRow, 0, len(u.History))
		for _, e := range u.History {
			rows = append(rows, HistoryRow{
				Timestamp:   e.Timestamp,
				Temperature: e.Temperature,
				Humidity:    e.Humidity,
				Distance:    e.Distance,
			})
		}
		return AppView{
			Variant:   u.Variant,
			Status:    u.Status,
			Error:     u.Error,
			UpdatedAt: u.UpdatedAt,
			Cards:     u.Cards,
			Vibration: u.Vibration,
			History:   rows,
		}
	case config.VariantDashboard:
		return DashboardView{
			Variant:        u.Variant,
			Status:         u.Status,
			Error:          u.Error,
			UpdatedAt:      u.UpdatedAt,
			Cards:          u.Cards,
			Smoke:          u.Smoke,
			Vibration:      u.Vibration,
			Banner:         u.Banner,
			DistanceStats:  u.DistanceStat,
			VibrationStats: u.VibStat,
			Chart:          u.Chart,
		}
	case config.VariantTelemetry:
		return TelemetryView{
			Variant:      u.Variant,
			Status:       u.Status,
			Error:        u.Error,
			UpdatedAt:    u.UpdatedAt,
			Cards:        u.Cards,
			Smoke:        u.Smoke,
			Vibration:    u.Vibration,
			History:      u.History,
			SmokeHistory: u.SmokeHistory,
		}
	default:
		return u
	}
}
