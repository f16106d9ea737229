package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sensor-dashboard/internal/classifier"
)

// Page variants served by the dashboard.
const (
	VariantApp       = "app"
	VariantDashboard = "dashboard"
	VariantTelemetry = "telemetry"
)

// Profile holds the per-variant policy knobs. A capacity of 0 disables that buffer.
type Profile struct {
	Name            string  `yaml:"-"`
	WaterPolicy     string  `yaml:"water_policy"`
	HoldTrigger     float64 `yaml:"hold_trigger"`
	DisplayHoldMs   int     `yaml:"display_hold_ms"`
	HighHoldMs      int     `yaml:"high_hold_ms"`
	MediumHoldMs    int     `yaml:"medium_hold_ms"`
	ShakeThreshold  float64 `yaml:"shake_threshold"`
	ShakeWindowMs   int     `yaml:"shake_window_ms"`
	DebounceMs      int     `yaml:"debounce_ms"`
	HistoryCapacity int     `yaml:"history_capacity"`
	SmokeCapacity   int     `yaml:"smoke_capacity"`
	StatsCapacity   int     `yaml:"stats_capacity"`
	ChartPoints     int     `yaml:"chart_points"`
	Banner          bool    `yaml:"banner"`
	ChangeGated     bool    `yaml:"change_gated"`
}

func baseProfile(name string) Profile {
	return Profile{
		Name:           name,
		HighHoldMs:     10000,
		MediumHoldMs:   5000,
		ShakeThreshold: 0.1,
		ShakeWindowMs:  10000,
		DebounceMs:     1000,
	}
}

// DefaultProfiles returns the built-in profiles of the three page variants.
func DefaultProfiles() map[string]Profile {
	app := baseProfile(VariantApp)
	app.WaterPolicy = string(classifier.WaterFarWarning)
	app.HoldTrigger = classifier.QuakeThreshold
	app.HistoryCapacity = 50

	dash := baseProfile(VariantDashboard)
	dash.WaterPolicy = string(classifier.WaterNearCritical)
	dash.HoldTrigger = 1.7
	dash.DisplayHoldMs = 5000
	dash.HistoryCapacity = 500
	dash.StatsCapacity = 100
	dash.ChartPoints = 50
	dash.Banner = true
	dash.ChangeGated = true

	tele := baseProfile(VariantTelemetry)
	tele.WaterPolicy = string(classifier.WaterNearCritical)
	tele.HoldTrigger = 1.7
	tele.DisplayHoldMs = 5000
	tele.HistoryCapacity = 500
	tele.SmokeCapacity = 500
	tele.ChangeGated = true

	return map[string]Profile{
		VariantApp:       app,
		VariantDashboard: dash,
		VariantTelemetry: tele,
	}
}

// LoadProfiles merges a YAML document of the form
//
//	dashboard:
//	  hold_trigger: 2.0
//
// over profiles. Unknown variants start from the shared defaults.
func LoadProfiles(path string, profiles map[string]Profile) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profiles file: %w", err)
	}
	return MergeProfiles(raw, profiles)
}

// MergeProfiles applies YAML overrides to profiles in place.
func MergeProfiles(raw []byte, profiles map[string]Profile) error {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse profiles: %w", err)
	}
	for name, node := range doc {
		p, ok := profiles[name]
		if !ok {
			p = baseProfile(name)
		}
		if err := node.Decode(&p); err != nil {
			return fmt.Errorf("failed to decode profile %s: %w", name, err)
		}
		p.Name = name
		profiles[name] = p
	}
	return nil
}

// Validate checks that the knobs are usable.
func (p Profile) Validate() error {
	if _, err := classifier.ParseWaterPolicy(p.WaterPolicy); err != nil {
		return err
	}
	if p.HoldTrigger <= 0 {
		return fmt.Errorf("hold_trigger must be positive")
	}
	if p.HighHoldMs <= 0 || p.MediumHoldMs <= 0 || p.ShakeWindowMs <= 0 {
		return fmt.Errorf("hold and shake durations must be positive")
	}
	if p.DisplayHoldMs < 0 || p.DebounceMs < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if p.HistoryCapacity < 0 || p.SmokeCapacity < 0 || p.StatsCapacity < 0 || p.ChartPoints < 0 {
		return fmt.Errorf("capacities must not be negative")
	}
	return nil
}

// Water returns the parsed water policy. Call Validate first.
func (p Profile) Water() classifier.WaterPolicy {
	wp, _ := classifier.ParseWaterPolicy(p.WaterPolicy)
	return wp
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func (p Profile) DisplayHold() time.Duration { return ms(p.DisplayHoldMs) }
func (p Profile) HighHold() time.Duration    { return ms(p.HighHoldMs) }
func (p Profile) MediumHold() time.Duration  { return ms(p.MediumHoldMs) }
func (p Profile) ShakeWindow() time.Duration { return ms(p.ShakeWindowMs) }
func (p Profile) Debounce() time.Duration    { return ms(p.DebounceMs) }
