package alert

import (
	"fmt"
	"time"

	"sensor-dashboard/internal/classifier"
	"sensor-dashboard/internal/models"
	"sensor-dashboard/internal/scheduler"
)

// BannerWindow is how long a new banner message stays up.
const BannerWindow = 10 * time.Second

// Messages derives banner messages from a snapshot, most urgent first.
func Messages(s models.Snapshot) []string {
	var out []string

	if t, ok := models.ToFloat(s.Pick(models.TemperatureKeys, nil)); ok {
		switch {
		case t >= 35:
			out = append(out, fmt.Sprintf("Critical: Temperature is %.1f°C - Too hot!", t))
		case t <= 5:
			out = append(out, fmt.Sprintf("Warning: Temperature is %.1f°C - Too cold!", t))
		}
	}

	if d, ok := models.ToFloat(s.Pick(models.DistanceKeys, nil)); ok {
		switch {
		case d <= 1:
			out = append(out, fmt.Sprintf("DANGER: Water at %.1fcm - EVACUATE IMMEDIATELY! Flood danger!", d))
		case d <= 2:
			out = append(out, fmt.Sprintf("WARNING: Water at %.1fcm - Water rising, prepare to evacuate!", d))
		}
	}

	if m, ok := models.ToFloat(s.Pick(models.VibrationKeys, nil)); ok {
		switch {
		case m >= classifier.StrongQuakeThreshold:
			out = append(out, fmt.Sprintf("DANGER: Strong earthquake detected (%.1f) - EVACUATE IMMEDIATELY!", m))
		case m >= classifier.QuakeThreshold:
			out = append(out, fmt.Sprintf("Warning: Minor earthquake detected (%.1f) - Seek safe location!", m))
		}
	}

	if smoke := s.Pick(models.SmokeKeys, nil); smoke != nil && classifier.IsSmokeDanger(smoke, s.AirStatus()) {
		out = append(out, fmt.Sprintf("CRITICAL: Smoke detected! Air quality: %v - Evacuate immediately!", smoke))
	}
	return out
}

// Banner tracks which message is up and hides it after BannerWindow.
// Methods must be called on the scheduler goroutine.
type Banner struct {
	sched    scheduler.Scheduler
	window   time.Duration
	onChange func(models.Banner)

	visible bool
	message string
	shown   []string
	hide    scheduler.Slot
}

// NewBanner creates a hidden banner. onChange fires when the auto-hide timer runs.
func NewBanner(sched scheduler.Scheduler, onChange func(models.Banner)) *Banner {
	return &Banner{sched: sched, window: BannerWindow, onChange: onChange}
}

// Show applies the messages of one processed snapshot. Only the first is
// considered; a message already shown since the last hide is not repeated.
// An empty list hides the banner.
func (b *Banner) Show(messages []string) models.Banner {
	if len(messages) == 0 {
		b.clear()
		return b.State()
	}
	msg := messages[0]
	for _, seen := range b.shown {
		if seen == msg {
			return b.State()
		}
	}
	b.shown = append(b.shown, msg)
	b.message = msg
	b.visible = true
	b.hide.Schedule(b.sched, b.window, func() {
		b.clear()
		if b.onChange != nil {
			b.onChange(b.State())
		}
	})
	return b.State()
}

// Dismiss hides the banner immediately.
func (b *Banner) Dismiss() models.Banner {
	b.clear()
	return b.State()
}

// State returns a copy of the banner state.
func (b *Banner) State() models.Banner {
	st := models.Banner{Visible: b.visible}
	if b.visible {
		st.Message = b.message
	}
	if len(b.shown) > 0 {
		st.Shown = append([]string(nil), b.shown...)
	}
	return st
}

func (b *Banner) clear() {
	b.hide.Stop()
	b.visible = false
	b.message = ""
	b.shown = nil
}
