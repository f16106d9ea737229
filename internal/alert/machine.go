// Package alert smooths vibration readings into a stable display state and
// derives the dashboard alert banner.
package alert

import (
	"time"

	"sensor-dashboard/internal/classifier"
	"sensor-dashboard/internal/models"
	"sensor-dashboard/internal/scheduler"
)

// Config tunes the vibration machine.
type Config struct {
	// TriggerThreshold is the magnitude that starts or renews a hold.
	TriggerThreshold float64
	HighHold         time.Duration
	MediumHold       time.Duration
	// DisplayHold is a second countdown armed with every hold. While it runs
	// even qualifying readings are ignored. Zero disables it.
	DisplayHold    time.Duration
	ShakeThreshold float64
	ShakeWindow    time.Duration
}

// DefaultConfig returns the shared hold durations with the given trigger.
func DefaultConfig(trigger float64, displayHold time.Duration) Config {
	return Config{
		TriggerThreshold: trigger,
		HighHold:         10 * time.Second,
		MediumHold:       5 * time.Second,
		DisplayHold:      displayHold,
		ShakeThreshold:   0.1,
		ShakeWindow:      10 * time.Second,
	}
}

// Machine is the vibration alert/hold/shake state. All methods must be
// called on the scheduler goroutine.
type Machine struct {
	cfg      Config
	sched    scheduler.Scheduler
	onChange func(models.VibrationState)

	phase         models.Phase
	captured      models.Classification
	capturedValue float64
	holdStarted   time.Time
	holdExpires   time.Time
	displayHeld   bool
	shaking       bool

	lastValue interface{}
	received  bool

	holdTask    scheduler.Slot
	displayTask scheduler.Slot
	shakeTask   scheduler.Slot
}

// NewMachine creates an idle machine. onChange is invoked when a timer
// changes the state; it may be nil.
func NewMachine(cfg Config, sched scheduler.Scheduler, onChange func(models.VibrationState)) *Machine {
	return &Machine{
		cfg:      cfg,
		sched:    sched,
		onChange: onChange,
		phase:    models.PhaseIdle,
	}
}

// Transition reports what one reading did to the hold.
type Transition struct {
	// Entered is set when the reading moved the machine from Idle to Held.
	Entered bool
	// Escalated is set when the held tier became high and was not high before.
	Escalated bool
	// Previous is the tier held before the reading, empty when Idle.
	Previous models.Tier
}

// Observe feeds one vibration reading (nil when absent).
func (m *Machine) Observe(value interface{}) (models.VibrationState, Transition) {
	m.lastValue = value
	m.received = true

	var tr Transition
	if m.phase == models.PhaseHeld {
		tr.Previous = m.captured.Tier
	}

	mag, numeric := models.ToFloat(value)
	m.observeShake(mag)

	if m.displayHeld {
		return m.State(), tr
	}
	if numeric && mag >= m.cfg.TriggerThreshold {
		c := classifier.VibrationMagnitude(mag)
		tr.Entered = m.phase == models.PhaseIdle
		tr.Escalated = c.Tier == models.TierHigh && tr.Previous != models.TierHigh
		m.hold(c, mag)
	}
	return m.State(), tr
}

// State returns the current display state.
func (m *Machine) State() models.VibrationState {
	st := models.VibrationState{
		Phase:       m.phase,
		DisplayHeld: m.displayHeld,
		Shaking:     m.shaking,
	}
	if m.phase == models.PhaseHeld {
		started, expires := m.holdStarted, m.holdExpires
		st.Classification = m.captured
		st.Value = m.capturedValue
		st.HoldStartedAt = &started
		st.HoldExpiresAt = &expires
		return st
	}
	st.Classification, st.Value = m.current()
	return st
}

// Reset cancels every timer and returns to Idle without notifying.
func (m *Machine) Reset() {
	m.holdTask.Stop()
	m.displayTask.Stop()
	m.shakeTask.Stop()
	m.phase = models.PhaseIdle
	m.displayHeld = false
	m.shaking = false
}

// hold captures c and rearms both countdowns in one step.
func (m *Machine) hold(c models.Classification, value float64) {
	now := m.sched.Now()
	d := m.cfg.MediumHold
	if c.Tier == models.TierHigh {
		d = m.cfg.HighHold
	}

	m.phase = models.PhaseHeld
	m.captured = c
	m.capturedValue = value
	m.holdStarted = now
	m.holdExpires = now.Add(d)
	m.holdTask.Schedule(m.sched, d, m.expire)

	if m.cfg.DisplayHold > 0 {
		m.displayHeld = true
		m.displayTask.Schedule(m.sched, m.cfg.DisplayHold, m.releaseDisplay)
	}
}

func (m *Machine) expire() {
	m.phase = models.PhaseIdle
	m.captured = models.Classification{}
	m.capturedValue = 0
	m.notify()
}

func (m *Machine) releaseDisplay() {
	m.displayHeld = false
	m.notify()
}

func (m *Machine) observeShake(mag float64) {
	if mag <= m.cfg.ShakeThreshold || m.shaking {
		return
	}
	m.shaking = true
	m.shakeTask.Schedule(m.sched, m.cfg.ShakeWindow, func() {
		m.shaking = false
		m.notify()
	})
}

// current classifies the last reading. Before any reading it reports zero.
func (m *Machine) current() (models.Classification, float64) {
	if !m.received {
		return classifier.VibrationMagnitude(0), 0
	}
	c := classifier.Vibration(m.lastValue)
	v, _ := models.ToFloat(m.lastValue)
	return c, v
}

func (m *Machine) notify() {
	if m.onChange != nil {
		m.onChange(m.State())
	}
}
