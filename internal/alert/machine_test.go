package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-dashboard/internal/models"
	"sensor-dashboard/internal/scheduler"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	states []models.VibrationState
}

func (r *recorder) record(st models.VibrationState) {
	r.states = append(r.states, st)
}

func (r *recorder) last() models.VibrationState {
	return r.states[len(r.states)-1]
}

func newMachine(trigger float64, displayHold time.Duration) (*Machine, *scheduler.Manual, *recorder) {
	clock := scheduler.NewManual(epoch)
	rec := &recorder{}
	return NewMachine(DefaultConfig(trigger, displayHold), clock, rec.record), clock, rec
}

func TestMachine_HoldsHighThroughCalmReading(t *testing.T) {
	for _, tc := range []struct {
		name        string
		trigger     float64
		displayHold time.Duration
	}{
		{"single countdown", 2.0, 0},
		{"with display hold", 1.7, 5 * time.Second},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, clock, _ := newMachine(tc.trigger, tc.displayHold)

			st, tr := m.Observe(4.5)
			assert.True(t, tr.Entered)
			assert.True(t, tr.Escalated)
			assert.Equal(t, models.PhaseHeld, st.Phase)
			assert.Equal(t, models.TierHigh, st.Classification.Tier)

			clock.Advance(2000 * time.Millisecond)
			st, tr = m.Observe(0.0)
			assert.False(t, tr.Entered)
			assert.False(t, tr.Escalated)
			assert.Equal(t, models.TierHigh, tr.Previous)
			assert.Equal(t, models.TierHigh, st.Classification.Tier)
			assert.Equal(t, 4.5, st.Value)

			clock.Advance(8001 * time.Millisecond)
			st = m.State()
			assert.Equal(t, models.PhaseIdle, st.Phase)
			assert.Equal(t, models.SeverityOK, st.Classification.Severity)
			assert.Equal(t, "Normal", st.Classification.Status)
			assert.Zero(t, st.Value)
		})
	}
}

func TestMachine_MediumHoldsFiveSeconds(t *testing.T) {
	m, clock, rec := newMachine(2.0, 0)

	st, _ := m.Observe(2.5)
	require.Equal(t, models.TierMedium, st.Classification.Tier)
	require.NotNil(t, st.HoldExpiresAt)
	assert.Equal(t, epoch.Add(5*time.Second), *st.HoldExpiresAt)

	m.Observe(1.0)
	clock.Advance(4999 * time.Millisecond)
	assert.Equal(t, models.PhaseHeld, m.State().Phase)

	clock.Advance(time.Millisecond)
	require.NotEmpty(t, rec.states)
	assert.Equal(t, models.PhaseIdle, rec.last().Phase)
	assert.Equal(t, 1.0, rec.last().Value)
}

func TestMachine_ExpiryWithoutCalmerReading(t *testing.T) {
	m, clock, _ := newMachine(2.0, 0)

	m.Observe(4.2)
	clock.Advance(11 * time.Second)
	st := m.State()
	assert.Equal(t, models.PhaseIdle, st.Phase)
	assert.Equal(t, models.TierHigh, st.Classification.Tier, "last known snapshot is still the quake")
}

func TestMachine_RenewalRestartsCountdown(t *testing.T) {
	m, clock, _ := newMachine(2.0, 0)

	m.Observe(4.5)
	clock.Advance(8 * time.Second)
	st, tr := m.Observe(2.2)
	assert.False(t, tr.Entered)
	assert.False(t, tr.Escalated)
	assert.Equal(t, models.TierMedium, st.Classification.Tier)

	clock.Advance(4 * time.Second)
	assert.Equal(t, models.PhaseHeld, m.State().Phase, "first 10s countdown was cancelled")

	clock.Advance(time.Second)
	assert.Equal(t, models.PhaseIdle, m.State().Phase)
}

func TestMachine_EscalationFromMedium(t *testing.T) {
	m, clock, _ := newMachine(2.0, 0)

	st, tr := m.Observe(2.5)
	assert.True(t, tr.Entered)
	assert.False(t, tr.Escalated)
	assert.Equal(t, models.TierMedium, st.Classification.Tier)

	clock.Advance(2 * time.Second)
	st, tr = m.Observe(4.8)
	assert.False(t, tr.Entered)
	assert.True(t, tr.Escalated)
	assert.Equal(t, models.TierMedium, tr.Previous)
	assert.Equal(t, models.TierHigh, st.Classification.Tier)

	clock.Advance(time.Second)
	_, tr = m.Observe(4.9)
	assert.False(t, tr.Escalated, "already high")
}

func TestMachine_DisplayHoldIgnoresRenewals(t *testing.T) {
	m, clock, _ := newMachine(1.7, 5*time.Second)

	st, _ := m.Observe(1.8)
	assert.True(t, st.DisplayHeld)
	assert.Equal(t, models.TierLow, st.Classification.Tier)

	clock.Advance(time.Second)
	st, _ = m.Observe(4.8)
	assert.Equal(t, 1.8, st.Value, "display hold ignores even qualifying readings")

	clock.Advance(4 * time.Second)
	st = m.State()
	assert.False(t, st.DisplayHeld)
	assert.Equal(t, models.PhaseIdle, st.Phase, "1.8 held for the medium duration")
	assert.Equal(t, models.TierHigh, st.Classification.Tier, "re-evaluates the last reading")

	st, tr := m.Observe(4.8)
	assert.True(t, tr.Entered)
	assert.True(t, st.DisplayHeld)
}

func TestMachine_BothCountdownsInFlight(t *testing.T) {
	m, clock, rec := newMachine(1.7, 5*time.Second)

	m.Observe(4.5)
	clock.Advance(5 * time.Second)
	st := m.State()
	assert.False(t, st.DisplayHeld)
	assert.Equal(t, models.PhaseHeld, st.Phase)

	st, _ = m.Observe(3.0)
	assert.True(t, st.DisplayHeld)
	assert.Equal(t, models.TierMedium, st.Classification.Tier)
	assert.Equal(t, epoch.Add(10*time.Second), *st.HoldExpiresAt)

	clock.Advance(5 * time.Second)
	assert.Equal(t, models.PhaseIdle, rec.last().Phase)
	assert.False(t, rec.last().DisplayHeld)
}

func TestMachine_InvalidAndMissingReadings(t *testing.T) {
	m, _, _ := newMachine(2.0, 0)

	st := m.State()
	assert.Equal(t, "Normal", st.Classification.Status, "no reading ever received")

	st, _ = m.Observe("broken")
	assert.Equal(t, "Error", st.Classification.Status)

	st, _ = m.Observe(nil)
	assert.Equal(t, "Pending", st.Classification.Status)
}

func TestMachine_Shake(t *testing.T) {
	m, clock, rec := newMachine(2.0, 0)

	st, _ := m.Observe(0.05)
	assert.False(t, st.Shaking)

	st, _ = m.Observe(0.3)
	assert.True(t, st.Shaking)

	clock.Advance(6 * time.Second)
	st, _ = m.Observe(0.5)
	assert.True(t, st.Shaking)

	clock.Advance(4 * time.Second)
	assert.False(t, m.State().Shaking, "window is not restarted while shaking")
	assert.False(t, rec.last().Shaking)

	st, _ = m.Observe(0.0)
	assert.False(t, st.Shaking)
}

func TestMachine_ShakeIndependentOfHold(t *testing.T) {
	m, clock, _ := newMachine(2.0, 0)

	m.Observe(4.5)
	clock.Advance(10 * time.Second)
	st := m.State()
	assert.Equal(t, models.PhaseIdle, st.Phase)
	assert.False(t, st.Shaking)

	m.Observe(0.2)
	assert.True(t, m.State().Shaking)
	assert.Equal(t, models.PhaseIdle, m.State().Phase)
}

func TestMachine_Reset(t *testing.T) {
	m, clock, rec := newMachine(1.7, 5*time.Second)
	m.Observe(4.5)
	m.Reset()
	assert.Zero(t, clock.Pending())
	clock.Advance(time.Minute)
	assert.Empty(t, rec.states)
}
