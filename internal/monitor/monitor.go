// Package monitor runs the per-variant dashboard pipeline: it debounces live
// snapshots, gates history writes through the change detectors, classifies
// every metric, smooths vibration, and publishes one Update per cycle.
package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"sensor-dashboard/internal/alert"
	"sensor-dashboard/internal/change"
	"sensor-dashboard/internal/classifier"
	"sensor-dashboard/internal/config"
	"sensor-dashboard/internal/history"
	"sensor-dashboard/internal/logging"
	"sensor-dashboard/internal/metrics"
	"sensor-dashboard/internal/models"
	"sensor-dashboard/internal/scheduler"
)

// ErrUnknownVariant is returned when no monitor serves a variant.
var ErrUnknownVariant = errors.New("unknown variant")

// Presenter receives every published update.
type Presenter interface {
	Present(update models.Update)
}

// Notifier accepts evacuation alerts. QueueAlert must not block.
type Notifier interface {
	QueueAlert(alert models.Alert)
}

// Monitor owns the state of one page variant. Its state is only touched on
// the scheduler goroutine; exported methods post their work there.
type Monitor struct {
	variant   string
	profile   config.Profile
	water     classifier.WaterPolicy
	sched     scheduler.Scheduler
	logger    *logging.Logger
	presenter Presenter
	notifier  Notifier

	status    string
	errMsg    string
	updatedAt int64
	last      *models.Snapshot
	pending   models.Snapshot
	debounce  scheduler.Slot

	sensorGate *change.Gate
	smokeGate  *change.Gate
	history    *history.Buffer[models.HistoryEntry]
	smokeLog   *history.Buffer[models.SmokeEntry]
	distStats  *history.Buffer[float64]
	vibStats   *history.Buffer[float64]

	machine     *alert.Machine
	banner      *alert.Banner
	cards       []models.MetricCard
	smoke       models.SmokeClassification
	smokeDanger bool
}

// New builds a monitor for variant. notifier may be nil.
func New(variant string, profile config.Profile, sched scheduler.Scheduler, logger *logging.Logger, presenter Presenter, notifier Notifier) *Monitor {
	m := &Monitor{
		variant:    variant,
		profile:    profile,
		water:      profile.Water(),
		sched:      sched,
		logger:     logger.WithField("variant", variant),
		presenter:  presenter,
		notifier:   notifier,
		status:     models.StatusConnecting,
		sensorGate: change.NewGate(change.NewSensorDetector()),
		smokeGate:  change.NewGate(change.NewSmokeDetector()),
		history:    history.New[models.HistoryEntry](profile.HistoryCapacity),
		smokeLog:   history.New[models.SmokeEntry](profile.SmokeCapacity),
		distStats:  history.New[float64](profile.StatsCapacity),
		vibStats:   history.New[float64](profile.StatsCapacity),
	}
	cfg := alert.Config{
		TriggerThreshold: profile.HoldTrigger,
		HighHold:         profile.HighHold(),
		MediumHold:       profile.MediumHold(),
		DisplayHold:      profile.DisplayHold(),
		ShakeThreshold:   profile.ShakeThreshold,
		ShakeWindow:      profile.ShakeWindow(),
	}
	m.machine = alert.NewMachine(cfg, sched, func(models.VibrationState) { m.publish() })
	if profile.Banner {
		m.banner = alert.NewBanner(sched, func(models.Banner) { m.publish() })
	}
	m.cards = m.classifyCards(models.NewSnapshot(nil, sched.Now()))
	m.smoke = classifier.Smoke(nil, models.AirStatusNormal)
	return m
}

// Variant returns the variant name.
func (m *Monitor) Variant() string {
	return m.variant
}

// Start publishes the initial connecting state.
func (m *Monitor) Start() {
	m.sched.Post(m.publish)
}

// Live accepts a snapshot from the live channel. Snapshots arriving within
// the debounce window replace each other; only the latest is processed.
func (m *Monitor) Live(s models.Snapshot) {
	metrics.IncSnapshotReceived(m.variant, "live")
	m.sched.Post(func() {
		if m.profile.DebounceMs == 0 {
			m.process(s)
			return
		}
		m.pending = s
		m.debounce.Schedule(m.sched, m.profile.Debounce(), func() {
			m.process(m.pending)
		})
	})
}

// HistoryAppend accepts a snapshot from the history channel. Profiles that
// record history from the live channel ignore it.
func (m *Monitor) HistoryAppend(s models.Snapshot) {
	metrics.IncSnapshotReceived(m.variant, "history")
	m.sched.Post(func() {
		if m.profile.ChangeGated || m.history.Cap() == 0 {
			return
		}
		m.history.Append(m.sensorEntry(s, entryTimestamp(s, m.sched.Now())))
		metrics.IncHistory(m.variant, "sensor", true)
		m.publish()
	})
}

// Preload replaces the sensor history with snapshots in arrival order.
func (m *Monitor) Preload(snaps []models.Snapshot) {
	m.sched.Post(func() {
		entries := make([]models.HistoryEntry, 0, len(snaps))
		now := m.sched.Now()
		for _, s := range snaps {
			entries = append(entries, m.sensorEntry(s, entryTimestamp(s, now)))
		}
		m.history.Replace(entries)
		m.logger.Infof("Loaded %d history records", m.history.Len())
		m.publish()
	})
}

// FeedError reports a subscription failure. The feed keeps retrying on its own.
func (m *Monitor) FeedError(channel string, err error) {
	m.sched.Post(func() {
		m.status = models.StatusFeedError
		m.errMsg = fmt.Sprintf("%s: %v", channel, err)
		m.logger.Errorf("Realtime listener error on %s: %v", channel, err)
		m.publish()
	})
}

// Refresh redraws the cards from the last live snapshot, if any. Histories,
// statistics, the vibration hold and notifications are left untouched.
func (m *Monitor) Refresh() {
	m.sched.Post(func() {
		if m.last == nil {
			return
		}
		m.cards = m.classifyCards(*m.last)
		m.smoke = classifier.Smoke(m.last.Pick(models.SmokeKeys, nil), m.last.AirStatus())
		m.publish()
	})
}

// DismissBanner hides the alert banner.
func (m *Monitor) DismissBanner() {
	m.sched.Post(func() {
		if m.banner == nil {
			return
		}
		m.banner.Dismiss()
		m.publish()
	})
}

// ClearHistory empties the sensor history. It requires confirm=true.
func (m *Monitor) ClearHistory(confirm bool) error {
	if !confirm {
		return history.ErrConfirmationRequired
	}
	m.sched.Post(func() {
		if err := m.history.Clear(true); err == nil {
			m.logger.Infof("Sensor history cleared")
		}
		m.publish()
	})
	return nil
}

// ClearSmokeHistory empties the smoke history. It requires confirm=true.
func (m *Monitor) ClearSmokeHistory(confirm bool) error {
	if !confirm {
		return history.ErrConfirmationRequired
	}
	m.sched.Post(func() {
		if err := m.smokeLog.Clear(true); err == nil {
			m.logger.Infof("Smoke history cleared")
		}
		m.publish()
	})
	return nil
}

// process runs one update cycle for a debounced live snapshot.
func (m *Monitor) process(s models.Snapshot) {
	start := time.Now()
	now := m.sched.Now()

	kept := s
	m.last = &kept
	m.status = models.StatusLive
	m.errMsg = ""
	m.updatedAt = s.TimestampOr(now.UnixMilli())

	if m.profile.ChangeGated && m.history.Cap() > 0 {
		recorded := m.sensorGate.Admit(s)
		if recorded {
			m.history.Append(m.sensorEntry(s, s.TimestampOr(now.UnixMilli())))
		}
		metrics.IncHistory(m.variant, "sensor", recorded)
	}
	if m.smokeLog.Cap() > 0 {
		recorded := m.smokeGate.Admit(s)
		if recorded {
			m.smokeLog.Append(smokeEntry(s, s.TimestampOr(now.UnixMilli())))
		}
		metrics.IncHistory(m.variant, "smoke", recorded)
	}

	m.cards = m.classifyCards(s)
	m.observeSmoke(s)
	m.recordStats(s)

	if m.banner != nil {
		m.banner.Show(alert.Messages(s))
	}

	vib := s.Pick(models.VibrationKeys, nil)
	st, tr := m.machine.Observe(vib)
	if tr.Entered {
		metrics.IncVibrationHold(m.variant, string(st.Classification.Tier))
		m.logger.Warnf("Vibration hold started: magnitude=%.2f tier=%s", st.Value, st.Classification.Tier)
	}
	if tr.Escalated {
		if !tr.Entered {
			m.logger.Warnf("Vibration hold escalated: magnitude=%.2f from tier=%s", st.Value, tr.Previous)
		}
		m.notify(models.MetricVibration, st.Value,
			"Strong earthquake detected",
			fmt.Sprintf("Strong earthquake detected (%.1f) - EVACUATE IMMEDIATELY!", st.Value))
	}

	m.publish()
	metrics.ObserveProcess(m.variant, time.Since(start))
}

func (m *Monitor) classifyCards(s models.Snapshot) []models.MetricCard {
	temp := s.Pick(models.TemperatureKeys, nil)
	hum := s.Pick(models.HumidityKeys, nil)
	dist := s.Pick(models.DistanceKeys, nil)
	return []models.MetricCard{
		{Metric: models.MetricTemperature, Value: models.FloatPtr(temp), Unit: "°C", Classification: classifier.Temperature(temp)},
		{Metric: models.MetricHumidity, Value: models.FloatPtr(hum), Unit: "%", Classification: classifier.Humidity(hum)},
		{Metric: models.MetricDistance, Value: models.FloatPtr(dist), Unit: "cm", Classification: m.water.Distance(dist)},
	}
}

func (m *Monitor) observeSmoke(s models.Snapshot) {
	raw := s.Pick(models.SmokeKeys, nil)
	m.smoke = classifier.Smoke(raw, s.AirStatus())
	if m.smoke.Danger && !m.smokeDanger {
		m.logger.Warnf("Smoke danger: value=%s air_status=%s", m.smoke.Raw, m.smoke.AirStatus)
		value := 0.0
		if m.smoke.Value != nil {
			value = *m.smoke.Value
		}
		m.notify(models.MetricSmoke, value,
			"Smoke detected",
			fmt.Sprintf("Smoke detected! Air quality: %s (%s) - Evacuate immediately!", m.smoke.Raw, m.smoke.AirStatus))
	}
	m.smokeDanger = m.smoke.Danger
}

func (m *Monitor) recordStats(s models.Snapshot) {
	if m.distStats.Cap() == 0 {
		return
	}
	if v, ok := models.ToFloat(s.Pick(models.DistanceKeys, nil)); ok {
		m.distStats.Append(v)
	}
	if v, ok := models.ToFloat(s.Pick(models.VibrationKeys, nil)); ok {
		m.vibStats.Append(v)
	}
}

func (m *Monitor) notify(metric models.Metric, value float64, subject, body string) {
	if m.notifier == nil {
		return
	}
	m.notifier.QueueAlert(models.Alert{
		RequestID: uuid.NewString(),
		Variant:   m.variant,
		Metric:    metric,
		Severity:  models.SeverityCritical,
		Subject:   subject,
		Body:      body,
		Value:     value,
		Timestamp: m.sched.Now(),
	})
}

// snapshot builds the current update.
func (m *Monitor) snapshot() models.Update {
	u := models.Update{
		Variant:      m.variant,
		Status:       m.status,
		Error:        m.errMsg,
		UpdatedAt:    m.updatedAt,
		Cards:        append([]models.MetricCard(nil), m.cards...),
		Smoke:        m.smoke,
		Vibration:    m.machine.State(),
		History:      history.Descending(m.history, func(e models.HistoryEntry) int64 { return e.Timestamp }),
		SmokeHistory: history.Descending(m.smokeLog, func(e models.SmokeEntry) int64 { return e.Timestamp }),
	}
	if m.banner != nil {
		u.Banner = m.banner.State()
	}
	if m.distStats.Cap() > 0 {
		dist := m.distStats.Snapshot()
		vib := m.vibStats.Snapshot()
		u.DistanceStat = history.Summarize(dist)
		u.VibStat = history.Summarize(vib)
		u.Chart = models.Series{
			Distance:  lastN(dist, m.profile.ChartPoints),
			Vibration: lastN(vib, m.profile.ChartPoints),
		}
	}
	return u
}

func (m *Monitor) publish() {
	m.presenter.Present(m.snapshot())
}

func (m *Monitor) sensorEntry(s models.Snapshot, ts int64) models.HistoryEntry {
	temp := s.Pick(models.TemperatureKeys, nil)
	hum := s.Pick(models.HumidityKeys, nil)
	dist := s.Pick(models.DistanceKeys, nil)
	vib := s.Pick(models.VibrationKeys, nil)
	vibClass := classifier.Vibration(s.Pick(models.VibrationKeys, 0.0))
	return models.HistoryEntry{
		ID:          uuid.NewString(),
		Timestamp:   ts,
		Temperature: models.FloatPtr(temp),
		Humidity:    models.FloatPtr(hum),
		Distance:    models.FloatPtr(dist),
		Vibration:   models.FloatPtr(vib),
		Status:      vibClass.Status,
		Classifications: map[models.Metric]models.Classification{
			models.MetricTemperature: classifier.Temperature(temp),
			models.MetricHumidity:    classifier.Humidity(hum),
			models.MetricDistance:    m.water.Distance(dist),
			models.MetricVibration:   vibClass,
		},
	}
}

func smokeEntry(s models.Snapshot, ts int64) models.SmokeEntry {
	c := classifier.Smoke(s.Pick(models.SmokeKeys, nil), s.AirStatus())
	return models.SmokeEntry{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Smoke:     c.Value,
		AirStatus: c.AirStatus,
		Status:    c.Level,
	}
}

// entryTimestamp prefers the payload timestamp, then the message key as
// epoch milliseconds, then now.
func entryTimestamp(s models.Snapshot, now time.Time) int64 {
	if s.Timestamp != 0 {
		return s.Timestamp
	}
	if k, err := strconv.ParseInt(s.Key, 10, 64); err == nil && k != 0 {
		return k
	}
	return now.UnixMilli()
}

func lastN(values []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if len(values) > n {
		values = values[len(values)-n:]
	}
	return append([]float64(nil), values...)
}
