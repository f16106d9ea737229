package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "sensor_dashboard_"

	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultDropped = "dropped"
	ResultLogged  = "logged"
)

var (
	registerOnce sync.Once

	snapshotsReceived  *prometheus.CounterVec
	snapshotsProcessed *prometheus.CounterVec
	processLatency     *prometheus.HistogramVec

	historyAppends    *prometheus.CounterVec
	historySuppressed *prometheus.CounterVec

	vibrationHolds *prometheus.CounterVec
	feedErrors     *prometheus.CounterVec
	notifications  *prometheus.CounterVec

	wsClients *prometheus.GaugeVec
)

// Init registers the dashboard metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		snapshotsReceived = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshots_received_total",
				Help: "Snapshots received from the feed by variant and channel",
			},
			[]string{"variant", "channel"},
		)
		snapshotsProcessed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshots_processed_total",
				Help: "Live snapshots processed after debounce",
			},
			[]string{"variant"},
		)
		processLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "process_latency_seconds",
				Help:    "Time spent processing one live snapshot",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"variant"},
		)
		historyAppends = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "history_appends_total",
				Help: "History entries recorded by variant and history",
			},
			[]string{"variant", "history"},
		)
		historySuppressed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "history_suppressed_total",
				Help: "Snapshots rejected by the change detector",
			},
			[]string{"variant", "history"},
		)
		vibrationHolds = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "vibration_holds_total",
				Help: "Vibration holds entered by tier",
			},
			[]string{"variant", "tier"},
		)
		feedErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "feed_errors_total",
				Help: "Feed read or decode errors by channel",
			},
			[]string{"channel"},
		)
		notifications = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_total",
				Help: "Evacuation notifications by result",
			},
			[]string{"result"},
		)
		wsClients = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "websocket_clients",
				Help: "Connected websocket clients by variant",
			},
			[]string{"variant"},
		)

		prometheus.MustRegister(
			snapshotsReceived,
			snapshotsProcessed,
			processLatency,
			historyAppends,
			historySuppressed,
			vibrationHolds,
			feedErrors,
			notifications,
			wsClients,
		)
	})
}

// IncSnapshotReceived counts one inbound snapshot.
func IncSnapshotReceived(variant, channel string) {
	if snapshotsReceived != nil {
		snapshotsReceived.WithLabelValues(variant, channel).Inc()
	}
}

// ObserveProcess records one debounced process step.
func ObserveProcess(variant string, duration time.Duration) {
	if snapshotsProcessed != nil {
		snapshotsProcessed.WithLabelValues(variant).Inc()
	}
	if processLatency != nil {
		processLatency.WithLabelValues(variant).Observe(duration.Seconds())
	}
}

// IncHistory counts a change detector decision.
func IncHistory(variant, history string, recorded bool) {
	if recorded {
		if historyAppends != nil {
			historyAppends.WithLabelValues(variant, history).Inc()
		}
		return
	}
	if historySuppressed != nil {
		historySuppressed.WithLabelValues(variant, history).Inc()
	}
}

// IncVibrationHold counts a hold entered at tier.
func IncVibrationHold(variant, tier string) {
	if tier == "" {
		tier = "unknown"
	}
	if vibrationHolds != nil {
		vibrationHolds.WithLabelValues(variant, tier).Inc()
	}
}

// IncFeedError counts a feed failure.
func IncFeedError(channel string) {
	if channel == "" {
		channel = "unknown"
	}
	if feedErrors != nil {
		feedErrors.WithLabelValues(channel).Inc()
	}
}

// IncNotification counts a notification outcome.
func IncNotification(result string) {
	if notifications != nil {
		notifications.WithLabelValues(result).Inc()
	}
}

// SetWebsocketClients sets the connected client gauge.
func SetWebsocketClients(variant string, n int) {
	if wsClients != nil {
		wsClients.WithLabelValues(variant).Set(float64(n))
	}
}
