package models

// HistoryEntry is one recorded sensor reading. Nil numbers mean the metric was
// absent or unparseable at the time.
type HistoryEntry struct {
	ID              string                    `json:"id"`
	Timestamp       int64                     `json:"timestamp"`
	Temperature     *float64                  `json:"temperature"`
	Humidity        *float64                  `json:"humidity"`
	Distance        *float64                  `json:"distance"`
	Vibration       *float64                  `json:"vibration"`
	Status          string                    `json:"status"`
	Classifications map[Metric]Classification `json:"classifications,omitempty"`
}

// SmokeEntry is one recorded smoke sensor reading.
type SmokeEntry struct {
	ID        string     `json:"id"`
	Timestamp int64      `json:"timestamp"`
	Smoke     *float64   `json:"smoke"`
	AirStatus string     `json:"air_status"`
	Status    SmokeLevel `json:"status"`
}

// Stats summarizes the numeric values of a buffer. Pointers are nil when no
// valid value exists.
type Stats struct {
	Current *float64 `json:"current"`
	Average *float64 `json:"average"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Count   int      `json:"count"`
}
