package models

import "time"

// Alert is an evacuation-grade event handed to the notification service.
type Alert struct {
	RequestID string
	Variant   string
	Metric    Metric
	Severity  Severity
	Subject   string
	Body      string
	Value     float64
	Timestamp time.Time
}
