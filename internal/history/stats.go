package history

import (
	"math"

	"sensor-dashboard/internal/models"
)

// Summarize computes current/average/min/max over values, skipping NaN and
// infinities. With no valid value every pointer is nil and Count is 0.
func Summarize(values []float64) models.Stats {
	var (
		stats   models.Stats
		sum     float64
		lo, hi  float64
		current float64
	)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if stats.Count == 0 || v < lo {
			lo = v
		}
		if stats.Count == 0 || v > hi {
			hi = v
		}
		sum += v
		current = v
		stats.Count++
	}
	if stats.Count == 0 {
		return stats
	}
	avg := sum / float64(stats.Count)
	stats.Current = &current
	stats.Average = &avg
	stats.Min = &lo
	stats.Max = &hi
	return stats
}
