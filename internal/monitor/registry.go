package monitor

import (
	"fmt"

	"sensor-dashboard/internal/models"
)

// Registry holds the monitors by variant and fans feed events out to all of them.
type Registry struct {
	monitors map[string]*Monitor
	order    []string
}

// NewRegistry indexes monitors by their variant.
func NewRegistry(monitors ...*Monitor) *Registry {
	r := &Registry{monitors: make(map[string]*Monitor, len(monitors))}
	for _, m := range monitors {
		r.monitors[m.Variant()] = m
		r.order = append(r.order, m.Variant())
	}
	return r
}

// Get returns the monitor serving variant.
func (r *Registry) Get(variant string) (*Monitor, error) {
	m, ok := r.monitors[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, variant)
	}
	return m, nil
}

// Variants lists the registered variants in registration order.
func (r *Registry) Variants() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Live(s models.Snapshot) {
	for _, v := range r.order {
		r.monitors[v].Live(s)
	}
}

func (r *Registry) HistoryAppend(s models.Snapshot) {
	for _, v := range r.order {
		r.monitors[v].HistoryAppend(s)
	}
}

func (r *Registry) FeedError(channel string, err error) {
	for _, v := range r.order {
		r.monitors[v].FeedError(channel, err)
	}
}

// Preload hands the same snapshots to every monitor.
func (r *Registry) Preload(snaps []models.Snapshot) {
	for _, v := range r.order {
		r.monitors[v].Preload(snaps)
	}
}
