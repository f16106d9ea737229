package presenter

import (
	"sync"

	"sensor-dashboard/internal/models"
)

// Listener receives the shaped view of every update.
type Listener func(variant string, view interface{})

// Store keeps the latest update per variant. It is safe for concurrent use:
// monitors write from the scheduler goroutine, HTTP handlers read.
type Store struct {
	mu        sync.RWMutex
	latest    map[string]models.Update
	listeners []Listener
}

func NewStore() *Store {
	return &Store{latest: make(map[string]models.Update)}
}

// Subscribe registers l for every later update.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Present records u and forwards its view to the listeners.
func (s *Store) Present(u models.Update) {
	s.mu.Lock()
	s.latest[u.Variant] = u
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if len(listeners) == 0 {
		return
	}
	view := Shape(u)
	for _, l := range listeners {
		l(u.Variant, view)
	}
}

// Latest returns the last update of variant.
func (s *Store) Latest(variant string) (models.Update, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.latest[variant]
	return u, ok
}

// View returns the shaped view of the last update of variant.
func (s *Store) View(variant string) (interface{}, bool) {
	u, ok := s.Latest(variant)
	if !ok {
		return nil, false
	}
	return Shape(u), true
}
