// Package scheduler serialises monitor work onto one goroutine and provides
// cancellable timers that fire on that same goroutine.
package scheduler

import "time"

// Task is a pending timer. Cancel is idempotent and guarantees the callback
// will not run once it returns, provided it is called from the scheduler's
// own goroutine.
type Task interface {
	Cancel()
}

// Scheduler runs callbacks one at a time.
type Scheduler interface {
	Now() time.Time
	// Post queues fn to run on the scheduler goroutine.
	Post(fn func())
	// AfterFunc runs fn on the scheduler goroutine after d.
	AfterFunc(d time.Duration, fn func()) Task
}

// Slot holds at most one pending task. Schedule cancels whatever was held.
type Slot struct {
	task Task
}

// Schedule replaces the held task with a new one.
func (s *Slot) Schedule(sched Scheduler, d time.Duration, fn func()) {
	s.Stop()
	s.task = sched.AfterFunc(d, func() {
		s.task = nil
		fn()
	})
}

// Stop cancels the held task, if any.
func (s *Slot) Stop() {
	if s.task != nil {
		s.task.Cancel()
		s.task = nil
	}
}

// Pending reports whether a task is held.
func (s *Slot) Pending() bool {
	return s.task != nil
}
