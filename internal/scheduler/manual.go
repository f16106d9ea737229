package scheduler

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by a virtual clock. Post runs callbacks
// immediately and timers only fire from Advance.
type Manual struct {
	now   time.Time
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	due       time.Time
	seq       int
	fn        func()
	cancelled bool
}

func (t *manualTask) Cancel() {
	t.cancelled = true
}

// NewManual starts the virtual clock at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	return m.now
}

func (m *Manual) Post(fn func()) {
	fn()
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Task {
	m.seq++
	t := &manualTask{due: m.now.Add(d), seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves the clock forward by d, firing due timers in order. Timers
// armed by a firing callback also fire if they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	end := m.now.Add(d)
	for {
		next := m.nextDue(end)
		if next == nil {
			break
		}
		m.now = next.due
		next.fn()
	}
	m.now = end
}

// Pending counts live timers.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(end time.Time) *manualTask {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.tasks = live
	if len(m.tasks) == 0 {
		return nil
	}
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due.Equal(m.tasks[j].due) {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].due.Before(m.tasks[j].due)
	})
	first := m.tasks[0]
	if first.due.After(end) {
		return nil
	}
	m.tasks = m.tasks[1:]
	return first
}
