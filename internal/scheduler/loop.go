package scheduler

import (
	"context"
	"sync"
	"time"
)

// Loop is a Scheduler backed by the wall clock and a single run goroutine.
type Loop struct {
	events chan func()
	done   chan struct{}
	once   sync.Once
}

// NewLoop creates a loop with the given event queue size.
func NewLoop(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Loop{
		events: make(chan func(), queueSize),
		done:   make(chan struct{}),
	}
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Post queues fn. It blocks while the queue is full and drops fn once the loop has stopped.
func (l *Loop) Post(fn func()) {
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

// Run executes queued callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.events:
			fn()
		}
	}
}

type loopTask struct {
	timer     *time.Timer
	cancelled bool
}

func (t *loopTask) Cancel() {
	t.cancelled = true
	t.timer.Stop()
}

// AfterFunc arms a wall clock timer that posts fn back to the loop. The
// cancelled flag is only touched on the loop goroutine, so a timer that has
// already fired but not yet run is still suppressed by Cancel.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Task {
	t := &loopTask{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.cancelled {
				return
			}
			fn()
		})
	})
	return t
}
