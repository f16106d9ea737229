package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManual_FiresInOrder(t *testing.T) {
	m := NewManual(epoch)
	var fired []string
	m.AfterFunc(3*time.Second, func() { fired = append(fired, "c") })
	m.AfterFunc(1*time.Second, func() { fired = append(fired, "a") })
	m.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"a"}, fired)

	m.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, fired)
	assert.Equal(t, epoch.Add(6500*time.Millisecond), m.Now())
}

func TestManual_CancelSuppresses(t *testing.T) {
	m := NewManual(epoch)
	fired := false
	task := m.AfterFunc(time.Second, func() { fired = true })
	task.Cancel()
	task.Cancel()

	m.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Zero(t, m.Pending())
}

func TestManual_ClockInsideCallback(t *testing.T) {
	m := NewManual(epoch)
	var seen time.Time
	m.AfterFunc(1234*time.Millisecond, func() { seen = m.Now() })
	m.Advance(10 * time.Second)
	assert.Equal(t, epoch.Add(1234*time.Millisecond), seen)
}

func TestManual_ChainedTimers(t *testing.T) {
	m := NewManual(epoch)
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			m.AfterFunc(time.Second, tick)
		}
	}
	m.AfterFunc(time.Second, tick)

	m.Advance(10 * time.Second)
	assert.Equal(t, 3, count)
}

func TestSlot_ReplacesPendingTask(t *testing.T) {
	m := NewManual(epoch)
	var slot Slot
	var fired []int

	slot.Schedule(m, 5*time.Second, func() { fired = append(fired, 1) })
	m.Advance(3 * time.Second)
	slot.Schedule(m, 5*time.Second, func() { fired = append(fired, 2) })
	assert.True(t, slot.Pending())

	m.Advance(3 * time.Second)
	assert.Empty(t, fired)

	m.Advance(2 * time.Second)
	assert.Equal(t, []int{2}, fired)
	assert.False(t, slot.Pending())
}

func TestLoop_RunsPostedAndTimedCallbacks(t *testing.T) {
	l := NewLoop(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	done := make(chan string, 3)
	l.Post(func() { done <- "posted" })
	l.Post(func() {
		l.AfterFunc(10*time.Millisecond, func() { done <- "timer" })
		skipped := l.AfterFunc(10*time.Millisecond, func() { done <- "cancelled" })
		skipped.Cancel()
	})

	assert.Equal(t, "posted", <-done)
	select {
	case got := <-done:
		assert.Equal(t, "timer", got)
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	select {
	case got := <-done:
		t.Fatalf("unexpected callback %q", got)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)
	l.Post(func() { t.Error("ran after stop") })
}
