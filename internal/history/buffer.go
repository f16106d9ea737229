// Package history holds bounded, insertion-ordered reading buffers.
package history

import (
	"errors"
	"sort"
)

// ErrConfirmationRequired is returned when a clear is requested without explicit confirmation.
var ErrConfirmationRequired = errors.New("history: clear requires confirmation")

// Buffer is a fixed-capacity ring. When full, Append evicts the oldest entry.
// A Buffer is owned by a single goroutine; it performs no locking.
type Buffer[T any] struct {
	buf  []T
	head int // index of the next write position
	size int // number of valid entries
}

// New creates a Buffer holding at most capacity entries. A capacity <= 0
// yields a disabled buffer that drops every append.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer[T]{buf: make([]T, capacity)}
}

// Cap returns the buffer capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.buf)
}

// Len returns the number of stored entries.
func (b *Buffer[T]) Len() int {
	return b.size
}

// Append stores v, evicting the oldest entry first when the buffer is full.
func (b *Buffer[T]) Append(v T) {
	if len(b.buf) == 0 {
		return
	}
	b.buf[b.head] = v
	b.head = (b.head + 1) % len(b.buf)
	if b.size < len(b.buf) {
		b.size++
	}
}

// Snapshot returns a copy of the entries in arrival order (oldest first).
func (b *Buffer[T]) Snapshot() []T {
	out := make([]T, b.size)
	if b.size == 0 {
		return out
	}
	// oldest entry sits at (head - size + cap) % cap
	start := (b.head - b.size + len(b.buf)) % len(b.buf)
	for i := 0; i < b.size; i++ {
		out[i] = b.buf[(start+i)%len(b.buf)]
	}
	return out
}

// Last returns up to n most recent entries in arrival order.
func (b *Buffer[T]) Last(n int) []T {
	all := b.Snapshot()
	if n <= 0 {
		return all[:0]
	}
	if n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Replace drops the current contents and appends entries in order.
// Only the newest Cap() entries survive.
func (b *Buffer[T]) Replace(entries []T) {
	b.reset()
	for _, e := range entries {
		b.Append(e)
	}
}

// Clear empties the buffer. It is irreversible, so the caller must pass
// confirm=true; otherwise ErrConfirmationRequired is returned and nothing changes.
func (b *Buffer[T]) Clear(confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	b.reset()
	return nil
}

func (b *Buffer[T]) reset() {
	var zero T
	for i := range b.buf {
		b.buf[i] = zero
	}
	b.head = 0
	b.size = 0
}

// Descending returns a copy sorted newest first by ts. Entries with equal
// timestamps keep reverse arrival order. The buffer itself is not reordered.
func Descending[T any](b *Buffer[T], ts func(T) int64) []T {
	out := b.Snapshot()
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return ts(out[i]) > ts(out[j])
	})
	return out
}

// Numeric returns, in arrival order, the values for which value reports ok.
func Numeric[T any](b *Buffer[T], value func(T) (float64, bool)) []float64 {
	entries := b.Snapshot()
	out := make([]float64, 0, len(entries))
	for _, e := range entries {
		if v, ok := value(e); ok {
			out = append(out, v)
		}
	}
	return out
}
