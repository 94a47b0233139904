package log

import (
	"fmt"
	"io"
	"sync"
)

// DefaultBufferCapacity is used for non-positive capacities.
const DefaultBufferCapacity = 1000

// CircularBuffer is an [io.Writer] keeping the most recent writes. While
// the TUI owns the terminal, log output goes here and is flushed on exit.
type CircularBuffer struct {
	entries [][]byte
	start   int
	dropped int
	mu      sync.RWMutex
}

func NewCircularBuffer(capacity int) *CircularBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}

	return &CircularBuffer{entries: make([][]byte, 0, capacity)}
}

// Write stores a copy of p as one entry, evicting the oldest entry when
// the buffer is full.
func (cb *CircularBuffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	entry := append([]byte(nil), p...)

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if len(cb.entries) < cap(cb.entries) {
		cb.entries = append(cb.entries, entry)

		return len(p), nil
	}

	cb.entries[cb.start] = entry
	cb.start = (cb.start + 1) % len(cb.entries)
	cb.dropped++

	return len(p), nil
}

// Entries returns copies of all entries, oldest first.
func (cb *CircularBuffer) Entries() [][]byte {
	return cb.Tail(-1)
}

// Tail returns copies of the newest n entries, oldest first. A negative n
// returns everything.
func (cb *CircularBuffer) Tail(n int) [][]byte {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	size := len(cb.entries)
	if n < 0 || n > size {
		n = size
	}

	if n == 0 {
		return nil
	}

	out := make([][]byte, 0, n)
	for i := size - n; i < size; i++ {
		e := cb.entries[(cb.start+i)%size]
		out = append(out, append([]byte(nil), e...))
	}

	return out
}

// Size returns the number of stored entries.
func (cb *CircularBuffer) Size() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return len(cb.entries)
}

func (cb *CircularBuffer) Capacity() int {
	return cap(cb.entries)
}

// Dropped returns how many entries were evicted.
func (cb *CircularBuffer) Dropped() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.dropped
}

func (cb *CircularBuffer) Clear() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.entries = cb.entries[:0]
	cb.start = 0
	cb.dropped = 0
}

// WriteTo writes all entries to w, oldest first.
func (cb *CircularBuffer) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, entry := range cb.Entries() {
		n, err := w.Write(entry)
		total += int64(n)

		if err != nil {
			return total, fmt.Errorf("write entry: %w", err)
		}
	}

	return total, nil
}
