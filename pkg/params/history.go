package params

import (
	"net/url"
	"sync"
)

// History is the durable backing store of the parameters. Replace must not
// trigger a reload of the current view; Push records an explicit navigation.
type History interface {
	Location() *url.URL
	Replace(u *url.URL)
	Push(u *url.URL)
}

// MemoryHistory is an in-process [History]. It keeps every pushed entry so
// that navigation can move back and forward.
type MemoryHistory struct {
	entries   []*url.URL
	listeners []func(*url.URL)
	index     int
	replaces  int
	mu        sync.RWMutex
}

// NewMemoryHistory creates a [MemoryHistory] starting at the given
// location. A nil location starts at the empty location.
func NewMemoryHistory(initial *url.URL) *MemoryHistory {
	if initial == nil {
		initial = &url.URL{}
	}

	return &MemoryHistory{entries: []*url.URL{clone(initial)}}
}

// ParseLocation parses a location such as "/blocks?page=2&rows=50" or a bare
// query string such as "page=2".
func ParseLocation(s string) (*url.URL, error) {
	if s != "" && s[0] != '/' && s[0] != '?' {
		s = "?" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already descriptive.
	}

	return u, nil
}

// Location returns a copy of the current location.
func (h *MemoryHistory) Location() *url.URL {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return clone(h.entries[h.index])
}

// Replace swaps the current entry without adding a new one.
func (h *MemoryHistory) Replace(u *url.URL) {
	h.mu.Lock()
	h.entries[h.index] = clone(u)
	h.replaces++
	h.mu.Unlock()

	h.notify()
}

// Push adds u after the current entry and discards any forward entries.
func (h *MemoryHistory) Push(u *url.URL) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], clone(u))
	h.index++
	h.mu.Unlock()

	h.notify()
}

// Back moves to the previous entry. It reports false at the first entry.
func (h *MemoryHistory) Back() bool {
	return h.move(-1)
}

// Forward moves to the next entry. It reports false at the last entry.
func (h *MemoryHistory) Forward() bool {
	return h.move(1)
}

func (h *MemoryHistory) move(delta int) bool {
	h.mu.Lock()

	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()

		return false
	}

	h.index = next
	h.mu.Unlock()

	h.notify()

	return true
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Replaces returns how many times the current entry was replaced.
func (h *MemoryHistory) Replaces() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.replaces
}

// Subscribe registers fn to be called with the new location after every
// change.
func (h *MemoryHistory) Subscribe(fn func(*url.URL)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.listeners = append(h.listeners, fn)
}

func (h *MemoryHistory) notify() {
	h.mu.RLock()
	loc := clone(h.entries[h.index])
	listeners := h.listeners
	h.mu.RUnlock()

	for _, fn := range listeners {
		fn(clone(loc))
	}
}

func clone(u *url.URL) *url.URL {
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}

	return &c
}
