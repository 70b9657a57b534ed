package cmd

import (
	"sync"

	"bizdesk/keys"
)

// Listener receives every key event the hub dispatches. It reports whether
// it consumed the event.
type Listener func(keys.Event) bool

// Hub is the process-wide key-event target. Pages never listen on it
// directly; each page's Registry owns a single subscription.
type Hub struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []hubEntry
}

type hubEntry struct {
	id uint64
	fn Listener
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe adds a listener and returns the function that removes it.
// Calling the returned function more than once is harmless.
func (h *Hub) Subscribe(fn Listener) (unsubscribe func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.listeners = append(h.listeners, hubEntry{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.listeners {
		if e.id == id {
			h.listeners = append(h.listeners[:i:i], h.listeners[i+1:]...)
			return
		}
	}
}

// Dispatch hands the event to each live listener in subscription order and
// reports whether any of them handled it. Listeners run without the hub
// lock held so an action may subscribe or unsubscribe.
func (h *Hub) Dispatch(ev keys.Event) bool {
	h.mu.Lock()
	snapshot := make([]hubEntry, len(h.listeners))
	copy(snapshot, h.listeners)
	h.mu.Unlock()

	handled := false
	for _, e := range snapshot {
		if e.fn(ev) {
			handled = true
		}
	}
	return handled
}

// Len reports the number of live listeners.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}
