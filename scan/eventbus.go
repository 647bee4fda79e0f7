package scan

import (
	gosync "sync"
)

// Event describes one change to the scan index.
type Event struct {
	Type  string `json:"type"` // "add"|"update"|"remove"
	Path  string `json:"path"`
	IsDir bool   `json:"isDir"`
	Size  *int64 `json:"size,omitempty"`
}

// EventBus broadcasts index change events to all subscribers.
type EventBus struct {
	mu      gosync.RWMutex
	clients map[chan Event]struct{}
}

// NewEventBus creates a new EventBus.
func NewEventBus() *EventBus {
	return &EventBus{
		clients: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new client and returns its event channel.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
	close(ch)
}

// Publish sends an event to all subscribers.
// Slow clients are skipped (non-blocking send).
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- event:
		default:
			// slow client, drop event
		}
	}
}
