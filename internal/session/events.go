package session

import (
	"sync"

	"github.com/kozaktomas/face-filter/internal/constants"
)

// Event types streamed to the renderer.
const (
	EventOverlays  = "overlays"
	EventSelection = "selection"
	EventScroll    = "scroll"
	EventProgress  = "progress"
	EventDetector  = "detector"
	EventClosed    = "closed"
)

// Event is one message for the renderer.
type Event struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// EventBroadcaster fans events out to any number of listeners.
// Embed this in a struct to get AddListener, RemoveListener, and SendEvent methods.
type EventBroadcaster struct {
	listeners []chan Event
	closed    bool
	mu        sync.RWMutex
}

// AddListener adds an event listener. After Close it returns an already closed channel.
func (b *EventBroadcaster) AddListener() chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, constants.EventChannelBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// Listeners returns the number of attached listeners.
func (b *EventBroadcaster) Listeners() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// closeListeners sends a final event and closes every listener.
func (b *EventBroadcaster) closeListeners(final Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, listener := range b.listeners {
		select {
		case listener <- final:
		default:
		}
		close(listener)
	}
	b.listeners = nil
}
