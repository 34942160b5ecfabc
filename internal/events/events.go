// Package events provides lifecycle event notification for configuration
// mutations. Handlers register explicitly on a Bus instance; there is no
// global bus, so independent managers never observe each other's events.
package events

import (
	"sync"
	"time"
)

// Type identifies the kind of lifecycle event.
type Type string

const (
	// ConfigurationCreated fires after a configuration is validated and persisted.
	ConfigurationCreated Type = "configurationCreated"
	// ConfigurationUpdated fires after an update is validated and persisted.
	ConfigurationUpdated Type = "configurationUpdated"
	// ConfigurationDeleted fires after a configuration and its file are removed.
	ConfigurationDeleted Type = "configurationDeleted"
	// TemplateCreated fires after a user template is persisted.
	TemplateCreated Type = "templateCreated"
	// TemplateDeleted fires after a user template is removed.
	TemplateDeleted Type = "templateDeleted"
)

// Event carries the identity of the mutated entity.
type Event struct {
	Type      Type      `json:"type"`
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(Event)

// Bus dispatches events to registered handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]Handler)}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish delivers the event to every handler registered for its type, in
// registration order. The timestamp is filled in if unset.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type]))
	copy(handlers, b.handlers[event.Type])
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
