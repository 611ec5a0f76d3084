package events

import (
	"sync"
)

// Change is a single change notification from the sync backend.
type Change struct {
	Seq        int64      `json:"seq"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Action     Action     `json:"action"`
	DeviceID   string     `json:"device_id,omitempty"`
}

// Handler receives change notifications for a subscribed entity type.
type Handler func(Change)

// Bus fans change notifications out to per-entity-type subscribers.
// Subscribe returns an unsubscribe func so callers can pair registration
// and teardown in their own lifecycle hooks without tracking handler ids.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[EntityType]map[int]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EntityType]map[int]Handler)}
}

// Subscribe registers a handler for one entity type and returns the matching
// unsubscribe func. Unsubscribe is idempotent.
func (b *Bus) Subscribe(et EntityType, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	if b.subs[et] == nil {
		b.subs[et] = make(map[int]Handler)
	}
	b.subs[et][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[et], id)
		})
	}
}

// Publish delivers a change to all handlers subscribed to its entity type.
// Handlers run synchronously on the caller's goroutine, in registration order
// not guaranteed. Entity type and action are normalized first, so a server
// sending "item" still reaches "items" subscribers; changes with an unknown
// entity type or action are dropped here so no subscriber has to re-check.
func (b *Bus) Publish(ch Change) {
	et, ok := NormalizeEntityType(string(ch.EntityType))
	if !ok {
		return
	}
	ch.EntityType = et

	action, ok := NormalizeAction(string(ch.Action))
	if !ok {
		return
	}
	ch.Action = action

	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[ch.EntityType]))
	for _, h := range b.subs[ch.EntityType] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ch)
	}
}

// SubscriberCount returns the number of active handlers for an entity type.
func (b *Bus) SubscriberCount(et EntityType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[et])
}
