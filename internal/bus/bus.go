// Package bus propagates "storage changed" notifications between every view
// of the local preference store. Notifications carry only the key that
// changed; subscribers re-read the store rather than trust a pushed value,
// so delivery order and duplicates are harmless.
//
// Two transports hide behind one interface: MemoryBus dispatches to
// subscribers inside this process (the writer's own views never get a
// filesystem event for their own write), and Watcher turns filesystem events
// from other uniscope processes into the same notifications. Combined unifies
// them.
package bus

import (
	"sync"

	"github.com/google/uuid"
)

// KeyAny subscribes to every key.
const KeyAny = "*"

// Handler receives the key whose stored value changed.
type Handler func(key string)

// ChangeBus publishes and subscribes to store-change notifications.
// Every Subscription must be closed when its view is torn down; a leaked
// subscription keeps firing into a dead component.
type ChangeBus interface {
	Publish(key string)
	Subscribe(key string, h Handler) *Subscription
}

// Subscription is a handle for one subscriber. Close is idempotent.
type Subscription struct {
	id   uuid.UUID
	key  string
	bus  *MemoryBus
	once sync.Once
}

// Close removes the subscriber from the bus.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.unsubscribe(s.key, s.id)
	})
}

// MemoryBus is the in-process transport. The zero value is not usable; use
// NewMemoryBus.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]map[uuid.UUID]Handler
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string]map[uuid.UUID]Handler)}
}

// Publish notifies all subscribers of the key, plus KeyAny subscribers.
// Handlers run synchronously on the caller's goroutine; they are expected to
// schedule their own re-read rather than block.
func (b *MemoryBus) Publish(key string) {
	b.mu.RLock()
	var hs []Handler
	for _, h := range b.handlers[key] {
		hs = append(hs, h)
	}
	if key != KeyAny {
		for _, h := range b.handlers[KeyAny] {
			hs = append(hs, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(key)
	}
}

// Subscribe registers a handler for the key (or KeyAny for all keys).
func (b *MemoryBus) Subscribe(key string, h Handler) *Subscription {
	id := uuid.New()

	b.mu.Lock()
	if b.handlers[key] == nil {
		b.handlers[key] = make(map[uuid.UUID]Handler)
	}
	b.handlers[key][id] = h
	b.mu.Unlock()

	return &Subscription{id: id, key: key, bus: b}
}

func (b *MemoryBus) unsubscribe(key string, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if hs := b.handlers[key]; hs != nil {
		delete(hs, id)
		if len(hs) == 0 {
			delete(b.handlers, key)
		}
	}
}

// SubscriberCount reports how many handlers are registered for a key.
func (b *MemoryBus) SubscriberCount(key string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[key])
}
