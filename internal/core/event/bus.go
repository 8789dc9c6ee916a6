// Package event carries job lifecycle notifications between the pipeline and
// interested subscribers inside one process.
package event

import (
	"context"
	"sync"
	"time"
)

type Handler func(ctx context.Context, evt JobEvent)

type Bus interface {
	Publish(ctx context.Context, evt JobEvent)
	Subscribe(eventType EventType, handler Handler) (unsubscribe func())
}

// NewBus creates an in-process event bus. Handlers run synchronously on the
// publishing goroutine, in no particular order.
func NewBus() Bus {
	return &memoryBus{
		handlers: make(map[EventType]map[uint64]Handler),
	}
}

type memoryBus struct {
	mu       sync.RWMutex
	handlers map[EventType]map[uint64]Handler
	nextID   uint64
}

func (b *memoryBus) Publish(ctx context.Context, evt JobEvent) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[evt.Type]))
	for _, h := range b.handlers[evt.Type] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(ctx, evt)
	}
}

func (b *memoryBus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[uint64]Handler)
	}
	b.handlers[eventType][id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers[eventType], id)
		b.mu.Unlock()
	}
}
