package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/voltio/panelquote/internal/platform/logger"
)

// Handler receives one event. A handler's error is logged, never propagated
// to the publisher or to sibling handlers.
type Handler func(ctx context.Context, ev Event) error

// Bus is a synchronous fan-out event bus. Publish blocks until every
// subscribed handler has returned; handlers for one event run concurrently.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[Type]map[int]Handler
	log      *logger.Logger
}

func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		handlers: make(map[Type]map[int]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for one event type and returns the function
// that removes it. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(t Type, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.handlers[t] == nil {
		b.handlers[t] = make(map[int]Handler)
	}
	b.handlers[t][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[t], id)
	}
}

// Publish delivers the event to every handler subscribed to its type and
// waits for all of them. Panicking handlers are recovered and logged.
func (b *Bus) Publish(ctx context.Context, t Type, payload any) {
	b.mu.RLock()
	registered := b.handlers[t]
	hs := make([]Handler, 0, len(registered))
	for _, h := range registered {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	if len(hs) == 0 {
		return
	}

	ev := Event{Type: t, Timestamp: time.Now(), Payload: payload}

	var wg sync.WaitGroup
	for _, h := range hs {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("event handler panicked", "type", t, "panic", fmt.Sprint(r))
				}
			}()
			if err := h(ctx, ev); err != nil {
				b.log.Error("event handler failed", "type", t, "error", err)
			}
		}(h)
	}
	wg.Wait()
}

// UnsubscribeAll drops every handler for the given type.
func (b *Bus) UnsubscribeAll(t Type) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, t)
}

// ListenerCount reports how many handlers are subscribed to the type.
func (b *Bus) ListenerCount(t Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[t])
}
