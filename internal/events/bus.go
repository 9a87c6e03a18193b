package events

import (
	"context"
	"sync"
	"time"

	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
)

// Bus distributes events to subscribed handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	log      logger.Interface
	now      func() time.Time
}

// NewBus creates an event bus.
func NewBus(log logger.Interface) *Bus {
	return &Bus{
		handlers: make([]Handler, 0),
		log:      log.WithComponent("events"),
		now:      time.Now,
	}
}

// Subscribe adds a handler to the bus.
func (b *Bus) Subscribe(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish stamps the event and dispatches it to every handler. Handler
// failures are logged and swallowed.
func (b *Bus) Publish(ctx context.Context, event Event) {
	if ctx.Err() != nil {
		return
	}
	if event.At.IsZero() {
		event.At = b.now()
	}

	// Snapshot handlers under read lock, dispatch without holding it.
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			b.log.Error("event handler failed",
				"type", string(event.Type),
				"error", err.Error(),
			)
		}
	}
}
