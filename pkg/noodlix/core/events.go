package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types published by the tree
const (
	// EventTreeChanged fires after every successful mutation
	EventTreeChanged = "tree.changed"
	// EventTreeLoaded fires after a snapshot replaced the whole tree
	EventTreeLoaded = "tree.loaded"
)

// TreeChange describes what a mutation touched
type TreeChange struct {
	Op   string // mkdir, touch, write, remove, load
	Path string // canonical absolute path
}

// Event is one notification from the tree
type Event struct {
	Type   string
	Time   time.Time
	Change TreeChange
}

// NewEvent stamps a change with the current time
func NewEvent(eventType string, change TreeChange) Event {
	return Event{Type: eventType, Time: time.Now(), Change: change}
}

// EventHandler receives events it subscribed to
type EventHandler interface {
	Handle(ctx context.Context, event Event) error
}

// EventHandlerFunc adapts a function to EventHandler
type EventHandlerFunc func(ctx context.Context, event Event) error

// Handle implements EventHandler
func (f EventHandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// SubscriptionID identifies a subscription; zero is never issued
type SubscriptionID uint64

// EventBus fans tree events out to subscribers
type EventBus interface {
	Subscribe(eventType string, handler EventHandler) SubscriptionID
	Unsubscribe(id SubscriptionID)
	Publish(ctx context.Context, event Event) error
}

type subscription struct {
	id        SubscriptionID
	eventType string
	handler   EventHandler
}

// MemoryEventBus delivers events synchronously, in subscription order
type MemoryEventBus struct {
	mu     sync.Mutex
	subs   []subscription
	lastID SubscriptionID
	logger zerolog.Logger
}

// NewMemoryEventBus creates an empty bus
func NewMemoryEventBus(logger zerolog.Logger) *MemoryEventBus {
	return &MemoryEventBus{logger: logger}
}

// Subscribe registers handler for eventType
func (b *MemoryEventBus) Subscribe(eventType string, handler EventHandler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastID++
	b.subs = append(b.subs, subscription{id: b.lastID, eventType: eventType, handler: handler})
	b.logger.Debug().Str("event_type", eventType).Uint64("subscription", uint64(b.lastID)).Msg("subscribed")
	return b.lastID
}

// Unsubscribe removes a subscription; unknown ids are ignored
func (b *MemoryEventBus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish runs every matching handler, even after one fails, and returns
// the joined handler errors
func (b *MemoryEventBus) Publish(ctx context.Context, event Event) error {
	b.mu.Lock()
	var targets []subscription
	for _, sub := range b.subs {
		if sub.eventType == event.Type {
			targets = append(targets, sub)
		}
	}
	b.mu.Unlock()

	var errs []error
	for _, sub := range targets {
		if err := sub.handler.Handle(ctx, event); err != nil {
			b.logger.Warn().
				Str("event_type", event.Type).
				Str("path", event.Change.Path).
				Uint64("subscription", uint64(sub.id)).
				Err(err).
				Msg("event handler failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
