package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePayoutSucceeded    EventType = "payout_succeeded"
	EventTypePayoutFailed       EventType = "payout_failed"
	EventTypePayoutDeadLettered EventType = "payout_dead_lettered"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// PayoutSucceededEvent represents a bonus that was paid out
type PayoutSucceededEvent struct {
	EventID     int64     `json:"event_id"`
	UserID      uuid.UUID `json:"user_id"`
	Provider    string    `json:"provider"`
	ProviderRef string    `json:"provider_ref"`
	Attempts    int       `json:"attempts"`
}

func (e PayoutSucceededEvent) Type() EventType {
	return EventTypePayoutSucceeded
}

// PayoutFailedEvent represents a payout attempt that failed and was requeued
type PayoutFailedEvent struct {
	EventID       int64     `json:"event_id"`
	UserID        uuid.UUID `json:"user_id"`
	Reason        string    `json:"reason"`
	Attempts      int       `json:"attempts"`
	NextAttemptAt time.Time `json:"next_attempt_at"`
}

func (e PayoutFailedEvent) Type() EventType {
	return EventTypePayoutFailed
}

// PayoutDeadLetteredEvent represents a payout that exhausted its retries
// and requires operator intervention
type PayoutDeadLetteredEvent struct {
	EventID  int64     `json:"event_id"`
	UserID   uuid.UUID `json:"user_id"`
	Reason   string    `json:"reason"`
	Attempts int       `json:"attempts"`
}

func (e PayoutDeadLetteredEvent) Type() EventType {
	return EventTypePayoutDeadLettered
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously; emitting never blocks the payout path.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}
