package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBus_EmitDeliversToSubscriber(t *testing.T) {
	bus := NewBus()

	eventReceived := make(chan PayoutSucceededEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe(EventTypePayoutSucceeded, func(ctx context.Context, event Event) {
		defer wg.Done()
		if succeeded, ok := event.(PayoutSucceededEvent); ok {
			eventReceived <- succeeded
		} else {
			t.Errorf("Expected PayoutSucceededEvent, got %T", event)
		}
	})

	testEvent := PayoutSucceededEvent{
		EventID:     42,
		UserID:      uuid.New(),
		Provider:    "stripe",
		ProviderRef: "tr_abc",
		Attempts:    1,
	}

	bus.Emit(context.Background(), testEvent)
	wg.Wait()

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent.EventID, received.EventID)
		assert.Equal(t, testEvent.UserID, received.UserID)
		assert.Equal(t, testEvent.ProviderRef, received.ProviderRef)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestBus_EmitOnlyMatchingType(t *testing.T) {
	bus := NewBus()

	failed := make(chan Event, 1)
	bus.Subscribe(EventTypePayoutFailed, func(ctx context.Context, event Event) {
		failed <- event
	})

	bus.Emit(context.Background(), PayoutSucceededEvent{EventID: 1, UserID: uuid.New()})

	select {
	case <-failed:
		t.Fatal("Handler received an event of a different type")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_PanickingHandlerDoesNotAffectOthers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe(EventTypePayoutDeadLettered, func(ctx context.Context, event Event) {
		panic("handler bug")
	})
	bus.Subscribe(EventTypePayoutDeadLettered, func(ctx context.Context, event Event) {
		wg.Done()
	})

	bus.Emit(context.Background(), PayoutDeadLetteredEvent{EventID: 7, UserID: uuid.New()})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Second handler was not invoked")
	}
}
