package service

import (
	"testing"
	"time"

	"disburser/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBackoffPolicy_Delay(t *testing.T) {
	policy := DefaultBackoffPolicy()

	tests := []struct {
		name     string
		attempts int
		expected time.Duration
	}{
		{"zero attempts", 0, 10 * time.Second},
		{"first attempt", 1, 20 * time.Second},
		{"second attempt", 2, 40 * time.Second},
		{"third attempt", 3, 80 * time.Second},
		{"fourth attempt", 4, 160 * time.Second},
		{"fifth attempt capped", 5, 300 * time.Second},
		{"tenth attempt capped", 10, 300 * time.Second},
		{"huge attempt count capped", 63, 300 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, policy.Delay(tt.attempts))
		})
	}
}

func TestBackoffPolicy_Delay_Monotone(t *testing.T) {
	policy := DefaultBackoffPolicy()

	previous := time.Duration(0)
	for attempts := 0; attempts <= 20; attempts++ {
		delay := policy.Delay(attempts)
		assert.GreaterOrEqual(t, delay, previous, "delay shrank at attempt %d", attempts)
		assert.LessOrEqual(t, delay, policy.Cap)
		previous = delay
	}
}

func TestResolve_Paid(t *testing.T) {
	now := time.Now().UTC()
	event := &models.PayoutEvent{
		ID:       1,
		UserID:   uuid.New(),
		Attempts: 2,
	}

	resolution := Resolve(event, OutcomePaid, now, DefaultBackoffPolicy())

	assert.Equal(t, models.EventStatusCompleted, resolution.Status)
	assert.Equal(t, 2, resolution.Attempts)
}

func TestResolve_AlreadyPaid(t *testing.T) {
	now := time.Now().UTC()
	event := &models.PayoutEvent{
		ID:       1,
		UserID:   uuid.New(),
		Attempts: 1,
	}

	resolution := Resolve(event, OutcomeAlreadyPaid, now, DefaultBackoffPolicy())

	assert.Equal(t, models.EventStatusCompleted, resolution.Status)
}

func TestResolve_NoMethod_FixedDelay(t *testing.T) {
	now := time.Now().UTC()
	policy := DefaultBackoffPolicy()

	// The no-method path keeps its fixed delay regardless of attempt count
	for _, attempts := range []int{1, 3, 7, 50} {
		event := &models.PayoutEvent{
			ID:       1,
			UserID:   uuid.New(),
			Attempts: attempts,
		}

		resolution := Resolve(event, OutcomeNoMethod, now, policy)

		assert.Equal(t, models.EventStatusPending, resolution.Status, "attempts=%d", attempts)
		assert.Equal(t, now.Add(60*time.Second), resolution.AvailableAt)
		assert.Equal(t, attempts, resolution.Attempts)
	}
}

func TestResolve_Failure_Requeues(t *testing.T) {
	now := time.Now().UTC()
	policy := DefaultBackoffPolicy()

	event := &models.PayoutEvent{
		ID:       1,
		UserID:   uuid.New(),
		Attempts: 2,
	}

	resolution := Resolve(event, OutcomeFailure, now, policy)

	assert.Equal(t, models.EventStatusPending, resolution.Status)
	assert.Equal(t, now.Add(40*time.Second), resolution.AvailableAt)
	assert.Equal(t, 2, resolution.Attempts)
}

func TestResolve_Failure_DeadLettersAtMaxAttempts(t *testing.T) {
	now := time.Now().UTC()
	policy := DefaultBackoffPolicy()

	event := &models.PayoutEvent{
		ID:       1,
		UserID:   uuid.New(),
		Attempts: 5,
	}

	resolution := Resolve(event, OutcomeFailure, now, policy)

	assert.Equal(t, models.EventStatusFailed, resolution.Status)
	assert.Equal(t, now.Add(300*time.Second), resolution.AvailableAt)
}

func TestResolve_Failure_OneBelowMaxStillRetries(t *testing.T) {
	now := time.Now().UTC()
	policy := DefaultBackoffPolicy()

	event := &models.PayoutEvent{
		ID:       1,
		UserID:   uuid.New(),
		Attempts: 4,
	}

	resolution := Resolve(event, OutcomeFailure, now, policy)

	assert.Equal(t, models.EventStatusPending, resolution.Status)
	assert.Equal(t, now.Add(160*time.Second), resolution.AvailableAt)
}
