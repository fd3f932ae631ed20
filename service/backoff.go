package service

import (
	"time"

	"disburser/models"
)

// BackoffPolicy holds the static retry configuration for the dispatcher
type BackoffPolicy struct {
	Base          time.Duration
	Cap           time.Duration
	MaxAttempts   int
	NoMethodDelay time.Duration
}

// DefaultBackoffPolicy returns the production defaults: 10s base doubling
// per attempt, capped at 300s, dead-letter after 5 attempts, 60s fixed
// delay while a user has no payout method.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		Base:          10 * time.Second,
		Cap:           300 * time.Second,
		MaxAttempts:   5,
		NoMethodDelay: 60 * time.Second,
	}
}

// Delay computes the retry delay after the given attempt count:
// min(cap, base * 2^attempts)
func (p BackoffPolicy) Delay(attempts int) time.Duration {
	if attempts > 30 {
		return p.Cap
	}
	delay := p.Base << uint(attempts)
	if delay <= 0 || delay > p.Cap {
		return p.Cap
	}
	return delay
}

// Outcome classifies the result of a single payout attempt
type Outcome int

const (
	// OutcomePaid means the provider accepted the transfer
	OutcomePaid Outcome = iota
	// OutcomeAlreadyPaid means the idempotency ledger short-circuited
	OutcomeAlreadyPaid
	// OutcomeNoMethod means the user has no usable payout method on file
	OutcomeNoMethod
	// OutcomeFailure covers router and provider failures, transient or not
	OutcomeFailure
)

// Resolution is the decided next state for a claimed event
type Resolution struct {
	Status      models.EventStatus
	AvailableAt time.Time
	Attempts    int
}

// Resolve decides the disposition of a claimed event from the outcome of
// the attempt just made. Pure function: the dispatcher applies the
// returned state, Resolve itself never touches I/O. The event's Attempts
// already include the claim-time increment.
func Resolve(event *models.PayoutEvent, outcome Outcome, now time.Time, policy BackoffPolicy) Resolution {
	switch outcome {
	case OutcomePaid, OutcomeAlreadyPaid:
		return Resolution{
			Status:      models.EventStatusCompleted,
			AvailableAt: event.AvailableAt,
			Attempts:    event.Attempts,
		}

	case OutcomeNoMethod:
		// Expected to self-resolve once the user configures a method:
		// fixed short delay, no backoff growth, no dead-letter check.
		return Resolution{
			Status:      models.EventStatusPending,
			AvailableAt: now.Add(policy.NoMethodDelay),
			Attempts:    event.Attempts,
		}

	default:
		next := now.Add(policy.Delay(event.Attempts))
		status := models.EventStatusPending
		if event.Attempts >= policy.MaxAttempts {
			status = models.EventStatusFailed
		}
		return Resolution{
			Status:      status,
			AvailableAt: next,
			Attempts:    event.Attempts,
		}
	}
}
