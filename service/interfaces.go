package service

import (
	"context"
	"time"

	"disburser/models"
	"disburser/provider"

	"github.com/google/uuid"
)

// EventRepository defines the interface for payout event queue access
type EventRepository interface {
	// Enqueue creates a new pending payout event for a user
	Enqueue(ctx context.Context, userID uuid.UUID) (*models.PayoutEvent, error)

	// ClaimBatch atomically takes ownership of up to limit due pending
	// events, oldest first. Candidates raced away by a concurrent run are
	// excluded, not errors.
	ClaimBatch(ctx context.Context, limit int) ([]*models.PayoutEvent, error)

	// MarkCompleted transitions an event to its terminal completed state
	MarkCompleted(ctx context.Context, id int64) error

	// MarkFailed dead-letters an event, keeping the computed backoff in
	// available_at for observability
	MarkFailed(ctx context.Context, id int64, availableAt time.Time) error

	// Requeue returns an event to pending with the given retry time and
	// attempt count
	Requeue(ctx context.Context, id int64, availableAt time.Time, attempts int) error

	// ReleaseStale requeues events stuck in processing longer than olderThan
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// LedgerRepository defines the interface for the idempotency ledger
type LedgerRepository interface {
	// AlreadyPaid reports whether a ledger entry exists for the user
	AlreadyPaid(ctx context.Context, userID uuid.UUID) (bool, error)

	// SettleEvent records the ledger entry and completes the paid event
	// atomically
	SettleEvent(ctx context.Context, eventID int64, entry *models.LedgerEntry) error
}

// AuditLogRepository defines the interface for the append-only attempt log
type AuditLogRepository interface {
	// Record appends an audit entry
	Record(ctx context.Context, entry *models.AuditEntry) error
}

// ProfileRepository defines the interface for users and payout methods
type ProfileRepository interface {
	// CreateUser inserts a user row if it does not exist yet
	CreateUser(ctx context.Context, userID uuid.UUID, fullName string) error

	// GetPayoutProfile returns the payout method view for a user, or nil
	// when the user does not exist
	GetPayoutProfile(ctx context.Context, userID uuid.UUID) (*models.PayoutProfile, error)

	// SetStripeAccount stores a newly created connected account on the user
	SetStripeAccount(ctx context.Context, userID uuid.UUID, accountID, fullName string) error

	// MarkStripeOnboarded flags the owner of a connected account as having
	// completed onboarding
	MarkStripeOnboarded(ctx context.Context, accountID string) (uuid.UUID, bool, error)

	// UpsertWiseRecipient stores the result of a recipient registration
	// attempt
	UpsertWiseRecipient(ctx context.Context, recipient *models.WiseRecipient) error
}

// DispatchRunRepository defines the interface for the worker run journal
type DispatchRunRepository interface {
	// Record creates a new dispatch run record
	Record(ctx context.Context, run *models.DispatchRun) error
}

// StripeGateway is the card-network rail adapter
type StripeGateway interface {
	// Transfer sends the fixed bonus to the user's connected account
	Transfer(ctx context.Context, req provider.CardTransfer) (*provider.Reference, error)

	// CreateAccount creates a new Express connected account
	CreateAccount(ctx context.Context, email string) (*provider.StripeAccount, error)

	// GetAccount retrieves a connected account
	GetAccount(ctx context.Context, accountID string) (*provider.StripeAccount, error)

	// CreateAccountLink creates a hosted onboarding link for an account
	CreateAccountLink(ctx context.Context, accountID string) (string, error)
}

// WiseGateway is the bank-transfer rail adapter
type WiseGateway interface {
	// Transfer submits a transfer to the user's registered recipient
	Transfer(ctx context.Context, req provider.BankTransfer) (*provider.Reference, error)

	// CreateRecipient registers and validates a recipient account
	CreateRecipient(ctx context.Context, details provider.RecipientDetails) (*provider.Reference, error)
}
