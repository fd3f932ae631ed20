package repository

import (
	"context"
	"fmt"

	"disburser/database"
	"disburser/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepository provides access to the idempotency ledger. A ledger row
// is durable proof a user has been paid; rows are written once and never
// mutated or deleted by this service.
type LedgerRepository struct {
	db *database.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// AlreadyPaid reports whether a ledger entry exists for the user
func (r *LedgerRepository) AlreadyPaid(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payout_ledger WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ledger for user %s: %w", userID, err)
	}
	return exists, nil
}

// Record writes a ledger entry for a user. Inserting is idempotent so a
// crashed run that retries the success path cannot fail here.
func (r *LedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payout_ledger (user_id, provider, provider_ref)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`,
		entry.UserID, entry.Provider, entry.ProviderRef)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry for user %s: %w", entry.UserID, err)
	}
	return nil
}

// SettleEvent records the ledger entry and flips the paid event to
// completed in a single transaction, so a crash cannot leave a paid user
// without a marker while their event re-enters the queue.
func (r *LedgerRepository) SettleEvent(ctx context.Context, eventID int64, entry *models.LedgerEntry) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO payout_ledger (user_id, provider, provider_ref)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO NOTHING`,
			entry.UserID, entry.Provider, entry.ProviderRef); err != nil {
			return fmt.Errorf("failed to record ledger entry for user %s: %w", entry.UserID, err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE payout_events SET status = 'completed' WHERE id = $1`, eventID); err != nil {
			return fmt.Errorf("failed to complete event %d: %w", eventID, err)
		}

		return nil
	})
}

// GetByUser returns the ledger entry for a user, or nil when unpaid
func (r *LedgerRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.QueryRow(ctx, `
		SELECT user_id, provider, provider_ref, paid_at
		FROM payout_ledger
		WHERE user_id = $1`, userID).
		Scan(&entry.UserID, &entry.Provider, &entry.ProviderRef, &entry.PaidAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry for user %s: %w", userID, err)
	}
	return &entry, nil
}
