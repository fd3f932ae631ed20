package testutil

import (
	"context"
	"testing"
	"time"

	"disburser/database"
	"disburser/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// CreateTestUser inserts a user row and returns its id
func CreateTestUser(t *testing.T, db *database.DB, fullName string) uuid.UUID {
	userID := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO users (id, full_name) VALUES ($1, $2)`,
		userID, fullName)
	require.NoError(t, err)
	return userID
}

// CreateOnboardedStripeUser inserts a user with a usable Stripe account
func CreateOnboardedStripeUser(t *testing.T, db *database.DB, fullName, accountID string) uuid.UUID {
	userID := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO users (id, full_name, stripe_account_id, stripe_onboarded)
		VALUES ($1, $2, $3, TRUE)`,
		userID, fullName, accountID)
	require.NoError(t, err)
	return userID
}

// CreateVerifiedWiseUser inserts a user with a verified Wise recipient
func CreateVerifiedWiseUser(t *testing.T, db *database.DB, fullName, recipientID string) uuid.UUID {
	ctx := context.Background()
	userID := CreateTestUser(t, db, fullName)
	_, err := db.Exec(ctx, `
		INSERT INTO wise_recipients
		(user_id, recipient_id, account_holder_name, account_number, routing_number,
		 country, currency, verified)
		VALUES ($1, $2, $3, '12345678', '026009593', 'US', 'USD', TRUE)`,
		userID, recipientID, fullName)
	require.NoError(t, err)
	return userID
}

// EnqueueTestEvent inserts a pending payout event and returns it
func EnqueueTestEvent(t *testing.T, db *database.DB, userID uuid.UUID) *models.PayoutEvent {
	var event models.PayoutEvent
	err := db.QueryRow(context.Background(), `
		INSERT INTO payout_events (user_id)
		VALUES ($1)
		RETURNING id, user_id, status, attempts, available_at, claimed_at, created_at`,
		userID).Scan(
		&event.ID, &event.UserID, &event.Status, &event.Attempts,
		&event.AvailableAt, &event.ClaimedAt, &event.CreatedAt)
	require.NoError(t, err)
	return &event
}

// SetEventState forces an event into a specific queue state
func SetEventState(t *testing.T, db *database.DB, eventID int64, status models.EventStatus, attempts int, availableAt time.Time) {
	_, err := db.Exec(context.Background(), `
		UPDATE payout_events
		SET status = $2, attempts = $3, available_at = $4
		WHERE id = $1`,
		eventID, status, attempts, availableAt)
	require.NoError(t, err)
}

// MarkEventClaimedAt backdates the claim timestamp of a processing event
func MarkEventClaimedAt(t *testing.T, db *database.DB, eventID int64, claimedAt time.Time) {
	_, err := db.Exec(context.Background(), `
		UPDATE payout_events
		SET status = 'processing', claimed_at = $2
		WHERE id = $1`,
		eventID, claimedAt)
	require.NoError(t, err)
}
