package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"disburser/database"
	"disburser/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileRepository provides access to users and their on-file payout
// methods. The dispatcher only ever reads from it; writes come from the
// onboarding and recipient registration flows.
type ProfileRepository struct {
	q queryable
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{q: db.Pool}
}

// CreateUser inserts a user row if it does not exist yet
func (r *ProfileRepository) CreateUser(ctx context.Context, userID uuid.UUID, fullName string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (id, full_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`,
		userID, fullName)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", userID, err)
	}
	return nil
}

// GetPayoutProfile returns the payout method view for a user, or nil when
// the user does not exist
func (r *ProfileRepository) GetPayoutProfile(ctx context.Context, userID uuid.UUID) (*models.PayoutProfile, error) {
	query := `
		SELECT u.id, u.full_name, u.stripe_account_id, u.stripe_onboarded,
		       w.recipient_id, COALESCE(w.verified, FALSE)
		FROM users u
		LEFT JOIN wise_recipients w ON w.user_id = u.id
		WHERE u.id = $1
	`

	var profile models.PayoutProfile
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.FullName,
		&profile.StripeAccountID,
		&profile.StripeOnboarded,
		&profile.WiseRecipientID,
		&profile.WiseVerified,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payout profile for user %s: %w", userID, err)
	}

	return &profile, nil
}

// SetStripeAccount stores a newly created connected account on the user.
// An empty fullName leaves the stored name untouched.
func (r *ProfileRepository) SetStripeAccount(ctx context.Context, userID uuid.UUID, accountID, fullName string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE users
		SET stripe_account_id = $2,
		    full_name = CASE WHEN $3 <> '' THEN $3 ELSE full_name END,
		    updated_at = NOW()
		WHERE id = $1`,
		userID, accountID, fullName)
	if err != nil {
		return fmt.Errorf("failed to set stripe account for user %s: %w", userID, err)
	}
	return nil
}

// MarkStripeOnboarded flags the owner of a connected account as having
// completed onboarding. Returns the owning user id, or found=false when no
// user holds the account.
func (r *ProfileRepository) MarkStripeOnboarded(ctx context.Context, accountID string) (uuid.UUID, bool, error) {
	var userID uuid.UUID
	err := r.q.QueryRow(ctx, `
		UPDATE users
		SET stripe_onboarded = TRUE, updated_at = NOW()
		WHERE stripe_account_id = $1
		RETURNING id`,
		accountID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to mark account %s onboarded: %w", accountID, err)
	}
	return userID, true, nil
}

// UpsertWiseRecipient stores the result of a recipient registration
// attempt, verified or not
func (r *ProfileRepository) UpsertWiseRecipient(ctx context.Context, recipient *models.WiseRecipient) error {
	var validationJSON []byte
	if recipient.ValidationError != nil {
		var err error
		validationJSON, err = json.Marshal(recipient.ValidationError)
		if err != nil {
			return fmt.Errorf("failed to marshal validation error: %w", err)
		}
	}

	query := `
		INSERT INTO wise_recipients
		(user_id, recipient_id, account_holder_name, account_number, routing_number,
		 country, currency, verified, validation_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			recipient_id = EXCLUDED.recipient_id,
			account_holder_name = EXCLUDED.account_holder_name,
			account_number = EXCLUDED.account_number,
			routing_number = EXCLUDED.routing_number,
			country = EXCLUDED.country,
			currency = EXCLUDED.currency,
			verified = EXCLUDED.verified,
			validation_error = EXCLUDED.validation_error,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		recipient.UserID,
		recipient.RecipientID,
		recipient.AccountHolderName,
		recipient.AccountNumber,
		recipient.RoutingNumber,
		recipient.Country,
		recipient.Currency,
		recipient.Verified,
		validationJSON,
	).Scan(&recipient.CreatedAt, &recipient.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert wise recipient for user %s: %w", recipient.UserID, err)
	}

	return nil
}
