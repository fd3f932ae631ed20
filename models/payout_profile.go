package models

import (
	"time"

	"github.com/google/uuid"
)

// PayoutProfile is a read-only view of a user's on-file payout method,
// joined from the users and wise_recipients tables. At most one rail is
// used per payout; the Stripe rail takes priority when both are usable.
type PayoutProfile struct {
	UserID          uuid.UUID `db:"user_id"`
	FullName        string    `db:"full_name"`
	StripeAccountID *string   `db:"stripe_account_id"`
	StripeOnboarded bool      `db:"stripe_onboarded"`
	WiseRecipientID *string   `db:"wise_recipient_id"`
	WiseVerified    bool      `db:"wise_verified"`
}

// HasUsableStripeAccount reports whether the user has a Stripe Connect
// account that completed onboarding.
func (p *PayoutProfile) HasUsableStripeAccount() bool {
	return p.StripeAccountID != nil && *p.StripeAccountID != "" && p.StripeOnboarded
}

// HasVerifiedWiseRecipient reports whether the user has a Wise recipient
// that passed validation.
func (p *PayoutProfile) HasVerifiedWiseRecipient() bool {
	return p.WiseRecipientID != nil && *p.WiseRecipientID != "" && p.WiseVerified
}

// WiseRecipient holds the bank details a user registered for the bank
// transfer rail. ValidationError carries the raw Wise rejection payload
// when verification failed.
type WiseRecipient struct {
	UserID            uuid.UUID              `db:"user_id"`
	RecipientID       *string                `db:"recipient_id"`
	AccountHolderName string                 `db:"account_holder_name"`
	AccountNumber     string                 `db:"account_number"`
	RoutingNumber     *string                `db:"routing_number"`
	Country           string                 `db:"country"`
	Currency          string                 `db:"currency"`
	Verified          bool                   `db:"verified"`
	ValidationError   map[string]interface{} `db:"validation_error"`
	CreatedAt         time.Time              `db:"created_at"`
	UpdatedAt         time.Time              `db:"updated_at"`
}
