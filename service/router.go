package service

import (
	"errors"

	"disburser/models"
	"disburser/provider"
)

// ErrNoMethodConfigured is returned when a user has no usable payout
// method on file. This is an eligibility gap, not a rail failure: it is
// requeued on a fixed short delay and never dead-letters.
var ErrNoMethodConfigured = errors.New("no payout method configured")

// Route selects exactly one rail for a user's payout. Pure function of
// the on-file payout method: a usable Stripe account takes priority over
// a verified Wise recipient.
func Route(profile *models.PayoutProfile) (provider.TransferRequest, error) {
	switch {
	case profile.HasUsableStripeAccount():
		return provider.CardTransfer{UserID: profile.UserID, Destination: *profile.StripeAccountID}, nil
	case profile.HasVerifiedWiseRecipient():
		return provider.BankTransfer{UserID: profile.UserID, RecipientID: *profile.WiseRecipientID}, nil
	default:
		return nil, ErrNoMethodConfigured
	}
}
