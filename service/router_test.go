package service

import (
	"testing"

	"disburser/models"
	"disburser/provider"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestRoute_StripeWhenOnboarded(t *testing.T) {
	userID := uuid.New()
	profile := &models.PayoutProfile{
		UserID:          userID,
		StripeAccountID: strPtr("acct_123"),
		StripeOnboarded: true,
	}

	request, err := Route(profile)
	require.NoError(t, err)

	card, ok := request.(provider.CardTransfer)
	require.True(t, ok)
	assert.Equal(t, userID, card.UserID)
	assert.Equal(t, "acct_123", card.Destination)
	assert.Equal(t, provider.RailStripe, request.Rail())
}

func TestRoute_StripePriorityOverWise(t *testing.T) {
	profile := &models.PayoutProfile{
		UserID:          uuid.New(),
		StripeAccountID: strPtr("acct_123"),
		StripeOnboarded: true,
		WiseRecipientID: strPtr("700123"),
		WiseVerified:    true,
	}

	request, err := Route(profile)
	require.NoError(t, err)
	assert.Equal(t, provider.RailStripe, request.Rail())
}

func TestRoute_WiseWhenNoUsableStripe(t *testing.T) {
	userID := uuid.New()
	profile := &models.PayoutProfile{
		UserID:          userID,
		WiseRecipientID: strPtr("700123"),
		WiseVerified:    true,
	}

	request, err := Route(profile)
	require.NoError(t, err)

	bank, ok := request.(provider.BankTransfer)
	require.True(t, ok)
	assert.Equal(t, userID, bank.UserID)
	assert.Equal(t, "700123", bank.RecipientID)
}

func TestRoute_StripeAccountNotOnboardedFallsThrough(t *testing.T) {
	// An account that never finished onboarding must not be used
	profile := &models.PayoutProfile{
		UserID:          uuid.New(),
		StripeAccountID: strPtr("acct_123"),
		StripeOnboarded: false,
		WiseRecipientID: strPtr("700123"),
		WiseVerified:    true,
	}

	request, err := Route(profile)
	require.NoError(t, err)
	assert.Equal(t, provider.RailWise, request.Rail())
}

func TestRoute_UnverifiedWiseRecipientNotUsed(t *testing.T) {
	profile := &models.PayoutProfile{
		UserID:          uuid.New(),
		WiseRecipientID: strPtr("700123"),
		WiseVerified:    false,
	}

	request, err := Route(profile)
	assert.ErrorIs(t, err, ErrNoMethodConfigured)
	assert.Nil(t, request)
}

func TestRoute_NoMethodConfigured(t *testing.T) {
	profile := &models.PayoutProfile{UserID: uuid.New()}

	request, err := Route(profile)
	assert.ErrorIs(t, err, ErrNoMethodConfigured)
	assert.Nil(t, request)
}
