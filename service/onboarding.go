package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// OnboardingResult is the outcome of starting Stripe onboarding for a user
type OnboardingResult struct {
	OnboardingURL    string
	AlreadyConnected bool
}

// OnboardingService provisions Stripe Express accounts and hosted
// onboarding links. It is a collaborator of the payout core: the
// dispatcher only ever reads the account it leaves behind.
type OnboardingService struct {
	profiles ProfileRepository
	stripe   StripeGateway
}

// NewOnboardingService creates a new onboarding service
func NewOnboardingService(profiles ProfileRepository, stripe StripeGateway) *OnboardingService {
	return &OnboardingService{profiles: profiles, stripe: stripe}
}

// StartStripeOnboarding creates or reuses the user's connected account and
// returns a hosted onboarding URL, or AlreadyConnected when the account
// has already completed onboarding.
func (s *OnboardingService) StartStripeOnboarding(ctx context.Context, userID uuid.UUID, fullName, email string) (*OnboardingResult, error) {
	if err := s.profiles.CreateUser(ctx, userID, fullName); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetPayoutProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	if profile.StripeAccountID != nil && *profile.StripeAccountID != "" {
		account, err := s.stripe.GetAccount(ctx, *profile.StripeAccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve stripe account: %w", err)
		}

		if !account.ChargesEnabled || !account.PayoutsEnabled {
			url, err := s.stripe.CreateAccountLink(ctx, account.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to create onboarding link: %w", err)
			}
			return &OnboardingResult{OnboardingURL: url}, nil
		}

		return &OnboardingResult{AlreadyConnected: true}, nil
	}

	account, err := s.stripe.CreateAccount(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe account: %w", err)
	}

	if err := s.profiles.SetStripeAccount(ctx, userID, account.ID, fullName); err != nil {
		return nil, err
	}

	url, err := s.stripe.CreateAccountLink(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create onboarding link: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":    userID,
		"accountID": account.ID,
	}).Info("Created stripe account for onboarding")

	return &OnboardingResult{OnboardingURL: url}, nil
}

// CompleteStripeOnboarding marks the owner of a connected account as
// ready for the card rail. Called from the account.updated webhook once
// charges and payouts are enabled.
func (s *OnboardingService) CompleteStripeOnboarding(ctx context.Context, accountID string) (uuid.UUID, bool, error) {
	userID, found, err := s.profiles.MarkStripeOnboarded(ctx, accountID)
	if err != nil {
		return uuid.Nil, false, err
	}
	if found {
		log.WithFields(log.Fields{
			"userID":    userID,
			"accountID": accountID,
		}).Info("Stripe onboarding completed")
	}
	return userID, found, nil
}
