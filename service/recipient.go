package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"disburser/models"
	"disburser/provider"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrMissingRecipientFields is returned when required bank details are absent
var ErrMissingRecipientFields = errors.New("account holder name and account number are required")

// ErrRecipientRejected is returned when Wise rejects the bank details.
// The stored recipient row carries the raw validation payload.
var ErrRecipientRejected = errors.New("recipient validation rejected")

// RecipientInput are the bank details a user submits for the bank rail
type RecipientInput struct {
	AccountHolderName string
	AccountNumber     string
	RoutingNumber     string
	Country           string
	Currency          string
}

// RecipientService registers Wise recipients. Like onboarding, it is a
// collaborator of the payout core: the dispatcher only reads the verified
// flag it leaves behind.
type RecipientService struct {
	profiles ProfileRepository
	wise     WiseGateway
}

// NewRecipientService creates a new recipient service
func NewRecipientService(profiles ProfileRepository, wise WiseGateway) *RecipientService {
	return &RecipientService{profiles: profiles, wise: wise}
}

// RegisterWiseRecipient validates the bank details with Wise and stores
// the result. A rejected validation is persisted unverified together with
// the raw rejection payload and surfaced as ErrRecipientRejected.
func (s *RecipientService) RegisterWiseRecipient(ctx context.Context, userID uuid.UUID, input RecipientInput) (*models.WiseRecipient, error) {
	if input.AccountHolderName == "" || input.AccountNumber == "" {
		return nil, ErrMissingRecipientFields
	}

	country := input.Country
	if country == "" {
		country = "US"
	}
	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = "USD"
	}

	if err := s.profiles.CreateUser(ctx, userID, input.AccountHolderName); err != nil {
		return nil, err
	}

	recipient := &models.WiseRecipient{
		UserID:            userID,
		AccountHolderName: input.AccountHolderName,
		AccountNumber:     input.AccountNumber,
		Country:           country,
		Currency:          currency,
	}
	if country == "US" && input.RoutingNumber != "" {
		routing := input.RoutingNumber
		recipient.RoutingNumber = &routing
	}

	reference, err := s.wise.CreateRecipient(ctx, provider.RecipientDetails{
		AccountHolderName: input.AccountHolderName,
		AccountNumber:     input.AccountNumber,
		RoutingNumber:     input.RoutingNumber,
		Country:           country,
		Currency:          currency,
	})

	var provErr *provider.Error
	if errors.As(err, &provErr) {
		recipient.Verified = false
		recipient.ValidationError = decodeValidationError(provErr.Body)
		if upsertErr := s.profiles.UpsertWiseRecipient(ctx, recipient); upsertErr != nil {
			return nil, upsertErr
		}

		log.WithFields(log.Fields{
			"userID": userID,
			"status": provErr.StatusCode,
		}).Warn("Wise rejected recipient details")

		return recipient, fmt.Errorf("%w: %v", ErrRecipientRejected, provErr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create wise recipient: %w", err)
	}

	recipientID := reference.ID
	recipient.RecipientID = &recipientID
	recipient.Verified = true
	if err := s.profiles.UpsertWiseRecipient(ctx, recipient); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":      userID,
		"recipientID": recipientID,
	}).Info("Registered verified wise recipient")

	return recipient, nil
}

func decodeValidationError(body json.RawMessage) map[string]interface{} {
	details := map[string]interface{}{}
	if err := json.Unmarshal(body, &details); err != nil {
		details["raw"] = string(body)
	}
	return details
}
