package service

import (
	"context"
	"encoding/json"
	"testing"

	"disburser/models"
	"disburser/provider"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipient_RegisterWiseRecipient_Verified(t *testing.T) {
	ctx := context.Background()
	mockProfiles := new(MockProfileRepository)
	mockWise := new(MockWiseGateway)
	service := NewRecipientService(mockProfiles, mockWise)

	userID := uuid.New()

	mockProfiles.On("CreateUser", ctx, userID, "Jane Doe").Return(nil)
	mockWise.On("CreateRecipient", ctx, provider.RecipientDetails{
		AccountHolderName: "Jane Doe",
		AccountNumber:     "12345678",
		RoutingNumber:     "026009593",
		Country:           "US",
		Currency:          "USD",
	}).Return(&provider.Reference{Provider: provider.RailWise, ID: "700123"}, nil)

	mockProfiles.On("UpsertWiseRecipient", ctx, &models.WiseRecipient{
		UserID:            userID,
		RecipientID:       strPtr("700123"),
		AccountHolderName: "Jane Doe",
		AccountNumber:     "12345678",
		RoutingNumber:     strPtr("026009593"),
		Country:           "US",
		Currency:          "USD",
		Verified:          true,
	}).Return(nil)

	recipient, err := service.RegisterWiseRecipient(ctx, userID, RecipientInput{
		AccountHolderName: "Jane Doe",
		AccountNumber:     "12345678",
		RoutingNumber:     "026009593",
	})
	require.NoError(t, err)

	assert.True(t, recipient.Verified)
	assert.Equal(t, "700123", *recipient.RecipientID)
	mockProfiles.AssertExpectations(t)
	mockWise.AssertExpectations(t)
}

func TestRecipient_RegisterWiseRecipient_Rejected(t *testing.T) {
	ctx := context.Background()
	mockProfiles := new(MockProfileRepository)
	mockWise := new(MockWiseGateway)
	service := NewRecipientService(mockProfiles, mockWise)

	userID := uuid.New()
	rejection := json.RawMessage(`{"errors":[{"code":"NOT_VALID","path":"details.routingNumber"}]}`)

	mockProfiles.On("CreateUser", ctx, userID, "Jane Doe").Return(nil)
	mockWise.On("CreateRecipient", ctx, provider.RecipientDetails{
		AccountHolderName: "Jane Doe",
		AccountNumber:     "12345678",
		RoutingNumber:     "000000000",
		Country:           "US",
		Currency:          "USD",
	}).Return(nil, &provider.Error{Provider: provider.RailWise, StatusCode: 422, Body: rejection})

	mockProfiles.On("UpsertWiseRecipient", ctx, &models.WiseRecipient{
		UserID:            userID,
		AccountHolderName: "Jane Doe",
		AccountNumber:     "12345678",
		RoutingNumber:     strPtr("000000000"),
		Country:           "US",
		Currency:          "USD",
		Verified:          false,
		ValidationError: map[string]interface{}{
			"errors": []interface{}{
				map[string]interface{}{"code": "NOT_VALID", "path": "details.routingNumber"},
			},
		},
	}).Return(nil)

	recipient, err := service.RegisterWiseRecipient(ctx, userID, RecipientInput{
		AccountHolderName: "Jane Doe",
		AccountNumber:     "12345678",
		RoutingNumber:     "000000000",
	})

	assert.ErrorIs(t, err, ErrRecipientRejected)
	require.NotNil(t, recipient)
	assert.False(t, recipient.Verified)
	assert.Nil(t, recipient.RecipientID)
	mockProfiles.AssertExpectations(t)
	mockWise.AssertExpectations(t)
}

func TestRecipient_RegisterWiseRecipient_NonUSDefaultsToIban(t *testing.T) {
	ctx := context.Background()
	mockProfiles := new(MockProfileRepository)
	mockWise := new(MockWiseGateway)
	service := NewRecipientService(mockProfiles, mockWise)

	userID := uuid.New()

	mockProfiles.On("CreateUser", ctx, userID, "Max Mustermann").Return(nil)
	mockWise.On("CreateRecipient", ctx, provider.RecipientDetails{
		AccountHolderName: "Max Mustermann",
		AccountNumber:     "DE89370400440532013000",
		Country:           "DE",
		Currency:          "EUR",
	}).Return(&provider.Reference{Provider: provider.RailWise, ID: "700456"}, nil)

	// No routing number stored for non-US recipients
	mockProfiles.On("UpsertWiseRecipient", ctx, &models.WiseRecipient{
		UserID:            userID,
		RecipientID:       strPtr("700456"),
		AccountHolderName: "Max Mustermann",
		AccountNumber:     "DE89370400440532013000",
		Country:           "DE",
		Currency:          "EUR",
		Verified:          true,
	}).Return(nil)

	recipient, err := service.RegisterWiseRecipient(ctx, userID, RecipientInput{
		AccountHolderName: "Max Mustermann",
		AccountNumber:     "DE89370400440532013000",
		Country:           "DE",
		Currency:          "eur",
	})
	require.NoError(t, err)
	assert.Nil(t, recipient.RoutingNumber)
	mockProfiles.AssertExpectations(t)
	mockWise.AssertExpectations(t)
}

func TestRecipient_RegisterWiseRecipient_MissingFields(t *testing.T) {
	ctx := context.Background()
	mockProfiles := new(MockProfileRepository)
	mockWise := new(MockWiseGateway)
	service := NewRecipientService(mockProfiles, mockWise)

	_, err := service.RegisterWiseRecipient(ctx, uuid.New(), RecipientInput{
		AccountHolderName: "Jane Doe",
	})

	assert.ErrorIs(t, err, ErrMissingRecipientFields)
	mockProfiles.AssertNotCalled(t, "CreateUser")
	mockWise.AssertNotCalled(t, "CreateRecipient")
}
