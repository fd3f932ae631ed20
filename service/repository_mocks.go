package service

import (
	"context"
	"time"

	"disburser/models"
	"disburser/provider"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Enqueue(ctx context.Context, userID uuid.UUID) (*models.PayoutEvent, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PayoutEvent), args.Error(1)
}

func (m *MockEventRepository) ClaimBatch(ctx context.Context, limit int) ([]*models.PayoutEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PayoutEvent), args.Error(1)
}

func (m *MockEventRepository) MarkCompleted(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventRepository) MarkFailed(ctx context.Context, id int64, availableAt time.Time) error {
	args := m.Called(ctx, id, availableAt)
	return args.Error(0)
}

func (m *MockEventRepository) Requeue(ctx context.Context, id int64, availableAt time.Time, attempts int) error {
	args := m.Called(ctx, id, availableAt, attempts)
	return args.Error(0)
}

func (m *MockEventRepository) ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) AlreadyPaid(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) SettleEvent(ctx context.Context, eventID int64, entry *models.LedgerEntry) error {
	args := m.Called(ctx, eventID, entry)
	return args.Error(0)
}

// MockAuditLogRepository is a mock implementation of AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Record(ctx context.Context, entry *models.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) CreateUser(ctx context.Context, userID uuid.UUID, fullName string) error {
	args := m.Called(ctx, userID, fullName)
	return args.Error(0)
}

func (m *MockProfileRepository) GetPayoutProfile(ctx context.Context, userID uuid.UUID) (*models.PayoutProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PayoutProfile), args.Error(1)
}

func (m *MockProfileRepository) SetStripeAccount(ctx context.Context, userID uuid.UUID, accountID, fullName string) error {
	args := m.Called(ctx, userID, accountID, fullName)
	return args.Error(0)
}

func (m *MockProfileRepository) MarkStripeOnboarded(ctx context.Context, accountID string) (uuid.UUID, bool, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockProfileRepository) UpsertWiseRecipient(ctx context.Context, recipient *models.WiseRecipient) error {
	args := m.Called(ctx, recipient)
	return args.Error(0)
}

// MockDispatchRunRepository is a mock implementation of DispatchRunRepository
type MockDispatchRunRepository struct {
	mock.Mock
}

func (m *MockDispatchRunRepository) Record(ctx context.Context, run *models.DispatchRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// MockStripeGateway is a mock implementation of StripeGateway
type MockStripeGateway struct {
	mock.Mock
}

func (m *MockStripeGateway) Transfer(ctx context.Context, req provider.CardTransfer) (*provider.Reference, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Reference), args.Error(1)
}

func (m *MockStripeGateway) CreateAccount(ctx context.Context, email string) (*provider.StripeAccount, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.StripeAccount), args.Error(1)
}

func (m *MockStripeGateway) GetAccount(ctx context.Context, accountID string) (*provider.StripeAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.StripeAccount), args.Error(1)
}

func (m *MockStripeGateway) CreateAccountLink(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

// MockWiseGateway is a mock implementation of WiseGateway
type MockWiseGateway struct {
	mock.Mock
}

func (m *MockWiseGateway) Transfer(ctx context.Context, req provider.BankTransfer) (*provider.Reference, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Reference), args.Error(1)
}

func (m *MockWiseGateway) CreateRecipient(ctx context.Context, details provider.RecipientDetails) (*provider.Reference, error) {
	args := m.Called(ctx, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Reference), args.Error(1)
}
