package repository

import (
	"context"
	"testing"

	"disburser/models"
	"disburser/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_AlreadyPaid(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	userID := uuid.New()

	paid, err := repo.AlreadyPaid(ctx, userID)
	require.NoError(t, err)
	assert.False(t, paid)

	err = repo.Record(ctx, &models.LedgerEntry{
		UserID:      userID,
		Provider:    "stripe",
		ProviderRef: "tr_abc",
	})
	require.NoError(t, err)

	paid, err = repo.AlreadyPaid(ctx, userID)
	require.NoError(t, err)
	assert.True(t, paid)
}

func TestLedgerRepository_Record_Idempotent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	userID := uuid.New()

	err := repo.Record(ctx, &models.LedgerEntry{UserID: userID, Provider: "stripe", ProviderRef: "tr_first"})
	require.NoError(t, err)

	// A second write for the same user is a no-op, the original entry wins
	err = repo.Record(ctx, &models.LedgerEntry{UserID: userID, Provider: "wise", ProviderRef: "900555"})
	require.NoError(t, err)

	entry, err := repo.GetByUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "stripe", entry.Provider)
	assert.Equal(t, "tr_first", entry.ProviderRef)
	assert.False(t, entry.PaidAt.IsZero())
}

func TestLedgerRepository_SettleEvent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ledgerRepo := NewLedgerRepository(testDB.DB)
	eventRepo := NewEventRepository(testDB.DB, false)
	ctx := context.Background()

	userID := uuid.New()
	event := testutil.EnqueueTestEvent(t, testDB.DB, userID)

	claimed, err := eventRepo.ClaimBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	err = ledgerRepo.SettleEvent(ctx, event.ID, &models.LedgerEntry{
		UserID:      userID,
		Provider:    "stripe",
		ProviderRef: "tr_settle",
	})
	require.NoError(t, err)

	// Both sides of the settlement are visible
	paid, err := ledgerRepo.AlreadyPaid(ctx, userID)
	require.NoError(t, err)
	assert.True(t, paid)

	got, err := eventRepo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCompleted, got.Status)
}

func TestLedgerRepository_GetByUser_Unpaid(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewLedgerRepository(testDB.DB)

	entry, err := repo.GetByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, entry)
}
