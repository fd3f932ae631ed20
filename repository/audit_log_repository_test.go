package repository

import (
	"context"
	"encoding/json"
	"testing"

	"disburser/models"
	"disburser/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogRepository_Record(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAuditLogRepository(testDB.DB)
	ctx := context.Background()

	userID := uuid.New()
	entry := &models.AuditEntry{
		UserID:           userID,
		Outcome:          models.AuditOutcomeSucceeded,
		ProviderResponse: json.RawMessage(`{"id":"tr_abc","amount":10000}`),
		AttemptNumber:    1,
	}

	err := repo.Record(ctx, entry)
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestAuditLogRepository_Record_NilResponse(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAuditLogRepository(testDB.DB)
	ctx := context.Background()

	entry := &models.AuditEntry{
		UserID:        uuid.New(),
		Outcome:       models.AuditOutcomeFailed,
		AttemptNumber: 3,
	}

	err := repo.Record(ctx, entry)
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
}

func TestAuditLogRepository_GetByUser(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAuditLogRepository(testDB.DB)
	ctx := context.Background()

	userID := uuid.New()
	otherUser := uuid.New()

	// One failed attempt, then a success, plus noise from another user
	for i, outcome := range []models.AuditOutcome{models.AuditOutcomeFailed, models.AuditOutcomeSucceeded} {
		err := repo.Record(ctx, &models.AuditEntry{
			UserID:           userID,
			Outcome:          outcome,
			ProviderResponse: json.RawMessage(`{}`),
			AttemptNumber:    i + 1,
		})
		require.NoError(t, err)
	}
	err := repo.Record(ctx, &models.AuditEntry{
		UserID:        otherUser,
		Outcome:       models.AuditOutcomeFailed,
		AttemptNumber: 1,
	})
	require.NoError(t, err)

	entries, err := repo.GetByUser(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Most recent first
	assert.Equal(t, models.AuditOutcomeSucceeded, entries[0].Outcome)
	assert.Equal(t, 2, entries[0].AttemptNumber)
	assert.Equal(t, models.AuditOutcomeFailed, entries[1].Outcome)

	limited, err := repo.GetByUser(ctx, userID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
