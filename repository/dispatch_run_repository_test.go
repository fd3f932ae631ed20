package repository

import (
	"context"
	"testing"
	"time"

	"disburser/models"
	"disburser/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchRunRepository_Record(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewDispatchRunRepository(testDB.DB)
	ctx := context.Background()

	started := time.Now().UTC().Add(-2 * time.Second)
	run := &models.DispatchRun{
		StartedAt:          started,
		FinishedAt:         started.Add(time.Second),
		EventsClaimed:      5,
		EventsCompleted:    3,
		EventsRequeued:     1,
		EventsDeadLettered: 1,
		ExecutionSummary: map[string]interface{}{
			"batch_size":  10,
			"duration_ms": 1000,
		},
	}

	err := repo.Record(ctx, run)
	require.NoError(t, err)
	assert.NotZero(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestDispatchRunRepository_Record_EmptySummary(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewDispatchRunRepository(testDB.DB)

	now := time.Now().UTC()
	run := &models.DispatchRun{StartedAt: now, FinishedAt: now}

	err := repo.Record(context.Background(), run)
	require.NoError(t, err)
	assert.NotZero(t, run.ID)
}

func TestDispatchRunRepository_GetLatest(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewDispatchRunRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no runs yet", func(t *testing.T) {
		run, err := repo.GetLatest(ctx)
		require.NoError(t, err)
		assert.Nil(t, run)
	})

	t.Run("returns most recent", func(t *testing.T) {
		base := time.Now().UTC().Add(-time.Hour)

		older := &models.DispatchRun{StartedAt: base, FinishedAt: base.Add(time.Second), EventsClaimed: 2}
		require.NoError(t, repo.Record(ctx, older))

		newer := &models.DispatchRun{
			StartedAt:       base.Add(30 * time.Minute),
			FinishedAt:      base.Add(30*time.Minute + time.Second),
			EventsClaimed:   7,
			EventsCompleted: 7,
			ExecutionSummary: map[string]interface{}{
				"batch_size": float64(10),
			},
		}
		require.NoError(t, repo.Record(ctx, newer))

		latest, err := repo.GetLatest(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, 7, latest.EventsClaimed)
		assert.Equal(t, float64(10), latest.ExecutionSummary["batch_size"])
	})
}
