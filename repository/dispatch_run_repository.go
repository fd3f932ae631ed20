package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"disburser/database"
	"disburser/models"

	"github.com/jackc/pgx/v5"
)

// DispatchRunRepository records one row per worker run. The journal is
// advisory bookkeeping for operators; scheduling never consults it.
type DispatchRunRepository struct {
	q queryable
}

// NewDispatchRunRepository creates a new dispatch run repository
func NewDispatchRunRepository(db *database.DB) *DispatchRunRepository {
	return &DispatchRunRepository{q: db.Pool}
}

// Record creates a new dispatch run record
func (r *DispatchRunRepository) Record(ctx context.Context, run *models.DispatchRun) error {
	summaryJSON, err := json.Marshal(run.ExecutionSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	query := `
		INSERT INTO dispatch_runs
		(started_at, finished_at, events_claimed, events_completed,
		 events_requeued, events_dead_lettered, events_skipped, execution_summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		run.StartedAt,
		run.FinishedAt,
		run.EventsClaimed,
		run.EventsCompleted,
		run.EventsRequeued,
		run.EventsDeadLettered,
		run.EventsSkipped,
		summaryJSON,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record dispatch run: %w", err)
	}

	return nil
}

// GetLatest returns the most recent dispatch run
func (r *DispatchRunRepository) GetLatest(ctx context.Context) (*models.DispatchRun, error) {
	query := `
		SELECT id, started_at, finished_at, events_claimed, events_completed,
		       events_requeued, events_dead_lettered, events_skipped,
		       execution_summary, created_at
		FROM dispatch_runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run models.DispatchRun
	var summaryJSON []byte

	err := r.q.QueryRow(ctx, query).Scan(
		&run.ID,
		&run.StartedAt,
		&run.FinishedAt,
		&run.EventsClaimed,
		&run.EventsCompleted,
		&run.EventsRequeued,
		&run.EventsDeadLettered,
		&run.EventsSkipped,
		&summaryJSON,
		&run.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest dispatch run: %w", err)
	}

	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.ExecutionSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution summary: %w", err)
		}
	}

	return &run, nil
}
