package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"disburser/database"
	"disburser/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable abstracts over the connection pool and a transaction
type queryable interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const eventColumns = `id, user_id, status, attempts, available_at, claimed_at, created_at`

// EventRepository provides access to the payout event queue
type EventRepository struct {
	q           queryable
	nativeClaim bool
}

// NewEventRepository creates a new event repository. When native is true,
// ClaimBatch uses the claim_payout_events database function instead of
// per-row conditional updates.
func NewEventRepository(db *database.DB, native bool) *EventRepository {
	return &EventRepository{q: db.Pool, nativeClaim: native}
}

// Enqueue creates a new pending payout event for a user
func (r *EventRepository) Enqueue(ctx context.Context, userID uuid.UUID) (*models.PayoutEvent, error) {
	query := `
		INSERT INTO payout_events (user_id)
		VALUES ($1)
		RETURNING ` + eventColumns

	event, err := scanEvent(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue payout event for user %s: %w", userID, err)
	}

	return event, nil
}

// GetByID retrieves a payout event by its id
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.PayoutEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM payout_events WHERE id = $1`

	event, err := scanEvent(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payout event %d: %w", id, err)
	}

	return event, nil
}

// ClaimBatch takes exclusive ownership of up to limit due pending events,
// oldest first. Each returned event has already transitioned to processing
// with its attempt counter incremented. Candidates raced away by a
// concurrent run are silently excluded; losing the compare-and-set is not
// an error.
func (r *EventRepository) ClaimBatch(ctx context.Context, limit int) ([]*models.PayoutEvent, error) {
	if r.nativeClaim {
		return r.claimBatchNative(ctx, limit)
	}
	return r.claimBatchFallback(ctx, limit)
}

func (r *EventRepository) claimBatchNative(ctx context.Context, limit int) ([]*models.PayoutEvent, error) {
	rows, err := r.q.Query(ctx, `SELECT `+eventColumns+` FROM claim_payout_events($1)`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim payout events: %w", err)
	}
	defer rows.Close()

	var claimed []*models.PayoutEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claimed event: %w", err)
		}
		claimed = append(claimed, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read claimed events: %w", err)
	}

	// UPDATE ... RETURNING does not preserve the candidate ordering
	sort.Slice(claimed, func(i, j int) bool {
		return claimed[i].CreatedAt.Before(claimed[j].CreatedAt)
	})

	return claimed, nil
}

func (r *EventRepository) claimBatchFallback(ctx context.Context, limit int) ([]*models.PayoutEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id FROM payout_events
		WHERE status = 'pending' AND available_at <= NOW()
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select claimable events: %w", err)
	}

	var candidates []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan candidate id: %w", err)
		}
		candidates = append(candidates, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidate ids: %w", err)
	}

	claimed := make([]*models.PayoutEvent, 0, len(candidates))
	for _, id := range candidates {
		event, err := scanEvent(r.q.QueryRow(ctx, `
			UPDATE payout_events
			SET status = 'processing', attempts = attempts + 1, claimed_at = NOW()
			WHERE id = $1 AND status = 'pending'
			RETURNING `+eventColumns, id))
		if errors.Is(err, pgx.ErrNoRows) {
			// Raced by a concurrent run
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to claim event %d: %w", id, err)
		}
		claimed = append(claimed, event)
	}

	return claimed, nil
}

// MarkCompleted transitions an event to its terminal completed state
func (r *EventRepository) MarkCompleted(ctx context.Context, id int64) error {
	_, err := r.q.Exec(ctx, `UPDATE payout_events SET status = 'completed' WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark event %d completed: %w", id, err)
	}
	return nil
}

// MarkFailed dead-letters an event. The computed backoff is still recorded
// in available_at for observability even though failed events are never
// rescheduled.
func (r *EventRepository) MarkFailed(ctx context.Context, id int64, availableAt time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE payout_events SET status = 'failed', available_at = $2 WHERE id = $1`,
		id, availableAt)
	if err != nil {
		return fmt.Errorf("failed to mark event %d failed: %w", id, err)
	}
	return nil
}

// Requeue returns an event to pending with the given retry time and
// attempt count
func (r *EventRepository) Requeue(ctx context.Context, id int64, availableAt time.Time, attempts int) error {
	_, err := r.q.Exec(ctx, `
		UPDATE payout_events
		SET status = 'pending', available_at = $2, attempts = $3, claimed_at = NULL
		WHERE id = $1`,
		id, availableAt, attempts)
	if err != nil {
		return fmt.Errorf("failed to requeue event %d: %w", id, err)
	}
	return nil
}

// ReleaseStale requeues events stuck in processing longer than olderThan,
// covering runs that crashed between claim and resolution. Attempts were
// already counted by the claim so they are left unchanged.
func (r *EventRepository) ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE payout_events
		SET status = 'pending', available_at = NOW(), claimed_at = NULL
		WHERE status = 'processing' AND claimed_at < NOW() - $1::interval`,
		olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to release stale events: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEvent(row pgx.Row) (*models.PayoutEvent, error) {
	var event models.PayoutEvent
	err := row.Scan(
		&event.ID,
		&event.UserID,
		&event.Status,
		&event.Attempts,
		&event.AvailableAt,
		&event.ClaimedAt,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
