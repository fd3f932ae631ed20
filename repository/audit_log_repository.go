package repository

import (
	"context"
	"fmt"

	"disburser/database"
	"disburser/models"

	"github.com/google/uuid"
)

// AuditLogRepository appends one immutable record per payout attempt.
// The log exists for traceability only; nothing reads it for control flow.
type AuditLogRepository struct {
	q queryable
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *database.DB) *AuditLogRepository {
	return &AuditLogRepository{q: db.Pool}
}

// Record appends an audit entry
func (r *AuditLogRepository) Record(ctx context.Context, entry *models.AuditEntry) error {
	var response []byte
	if len(entry.ProviderResponse) > 0 {
		response = entry.ProviderResponse
	}

	query := `
		INSERT INTO payout_audit_log (user_id, outcome, provider_response, attempt_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.Outcome,
		response,
		entry.AttemptNumber,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record audit entry for user %s: %w", entry.UserID, err)
	}

	return nil
}

// GetByUser returns the most recent audit entries for a user
func (r *AuditLogRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, user_id, outcome, provider_response, attempt_number, created_at
		FROM payout_audit_log
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entries for user %s: %w", userID, err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Outcome,
			&entry.ProviderResponse,
			&entry.AttemptNumber,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}

	return entries, nil
}
