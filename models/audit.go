package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditOutcome represents the result of a single payout attempt
type AuditOutcome string

const (
	AuditOutcomeSucceeded AuditOutcome = "succeeded"
	AuditOutcomeFailed    AuditOutcome = "failed"
)

// AuditEntry is one append-only record per payout attempt. Entries exist
// for traceability and dispute resolution only; scheduling never reads
// them back.
type AuditEntry struct {
	ID               int64           `db:"id"`
	UserID           uuid.UUID       `db:"user_id"`
	Outcome          AuditOutcome    `db:"outcome"`
	ProviderResponse json.RawMessage `db:"provider_response"`
	AttemptNumber    int             `db:"attempt_number"`
	CreatedAt        time.Time       `db:"created_at"`
}
