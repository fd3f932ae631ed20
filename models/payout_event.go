package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus represents the lifecycle state of a payout event
type EventStatus string

const (
	EventStatusPending    EventStatus = "pending"
	EventStatusProcessing EventStatus = "processing"
	EventStatusCompleted  EventStatus = "completed"
	EventStatusFailed     EventStatus = "failed"
)

// PayoutEvent represents one user's queued obligation to receive the bonus.
// Rows are created by the eligibility webhook and only ever advanced
// (status/attempts/available_at) by the dispatcher; they are never deleted here.
type PayoutEvent struct {
	ID          int64       `db:"id"`
	UserID      uuid.UUID   `db:"user_id"`
	Status      EventStatus `db:"status"`
	Attempts    int         `db:"attempts"`
	AvailableAt time.Time   `db:"available_at"`
	ClaimedAt   *time.Time  `db:"claimed_at"`
	CreatedAt   time.Time   `db:"created_at"`
}
