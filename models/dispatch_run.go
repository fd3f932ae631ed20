package models

import (
	"time"
)

// DispatchRun summarizes one execution of the payout batch worker
type DispatchRun struct {
	ID                 int64                  `db:"id"`
	StartedAt          time.Time              `db:"started_at"`
	FinishedAt         time.Time              `db:"finished_at"`
	EventsClaimed      int                    `db:"events_claimed"`
	EventsCompleted    int                    `db:"events_completed"`
	EventsRequeued     int                    `db:"events_requeued"`
	EventsDeadLettered int                    `db:"events_dead_lettered"`
	EventsSkipped      int                    `db:"events_skipped"`
	ExecutionSummary   map[string]interface{} `db:"execution_summary"`
	CreatedAt          time.Time              `db:"created_at"`
}
