package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEntry is the idempotency marker proving a user has been paid.
// Presence is authoritative: once a row exists for a user, no further
// transfer is ever issued for them. Entries are never updated or deleted
// by this service.
type LedgerEntry struct {
	UserID      uuid.UUID `db:"user_id"`
	Provider    string    `db:"provider"`
	ProviderRef string    `db:"provider_ref"`
	PaidAt      time.Time `db:"paid_at"`
}
