// Package provider contains the stateless request/response adapters for the
// two payout rails. Adapters issue exactly one network call per operation;
// retry policy lives in the dispatcher, never here.
package provider

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Rail identifies one of the two payout execution paths
type Rail string

const (
	RailStripe Rail = "stripe"
	RailWise   Rail = "wise"
)

// TransferRequest is a tagged request consumed only by the matching adapter
type TransferRequest interface {
	Rail() Rail
}

// CardTransfer asks the Stripe adapter to move the bonus to a connected account
type CardTransfer struct {
	UserID      uuid.UUID
	Destination string
}

// Rail implements TransferRequest
func (CardTransfer) Rail() Rail { return RailStripe }

// BankTransfer asks the Wise adapter to pay a registered recipient
type BankTransfer struct {
	UserID      uuid.UUID
	RecipientID string
}

// Rail implements TransferRequest
func (BankTransfer) Rail() Rail { return RailWise }

// Reference identifies a transfer accepted by a provider. Raw holds the
// full provider response for the audit trail.
type Reference struct {
	Provider Rail
	ID       string
	Raw      json.RawMessage
}

// Error is a structured provider failure carrying the raw response payload
type Error struct {
	Provider   Rail
	StatusCode int
	Body       json.RawMessage
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, string(e.Body))
}
