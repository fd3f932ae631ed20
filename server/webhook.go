package server

import (
	"encoding/json"
	"errors"
)

// stripeEvent is the subset of the webhook envelope the service consumes
type stripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                string `json:"id"`
			ChargesEnabled    bool   `json:"charges_enabled"`
			PayoutsEnabled    bool   `json:"payouts_enabled"`
			ClientReferenceID string `json:"client_reference_id"`
			PaymentStatus     string `json:"payment_status"`
		} `json:"object"`
	} `json:"data"`
}

func parseStripeEvent(body []byte) (*stripeEvent, error) {
	var event stripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		return nil, errors.New("event type missing")
	}
	return &event, nil
}
