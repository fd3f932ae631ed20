package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultWiseBaseURL = "https://api.transferwise.com"

// WiseConfig holds the settings for the Wise adapter
type WiseConfig struct {
	APIKey      string
	BaseURL     string
	ProfileID   string
	GroupPrefix string
	Reference   string
	Timeout     time.Duration
}

// WiseClient is the bank-transfer rail adapter. It wraps the Wise
// recipient-transfers and recipient-registration endpoints.
type WiseClient struct {
	apiKey      string
	baseURL     string
	profileID   string
	groupPrefix string
	reference   string
	client      *http.Client
}

// NewWiseClient creates a new Wise adapter
func NewWiseClient(cfg WiseConfig) *WiseClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultWiseBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &WiseClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		profileID:   cfg.ProfileID,
		groupPrefix: cfg.GroupPrefix,
		reference:   cfg.Reference,
		client:      &http.Client{Timeout: timeout},
	}
}

type wiseTransferDetails struct {
	Reference string `json:"reference"`
}

type wiseTransferRequest struct {
	TargetAccount         string              `json:"targetAccount"`
	QuoteUUID             string              `json:"quoteUuid"`
	CustomerTransactionID string              `json:"customerTransactionId"`
	Details               wiseTransferDetails `json:"details"`
}

// RecipientDetails are the bank details submitted when registering a recipient
type RecipientDetails struct {
	AccountHolderName string
	AccountNumber     string
	RoutingNumber     string
	Country           string
	Currency          string
}

// Transfer submits a transfer to the user's registered recipient, tagged
// with a customer transaction id derived from the user id.
func (c *WiseClient) Transfer(ctx context.Context, req BankTransfer) (*Reference, error) {
	payload := wiseTransferRequest{
		TargetAccount:         req.RecipientID,
		QuoteUUID:             "auto",
		CustomerTransactionID: fmt.Sprintf("%s-%s", c.groupPrefix, req.UserID),
		Details:               wiseTransferDetails{Reference: c.reference},
	}

	raw, err := c.postJSON(ctx, fmt.Sprintf("/v3/profiles/%s/transfers", c.profileID), payload)
	if err != nil {
		return nil, err
	}

	var transfer struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(raw, &transfer); err != nil {
		return nil, fmt.Errorf("failed to decode wise transfer response: %w", err)
	}

	return &Reference{Provider: RailWise, ID: transfer.ID.String(), Raw: raw}, nil
}

// CreateRecipient registers and validates a recipient account with Wise.
// A non-2xx response is returned as *Error so callers can persist the raw
// validation payload.
func (c *WiseClient) CreateRecipient(ctx context.Context, details RecipientDetails) (*Reference, error) {
	payload := map[string]interface{}{
		"profile":           c.profileID,
		"accountHolderName": details.AccountHolderName,
		"currency":          details.Currency,
	}
	if details.Country == "US" {
		payload["type"] = "us_ach"
		payload["details"] = map[string]string{
			"accountNumber": details.AccountNumber,
			"routingNumber": details.RoutingNumber,
		}
	} else {
		payload["type"] = "iban"
		payload["details"] = map[string]string{
			"iban": details.AccountNumber,
		}
	}

	raw, err := c.postJSON(ctx, fmt.Sprintf("/v3/profiles/%s/recipients", c.profileID), payload)
	if err != nil {
		return nil, err
	}

	var recipient struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(raw, &recipient); err != nil {
		return nil, fmt.Errorf("failed to decode wise recipient response: %w", err)
	}

	return &Reference{Provider: RailWise, ID: recipient.ID.String(), Raw: raw}, nil
}

func (c *WiseClient) postJSON(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wise request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create wise request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wise request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read wise response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Provider: RailWise, StatusCode: resp.StatusCode, Body: raw}
	}

	return raw, nil
}
