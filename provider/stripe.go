package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultStripeBaseURL = "https://api.stripe.com"

// StripeConfig holds the settings for the Stripe adapter
type StripeConfig struct {
	SecretKey   string
	BaseURL     string
	ReturnURL   string
	Amount      int64 // minor currency units
	Currency    string
	GroupPrefix string
	Timeout     time.Duration
}

// StripeClient is the card-network rail adapter. It wraps the Stripe
// Connect transfer and Express onboarding endpoints.
type StripeClient struct {
	secretKey   string
	baseURL     string
	returnURL   string
	amount      int64
	currency    string
	groupPrefix string
	client      *http.Client
}

// NewStripeClient creates a new Stripe adapter
func NewStripeClient(cfg StripeConfig) *StripeClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultStripeBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &StripeClient{
		secretKey:   cfg.SecretKey,
		baseURL:     baseURL,
		returnURL:   cfg.ReturnURL,
		amount:      cfg.Amount,
		currency:    cfg.Currency,
		groupPrefix: cfg.GroupPrefix,
		client:      &http.Client{Timeout: timeout},
	}
}

// StripeAccount is the subset of the account object the onboarding flow needs
type StripeAccount struct {
	ID             string `json:"id"`
	ChargesEnabled bool   `json:"charges_enabled"`
	PayoutsEnabled bool   `json:"payouts_enabled"`
}

// Transfer sends the fixed bonus amount to the user's connected account,
// tagged with a transfer group derived from the user id for cross-reference.
func (c *StripeClient) Transfer(ctx context.Context, req CardTransfer) (*Reference, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(c.amount, 10))
	form.Set("currency", c.currency)
	form.Set("destination", req.Destination)
	form.Set("transfer_group", fmt.Sprintf("%s-%s", c.groupPrefix, req.UserID))

	raw, err := c.postForm(ctx, "/v1/transfers", form)
	if err != nil {
		return nil, err
	}

	var transfer struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &transfer); err != nil {
		return nil, fmt.Errorf("failed to decode stripe transfer response: %w", err)
	}

	return &Reference{Provider: RailStripe, ID: transfer.ID, Raw: raw}, nil
}

// CreateAccount creates a new Express connected account
func (c *StripeClient) CreateAccount(ctx context.Context, email string) (*StripeAccount, error) {
	form := url.Values{}
	form.Set("type", "express")
	form.Set("country", "US")
	if email != "" {
		form.Set("email", email)
	}
	form.Set("capabilities[card_payments][requested]", "true")
	form.Set("capabilities[transfers][requested]", "true")

	raw, err := c.postForm(ctx, "/v1/accounts", form)
	if err != nil {
		return nil, err
	}

	var account StripeAccount
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("failed to decode stripe account response: %w", err)
	}

	return &account, nil
}

// GetAccount retrieves a connected account
func (c *StripeClient) GetAccount(ctx context.Context, accountID string) (*StripeAccount, error) {
	raw, err := c.do(ctx, http.MethodGet, "/v1/accounts/"+accountID, "", nil)
	if err != nil {
		return nil, err
	}

	var account StripeAccount
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("failed to decode stripe account response: %w", err)
	}

	return &account, nil
}

// CreateAccountLink creates a hosted onboarding link for an account
func (c *StripeClient) CreateAccountLink(ctx context.Context, accountID string) (string, error) {
	form := url.Values{}
	form.Set("account", accountID)
	form.Set("refresh_url", c.returnURL)
	form.Set("return_url", c.returnURL)
	form.Set("type", "account_onboarding")

	raw, err := c.postForm(ctx, "/v1/account_links", form)
	if err != nil {
		return "", err
	}

	var link struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &link); err != nil {
		return "", fmt.Errorf("failed to decode stripe account link response: %w", err)
	}

	return link.URL, nil
}

func (c *StripeClient) postForm(ctx context.Context, path string, form url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (c *StripeClient) do(ctx context.Context, method, path, contentType string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Provider: RailStripe, StatusCode: resp.StatusCode, Body: raw}
	}

	return raw, nil
}
