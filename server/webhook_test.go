package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStripeEvent(t *testing.T) {
	event, err := parseStripeEvent([]byte(`{
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "client_reference_id": "abc", "payment_status": "paid"}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "checkout.session.completed", event.Type)
	assert.Equal(t, "abc", event.Data.Object.ClientReferenceID)
	assert.Equal(t, "paid", event.Data.Object.PaymentStatus)

	event, err = parseStripeEvent([]byte(`{
		"type": "account.updated",
		"data": {"object": {"id": "acct_1", "charges_enabled": true, "payouts_enabled": false}}
	}`))
	require.NoError(t, err)
	assert.True(t, event.Data.Object.ChargesEnabled)
	assert.False(t, event.Data.Object.PayoutsEnabled)

	_, err = parseStripeEvent([]byte(`not json`))
	assert.Error(t, err)

	_, err = parseStripeEvent([]byte(`{}`))
	assert.Error(t, err)
}
