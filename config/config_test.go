package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() *Config {
	return &Config{
		Environment:          "test",
		BatchSize:            10,
		MaxAttempts:          5,
		BackoffBase:          10 * time.Second,
		BackoffCap:           300 * time.Second,
		NoMethodRetryDelay:   60 * time.Second,
		StaleProcessingAfter: 10 * time.Minute,
		ClaimMode:            ClaimModeFallback,
		BonusAmount:          10000,
		BonusCurrency:        "usd",
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, validTestConfig().Validate())
}

func TestConfig_Validate_ClaimMode(t *testing.T) {
	cfg := validTestConfig()
	cfg.ClaimMode = ClaimModeNative
	assert.NoError(t, cfg.Validate())

	cfg.ClaimMode = "optimistic"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_Bounds(t *testing.T) {
	cfg := validTestConfig()
	cfg.BatchSize = 0
	assert.Error(t, cfg.Validate())

	cfg = validTestConfig()
	cfg.MaxAttempts = 0
	assert.Error(t, cfg.Validate())

	cfg = validTestConfig()
	cfg.BonusAmount = 0
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_RequiredOutsideTest(t *testing.T) {
	cfg := validTestConfig()
	cfg.Environment = "production"
	assert.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://localhost/disburser"
	cfg.StripeSecretKey = "sk_live_x"
	cfg.WiseAPIKey = "key"
	cfg.WiseProfileID = "16521387"
	assert.NoError(t, cfg.Validate())
}
