package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

// ClaimMode selects how the worker takes ownership of pending events
const (
	ClaimModeNative   = "native"   // claim_payout_events() SQL function, one round-trip
	ClaimModeFallback = "fallback" // select then per-row conditional update
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Database
	DatabaseURL string `env:"DATABASE_URL"`

	// Worker
	BatchSize            int           `env:"WORKER_BATCH_SIZE" envDefault:"10"`
	WorkerInterval       time.Duration `env:"WORKER_INTERVAL" envDefault:"30s"`
	MaxAttempts          int           `env:"MAX_ATTEMPTS" envDefault:"5"`
	BackoffBase          time.Duration `env:"BACKOFF_BASE" envDefault:"10s"`
	BackoffCap           time.Duration `env:"BACKOFF_CAP" envDefault:"300s"`
	NoMethodRetryDelay   time.Duration `env:"NO_METHOD_RETRY_DELAY" envDefault:"60s"`
	StaleProcessingAfter time.Duration `env:"STALE_PROCESSING_AFTER" envDefault:"10m"`
	ClaimMode            string        `env:"CLAIM_MODE" envDefault:"fallback"`

	// Bonus payout, amount in minor currency units
	BonusAmount         int64  `env:"BONUS_AMOUNT" envDefault:"10000"`
	BonusCurrency       string `env:"BONUS_CURRENCY" envDefault:"usd"`
	TransferGroupPrefix string `env:"TRANSFER_GROUP_PREFIX" envDefault:"BONO100"`
	TransferReference   string `env:"TRANSFER_REFERENCE" envDefault:"You won on Rotacion100!"`

	// Providers
	StripeSecretKey string        `env:"STRIPE_SECRET_KEY"`
	StripeBaseURL   string        `env:"STRIPE_BASE_URL" envDefault:"https://api.stripe.com"`
	StripeReturnURL string        `env:"STRIPE_RETURN_URL" envDefault:"https://r100.vercel.app"`
	WiseAPIKey      string        `env:"WISE_API_KEY"`
	WiseProfileID   string        `env:"WISE_PROFILE_ID"`
	WiseBaseURL     string        `env:"WISE_BASE_URL" envDefault:"https://api.transferwise.com"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"20s"`

	// Messaging (optional, lifecycle events are not forwarded when unset)
	NatsURL string `env:"NATS_URL"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for invalid or missing values
func (c *Config) Validate() error {
	if c.ClaimMode != ClaimModeNative && c.ClaimMode != ClaimModeFallback {
		return fmt.Errorf("CLAIM_MODE must be %q or %q, got %q", ClaimModeNative, ClaimModeFallback, c.ClaimMode)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("WORKER_BATCH_SIZE must be at least 1")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be at least 1")
	}
	if c.BonusAmount <= 0 {
		return fmt.Errorf("BONUS_AMOUNT must be positive")
	}

	if c.Environment != "test" {
		// Validate required configuration
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		if c.StripeSecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required")
		}
		if c.WiseAPIKey == "" {
			return fmt.Errorf("WISE_API_KEY is required")
		}
		if c.WiseProfileID == "" {
			return fmt.Errorf("WISE_PROFILE_ID is required")
		}
	}

	return nil
}
