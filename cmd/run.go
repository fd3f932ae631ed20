package cmd

import (
	"context"
	"fmt"
	"time"

	"disburser/config"
	"disburser/database"
	"disburser/events"
	"disburser/infrastructure"
	"disburser/provider"
	"disburser/repository"
	"disburser/server"
	"disburser/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.JSONFormatter{})

	log.Info("Starting payout dispatcher...")

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	eventBus := events.NewBus()

	// Optional NATS forwarding of payout lifecycle events
	var natsPublisher *infrastructure.NATSEventPublisher
	if cfg.NatsURL != "" {
		natsPublisher = infrastructure.NewNATSEventPublisher(cfg.NatsURL)
		if err := natsPublisher.Connect(); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		natsPublisher.Register(eventBus)
	}

	eventRepo := repository.NewEventRepository(db, cfg.ClaimMode == config.ClaimModeNative)
	ledgerRepo := repository.NewLedgerRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	runRepo := repository.NewDispatchRunRepository(db)

	stripeClient := provider.NewStripeClient(provider.StripeConfig{
		SecretKey:   cfg.StripeSecretKey,
		BaseURL:     cfg.StripeBaseURL,
		ReturnURL:   cfg.StripeReturnURL,
		Amount:      cfg.BonusAmount,
		Currency:    cfg.BonusCurrency,
		GroupPrefix: cfg.TransferGroupPrefix,
		Timeout:     cfg.ProviderTimeout,
	})
	wiseClient := provider.NewWiseClient(provider.WiseConfig{
		APIKey:      cfg.WiseAPIKey,
		BaseURL:     cfg.WiseBaseURL,
		ProfileID:   cfg.WiseProfileID,
		GroupPrefix: cfg.TransferGroupPrefix,
		Reference:   cfg.TransferReference,
		Timeout:     cfg.ProviderTimeout,
	})

	dispatcher := service.NewDispatcherService(
		eventRepo, ledgerRepo, auditRepo, profileRepo, runRepo,
		stripeClient, wiseClient, eventBus,
		service.DispatcherConfig{
			BatchSize:  cfg.BatchSize,
			StaleAfter: cfg.StaleProcessingAfter,
			Policy: service.BackoffPolicy{
				Base:          cfg.BackoffBase,
				Cap:           cfg.BackoffCap,
				MaxAttempts:   cfg.MaxAttempts,
				NoMethodDelay: cfg.NoMethodRetryDelay,
			},
		},
	)

	onboardingService := service.NewOnboardingService(profileRepo, stripeClient)
	recipientService := service.NewRecipientService(profileRepo, wiseClient)

	stopWorker := service.StartDispatchWorker(ctx, dispatcher, cfg.WorkerInterval)

	srv := server.NewServer(
		dispatcher, onboardingService, recipientService, eventRepo, db.Pool,
	)

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		serverErr <- srv.Run(":" + cfg.Port)
	}()

	log.Infof("Dispatcher is running in %s mode", cfg.Environment)

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	stopWorker()
	if natsPublisher != nil {
		natsPublisher.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}
