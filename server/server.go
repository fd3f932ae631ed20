package server

import (
	"context"

	"disburser/models"
	"disburser/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PayoutDispatcher triggers one drain of the payout queue
type PayoutDispatcher interface {
	RunBatch(ctx context.Context) (*models.DispatchRun, error)
}

// Onboarder manages Stripe Express account onboarding
type Onboarder interface {
	StartStripeOnboarding(ctx context.Context, userID uuid.UUID, fullName, email string) (*service.OnboardingResult, error)
	CompleteStripeOnboarding(ctx context.Context, accountID string) (uuid.UUID, bool, error)
}

// RecipientRegistrar registers Wise recipients
type RecipientRegistrar interface {
	RegisterWiseRecipient(ctx context.Context, userID uuid.UUID, input service.RecipientInput) (*models.WiseRecipient, error)
}

// EventEnqueuer creates pending payout events
type EventEnqueuer interface {
	Enqueue(ctx context.Context, userID uuid.UUID) (*models.PayoutEvent, error)
}

// Pinger reports storage liveness for the health endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the HTTP surface: the manual payout trigger, the
// onboarding and recipient registration endpoints, the Stripe webhook
// and a health check.
type Server struct {
	dispatcher PayoutDispatcher
	onboarding Onboarder
	recipients RecipientRegistrar
	queue      EventEnqueuer
	db         Pinger
	router     *gin.Engine
}

// NewServer creates a new HTTP server
func NewServer(
	dispatcher PayoutDispatcher,
	onboarding Onboarder,
	recipients RecipientRegistrar,
	queue EventEnqueuer,
	db Pinger,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		dispatcher: dispatcher,
		onboarding: onboarding,
		recipients: recipients,
		queue:      queue,
		db:         db,
		router:     router,
	}

	router.GET("/healthz", s.handleHealth)
	router.POST("/internal/payouts/run", s.handleRunPayouts)

	api := router.Group("/api")
	{
		api.POST("/stripe/accounts", s.handleStartOnboarding)
		api.POST("/wise/recipients", s.handleRegisterRecipient)
	}

	router.POST("/webhooks/stripe", s.handleStripeWebhook)

	return s
}

// Run starts the HTTP server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the underlying engine, used by tests
func (s *Server) Router() *gin.Engine {
	return s.router
}
