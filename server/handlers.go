package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"disburser/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// requestLogger logs one line per request
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Info("Handled request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleRunPayouts triggers one queue drain and returns its summary.
// Safe to call while the background worker is active.
func (s *Server) handleRunPayouts(c *gin.Context) {
	run, err := s.dispatcher.RunBatch(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Manual payout run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payout run failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"claimed":       run.EventsClaimed,
		"completed":     run.EventsCompleted,
		"skipped":       run.EventsSkipped,
		"requeued":      run.EventsRequeued,
		"dead_lettered": run.EventsDeadLettered,
	})
}

type startOnboardingRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func (s *Server) handleStartOnboarding(c *gin.Context) {
	var req startOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be a valid UUID"})
		return
	}

	result, err := s.onboarding.StartStripeOnboarding(c.Request.Context(), userID, req.FullName, req.Email)
	if err != nil {
		log.WithError(err).WithField("userID", userID).Error("Failed to start onboarding")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to start onboarding"})
		return
	}

	if result.AlreadyConnected {
		c.JSON(http.StatusOK, gin.H{"already_connected": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"onboarding_url": result.OnboardingURL})
}

type registerRecipientRequest struct {
	UserID            string `json:"user_id" binding:"required"`
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	RoutingNumber     string `json:"routing_number"`
	Country           string `json:"country"`
	Currency          string `json:"currency"`
}

func (s *Server) handleRegisterRecipient(c *gin.Context) {
	var req registerRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be a valid UUID"})
		return
	}

	recipient, err := s.recipients.RegisterWiseRecipient(c.Request.Context(), userID, service.RecipientInput{
		AccountHolderName: req.AccountHolderName,
		AccountNumber:     req.AccountNumber,
		RoutingNumber:     req.RoutingNumber,
		Country:           req.Country,
		Currency:          req.Currency,
	})

	switch {
	case errors.Is(err, service.ErrMissingRecipientFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRecipientRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"verified":         false,
			"validation_error": recipient.ValidationError,
		})
	case err != nil:
		log.WithError(err).WithField("userID", userID).Error("Failed to register recipient")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to register recipient"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"verified":     true,
			"recipient_id": recipient.RecipientID,
		})
	}
}

// handleStripeWebhook dispatches the two event types the service reacts
// to: account.updated completes onboarding, checkout.session.completed
// enqueues the winner's payout. Everything else is acknowledged unused.
// Signature verification is handled at the ingress, not here.
func (s *Server) handleStripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	event, err := parseStripeEvent(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	switch event.Type {
	case "account.updated":
		s.handleAccountUpdated(c, event)
	case "checkout.session.completed":
		s.handleCheckoutCompleted(c, event)
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (s *Server) handleAccountUpdated(c *gin.Context, event *stripeEvent) {
	account := event.Data.Object
	if !account.ChargesEnabled || !account.PayoutsEnabled {
		// Not done onboarding yet, Stripe will send another update
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	_, found, err := s.onboarding.CompleteStripeOnboarding(c.Request.Context(), account.ID)
	if err != nil {
		log.WithError(err).WithField("accountID", account.ID).Error("Failed to complete onboarding")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete onboarding"})
		return
	}
	if !found {
		log.WithField("accountID", account.ID).Warn("Webhook for unknown stripe account")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (s *Server) handleCheckoutCompleted(c *gin.Context, event *stripeEvent) {
	session := event.Data.Object
	if session.PaymentStatus != "paid" {
		// Async payment methods complete the session before the charge
		// settles; only a paid session earns the bonus
		log.WithFields(log.Fields{
			"sessionID":     session.ID,
			"paymentStatus": session.PaymentStatus,
		}).Info("Ignoring checkout session that is not paid")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	userID, err := uuid.Parse(session.ClientReferenceID)
	if err != nil {
		log.WithField("clientReferenceID", session.ClientReferenceID).
			Warn("Checkout session without a usable user reference")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	payoutEvent, err := s.queue.Enqueue(c.Request.Context(), userID)
	if err != nil {
		log.WithError(err).WithField("userID", userID).Error("Failed to enqueue payout")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue payout"})
		return
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"eventID": payoutEvent.ID,
	}).Info("Enqueued payout from checkout webhook")

	c.JSON(http.StatusOK, gin.H{"received": true, "event_id": payoutEvent.ID})
}
