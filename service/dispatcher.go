package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"disburser/events"
	"disburser/models"
	"disburser/provider"

	log "github.com/sirupsen/logrus"
)

// DispatcherConfig holds the static configuration of the batch worker
type DispatcherConfig struct {
	BatchSize  int
	StaleAfter time.Duration
	Policy     BackoffPolicy
}

// DispatcherService drains the payout queue. Each run claims a bounded
// batch of due events and drives every claimed event to a terminal
// decision before returning. Runs may overlap; safety rests entirely on
// the atomic claim, not on any in-process state.
type DispatcherService struct {
	queue    EventRepository
	ledger   LedgerRepository
	audit    AuditLogRepository
	profiles ProfileRepository
	runs     DispatchRunRepository
	stripe   StripeGateway
	wise     WiseGateway
	bus      *events.Bus
	cfg      DispatcherConfig
}

// NewDispatcherService creates a new payout dispatcher
func NewDispatcherService(
	queue EventRepository,
	ledger LedgerRepository,
	audit AuditLogRepository,
	profiles ProfileRepository,
	runs DispatchRunRepository,
	stripe StripeGateway,
	wise WiseGateway,
	bus *events.Bus,
	cfg DispatcherConfig,
) *DispatcherService {
	return &DispatcherService{
		queue:    queue,
		ledger:   ledger,
		audit:    audit,
		profiles: profiles,
		runs:     runs,
		stripe:   stripe,
		wise:     wise,
		bus:      bus,
		cfg:      cfg,
	}
}

type disposition int

const (
	dispositionCompleted disposition = iota
	dispositionSkipped
	dispositionRequeued
	dispositionDeadLettered
)

// RunBatch processes one batch of due payout events. A run with no
// claimable work returns a zero-count summary and no error; a store
// failure before any claim aborts the whole run.
func (s *DispatcherService) RunBatch(ctx context.Context) (*models.DispatchRun, error) {
	startedAt := time.Now().UTC()

	if s.cfg.StaleAfter > 0 {
		released, err := s.queue.ReleaseStale(ctx, s.cfg.StaleAfter)
		if err != nil {
			log.WithError(err).Warn("Failed to release stale processing events")
		} else if released > 0 {
			log.WithField("released", released).Info("Requeued events stuck in processing")
		}
	}

	batch, err := s.queue.ClaimBatch(ctx, s.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to claim payout batch: %w", err)
	}

	run := &models.DispatchRun{
		StartedAt:     startedAt,
		EventsClaimed: len(batch),
	}

	for _, event := range batch {
		switch s.processEvent(ctx, event) {
		case dispositionCompleted:
			run.EventsCompleted++
		case dispositionSkipped:
			run.EventsSkipped++
		case dispositionRequeued:
			run.EventsRequeued++
		case dispositionDeadLettered:
			run.EventsDeadLettered++
		}
	}

	run.FinishedAt = time.Now().UTC()
	run.ExecutionSummary = map[string]interface{}{
		"batch_size":  s.cfg.BatchSize,
		"duration_ms": run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	}

	// The journal is advisory; a failed insert never fails the run
	if err := s.runs.Record(ctx, run); err != nil {
		log.WithError(err).Warn("Failed to record dispatch run")
	}

	return run, nil
}

// processEvent drives one claimed event to a terminal decision
func (s *DispatcherService) processEvent(ctx context.Context, event *models.PayoutEvent) disposition {
	logger := log.WithFields(log.Fields{
		"eventID":  event.ID,
		"userID":   event.UserID,
		"attempts": event.Attempts,
	})

	paid, err := s.ledger.AlreadyPaid(ctx, event.UserID)
	if err != nil {
		return s.handleFailure(ctx, event, fmt.Errorf("ledger check failed: %w", err))
	}
	if paid {
		// The original successful attempt already wrote the audit entry
		// and the marker; nothing to record here.
		if err := s.queue.MarkCompleted(ctx, event.ID); err != nil {
			logger.WithError(err).Error("Failed to complete already-paid event; stale reaper will retry")
		}
		logger.Info("User already paid, completed event without transfer")
		return dispositionSkipped
	}

	profile, err := s.profiles.GetPayoutProfile(ctx, event.UserID)
	if err != nil {
		return s.handleFailure(ctx, event, fmt.Errorf("failed to load payout profile: %w", err))
	}
	if profile == nil {
		return s.handleFailure(ctx, event, fmt.Errorf("user %s not found", event.UserID))
	}

	request, err := Route(profile)
	if errors.Is(err, ErrNoMethodConfigured) {
		return s.handleNoMethod(ctx, event)
	}
	if err != nil {
		return s.handleFailure(ctx, event, err)
	}

	reference, err := s.transfer(ctx, request)
	if err != nil {
		return s.handleFailure(ctx, event, err)
	}

	s.recordAudit(ctx, event, models.AuditOutcomeSucceeded, reference.Raw)

	entry := &models.LedgerEntry{
		UserID:      event.UserID,
		Provider:    string(reference.Provider),
		ProviderRef: reference.ID,
	}
	if err := s.ledger.SettleEvent(ctx, event.ID, entry); err != nil {
		// Money moved but settlement did not commit. The event stays in
		// processing until the stale reaper requeues it; the ledger check
		// then completes it, provided the marker write succeeds by then.
		logger.WithError(err).Error("Transfer succeeded but settlement failed")
		return dispositionCompleted
	}

	logger.WithFields(log.Fields{
		"provider":    reference.Provider,
		"providerRef": reference.ID,
	}).Info("Payout completed")

	s.bus.Emit(ctx, events.PayoutSucceededEvent{
		EventID:     event.ID,
		UserID:      event.UserID,
		Provider:    string(reference.Provider),
		ProviderRef: reference.ID,
		Attempts:    event.Attempts,
	})

	return dispositionCompleted
}

// transfer dispatches the tagged request to the matching rail adapter
func (s *DispatcherService) transfer(ctx context.Context, request provider.TransferRequest) (*provider.Reference, error) {
	switch req := request.(type) {
	case provider.CardTransfer:
		return s.stripe.Transfer(ctx, req)
	case provider.BankTransfer:
		return s.wise.Transfer(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported transfer request type %T", request)
	}
}

// handleNoMethod requeues an event whose user has not configured a payout
// method yet. Fixed short delay, attempts unchanged from the claim-time
// increment, never dead-letters.
func (s *DispatcherService) handleNoMethod(ctx context.Context, event *models.PayoutEvent) disposition {
	s.recordAudit(ctx, event, models.AuditOutcomeFailed, json.RawMessage(`{"error":"no_method"}`))

	resolution := Resolve(event, OutcomeNoMethod, time.Now().UTC(), s.cfg.Policy)
	if err := s.queue.Requeue(ctx, event.ID, resolution.AvailableAt, resolution.Attempts); err != nil {
		log.WithError(err).WithField("eventID", event.ID).Error("Failed to requeue event without payout method")
	}

	s.bus.Emit(ctx, events.PayoutFailedEvent{
		EventID:       event.ID,
		UserID:        event.UserID,
		Reason:        "no_method",
		Attempts:      event.Attempts,
		NextAttemptAt: resolution.AvailableAt,
	})

	return dispositionRequeued
}

// handleFailure writes the audit entry for a failed attempt and applies
// the backoff decision: requeue with exponential delay, or dead-letter
// once attempts are exhausted.
func (s *DispatcherService) handleFailure(ctx context.Context, event *models.PayoutEvent, cause error) disposition {
	logger := log.WithFields(log.Fields{
		"eventID":  event.ID,
		"userID":   event.UserID,
		"attempts": event.Attempts,
	})
	logger.WithError(cause).Warn("Payout attempt failed")

	s.recordAudit(ctx, event, models.AuditOutcomeFailed, failurePayload(cause))

	resolution := Resolve(event, OutcomeFailure, time.Now().UTC(), s.cfg.Policy)

	if resolution.Status == models.EventStatusFailed {
		if err := s.queue.MarkFailed(ctx, event.ID, resolution.AvailableAt); err != nil {
			logger.WithError(err).Error("Failed to dead-letter event")
		}
		logger.Error("Payout dead-lettered after exhausting retries")

		s.bus.Emit(ctx, events.PayoutDeadLetteredEvent{
			EventID:  event.ID,
			UserID:   event.UserID,
			Reason:   cause.Error(),
			Attempts: event.Attempts,
		})
		return dispositionDeadLettered
	}

	if err := s.queue.Requeue(ctx, event.ID, resolution.AvailableAt, resolution.Attempts); err != nil {
		logger.WithError(err).Error("Failed to requeue event for retry")
	}

	s.bus.Emit(ctx, events.PayoutFailedEvent{
		EventID:       event.ID,
		UserID:        event.UserID,
		Reason:        cause.Error(),
		Attempts:      event.Attempts,
		NextAttemptAt: resolution.AvailableAt,
	})

	return dispositionRequeued
}

// recordAudit appends an attempt record. The audit trail is advisory:
// an insert failure is logged and never blocks the payout path.
func (s *DispatcherService) recordAudit(ctx context.Context, event *models.PayoutEvent, outcome models.AuditOutcome, response json.RawMessage) {
	entry := &models.AuditEntry{
		UserID:           event.UserID,
		Outcome:          outcome,
		ProviderResponse: response,
		AttemptNumber:    event.Attempts,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		log.WithError(err).WithField("eventID", event.ID).Warn("Failed to record audit entry")
	}
}

// failurePayload extracts the raw provider payload from a structured
// provider error, falling back to the error text
func failurePayload(cause error) json.RawMessage {
	var provErr *provider.Error
	if errors.As(cause, &provErr) && len(provErr.Body) > 0 && json.Valid(provErr.Body) {
		return provErr.Body
	}
	payload, err := json.Marshal(map[string]string{"error": cause.Error()})
	if err != nil {
		return json.RawMessage(`{"error":"unknown"}`)
	}
	return payload
}
