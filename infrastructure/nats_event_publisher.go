package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"disburser/events"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const sourceService = "disburser"

// eventEnvelope wraps a payout lifecycle event for downstream consumers
type eventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher forwards payout lifecycle events from the in-process
// bus to NATS so other services (notifications, reconciliation) can react.
// Forwarding is fire-and-forget: a publish failure is logged, never
// surfaced to the payout path.
type NATSEventPublisher struct {
	servers string
	nc      *nats.Conn
}

// NewNATSEventPublisher creates a new NATS publisher
func NewNATSEventPublisher(servers string) *NATSEventPublisher {
	return &NATSEventPublisher{servers: servers}
}

// Connect establishes the connection to the NATS server
func (p *NATSEventPublisher) Connect() error {
	opts := []nats.Option{
		nats.Name(sourceService),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(p.servers, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p.nc = nc
	log.WithField("servers", p.servers).Info("Connected to NATS")
	return nil
}

// Close drains and closes the connection
func (p *NATSEventPublisher) Close() {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			log.WithError(err).Warn("Failed to drain NATS connection")
		}
	}
}

// Register subscribes the publisher to every payout lifecycle event on the bus
func (p *NATSEventPublisher) Register(bus *events.Bus) {
	for _, eventType := range []events.EventType{
		events.EventTypePayoutSucceeded,
		events.EventTypePayoutFailed,
		events.EventTypePayoutDeadLettered,
	} {
		bus.Subscribe(eventType, p.forward)
	}
}

// forward publishes one event to its subject
func (p *NATSEventPublisher) forward(ctx context.Context, event events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to marshal event payload")
		return
	}

	envelope := eventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		log.WithError(err).Error("Failed to marshal event envelope")
		return
	}

	subject := subjectFor(event.Type())
	if err := p.nc.Publish(subject, data); err != nil {
		log.WithFields(log.Fields{
			"subject": subject,
			"error":   err,
		}).Error("Failed to publish event to NATS")
		return
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")
}

func subjectFor(eventType events.EventType) string {
	switch eventType {
	case events.EventTypePayoutSucceeded:
		return "payouts.succeeded"
	case events.EventTypePayoutFailed:
		return "payouts.failed"
	case events.EventTypePayoutDeadLettered:
		return "payouts.dead_lettered"
	default:
		return "payouts.unknown"
	}
}
