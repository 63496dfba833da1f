package audit

import (
	"context"
	"fmt"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/messaging"
	"restaurant-pos/internal/models"
)

// Subscriber consumes the audit event stream and logs each event. It is the
// integration point for downstream sinks like analytics or alerting; the
// database trail stays the source of truth either way.
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger
}

// NewSubscriber creates the audit event subscriber
func NewSubscriber(conn *messaging.Connection, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: messaging.NewConsumer(conn, log, messaging.AuditQueue, "audit-subscriber", 10),
		logger:   log,
	}
}

// Run consumes audit events until the context is cancelled
func (s *Subscriber) Run(ctx context.Context) error {
	return s.consumer.StartConsuming(ctx, s.handleEvent)
}

func (s *Subscriber) handleEvent(_ context.Context, body []byte) error {
	var event models.AuditEvent
	if err := messaging.ParseMessage(body, &event); err != nil {
		return fmt.Errorf("failed to parse audit event: %w", err)
	}

	fields := map[string]interface{}{
		"order_id":   event.OrderID,
		"table_code": event.TableCode,
		"timestamp":  event.Timestamp,
	}
	if event.ActorID != nil {
		fields["actor_id"] = *event.ActorID
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	s.logger.Info("audit_event", fmt.Sprintf("%s for order %s", event.Action, event.OrderID), "", fields)
	return nil
}

// Close stops the underlying consumer
func (s *Subscriber) Close() error {
	return s.consumer.Close()
}
