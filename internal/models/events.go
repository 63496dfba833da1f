package models

import "time"

// Routing keys for audit events published to the order_events topic exchange
const (
	RoutingKeyOrderCreated  = "audit.order_created"
	RoutingKeyStatusChanged = "audit.status_changed"
	RoutingKeyItemsAdded    = "audit.items_added"
)

// AuditEvent is the wire form of an audit entry fanned out to RabbitMQ after
// the owning transaction commits. The database row is the source of truth;
// these events are best-effort.
type AuditEvent struct {
	Action    AuditAction            `json:"action"`
	OrderID   string                 `json:"order_id"`
	TableCode string                 `json:"table_code"`
	ActorID   *string                `json:"actor_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// RoutingKey maps the event's action to its topic routing key
func (e *AuditEvent) RoutingKey() string {
	switch e.Action {
	case AuditOrderCreated:
		return RoutingKeyOrderCreated
	case AuditStatusChanged:
		return RoutingKeyStatusChanged
	case AuditItemAdded:
		return RoutingKeyItemsAdded
	default:
		return "audit.unknown"
	}
}

// NewAuditEvent builds an event mirroring an audit log row
func NewAuditEvent(action AuditAction, orderID, tableCode string, actorID *string, metadata map[string]interface{}) *AuditEvent {
	return &AuditEvent{
		Action:    action,
		OrderID:   orderID,
		TableCode: tableCode,
		ActorID:   actorID,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}
