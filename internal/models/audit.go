package models

import "time"

// AuditAction tags one kind of mutating engine operation
type AuditAction string

const (
	AuditOrderCreated  AuditAction = "ORDER_CREATED"
	AuditStatusChanged AuditAction = "STATUS_CHANGED"
	AuditItemAdded     AuditAction = "ITEM_ADDED"
)

// AuditLogEntry is one immutable record of a mutating action against an
// order, written in the same transaction as the mutation it describes.
type AuditLogEntry struct {
	Action    AuditAction            `json:"action"`
	OrderID   string                 `json:"order_id"`
	ActorID   *string                `json:"actor_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
