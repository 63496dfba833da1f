package models

import "time"

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	StatusNew           OrderStatus = "NEW"
	StatusPreparing     OrderStatus = "PREPARING"
	StatusReady         OrderStatus = "READY"
	StatusServed        OrderStatus = "SERVED"
	StatusBillRequested OrderStatus = "BILL_REQUESTED"
	StatusClosed        OrderStatus = "CLOSED"
)

// statusSuccessor is the single legal next state per status. The lifecycle is
// a strict total order; CLOSED is terminal.
var statusSuccessor = map[OrderStatus]OrderStatus{
	StatusNew:           StatusPreparing,
	StatusPreparing:     StatusReady,
	StatusReady:         StatusServed,
	StatusServed:        StatusBillRequested,
	StatusBillRequested: StatusClosed,
}

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusPreparing, StatusReady, StatusServed, StatusBillRequested, StatusClosed:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is the legal successor of s
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	successor, ok := statusSuccessor[s]
	return ok && successor == next
}

// ActiveStatuses is the default status filter for staff-facing views
func ActiveStatuses() []OrderStatus {
	return []OrderStatus{StatusNew, StatusPreparing, StatusReady, StatusServed}
}

// OrderItemStatus represents the kitchen-granularity status of a single item
type OrderItemStatus string

const (
	ItemPending   OrderItemStatus = "PENDING"
	ItemPreparing OrderItemStatus = "PREPARING"
	ItemReady     OrderItemStatus = "READY"
	ItemServed    OrderItemStatus = "SERVED"
)

// Valid reports whether s is a known item status
func (s OrderItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemPreparing, ItemReady, ItemServed:
		return true
	}
	return false
}

// OrderItem is one priced, quantified line within an order. Name and price
// are snapshots taken at creation or append time and never re-read from the
// catalog afterwards.
type OrderItem struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id,omitempty"`
	MenuItemID    string          `json:"menu_item_id"`
	ItemName      string          `json:"item_name"`
	PriceSnapshot float64         `json:"price"`
	Quantity      int             `json:"quantity"`
	Status        OrderItemStatus `json:"status"`
}

// LineTotal returns price snapshot times quantity for this line
func (i OrderItem) LineTotal() float64 {
	return i.PriceSnapshot * float64(i.Quantity)
}

// Order is a guest's tab at a table
type Order struct {
	ID           string      `json:"id"`
	TableID      string      `json:"table_id"`
	TableCode    string      `json:"table_code"`
	CustomerName *string     `json:"customer_name"`
	SessionID    *string     `json:"session_id,omitempty"`
	Status       OrderStatus `json:"status"`
	Version      int         `json:"version"`
	Items        []OrderItem `json:"items"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	ClosedAt     *time.Time  `json:"closed_at,omitempty"`
}

// Total recomputes the order total from item snapshots; it is derived,
// never stored.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.LineTotal()
	}
	return total
}

// OrderItemRequest is one requested line in a create or append call
type OrderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

// CreateOrderRequest is the body of POST /orders. TableCode is resolved to a
// table id when TableID is absent.
type CreateOrderRequest struct {
	TableID      string             `json:"table_id,omitempty"`
	TableCode    string             `json:"table_code,omitempty"`
	CustomerName *string            `json:"customer_name,omitempty"`
	SessionID    *string            `json:"session_id,omitempty"`
	Items        []OrderItemRequest `json:"items"`
}

// UpdateOrderStatusRequest is the body of PATCH /orders/{id}. Version is the
// caller's last-seen order version; CustomerName may be set when requesting
// the bill.
type UpdateOrderStatusRequest struct {
	Status       OrderStatus `json:"status"`
	Version      int         `json:"version"`
	CustomerName *string     `json:"customer_name,omitempty"`
}

// AddItemsRequest is the body of POST /orders/{id}/items
type AddItemsRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// UpdateItemStatusRequest is the body of PATCH /order-items/{id}
type UpdateItemStatusRequest struct {
	Status OrderItemStatus `json:"status"`
}
