package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// EventPublisher fans audit events out to interested consumers after a
// mutation commits. Publishing is best-effort; the audit_log row written
// inside the transaction is the source of truth.
type EventPublisher interface {
	PublishAuditEvent(ctx context.Context, event *models.AuditEvent) error
}

// Service is the order lifecycle engine. Every mutating operation runs as a
// single transaction spanning order, table and audit writes; optimistic
// versioning is the only concurrency control.
type Service struct {
	db        *database.DB
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates the engine
func NewService(db *database.DB, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		db:        db,
		publisher: publisher,
		logger:    log,
	}
}

// CreateOrder validates the table and menu items, creates the order with
// snapshotted prices, marks the table ACTIVE and writes the audit entry, all
// in one transaction.
func (s *Service) CreateOrder(ctx context.Context, req *models.CreateOrderRequest, requestID string) (*models.Order, error) {
	if err := ValidateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Resolve the table code first if no id was supplied. Unknown codes fail
	// outright; provisioning is a separate administrative operation.
	tableID := req.TableID
	if tableID == "" {
		table, err := resolveTableByCode(ctx, tx, req.TableCode)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, newError(CodeTableNotFound, "table %q not found", req.TableCode)
			}
			return nil, fmt.Errorf("failed to resolve table code: %w", err)
		}
		tableID = table.ID
	}

	// Lock the table row so concurrent creates against it serialize here.
	table, err := lockTable(ctx, tx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newError(CodeTableNotFound, "table not found")
		}
		return nil, fmt.Errorf("failed to load table: %w", err)
	}
	if table.DeletedAt != nil {
		return nil, newError(CodeTableDeleted, "table is no longer available")
	}

	// At most one non-CLOSED order per table and guest session. Distinct
	// session ids may share a table (separate parties).
	var activeCount int
	err = tx.QueryRow(ctx, database.CountActiveOrdersForSessionSQL, tableID, req.SessionID).Scan(&activeCount)
	if err != nil {
		return nil, fmt.Errorf("failed to check active orders: %w", err)
	}
	if activeCount > 0 {
		return nil, newError(CodeTableOccupied, "table %s already has an open order for this session", table.TableCode)
	}

	menuItems, err := s.resolveMenuItemsForCreate(ctx, tx, req.Items)
	if err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	_, err = tx.Exec(ctx, database.InsertOrderSQL,
		orderID, tableID, req.CustomerName, req.SessionID, string(models.StatusNew), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	// Snapshot name and price at this instant; later catalog edits must never
	// change what this order recorded.
	for _, line := range req.Items {
		menuItem := menuItems[line.MenuItemID]
		_, err = tx.Exec(ctx, database.InsertOrderItemSQL,
			uuid.NewString(), orderID, menuItem.ID, menuItem.Name, menuItem.Price,
			line.Quantity, string(models.ItemPending))
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	_, err = tx.Exec(ctx, database.UpdateTableStatusSQL, string(models.TableActive), tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to update table status: %w", err)
	}

	metadata := map[string]interface{}{
		"table_code": table.TableCode,
		"item_count": len(req.Items),
	}
	if err := insertAuditEntry(ctx, tx, models.AuditOrderCreated, orderID, nil, metadata); err != nil {
		return nil, err
	}

	created, err := s.loadFullOrder(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newError(CodeCreationFailed, "failed to create order")
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("order_created", fmt.Sprintf("Order created for table %s", created.TableCode), requestID, map[string]interface{}{
		"order_id":   created.ID,
		"table_code": created.TableCode,
		"item_count": len(created.Items),
		"total":      created.Total(),
	})

	s.publishEvent(ctx, models.NewAuditEvent(models.AuditOrderCreated, created.ID, created.TableCode, nil, metadata), requestID)

	return created, nil
}

// resolveMenuItemsForCreate batches the catalog lookup for a create request.
// Missing and unavailable items are each reported in full, not just the first.
func (s *Service) resolveMenuItemsForCreate(ctx context.Context, tx pgx.Tx, lines []models.OrderItemRequest) (map[string]models.MenuItem, error) {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.MenuItemID)
	}

	found, err := fetchMenuItems(ctx, tx, ids, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}

	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, newError(CodeMenuItemNotFound, "menu items not found: %s", strings.Join(missing, ", "))
	}

	var unavailable []string
	for _, id := range ids {
		if item := found[id]; !item.IsAvailable {
			unavailable = append(unavailable, item.Name)
		}
	}
	if len(unavailable) > 0 {
		sort.Strings(unavailable)
		return nil, newError(CodeMenuItemUnavailable, "menu items not available: %s", strings.Join(unavailable, ", "))
	}

	return found, nil
}

// UpdateStatus advances an order one step through the lifecycle under the
// optimistic version check, driving table occupancy as a side effect.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, req *models.UpdateOrderStatusRequest, actorID *string, requestID string) (*models.Order, error) {
	if err := ValidateUpdateStatusRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := fetchOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newError(CodeOrderNotFound, "order not found")
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	// Version mismatch is a hard rejection; the caller must refetch and
	// retry, never silently override.
	if current.Version != req.Version {
		return nil, newError(CodeVersionConflict, "order was modified by another user, please refresh")
	}

	if !current.Status.CanTransitionTo(req.Status) {
		return nil, newError(CodeInvalidTransition, "cannot transition from %s to %s", current.Status, req.Status)
	}

	_, err = tx.Exec(ctx, database.UpdateOrderStatusSQL, string(req.Status), req.CustomerName, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	// Only READY and CLOSED touch the table.
	switch req.Status {
	case models.StatusReady:
		_, err = tx.Exec(ctx, database.UpdateTableStatusSQL, string(models.TableReady), current.TableID)
	case models.StatusClosed:
		_, err = tx.Exec(ctx, database.UpdateTableStatusSQL, string(models.TableDirty), current.TableID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update table status: %w", err)
	}

	updated, err := s.loadFullOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	metadata := map[string]interface{}{
		"previous_status": string(current.Status),
		"new_status":      string(req.Status),
		"table_code":      updated.TableCode,
	}
	if err := insertAuditEntry(ctx, tx, models.AuditStatusChanged, orderID, actorID, metadata); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("order_status_updated", fmt.Sprintf("Order %s moved to %s", orderID, req.Status), requestID, map[string]interface{}{
		"order_id":        orderID,
		"previous_status": string(current.Status),
		"new_status":      string(req.Status),
		"version":         updated.Version,
	})

	s.publishEvent(ctx, models.NewAuditEvent(models.AuditStatusChanged, orderID, updated.TableCode, actorID, metadata), requestID)

	return updated, nil
}

// AddItems appends lines with fresh price snapshots to a non-CLOSED order and
// bumps its version. Late add-ons are allowed even after the bill was
// requested, up until settlement.
func (s *Service) AddItems(ctx context.Context, orderID string, req *models.AddItemsRequest, actorID *string, requestID string) (*models.Order, error) {
	if err := ValidateAddItemsRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := fetchOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newError(CodeOrderNotFound, "order not found")
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if current.Status == models.StatusClosed {
		return nil, newError(CodeOrderClosed, "cannot add items to a closed order")
	}

	// Stricter than creation: missing and unavailable items both fail the
	// whole batch.
	ids := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		ids = append(ids, line.MenuItemID)
	}
	found, err := fetchMenuItems(ctx, tx, ids, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	if len(found) != len(ids) {
		return nil, newError(CodeMenuItemUnavailable, "some menu items are not available")
	}

	for _, line := range req.Items {
		menuItem := found[line.MenuItemID]
		_, err = tx.Exec(ctx, database.InsertOrderItemSQL,
			uuid.NewString(), orderID, menuItem.ID, menuItem.Name, menuItem.Price,
			line.Quantity, string(models.ItemPending))
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	_, err = tx.Exec(ctx, database.BumpOrderVersionSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to increment order version: %w", err)
	}

	metadata := map[string]interface{}{
		"items_added": len(req.Items),
	}
	if err := insertAuditEntry(ctx, tx, models.AuditItemAdded, orderID, actorID, metadata); err != nil {
		return nil, err
	}

	updated, err := s.loadFullOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("order_items_added", fmt.Sprintf("Added %d items to order %s", len(req.Items), orderID), requestID, map[string]interface{}{
		"order_id":    orderID,
		"items_added": len(req.Items),
		"version":     updated.Version,
	})

	s.publishEvent(ctx, models.NewAuditEvent(models.AuditItemAdded, orderID, updated.TableCode, actorID, metadata), requestID)

	return updated, nil
}

// UpdateItemStatus updates a single item's status directly. Item status is an
// independent sub-resource for kitchen-station tracking: it carries no
// version check and never touches the order-level machine, but terminal
// orders stay immutable.
func (s *Service) UpdateItemStatus(ctx context.Context, itemID string, status models.OrderItemStatus, requestID string) (*models.OrderItem, error) {
	if err := ValidateItemStatus(status); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Locks the parent order row, so a concurrent close cannot land between
	// this guard and the item update.
	var orderStatus models.OrderStatus
	err = tx.QueryRow(ctx, database.GetOrderItemOrderStatusSQL, itemID).Scan(&orderStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newError(CodeOrderNotFound, "order item not found")
		}
		return nil, fmt.Errorf("failed to load order item: %w", err)
	}
	if orderStatus == models.StatusClosed {
		return nil, newError(CodeOrderClosed, "cannot update items of a closed order")
	}

	var item models.OrderItem
	err = tx.QueryRow(ctx, database.UpdateOrderItemStatusSQL, string(status), itemID).Scan(
		&item.ID, &item.OrderID, &item.MenuItemID, &item.ItemName,
		&item.PriceSnapshot, &item.Quantity, &item.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to update item status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("item_status_updated", fmt.Sprintf("Item %s moved to %s", itemID, status), requestID, map[string]interface{}{
		"item_id":  itemID,
		"order_id": item.OrderID,
		"status":   string(status),
	})

	return &item, nil
}

// GetOrder returns one order with items and table code, or ORDER_NOT_FOUND
func (s *Service) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	o, err := fetchOrder(ctx, s.db, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newError(CodeOrderNotFound, "order not found")
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	o.Items, err = fetchOrderItems(ctx, s.db, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	return o, nil
}

// ListOrders returns orders whose status is in the given set, capped by limit
// and ordered by creation time. Snapshot read, no locking; pollers tolerate
// slight staleness.
func (s *Service) ListOrders(ctx context.Context, statuses []models.OrderStatus, limit int, descending bool) ([]models.Order, error) {
	if len(statuses) == 0 {
		statuses = models.ActiveStatuses()
	}
	for _, status := range statuses {
		if !status.Valid() {
			return nil, newError(CodeInvalidInput, "invalid status %q", string(status))
		}
	}

	filter := make([]string, len(statuses))
	for i, status := range statuses {
		filter[i] = string(status)
	}

	sql := database.GetOrdersByStatusSQL + " ORDER BY o.created_at ASC"
	if descending {
		sql = database.GetOrdersByStatusSQL + " ORDER BY o.created_at DESC"
	}

	args := []interface{}{filter}
	if limit > 0 {
		sql += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}

	if err := attachItems(ctx, s.db, orders); err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	return orders, nil
}

// ActiveOrdersForTable answers "what's the open order here", excluding CLOSED
func (s *Service) ActiveOrdersForTable(ctx context.Context, tableID string) ([]models.Order, error) {
	rows, err := s.db.Query(ctx, database.GetActiveOrdersForTableSQL, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for table: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}

	if err := attachItems(ctx, s.db, orders); err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	return orders, nil
}

// HealthCheck verifies the database is reachable
func (s *Service) HealthCheck(ctx context.Context) bool {
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health_check_failed", "Database ping failed", "", err, nil)
		return false
	}
	return true
}

// loadFullOrder re-reads the order with items inside the same transaction, so
// the caller returns exactly what was committed.
func (s *Service) loadFullOrder(ctx context.Context, tx pgx.Tx, orderID string) (*models.Order, error) {
	o, err := fetchOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items, err = fetchOrderItems(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	return o, nil
}

func scanOrders(rows pgx.Rows) ([]models.Order, error) {
	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		err := rows.Scan(&o.ID, &o.TableID, &o.TableCode, &o.CustomerName, &o.SessionID,
			&o.Status, &o.Version, &o.CreatedAt, &o.UpdatedAt, &o.ClosedAt)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// publishEvent fans an audit event out after commit; failures are logged and
// never fail the already-committed mutation.
func (s *Service) publishEvent(ctx context.Context, event *models.AuditEvent, requestID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAuditEvent(ctx, event); err != nil {
		s.logger.Error("audit_event_publish_failed", "Failed to publish audit event", requestID, err, map[string]interface{}{
			"order_id": event.OrderID,
			"action":   string(event.Action),
		})
	}
}
