package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// querier is satisfied by both pgx.Tx and the pooled DB wrapper, so the same
// scan helpers serve locked transactional reads and plain snapshot reads.
type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// lockTable loads a table row with a row lock, so concurrent order creation
// against the same table serializes on it.
func lockTable(ctx context.Context, tx pgx.Tx, tableID string) (*models.Table, error) {
	return scanTable(tx.QueryRow(ctx, database.GetTableForUpdateSQL, tableID))
}

func scanTable(row pgx.Row) (*models.Table, error) {
	var t models.Table
	err := row.Scan(&t.ID, &t.TableCode, &t.Capacity, &t.Status, &t.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// resolveTableByCode finds a non-deleted table matching any fuzzy form of the
// given code.
func resolveTableByCode(ctx context.Context, q querier, code string) (*models.Table, error) {
	candidates := models.TableCodeCandidates(code)
	if len(candidates) == 0 {
		return nil, pgx.ErrNoRows
	}

	rows, err := q.Query(ctx, database.GetTablesByCodesSQL, candidates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}

	var t models.Table
	if err := rows.Scan(&t.ID, &t.TableCode, &t.Capacity, &t.Status, &t.DeletedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// fetchMenuItems loads catalog rows for the given ids. requireAvailable makes
// soft-deleted and unavailable rows invisible, which is the stricter append
// semantics.
func fetchMenuItems(ctx context.Context, q querier, ids []string, requireAvailable bool) (map[string]models.MenuItem, error) {
	sql := database.GetMenuItemsByIDsSQL
	if requireAvailable {
		sql = database.GetAvailableMenuItemsByIDsSQL
	}

	rows, err := q.Query(ctx, sql, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[string]models.MenuItem)
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.IsAvailable); err != nil {
			return nil, err
		}
		found[item.ID] = item
	}
	return found, rows.Err()
}

// fetchOrder loads one order with its table code, without items
func fetchOrder(ctx context.Context, q querier, orderID string) (*models.Order, error) {
	return scanOrder(q.QueryRow(ctx, database.GetOrderByIDSQL, orderID))
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.TableID, &o.TableCode, &o.CustomerName, &o.SessionID,
		&o.Status, &o.Version, &o.CreatedAt, &o.UpdatedAt, &o.ClosedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// fetchOrderForUpdate locks one order row inside a mutation transaction. The
// returned order carries no table code; callers that need it fetch the table.
func fetchOrderForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*models.Order, error) {
	var o models.Order
	err := tx.QueryRow(ctx, database.GetOrderForUpdateSQL, orderID).Scan(
		&o.ID, &o.TableID, &o.CustomerName, &o.SessionID,
		&o.Status, &o.Version, &o.CreatedAt, &o.UpdatedAt, &o.ClosedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// fetchOrderItems loads the line items of one order
func fetchOrderItems(ctx context.Context, q querier, orderID string) ([]models.OrderItem, error) {
	rows, err := q.Query(ctx, database.GetOrderItemsSQL, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrderItems(rows)
}

// attachItems loads items for a batch of orders in one query
func attachItems(ctx context.Context, q querier, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*models.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
		orders[i].Items = []models.OrderItem{}
	}

	rows, err := q.Query(ctx, database.GetOrderItemsForOrdersSQL, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	items, err := scanOrderItems(rows)
	if err != nil {
		return err
	}

	for _, item := range items {
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return nil
}

func scanOrderItems(rows pgx.Rows) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.ItemName,
			&item.PriceSnapshot, &item.Quantity, &item.Status)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// insertAuditEntry appends one audit row inside the mutation's transaction
func insertAuditEntry(ctx context.Context, tx pgx.Tx, action models.AuditAction, orderID string, actorID *string, metadata map[string]interface{}) error {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}

	_, err = tx.Exec(ctx, database.InsertAuditLogSQL, string(action), orderID, actorID, payload)
	if err != nil {
		return fmt.Errorf("failed to insert audit log entry: %w", err)
	}
	return nil
}
