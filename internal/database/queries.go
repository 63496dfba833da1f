package database

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (id, table_id, customer_name, session_id, status, version)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (id, order_id, menu_item_id, item_name, price_snapshot, quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	GetOrderForUpdateSQL = `
		SELECT id, table_id, customer_name, session_id, status, version, created_at, updated_at, closed_at
		FROM orders WHERE id = $1
		FOR UPDATE`

	GetOrderByIDSQL = `
		SELECT o.id, o.table_id, t.table_code, o.customer_name, o.session_id,
		       o.status, o.version, o.created_at, o.updated_at, o.closed_at
		FROM orders o
		JOIN tables t ON t.id = o.table_id
		WHERE o.id = $1`

	GetOrdersByStatusSQL = `
		SELECT o.id, o.table_id, t.table_code, o.customer_name, o.session_id,
		       o.status, o.version, o.created_at, o.updated_at, o.closed_at
		FROM orders o
		JOIN tables t ON t.id = o.table_id
		WHERE o.status = ANY($1)`

	GetActiveOrdersForTableSQL = `
		SELECT o.id, o.table_id, t.table_code, o.customer_name, o.session_id,
		       o.status, o.version, o.created_at, o.updated_at, o.closed_at
		FROM orders o
		JOIN tables t ON t.id = o.table_id
		WHERE o.table_id = $1 AND o.status <> 'CLOSED'
		ORDER BY o.created_at DESC`

	CountActiveOrdersForSessionSQL = `
		SELECT COUNT(*) FROM orders
		WHERE table_id = $1 AND status <> 'CLOSED'
		  AND COALESCE(session_id, '') = COALESCE($2, '')`

	CountActiveOrdersForTableSQL = `
		SELECT COUNT(*) FROM orders
		WHERE table_id = $1 AND status <> 'CLOSED'`

	OrderExistsSQL = `
		SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`

	UpdateOrderStatusSQL = `
		UPDATE orders
		SET status = $1, version = version + 1, updated_at = NOW(),
		    customer_name = COALESCE($2, customer_name),
		    closed_at = CASE WHEN $1 = 'CLOSED' THEN NOW() ELSE closed_at END
		WHERE id = $3`

	BumpOrderVersionSQL = `
		UPDATE orders SET version = version + 1, updated_at = NOW()
		WHERE id = $1`

	GetOrderItemsSQL = `
		SELECT id, order_id, menu_item_id, item_name, price_snapshot, quantity, status
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC`

	GetOrderItemsForOrdersSQL = `
		SELECT id, order_id, menu_item_id, item_name, price_snapshot, quantity, status
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY created_at ASC, id ASC`

	UpdateOrderItemStatusSQL = `
		UPDATE order_items SET status = $1
		WHERE id = $2
		RETURNING id, order_id, menu_item_id, item_name, price_snapshot, quantity, status`

	GetOrderItemOrderStatusSQL = `
		SELECT o.status
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE i.id = $1
		FOR UPDATE OF o`
)

// Table queries
const (
	GetTableForUpdateSQL = `
		SELECT id, table_code, capacity, status, deleted_at
		FROM tables WHERE id = $1
		FOR UPDATE`

	GetTableByIDSQL = `
		SELECT id, table_code, capacity, status, deleted_at
		FROM tables WHERE id = $1`

	GetTablesByCodesSQL = `
		SELECT id, table_code, capacity, status, deleted_at
		FROM tables
		WHERE deleted_at IS NULL AND LOWER(table_code) = ANY($1)
		ORDER BY table_code ASC`

	GetAllTablesSQL = `
		SELECT id, table_code, capacity, status, deleted_at
		FROM tables
		WHERE deleted_at IS NULL
		ORDER BY table_code ASC`

	InsertTableSQL = `
		INSERT INTO tables (id, table_code, capacity, status)
		VALUES ($1, $2, $3, 'VACANT')`

	UpdateTableStatusSQL = `
		UPDATE tables SET status = $1 WHERE id = $2`
)

// Menu queries
const (
	GetMenuItemsByIDsSQL = `
		SELECT id, name, price, is_available
		FROM menu_items
		WHERE id = ANY($1) AND deleted_at IS NULL`

	GetAvailableMenuItemsByIDsSQL = `
		SELECT id, name, price, is_available
		FROM menu_items
		WHERE id = ANY($1) AND deleted_at IS NULL AND is_available`

	GetAvailableMenuItemsSQL = `
		SELECT id, name, price, is_available
		FROM menu_items
		WHERE deleted_at IS NULL AND is_available
		ORDER BY name ASC`
)

// Audit queries
const (
	InsertAuditLogSQL = `
		INSERT INTO audit_log (action, order_id, actor_id, metadata)
		VALUES ($1, $2, $3, $4)`

	GetAuditLogForOrderSQL = `
		SELECT action, order_id, actor_id, metadata, created_at
		FROM audit_log
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC`
)
