package order

import (
	"restaurant-pos/internal/models"
)

const maxItemsPerRequest = 50

// ValidateCreateOrderRequest checks the shape of a create request before any
// storage is touched. Referential checks (table exists, menu items exist)
// happen inside the transaction.
func ValidateCreateOrderRequest(req *models.CreateOrderRequest) error {
	if req.TableID == "" && req.TableCode == "" {
		return newError(CodeInvalidInput, "table_id or table_code is required")
	}

	return validateItemRequests(req.Items)
}

// ValidateUpdateStatusRequest checks the shape of a status update request
func ValidateUpdateStatusRequest(req *models.UpdateOrderStatusRequest) error {
	if !req.Status.Valid() {
		return newError(CodeInvalidInput, "invalid status %q", string(req.Status))
	}

	if req.Version < 1 {
		return newError(CodeInvalidInput, "version is required for optimistic locking")
	}

	return nil
}

// ValidateAddItemsRequest checks the shape of an append request
func ValidateAddItemsRequest(req *models.AddItemsRequest) error {
	return validateItemRequests(req.Items)
}

// ValidateItemStatus checks a requested item-level status
func ValidateItemStatus(status models.OrderItemStatus) error {
	if !status.Valid() {
		return newError(CodeInvalidInput, "invalid item status %q", string(status))
	}
	return nil
}

func validateItemRequests(items []models.OrderItemRequest) error {
	if len(items) == 0 {
		return newError(CodeInvalidInput, "at least one item is required")
	}

	if len(items) > maxItemsPerRequest {
		return newError(CodeInvalidInput, "a maximum of %d items is allowed", maxItemsPerRequest)
	}

	for i, item := range items {
		if item.MenuItemID == "" {
			return newError(CodeInvalidInput, "items[%d].menu_item_id is required", i)
		}
		if item.Quantity < 1 {
			return newError(CodeInvalidInput, "items[%d].quantity must be at least 1", i)
		}
	}

	return nil
}
