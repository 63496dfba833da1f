package order

import (
	"testing"

	"restaurant-pos/internal/models"
)

func TestValidateCreateOrderRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *models.CreateOrderRequest
		wantErr bool
	}{
		{
			name: "valid request with table id",
			req: &models.CreateOrderRequest{
				TableID: "table-1",
				Items:   []models.OrderItemRequest{{MenuItemID: "m-1", Quantity: 2}},
			},
			wantErr: false,
		},
		{
			name: "valid request with table code only",
			req: &models.CreateOrderRequest{
				TableCode: "T-04",
				Items:     []models.OrderItemRequest{{MenuItemID: "m-1", Quantity: 1}},
			},
			wantErr: false,
		},
		{
			name: "missing table reference",
			req: &models.CreateOrderRequest{
				Items: []models.OrderItemRequest{{MenuItemID: "m-1", Quantity: 1}},
			},
			wantErr: true,
		},
		{
			name: "empty items",
			req: &models.CreateOrderRequest{
				TableID: "table-1",
				Items:   []models.OrderItemRequest{},
			},
			wantErr: true,
		},
		{
			name: "zero quantity",
			req: &models.CreateOrderRequest{
				TableID: "table-1",
				Items:   []models.OrderItemRequest{{MenuItemID: "m-1", Quantity: 0}},
			},
			wantErr: true,
		},
		{
			name: "missing menu item id",
			req: &models.CreateOrderRequest{
				TableID: "table-1",
				Items:   []models.OrderItemRequest{{Quantity: 1}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreateOrderRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCreateOrderRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				engineErr, ok := AsEngineError(err)
				if !ok || engineErr.Code != CodeInvalidInput {
					t.Errorf("expected INVALID_INPUT engine error, got %v", err)
				}
			}
		})
	}
}

func TestValidateUpdateStatusRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *models.UpdateOrderStatusRequest
		wantErr bool
	}{
		{
			name:    "valid",
			req:     &models.UpdateOrderStatusRequest{Status: models.StatusPreparing, Version: 1},
			wantErr: false,
		},
		{
			name:    "unknown status",
			req:     &models.UpdateOrderStatusRequest{Status: "COOKING", Version: 1},
			wantErr: true,
		},
		{
			name:    "missing version",
			req:     &models.UpdateOrderStatusRequest{Status: models.StatusPreparing},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpdateStatusRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUpdateStatusRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateItemStatus(t *testing.T) {
	if err := ValidateItemStatus(models.ItemReady); err != nil {
		t.Errorf("ValidateItemStatus(READY) = %v, want nil", err)
	}
	if err := ValidateItemStatus("BURNT"); err == nil {
		t.Error("ValidateItemStatus(BURNT) = nil, want error")
	}
}

func TestErrorHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeOrderNotFound, 404},
		{CodeTableNotFound, 404},
		{CodeTableDeleted, 404},
		{CodeMenuItemNotFound, 404},
		{CodeVersionConflict, 409},
		{CodeTableOccupied, 409},
		{CodeInvalidInput, 400},
		{CodeInvalidTransition, 400},
		{CodeMenuItemUnavailable, 400},
		{CodeOrderClosed, 400},
		{CodeCreationFailed, 500},
	}

	for _, tt := range tests {
		err := newError(tt.code, "boom")
		if got := err.HTTPStatus(); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
