package order

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/middleware"
	"restaurant-pos/internal/models"
)

// Engine is the order lifecycle surface the HTTP layer depends on
type Engine interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest, requestID string) (*models.Order, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, statuses []models.OrderStatus, limit int, descending bool) ([]models.Order, error)
	ActiveOrdersForTable(ctx context.Context, tableID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, req *models.UpdateOrderStatusRequest, actorID *string, requestID string) (*models.Order, error)
	AddItems(ctx context.Context, orderID string, req *models.AddItemsRequest, actorID *string, requestID string) (*models.Order, error)
	UpdateItemStatus(ctx context.Context, itemID string, status models.OrderItemStatus, requestID string) (*models.OrderItem, error)
	HealthCheck(ctx context.Context) bool
}

// Handler handles HTTP requests for the order engine
type Handler struct {
	engine Engine
	logger *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(engine Engine, log *logger.Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: log,
	}
}

// Register mounts the order routes on the given mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.CreateOrder)
	mux.HandleFunc("GET /orders", h.ListOrders)
	mux.HandleFunc("GET /orders/{id}", h.GetOrder)
	mux.HandleFunc("PATCH /orders/{id}", h.UpdateStatus)
	mux.HandleFunc("POST /orders/{id}/items", h.AddItems)
	mux.HandleFunc("PATCH /order-items/{id}", h.UpdateItemStatus)
	mux.HandleFunc("GET /tables/{id}/orders", h.TableOrders)
	mux.HandleFunc("GET /health", h.HealthCheck)
}

// orderItemResponse is one line with its computed total
type orderItemResponse struct {
	ID         string  `json:"id"`
	MenuItemID string  `json:"menu_item_id"`
	ItemName   string  `json:"item_name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	Status     string  `json:"status"`
	LineTotal  float64 `json:"line_total"`
}

// orderResponse is the wire form of an order with derived totals
type orderResponse struct {
	ID           string              `json:"id"`
	TableID      string              `json:"table_id"`
	TableCode    string              `json:"table_code"`
	Status       string              `json:"status"`
	Version      int                 `json:"version"`
	CustomerName *string             `json:"customer_name"`
	SessionID    *string             `json:"session_id,omitempty"`
	Items        []orderItemResponse `json:"items"`
	Total        float64             `json:"total"`
	CreatedAt    string              `json:"created_at"`
	ClosedAt     *string             `json:"closed_at,omitempty"`
}

func toOrderResponse(o *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			ItemName:   item.ItemName,
			Price:      item.PriceSnapshot,
			Quantity:   item.Quantity,
			Status:     string(item.Status),
			LineTotal:  item.LineTotal(),
		})
	}

	resp := orderResponse{
		ID:           o.ID,
		TableID:      o.TableID,
		TableCode:    o.TableCode,
		Status:       string(o.Status),
		Version:      o.Version,
		CustomerName: o.CustomerName,
		SessionID:    o.SessionID,
		Items:        items,
		Total:        o.Total(),
		CreatedAt:    o.CreatedAt.UTC().Format(time.RFC3339),
	}
	if o.ClosedAt != nil {
		closedAt := o.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &closedAt
	}
	return resp
}

// CreateOrder handles POST /orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", string(CodeInvalidInput), requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	created, err := h.engine.CreateOrder(ctx, &req, requestID)
	if err != nil {
		h.writeEngineError(w, r, "order_creation_failed", err, requestID)
		return
	}

	h.writeOrderResponse(w, http.StatusCreated, created, requestID)
}

// ListOrders handles GET /orders?status=A,B&limit=N&order=asc|desc
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var statuses []models.OrderStatus
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		for _, s := range strings.Split(statusParam, ",") {
			statuses = append(statuses, models.OrderStatus(strings.TrimSpace(s)))
		}
	}

	limit := 50
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			h.writeErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer", string(CodeInvalidInput), requestID)
			return
		}
		limit = parsed
	}

	descending := r.URL.Query().Get("order") == "desc"

	orders, err := h.engine.ListOrders(r.Context(), statuses, limit, descending)
	if err != nil {
		h.writeEngineError(w, r, "order_list_failed", err, requestID)
		return
	}

	responses := make([]orderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, toOrderResponse(&orders[i]))
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  responses,
	}, requestID)
}

// GetOrder handles GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	o, err := h.engine.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeEngineError(w, r, "order_fetch_failed", err, requestID)
		return
	}

	h.writeOrderResponse(w, http.StatusOK, o, requestID)
}

// TableOrders handles GET /tables/{id}/orders, the open orders at one table
func (h *Handler) TableOrders(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	orders, err := h.engine.ActiveOrdersForTable(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeEngineError(w, r, "table_orders_fetch_failed", err, requestID)
		return
	}

	responses := make([]orderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, toOrderResponse(&orders[i]))
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  responses,
	}, requestID)
}

// UpdateStatus handles PATCH /orders/{id}
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var req models.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", string(CodeInvalidInput), requestID)
		return
	}

	updated, err := h.engine.UpdateStatus(r.Context(), r.PathValue("id"), &req, actorIDFrom(r), requestID)
	if err != nil {
		h.writeEngineError(w, r, "order_status_update_failed", err, requestID)
		return
	}

	h.writeOrderResponse(w, http.StatusOK, updated, requestID)
}

// AddItems handles POST /orders/{id}/items
func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var req models.AddItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", string(CodeInvalidInput), requestID)
		return
	}

	updated, err := h.engine.AddItems(r.Context(), r.PathValue("id"), &req, actorIDFrom(r), requestID)
	if err != nil {
		h.writeEngineError(w, r, "order_items_add_failed", err, requestID)
		return
	}

	h.writeOrderResponse(w, http.StatusOK, updated, requestID)
}

// UpdateItemStatus handles PATCH /order-items/{id}
func (h *Handler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var req models.UpdateItemStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", string(CodeInvalidInput), requestID)
		return
	}

	item, err := h.engine.UpdateItemStatus(r.Context(), r.PathValue("id"), req.Status, requestID)
	if err != nil {
		h.writeEngineError(w, r, "item_status_update_failed", err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"item": orderItemResponse{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			ItemName:   item.ItemName,
			Price:      item.PriceSnapshot,
			Quantity:   item.Quantity,
			Status:     string(item.Status),
			LineTotal:  item.LineTotal(),
		},
	}, requestID)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := h.engine.HealthCheck(ctx)

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "order-service",
		"healthy":   healthy,
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
	}

	h.writeJSON(w, status, response, "")
}

// writeOrderResponse writes a successful order envelope
func (h *Handler) writeOrderResponse(w http.ResponseWriter, status int, o *models.Order, requestID string) {
	h.writeJSON(w, status, map[string]interface{}{
		"success": true,
		"order":   toOrderResponse(o),
	}, requestID)
}

// writeEngineError maps a typed engine error to its HTTP status; anything
// untyped is a 500.
func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, action string, err error, requestID string) {
	if engineErr, ok := AsEngineError(err); ok {
		h.logger.Debug(action, engineErr.Message, requestID, map[string]interface{}{
			"code": string(engineErr.Code),
			"path": r.URL.Path,
		})
		h.writeErrorResponse(w, engineErr.HTTPStatus(), engineErr.Message, string(engineErr.Code), requestID)
		return
	}

	h.logger.Error(action, "Internal error", requestID, err, map[string]interface{}{
		"path": r.URL.Path,
	})
	h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", "", requestID)
}

// writeErrorResponse writes an error envelope in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, code, requestID string) {
	body := map[string]interface{}{
		"success":    false,
		"error":      message,
		"request_id": requestID,
	}
	if code != "" {
		body["code"] = code
	}
	h.writeJSON(w, statusCode, body, requestID)
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, body interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

func requestIDFrom(r *http.Request) string {
	return middleware.RequestIDFrom(r)
}

// actorIDFrom reads the staff actor from the X-Actor-ID header. Identity is
// issued by the external auth layer; here it only feeds the audit trail.
func actorIDFrom(r *http.Request) *string {
	if actor := r.Header.Get("X-Actor-ID"); actor != "" {
		return &actor
	}
	return nil
}
