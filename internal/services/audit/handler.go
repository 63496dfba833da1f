package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/middleware"
	"restaurant-pos/internal/models"
)

// ErrOrderNotFound is returned when a history lookup names an unknown order
var ErrOrderNotFound = errors.New("order not found")

// Trail is the audit surface the HTTP layer depends on
type Trail interface {
	OrderHistory(ctx context.Context, orderID string) ([]models.AuditLogEntry, error)
}

// Handler handles HTTP requests for the audit trail
type Handler struct {
	trail  Trail
	logger *logger.Logger
}

// NewHandler creates a new audit handler
func NewHandler(trail Trail, log *logger.Logger) *Handler {
	return &Handler{
		trail:  trail,
		logger: log,
	}
}

// Register mounts the audit routes on the given mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /orders/{id}/history", h.OrderHistory)
}

// OrderHistory handles GET /orders/{id}/history
func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFrom(r)

	entries, err := h.trail.OrderHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"success":    false,
				"error":      "order not found",
				"code":       "ORDER_NOT_FOUND",
				"request_id": requestID,
			}, requestID)
			return
		}
		h.logger.Error("order_history_failed", "Failed to load audit trail", requestID, err, nil)
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success":    false,
			"error":      "Internal server error",
			"request_id": requestID,
		}, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"history": entries,
	}, requestID)
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, body interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}
