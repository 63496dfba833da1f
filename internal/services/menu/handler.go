package menu

import (
	"context"
	"encoding/json"
	"net/http"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/middleware"
	"restaurant-pos/internal/models"
)

// Catalog is the menu surface the HTTP layer depends on
type Catalog interface {
	ListAvailable(ctx context.Context) ([]models.MenuItem, error)
}

// Handler handles HTTP requests for the menu catalog
type Handler struct {
	catalog Catalog
	logger  *logger.Logger
}

// NewHandler creates a new menu handler
func NewHandler(catalog Catalog, log *logger.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		logger:  log,
	}
}

// Register mounts the menu routes on the given mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /menu", h.ListMenu)
}

// ListMenu handles GET /menu
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFrom(r)

	items, err := h.catalog.ListAvailable(r.Context())
	if err != nil {
		h.logger.Error("menu_list_failed", "Failed to load menu", requestID, err, nil)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    false,
			"error":      "Internal server error",
			"request_id": requestID,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"menu":    items,
	}); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}
