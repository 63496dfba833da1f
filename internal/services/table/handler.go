package table

import (
	"context"
	"encoding/json"
	"net/http"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/middleware"
	"restaurant-pos/internal/models"
)

// Registry is the table surface the HTTP layer depends on
type Registry interface {
	ListTables(ctx context.Context) ([]models.Table, error)
	FindByCode(ctx context.Context, code string) (*models.Table, error)
	CreateTable(ctx context.Context, req *models.CreateTableRequest, requestID string) (*models.Table, error)
	ResetTable(ctx context.Context, tableID string, requestID string) (*models.Table, error)
}

// Handler handles HTTP requests for the table registry
type Handler struct {
	registry Registry
	logger   *logger.Logger
}

// NewHandler creates a new table handler
func NewHandler(registry Registry, log *logger.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   log,
	}
}

// Register mounts the table routes on the given mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /tables", h.ListTables)
	mux.HandleFunc("POST /tables", h.CreateTable)
	mux.HandleFunc("POST /tables/{id}/reset", h.ResetTable)
}

// ListTables handles GET /tables and the fuzzy lookup GET /tables?code=X
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFrom(r)

	if code := r.URL.Query().Get("code"); code != "" {
		t, err := h.registry.FindByCode(r.Context(), code)
		if err != nil {
			h.writeRegistryError(w, "table_lookup_failed", err, requestID)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"table":   t,
		}, requestID)
		return
	}

	tables, err := h.registry.ListTables(r.Context())
	if err != nil {
		h.writeRegistryError(w, "table_list_failed", err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"tables":  tables,
	}, requestID)
}

// CreateTable handles POST /tables
func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFrom(r)

	var req models.CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", string(CodeInvalidInput), requestID)
		return
	}

	created, err := h.registry.CreateTable(r.Context(), &req, requestID)
	if err != nil {
		h.writeRegistryError(w, "table_creation_failed", err, requestID)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"table":   created,
	}, requestID)
}

// ResetTable handles POST /tables/{id}/reset
func (h *Handler) ResetTable(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFrom(r)

	t, err := h.registry.ResetTable(r.Context(), r.PathValue("id"), requestID)
	if err != nil {
		h.writeRegistryError(w, "table_reset_failed", err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"table":   t,
	}, requestID)
}

func (h *Handler) writeRegistryError(w http.ResponseWriter, action string, err error, requestID string) {
	if registryErr, ok := AsRegistryError(err); ok {
		h.logger.Debug(action, registryErr.Message, requestID, map[string]interface{}{
			"code": string(registryErr.Code),
		})
		h.writeErrorResponse(w, registryErr.HTTPStatus(), registryErr.Message, string(registryErr.Code), requestID)
		return
	}

	h.logger.Error(action, "Internal error", requestID, err, nil)
	h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", "", requestID)
}

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
