package table

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

type fakeRegistry struct {
	tables map[string]*models.Table
	nextID int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		tables: map[string]*models.Table{
			"table-1": {ID: "table-1", TableCode: "T-04", Capacity: 4, Status: models.TableDirty},
			"table-2": {ID: "table-2", TableCode: "T-05", Capacity: 2, Status: models.TableActive},
		},
	}
}

func (f *fakeRegistry) ListTables(_ context.Context) ([]models.Table, error) {
	result := []models.Table{}
	for _, t := range f.tables {
		result = append(result, *t)
	}
	return result, nil
}

func (f *fakeRegistry) FindByCode(_ context.Context, code string) (*models.Table, error) {
	candidates := models.TableCodeCandidates(code)
	if len(candidates) == 0 {
		return nil, newError(CodeInvalidInput, "table code is required")
	}
	in := make(map[string]bool)
	for _, c := range candidates {
		in[c] = true
	}
	for _, t := range f.tables {
		if in[strings.ToLower(t.TableCode)] {
			return t, nil
		}
	}
	return nil, newError(CodeTableNotFound, "table %q not found", code)
}

func (f *fakeRegistry) CreateTable(_ context.Context, req *models.CreateTableRequest, _ string) (*models.Table, error) {
	if req.TableCode == "" {
		return nil, newError(CodeInvalidInput, "table_code is required")
	}
	if req.Capacity < 1 {
		return nil, newError(CodeInvalidInput, "capacity must be at least 1")
	}
	code := models.NormalizeTableCode(req.TableCode)
	for _, t := range f.tables {
		if t.TableCode == code {
			return nil, newError(CodeTableCodeExists, "table %s already exists", code)
		}
	}
	f.nextID++
	t := &models.Table{
		ID:        fmt.Sprintf("new-%d", f.nextID),
		TableCode: code,
		Capacity:  req.Capacity,
		Status:    models.TableVacant,
	}
	f.tables[t.ID] = t
	return t, nil
}

func (f *fakeRegistry) ResetTable(_ context.Context, tableID string, _ string) (*models.Table, error) {
	t, ok := f.tables[tableID]
	if !ok {
		return nil, newError(CodeTableNotFound, "table not found")
	}
	if t.Status == models.TableActive {
		return nil, newError(CodeTableOccupied, "table %s still has 1 open order(s)", t.TableCode)
	}
	t.Status = models.TableVacant
	return t, nil
}

func setupHandler() (*http.ServeMux, *fakeRegistry) {
	registry := newFakeRegistry()
	handler := NewHandler(registry, logger.New("table-registry-test"))
	mux := http.NewServeMux()
	handler.Register(mux)
	return mux, registry
}

func doRequest(mux *http.ServeMux, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestListTablesHandler(t *testing.T) {
	mux, _ := setupHandler()

	rec := doRequest(mux, http.MethodGet, "/tables", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool           `json:"success"`
		Tables  []models.Table `json:"tables"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Tables, 2)
}

func TestListTablesHandler_CodeLookup(t *testing.T) {
	mux, _ := setupHandler()

	// "4", "04" and lowercase "t-04" all resolve the same stored T-04.
	for _, code := range []string{"4", "04", "T-04", "t-04"} {
		rec := doRequest(mux, http.MethodGet, "/tables?code="+code, nil)
		assert.Equal(t, http.StatusOK, rec.Code, "code %q", code)

		var envelope struct {
			Success bool         `json:"success"`
			Table   models.Table `json:"table"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, "T-04", envelope.Table.TableCode, "code %q", code)
	}
}

func TestListTablesHandler_CodeNotFound(t *testing.T) {
	mux, _ := setupHandler()

	rec := doRequest(mux, http.MethodGet, "/tables?code=99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var envelope struct {
		Code string `json:"code"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "TABLE_NOT_FOUND", envelope.Code)
}

func TestCreateTableHandler(t *testing.T) {
	mux, _ := setupHandler()

	rec := doRequest(mux, http.MethodPost, "/tables", models.CreateTableRequest{
		TableCode: "7",
		Capacity:  6,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Success bool         `json:"success"`
		Table   models.Table `json:"table"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "T-07", envelope.Table.TableCode)
	assert.Equal(t, models.TableVacant, envelope.Table.Status)
}

func TestCreateTableHandler_Duplicate(t *testing.T) {
	mux, _ := setupHandler()

	rec := doRequest(mux, http.MethodPost, "/tables", models.CreateTableRequest{
		TableCode: "T-04",
		Capacity:  4,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)

	var envelope struct {
		Code string `json:"code"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "TABLE_CODE_EXISTS", envelope.Code)
}

func TestCreateTableHandler_InvalidCapacity(t *testing.T) {
	mux, _ := setupHandler()

	rec := doRequest(mux, http.MethodPost, "/tables", models.CreateTableRequest{
		TableCode: "8",
		Capacity:  0,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetTableHandler(t *testing.T) {
	mux, registry := setupHandler()

	rec := doRequest(mux, http.MethodPost, "/tables/table-1/reset", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TableVacant, registry.tables["table-1"].Status)
}

func TestResetTableHandler_OpenOrders(t *testing.T) {
	mux, _ := setupHandler()

	rec := doRequest(mux, http.MethodPost, "/tables/table-2/reset", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var envelope struct {
		Code string `json:"code"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "TABLE_OCCUPIED", envelope.Code)
}

func TestResetTableHandler_NotFound(t *testing.T) {
	mux, _ := setupHandler()

	rec := doRequest(mux, http.MethodPost, "/tables/missing/reset", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
