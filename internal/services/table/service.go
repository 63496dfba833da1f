package table

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

const uniqueViolationCode = "23505"

// Service is the table registry. Occupancy transitions are driven by the
// order engine; the registry owns provisioning, lookup and the explicit
// reset back to VACANT after cleaning.
type Service struct {
	db     *database.DB
	logger *logger.Logger
}

// NewService creates the registry
func NewService(db *database.DB, log *logger.Logger) *Service {
	return &Service{
		db:     db,
		logger: log,
	}
}

// ListTables returns all non-deleted tables ordered by code
func (s *Service) ListTables(ctx context.Context) ([]models.Table, error) {
	rows, err := s.db.Query(ctx, database.GetAllTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	tables := []models.Table{}
	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.ID, &t.TableCode, &t.Capacity, &t.Status, &t.DeletedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// FindByCode resolves a guest-entered code to its table. "4", "04" and "T-04"
// all match the same row, case-insensitively.
func (s *Service) FindByCode(ctx context.Context, code string) (*models.Table, error) {
	candidates := models.TableCodeCandidates(code)
	if len(candidates) == 0 {
		return nil, newError(CodeInvalidInput, "table code is required")
	}

	rows, err := s.db.Query(ctx, database.GetTablesByCodesSQL, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to look up table code: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, newError(CodeTableNotFound, "table %q not found", code)
	}

	var t models.Table
	if err := rows.Scan(&t.ID, &t.TableCode, &t.Capacity, &t.Status, &t.DeletedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTable provisions a new table with a canonical code, starting VACANT.
// Duplicate codes are rejected by the unique constraint.
func (s *Service) CreateTable(ctx context.Context, req *models.CreateTableRequest, requestID string) (*models.Table, error) {
	if strings.TrimSpace(req.TableCode) == "" {
		return nil, newError(CodeInvalidInput, "table_code is required")
	}
	if req.Capacity < 1 {
		return nil, newError(CodeInvalidInput, "capacity must be at least 1")
	}

	t := &models.Table{
		ID:        uuid.NewString(),
		TableCode: models.NormalizeTableCode(req.TableCode),
		Capacity:  req.Capacity,
		Status:    models.TableVacant,
	}

	err := s.db.Exec(ctx, database.InsertTableSQL, t.ID, t.TableCode, t.Capacity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, newError(CodeTableCodeExists, "table %s already exists", t.TableCode)
		}
		return nil, fmt.Errorf("failed to insert table: %w", err)
	}

	s.logger.Info("table_created", fmt.Sprintf("Table %s provisioned", t.TableCode), requestID, map[string]interface{}{
		"table_id":   t.ID,
		"table_code": t.TableCode,
		"capacity":   t.Capacity,
	})

	return t, nil
}

// ResetTable puts a cleaned table back to VACANT. Tables with open orders
// cannot be reset; close or settle them first.
func (s *Service) ResetTable(ctx context.Context, tableID string, requestID string) (*models.Table, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var t models.Table
	err = tx.QueryRow(ctx, database.GetTableForUpdateSQL, tableID).Scan(
		&t.ID, &t.TableCode, &t.Capacity, &t.Status, &t.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newError(CodeTableNotFound, "table not found")
		}
		return nil, fmt.Errorf("failed to load table: %w", err)
	}
	if t.DeletedAt != nil {
		return nil, newError(CodeTableDeleted, "table is no longer available")
	}

	var activeCount int
	err = tx.QueryRow(ctx, database.CountActiveOrdersForTableSQL, tableID).Scan(&activeCount)
	if err != nil {
		return nil, fmt.Errorf("failed to check open orders: %w", err)
	}
	if activeCount > 0 {
		return nil, newError(CodeTableOccupied, "table %s still has %d open order(s)", t.TableCode, activeCount)
	}

	_, err = tx.Exec(ctx, database.UpdateTableStatusSQL, string(models.TableVacant), tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to reset table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	previous := t.Status
	t.Status = models.TableVacant

	s.logger.Info("table_reset", fmt.Sprintf("Table %s reset to VACANT", t.TableCode), requestID, map[string]interface{}{
		"table_id":        t.ID,
		"table_code":      t.TableCode,
		"previous_status": string(previous),
	})

	return &t, nil
}
