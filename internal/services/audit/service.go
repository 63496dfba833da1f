package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Service reads the append-only audit trail. Entries are written by the order
// engine inside its mutation transactions; this side only queries them.
type Service struct {
	db     *database.DB
	logger *logger.Logger
}

// NewService creates the audit reader
func NewService(db *database.DB, log *logger.Logger) *Service {
	return &Service{
		db:     db,
		logger: log,
	}
}

// OrderHistory returns the full audit trail of one order, oldest first.
// Unknown order ids are distinguished from orders that merely have no
// trail yet.
func (s *Service) OrderHistory(ctx context.Context, orderID string) ([]models.AuditLogEntry, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, database.OrderExistsSQL, orderID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check order: %w", err)
	}
	if !exists {
		return nil, ErrOrderNotFound
	}

	rows, err := s.db.Query(ctx, database.GetAuditLogForOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit trail: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditLogEntry{}
	for rows.Next() {
		var entry models.AuditLogEntry
		var metadata []byte
		if err := rows.Scan(&entry.Action, &entry.OrderID, &entry.ActorID, &metadata, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode audit metadata: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
