package menu

import (
	"context"
	"fmt"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Service is the read side of the menu catalog. Writes happen through an
// external back office; the engine only ever reads from here.
type Service struct {
	db     *database.DB
	logger *logger.Logger
}

// NewService creates the catalog
func NewService(db *database.DB, log *logger.Logger) *Service {
	return &Service{
		db:     db,
		logger: log,
	}
}

// ListAvailable returns orderable items, excluding soft-deleted and
// unavailable rows.
func (s *Service) ListAvailable(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.db.Query(ctx, database.GetAvailableMenuItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.IsAvailable); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
