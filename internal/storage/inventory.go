package storage

import (
	"context"

	"github.com/google/uuid"

	"fsm-backend/internal/models"
)

func (s *Storage) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	item.ID = uuid.NewString()

	query := `
		INSERT INTO inventory_items (id, sku, name, quantity, unit_cost, location, organization)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	return s.db.QueryRowContext(ctx, query,
		item.ID,
		item.SKU,
		item.Name,
		item.Quantity,
		item.UnitCost,
		item.Location,
		item.Organization,
	).Scan(&item.CreatedAt)
}

func (s *Storage) ListInventoryItems(ctx context.Context, organization string, limit int) ([]models.InventoryItem, error) {
	query := `
		SELECT id, sku, name, quantity, unit_cost, location, organization, created_at
		FROM inventory_items
		WHERE ($1 <> '' AND organization = $1) OR ($1 = '' AND organization IS NULL)
		ORDER BY created_at DESC
		LIMIT $2
	`

	items := make([]models.InventoryItem, 0)
	if err := s.db.SelectContext(ctx, &items, query, organization, limit); err != nil {
		return nil, err
	}
	return items, nil
}
