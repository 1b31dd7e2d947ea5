package pharmacy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) validateItem(item *StockItem) error {
	if item.Code == "" {
		return fmt.Errorf("code is required")
	}
	if item.Name == "" {
		return fmt.Errorf("name is required")
	}
	if item.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if item.ReorderLevel < 0 {
		return fmt.Errorf("reorderLevel cannot be negative")
	}
	if item.ExpiryDate != nil && *item.ExpiryDate != "" {
		if _, err := time.Parse("2006-01-02", *item.ExpiryDate); err != nil {
			return fmt.Errorf("expiryDate must be YYYY-MM-DD")
		}
	}
	return nil
}

func (s *Service) CreateItem(ctx context.Context, item *StockItem) error {
	if err := s.validateItem(item); err != nil {
		return err
	}
	return s.repo.CreateItem(ctx, item)
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *Service) UpdateItem(ctx context.Context, item *StockItem) error {
	if err := s.validateItem(item); err != nil {
		return err
	}
	return s.repo.UpdateItem(ctx, item)
}

func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteItem(ctx, id)
}

func (s *Service) SearchItems(ctx context.Context, params map[string]string, limit, offset int) ([]*StockItem, int, error) {
	return s.repo.SearchItems(ctx, params, limit, offset)
}

// Adjust applies a signed stock change and records the movement. Dispensing
// below zero is refused by the store.
func (s *Service) Adjust(ctx context.Context, m *StockMovement) (*StockItem, error) {
	if m.Delta == 0 {
		return nil, fmt.Errorf("delta cannot be zero")
	}
	if m.MovedBy == "" {
		return nil, fmt.Errorf("movedBy is required")
	}
	item, err := s.repo.Adjust(ctx, m)
	if err != nil {
		return nil, err
	}
	if item.BelowReorder() {
		s.logger.Warn().
			Str("item_id", item.ID.String()).
			Str("code", item.Code).
			Int("quantity", item.Quantity).
			Int("reorder_level", item.ReorderLevel).
			Msg("stock at or below reorder level")
	}
	return item, nil
}

func (s *Service) ListMovements(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*StockMovement, int, error) {
	return s.repo.ListMovements(ctx, itemID, limit, offset)
}
