package pharmacy

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("stock item not found")

// ErrInsufficientStock is returned when an adjustment would take the
// quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

type Repository interface {
	CreateItem(ctx context.Context, item *StockItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*StockItem, error)
	UpdateItem(ctx context.Context, item *StockItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	SearchItems(ctx context.Context, params map[string]string, limit, offset int) ([]*StockItem, int, error)

	// Adjust atomically applies delta to the item quantity and records the
	// movement. Fails with ErrInsufficientStock if the result would be
	// negative.
	Adjust(ctx context.Context, m *StockMovement) (*StockItem, error)
	ListMovements(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*StockMovement, int, error)
}
