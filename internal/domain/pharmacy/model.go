package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// StockItem is one medication or supply reference tracked by the
// occupational-health cabinet.
type StockItem struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	Form         *string   `db:"form" json:"form,omitempty"`
	Dosage       *string   `db:"dosage" json:"dosage,omitempty"`
	Quantity     int       `db:"quantity" json:"quantity"`
	ReorderLevel int       `db:"reorder_level" json:"reorderLevel"`
	ExpiryDate   *string   `db:"expiry_date" json:"expiryDate,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// BelowReorder reports whether the item needs restocking.
func (s *StockItem) BelowReorder() bool {
	return s.Quantity <= s.ReorderLevel
}

// StockMovement is one signed quantity change, kept as an audit trail of the
// cabinet. Delta is positive for restocks, negative for dispensing.
type StockMovement struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ItemID    uuid.UUID `db:"item_id" json:"itemId"`
	Delta     int       `db:"delta" json:"delta"`
	Reason    string    `db:"reason" json:"reason"`
	MovedBy   string    `db:"moved_by" json:"movedBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
