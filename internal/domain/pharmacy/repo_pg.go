package pharmacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const itemCols = `id, code, name, form, dosage, quantity, reorder_level, expiry_date, created_at, updated_at`

func scanItem(row pgx.Row) (*StockItem, error) {
	var s StockItem
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Form, &s.Dosage, &s.Quantity,
		&s.ReorderLevel, &s.ExpiryDate, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) CreateItem(ctx context.Context, item *StockItem) error {
	item.ID = uuid.New()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO stock_item (id, code, name, form, dosage, quantity, reorder_level, expiry_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		item.ID, item.Code, item.Name, item.Form, item.Dosage, item.Quantity,
		item.ReorderLevel, item.ExpiryDate)
	return row.Scan(&item.CreatedAt, &item.UpdatedAt)
}

func (r *repoPG) GetItem(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	return scanItem(r.pool.QueryRow(ctx, `SELECT `+itemCols+` FROM stock_item WHERE id = $1`, id))
}

func (r *repoPG) UpdateItem(ctx context.Context, item *StockItem) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE stock_item SET code=$2, name=$3, form=$4, dosage=$5,
			reorder_level=$6, expiry_date=$7, updated_at=NOW()
		WHERE id = $1`,
		item.ID, item.Code, item.Name, item.Form, item.Dosage,
		item.ReorderLevel, item.ExpiryDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stock_item WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) SearchItems(ctx context.Context, params map[string]string, limit, offset int) ([]*StockItem, int, error) {
	query := `SELECT ` + itemCols + ` FROM stock_item WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM stock_item WHERE 1=1`
	var args []interface{}
	idx := 1

	if q, ok := params["q"]; ok && q != "" {
		cond := fmt.Sprintf(` AND (name ILIKE $%d OR code ILIKE $%d)`, idx, idx)
		query += cond
		countQuery += cond
		args = append(args, "%"+q+"%")
		idx++
	}
	if params["belowReorder"] == "true" {
		cond := ` AND quantity <= reorder_level`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*StockItem
	for rows.Next() {
		s, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// Adjust applies the delta and records the movement in one transaction. The
// quantity guard lives in the UPDATE itself so concurrent adjustments cannot
// drive the stock negative.
func (r *repoPG) Adjust(ctx context.Context, m *StockMovement) (*StockItem, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	item, err := scanItem(tx.QueryRow(ctx, `
		UPDATE stock_item SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING `+itemCols, m.ItemID, m.Delta))
	if errors.Is(err, ErrNotFound) {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM stock_item WHERE id = $1)`, m.ItemID).Scan(&exists); err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrInsufficientStock
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	m.ID = uuid.New()
	row := tx.QueryRow(ctx, `
		INSERT INTO stock_movement (id, item_id, delta, reason, moved_by)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		m.ID, m.ItemID, m.Delta, m.Reason, m.MovedBy)
	if err := row.Scan(&m.CreatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repoPG) ListMovements(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*StockMovement, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movement WHERE item_id = $1`, itemID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, item_id, delta, reason, moved_by, created_at FROM stock_movement
		WHERE item_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, itemID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*StockMovement
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Delta, &m.Reason, &m.MovedBy, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &m)
	}
	return items, total, rows.Err()
}
