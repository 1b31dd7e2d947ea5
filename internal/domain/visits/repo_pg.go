package visits

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

const visitCols = `id, employee_id, employee_name, employee_email, visit_type, motif,
	desired_date, desired_time, modality, status, permanently_rejected,
	active_proposal, proposal_history, confirmation, rejection, reprise_details,
	version, created_at, updated_at`

func scanRequest(row pgx.Row) (*VisitRequest, error) {
	var r VisitRequest
	err := row.Scan(&r.ID, &r.EmployeeID, &r.EmployeeName, &r.EmployeeEmail, &r.VisitType, &r.Motif,
		&r.DesiredDate, &r.DesiredTime, &r.Modality, &r.Status, &r.PermanentlyRejected,
		&r.ActiveProposal, &r.ProposalHistory, &r.Confirmation, &r.Rejection, &r.RepriseDetails,
		&r.Version, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.ProposalHistory == nil {
		r.ProposalHistory = []SlotProposal{}
	}
	return &r, nil
}

func (p *repoPG) Create(ctx context.Context, r *VisitRequest) error {
	r.ID = uuid.New()
	r.Version = 1
	row := p.pool.QueryRow(ctx, `
		INSERT INTO visit_request (id, employee_id, employee_name, employee_email, visit_type, motif,
			desired_date, desired_time, modality, status, permanently_rejected,
			active_proposal, proposal_history, confirmation, rejection, reprise_details, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING created_at, updated_at`,
		r.ID, r.EmployeeID, r.EmployeeName, r.EmployeeEmail, r.VisitType, r.Motif,
		r.DesiredDate, r.DesiredTime, r.Modality, r.Status, r.PermanentlyRejected,
		r.ActiveProposal, r.ProposalHistory, r.Confirmation, r.Rejection, r.RepriseDetails, r.Version)
	return row.Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (p *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*VisitRequest, error) {
	return scanRequest(p.pool.QueryRow(ctx, `SELECT `+visitCols+` FROM visit_request WHERE id = $1`, id))
}

// GetOpenByEmployee returns the employee's request that is still in flight:
// not confirmed and not permanently rejected. At most one exists.
func (p *repoPG) GetOpenByEmployee(ctx context.Context, employeeID string) (*VisitRequest, error) {
	return scanRequest(p.pool.QueryRow(ctx, `
		SELECT `+visitCols+` FROM visit_request
		WHERE employee_id = $1 AND status <> 'CONFIRMED' AND NOT permanently_rejected
		ORDER BY created_at DESC LIMIT 1`, employeeID))
}

// Update writes the request back guarded by its version. Zero rows touched
// means either the row is gone (ErrNotFound) or someone else won the race
// (ErrConflict).
func (p *repoPG) Update(ctx context.Context, r *VisitRequest) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE visit_request SET
			status=$3, permanently_rejected=$4, active_proposal=$5, proposal_history=$6,
			confirmation=$7, rejection=$8, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2`,
		r.ID, r.Version, r.Status, r.PermanentlyRejected, r.ActiveProposal, r.ProposalHistory,
		r.Confirmation, r.Rejection)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := p.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM visit_request WHERE id = $1)`, r.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	r.Version++
	return nil
}

func (p *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*VisitRequest, int, error) {
	query := `SELECT ` + visitCols + ` FROM visit_request WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM visit_request WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.Status != "" {
		cond := fmt.Sprintf(` AND status = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, f.Status)
		idx++
	}
	if f.VisitType != "" {
		cond := fmt.Sprintf(` AND visit_type = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, f.VisitType)
		idx++
	}
	if f.Search != "" {
		cond := fmt.Sprintf(` AND (employee_name ILIKE $%d OR employee_id ILIKE $%d OR employee_email ILIKE $%d)`, idx, idx, idx)
		query += cond
		countQuery += cond
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := p.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, idx, idx+1)
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, idx)
		args = append(args, offset)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []*VisitRequest{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, r)
	}
	return items, total, rows.Err()
}

func (p *repoPG) CountByStatus(ctx context.Context) (StatusCounts, error) {
	var c StatusCounts
	rows, err := p.pool.Query(ctx, `SELECT status, COUNT(*) FROM visit_request GROUP BY status`)
	if err != nil {
		return c, err
	}
	defer rows.Close()
	for rows.Next() {
		var status Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return c, err
		}
		switch status {
		case StatusPending:
			c.Pending = n
		case StatusProposed:
			c.Proposed = n
		case StatusConfirmed:
			c.Confirmed = n
		case StatusRejected:
			c.Rejected = n
		}
		c.Total += n
	}
	return c, rows.Err()
}

func (p *repoPG) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM visit_request WHERE employee_id = $1`, employeeID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
