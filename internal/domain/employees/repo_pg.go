package employees

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const employeeCols = `id, employee_number, first_name, last_name, email, phone,
	department, position, hire_date, active, created_at, updated_at`

func scanEmployee(row pgx.Row) (*Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.EmployeeNumber, &e.FirstName, &e.LastName, &e.Email, &e.Phone,
		&e.Department, &e.Position, &e.HireDate, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repoPG) Create(ctx context.Context, e *Employee) error {
	e.ID = uuid.New()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO employee (id, employee_number, first_name, last_name, email, phone,
			department, position, hire_date, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		e.ID, e.EmployeeNumber, e.FirstName, e.LastName, e.Email, e.Phone,
		e.Department, e.Position, e.HireDate, e.Active)
	if err := row.Scan(&e.CreatedAt, &e.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateNumber
		}
		return err
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	return scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeCols+` FROM employee WHERE id = $1`, id))
}

func (r *repoPG) GetByNumber(ctx context.Context, number string) (*Employee, error) {
	return scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeCols+` FROM employee WHERE employee_number = $1`, number))
}

func (r *repoPG) Update(ctx context.Context, e *Employee) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE employee SET first_name=$2, last_name=$3, email=$4, phone=$5,
			department=$6, position=$7, hire_date=$8, active=$9, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.FirstName, e.LastName, e.Email, e.Phone,
		e.Department, e.Position, e.HireDate, e.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employee WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Employee, int, error) {
	query := `SELECT ` + employeeCols + ` FROM employee WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM employee WHERE 1=1`
	var args []interface{}
	idx := 1

	if q, ok := params["q"]; ok && q != "" {
		cond := fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR employee_number ILIKE $%d OR email ILIKE $%d)`, idx, idx, idx, idx)
		query += cond
		countQuery += cond
		args = append(args, "%"+q+"%")
		idx++
	}
	if d, ok := params["department"]; ok && d != "" {
		cond := fmt.Sprintf(` AND department = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, d)
		idx++
	}
	if a, ok := params["active"]; ok && a != "" {
		cond := fmt.Sprintf(` AND active = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, a == "true")
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
