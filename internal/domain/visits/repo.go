package visits

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows a listing. Zero values mean "no constraint"; all set fields
// are combined conjunctively. Search matches case-insensitively against the
// employee name, id and email captured on the request.
type Filter struct {
	Status    Status
	VisitType VisitType
	Search    string
}

type Repository interface {
	Create(ctx context.Context, r *VisitRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*VisitRequest, error)
	// GetOpenByEmployee returns the employee's in-flight request, or
	// ErrNotFound when the employee has none.
	GetOpenByEmployee(ctx context.Context, employeeID string) (*VisitRequest, error)
	// Update persists r guarded by its Version: the write only succeeds when
	// the stored version still matches, and increments it. Returns
	// ErrConflict when another writer got there first.
	Update(ctx context.Context, r *VisitRequest) error
	// List returns matching requests ordered by creation time, newest first.
	// limit <= 0 means no limit.
	List(ctx context.Context, f Filter, limit, offset int) ([]*VisitRequest, int, error)
	CountByStatus(ctx context.Context) (StatusCounts, error)
	// DeleteByEmployee removes every request of the employee, history
	// included, and returns how many were deleted.
	DeleteByEmployee(ctx context.Context, employeeID string) (int64, error)
}
