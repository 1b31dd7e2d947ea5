package employees

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(e *Employee) error {
	if e.EmployeeNumber == "" {
		return fmt.Errorf("employeeNumber is required")
	}
	if e.FirstName == "" || e.LastName == "" {
		return fmt.Errorf("firstName and lastName are required")
	}
	if e.Email != nil && *e.Email != "" {
		if _, err := mail.ParseAddress(*e.Email); err != nil {
			return fmt.Errorf("invalid email: %s", *e.Email)
		}
	}
	if e.HireDate != nil && *e.HireDate != "" {
		if _, err := time.Parse("2006-01-02", *e.HireDate); err != nil {
			return fmt.Errorf("hireDate must be YYYY-MM-DD")
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, e *Employee) error {
	if err := s.validate(e); err != nil {
		return err
	}
	e.Active = true
	return s.repo.Create(ctx, e)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*Employee, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) Update(ctx context.Context, e *Employee) error {
	if err := s.validate(e); err != nil {
		return err
	}
	return s.repo.Update(ctx, e)
}

// Deactivate marks the employee inactive without touching their records.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Employee, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Active = false
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Employee, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}
