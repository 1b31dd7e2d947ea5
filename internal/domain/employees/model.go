package employees

import (
	"time"

	"github.com/google/uuid"
)

// Employee maps to the employee table. EmployeeNumber is the badge number
// used across the portal, including as the employeeId on visit requests.
type Employee struct {
	ID             uuid.UUID `db:"id" json:"id"`
	EmployeeNumber string    `db:"employee_number" json:"employeeNumber"`
	FirstName      string    `db:"first_name" json:"firstName"`
	LastName       string    `db:"last_name" json:"lastName"`
	Email          *string   `db:"email" json:"email,omitempty"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Department     *string   `db:"department" json:"department,omitempty"`
	Position       *string   `db:"position" json:"position,omitempty"`
	HireDate       *string   `db:"hire_date" json:"hireDate,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
