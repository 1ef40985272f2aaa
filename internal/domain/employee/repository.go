package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)

	// GetCurrentSalary returns the salary record effective today.
	// Returns ErrNoCurrentSalary when none exists.
	GetCurrentSalary(ctx context.Context, employeeID string) (Salary, error)
}
