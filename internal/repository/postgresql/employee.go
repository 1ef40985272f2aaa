package postgresql

import (
	"context"
	"fmt"

	"github.com/gajiflow/payroll-backend-go/internal/domain/employee"
	"github.com/gajiflow/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, company_id, employee_code, full_name, gender, dob, nationality,
	marital_status, spouse_employed, dependent_children,
	hire_date, resignation_date, employment_status,
	bank_name, bank_account_holder_name, bank_account_number,
	epf_employee_rate, epf_employer_rate,
	created_at, updated_at, deleted_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.EmployeeCode, &e.FullName, &e.Gender, &e.DOB, &e.Nationality,
		&e.MaritalStatus, &e.SpouseEmployed, &e.DependentChildren,
		&e.HireDate, &e.ResignationDate, &e.EmploymentStatus,
		&e.BankName, &e.BankAccountHolderName, &e.BankAccountNumber,
		&e.EPFEmployeeRate, &e.EPFEmployerRate,
		&e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	)
	return e, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
	`

	e, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}

// GetActiveByCompanyID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE company_id = $1 AND employment_status = $2 AND deleted_at IS NULL
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, companyID, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// GetCurrentSalary implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetCurrentSalary(ctx context.Context, employeeID string) (employee.Salary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, base_salary, effective_date, end_date, created_at, updated_at
		FROM employee_salaries
		WHERE employee_id = $1
		  AND effective_date <= NOW()
		  AND (end_date IS NULL OR end_date >= NOW())
		ORDER BY effective_date DESC
		LIMIT 1
	`

	var s employee.Salary
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&s.ID, &s.EmployeeID, &s.BaseSalary, &s.EffectiveDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Salary{}, employee.ErrNoCurrentSalary
		}
		return employee.Salary{}, fmt.Errorf("failed to get current salary: %w", err)
	}

	return s, nil
}
