package postgresql

import (
	"context"
	"fmt"

	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/gajiflow/payroll-backend-go/internal/domain/statutory"
	"github.com/gajiflow/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type paySlipRepositoryImpl struct {
	db *database.DB
}

func NewPaySlipRepository(db *database.DB) payroll.PaySlipRepository {
	return &paySlipRepositoryImpl{db: db}
}

const paySlipColumns = `
	id, run_id, period_year, period_month,
	employee_id, employee_name, employee_code,
	bank_name, bank_account_holder_name, bank_account_number,
	base_salary, total_earnings, total_deductions, gross_salary,
	epf_employee, epf_employer, socso_employee, socso_employer,
	eis_employee, eis_employer, pcb, net_salary,
	ytd_gross_earnings, ytd_taxable_income,
	ytd_epf_employee, ytd_epf_employer,
	ytd_socso_employee, ytd_socso_employer,
	ytd_eis_employee, ytd_eis_employer, ytd_pcb,
	created_at, updated_at
`

func scanPaySlip(row pgx.Row) (payroll.PaySlip, error) {
	var s payroll.PaySlip
	err := row.Scan(
		&s.ID, &s.RunID, &s.Period.Year, &s.Period.Month,
		&s.EmployeeID, &s.EmployeeName, &s.EmployeeCode,
		&s.BankName, &s.BankAccountHolderName, &s.BankAccountNumber,
		&s.BaseSalary, &s.TotalEarnings, &s.TotalDeductions, &s.GrossSalary,
		&s.EPFEmployee, &s.EPFEmployer, &s.SocsoEmployee, &s.SocsoEmployer,
		&s.EISEmployee, &s.EISEmployer, &s.PCB, &s.NetSalary,
		&s.Ytd.GrossEarnings, &s.Ytd.TaxableIncome,
		&s.Ytd.EPFEmployee, &s.Ytd.EPFEmployer,
		&s.Ytd.SocsoEmployee, &s.Ytd.SocsoEmployer,
		&s.Ytd.EISEmployee, &s.Ytd.EISEmployer, &s.Ytd.PCB,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// Create implements payroll.PaySlipRepository.
func (r *paySlipRepositoryImpl) Create(ctx context.Context, slip payroll.PaySlip) (payroll.PaySlip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payslips (
			run_id, period_year, period_month,
			employee_id, employee_name, employee_code,
			bank_name, bank_account_holder_name, bank_account_number,
			base_salary, total_earnings, total_deductions, gross_salary,
			epf_employee, epf_employer, socso_employee, socso_employer,
			eis_employee, eis_employer, pcb, net_salary,
			ytd_gross_earnings, ytd_taxable_income,
			ytd_epf_employee, ytd_epf_employer,
			ytd_socso_employee, ytd_socso_employer,
			ytd_eis_employee, ytd_eis_employer, ytd_pcb
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30
		)
		RETURNING ` + paySlipColumns + `
	`

	created, err := scanPaySlip(q.QueryRow(ctx, query,
		slip.RunID, slip.Period.Year, slip.Period.Month,
		slip.EmployeeID, slip.EmployeeName, slip.EmployeeCode,
		slip.BankName, slip.BankAccountHolderName, slip.BankAccountNumber,
		slip.BaseSalary, slip.TotalEarnings, slip.TotalDeductions, slip.GrossSalary,
		slip.EPFEmployee, slip.EPFEmployer, slip.SocsoEmployee, slip.SocsoEmployer,
		slip.EISEmployee, slip.EISEmployer, slip.PCB, slip.NetSalary,
		slip.Ytd.GrossEarnings, slip.Ytd.TaxableIncome,
		slip.Ytd.EPFEmployee, slip.Ytd.EPFEmployer,
		slip.Ytd.SocsoEmployee, slip.Ytd.SocsoEmployer,
		slip.Ytd.EISEmployee, slip.Ytd.EISEmployer, slip.Ytd.PCB,
	))
	if err != nil {
		return payroll.PaySlip{}, fmt.Errorf("failed to create payslip: %w", err)
	}

	return created, nil
}

// GetByID implements payroll.PaySlipRepository.
func (r *paySlipRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.PaySlip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + paySlipColumns + `
		FROM payslips
		WHERE id = $1
	`

	slip, err := scanPaySlip(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PaySlip{}, payroll.ErrPaySlipNotFound
		}
		return payroll.PaySlip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return slip, nil
}

// ListByRun implements payroll.PaySlipRepository.
func (r *paySlipRepositoryImpl) ListByRun(ctx context.Context, runID string) ([]payroll.PaySlip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + paySlipColumns + `
		FROM payslips
		WHERE run_id = $1
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var slips []payroll.PaySlip
	for rows.Next() {
		slip, err := scanPaySlip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		slips = append(slips, slip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payslips: %w", err)
	}

	return slips, nil
}

// DeleteByRun implements payroll.PaySlipRepository. Items cascade on the
// payslip foreign key.
func (r *paySlipRepositoryImpl) DeleteByRun(ctx context.Context, runID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payslips WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("failed to delete payslips of run: %w", err)
	}

	return nil
}

// UpdateCalculations implements payroll.PaySlipRepository.
func (r *paySlipRepositoryImpl) UpdateCalculations(ctx context.Context, slip payroll.PaySlip) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET base_salary = $1, total_earnings = $2, total_deductions = $3, gross_salary = $4,
			epf_employee = $5, epf_employer = $6, socso_employee = $7, socso_employer = $8,
			eis_employee = $9, eis_employer = $10, pcb = $11, net_salary = $12,
			ytd_gross_earnings = $13, ytd_taxable_income = $14,
			ytd_epf_employee = $15, ytd_epf_employer = $16,
			ytd_socso_employee = $17, ytd_socso_employer = $18,
			ytd_eis_employee = $19, ytd_eis_employer = $20, ytd_pcb = $21,
			updated_at = NOW()
		WHERE id = $22
	`

	tag, err := q.Exec(ctx, query,
		slip.BaseSalary, slip.TotalEarnings, slip.TotalDeductions, slip.GrossSalary,
		slip.EPFEmployee, slip.EPFEmployer, slip.SocsoEmployee, slip.SocsoEmployer,
		slip.EISEmployee, slip.EISEmployer, slip.PCB, slip.NetSalary,
		slip.Ytd.GrossEarnings, slip.Ytd.TaxableIncome,
		slip.Ytd.EPFEmployee, slip.Ytd.EPFEmployer,
		slip.Ytd.SocsoEmployee, slip.Ytd.SocsoEmployer,
		slip.Ytd.EISEmployee, slip.Ytd.EISEmployer, slip.Ytd.PCB,
		slip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payslip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPaySlipNotFound
	}

	return nil
}

// BulkCreateItems implements payroll.PaySlipRepository.
func (r *paySlipRepositoryImpl) BulkCreateItems(ctx context.Context, items []payroll.PaySlipItem) error {
	if len(items) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payslip_items (
			payslip_id, component_code, name, type, method, amount, sort_order,
			epf_applicable, socso_applicable, eis_applicable, pcb_applicable
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, item := range items {
		_, err := q.Exec(ctx, query,
			item.PaySlipID, item.ComponentCode, item.Name, item.Type, item.Method,
			item.Amount, item.SortOrder,
			item.EPFApplicable, item.SocsoApplicable, item.EISApplicable, item.PCBApplicable,
		)
		if err != nil {
			return fmt.Errorf("failed to create payslip item %s: %w", item.ComponentCode, err)
		}
	}

	return nil
}

// ListItems implements payroll.PaySlipRepository.
func (r *paySlipRepositoryImpl) ListItems(ctx context.Context, paySlipID string) ([]payroll.PaySlipItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payslip_id, component_code, name, type, method, amount, sort_order,
			epf_applicable, socso_applicable, eis_applicable, pcb_applicable
		FROM payslip_items
		WHERE payslip_id = $1
		ORDER BY sort_order
	`

	rows, err := q.Query(ctx, query, paySlipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip items: %w", err)
	}
	defer rows.Close()

	var items []payroll.PaySlipItem
	for rows.Next() {
		var item payroll.PaySlipItem
		err := rows.Scan(
			&item.ID, &item.PaySlipID, &item.ComponentCode, &item.Name, &item.Type, &item.Method,
			&item.Amount, &item.SortOrder,
			&item.EPFApplicable, &item.SocsoApplicable, &item.EISApplicable, &item.PCBApplicable,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payslip items: %w", err)
	}

	return items, nil
}

// DeleteItems implements payroll.PaySlipRepository.
func (r *paySlipRepositoryImpl) DeleteItems(ctx context.Context, paySlipID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payslip_items WHERE payslip_id = $1`, paySlipID); err != nil {
		return fmt.Errorf("failed to delete payslip items: %w", err)
	}

	return nil
}

// GetYtdTotals implements payroll.PaySlipRepository. Every slip stores its
// own running totals, so the year-to-date base is the snapshot of the latest
// slip strictly before the month. Cancelled runs are skipped and the current
// month is excluded, so recalculation never feeds a slip back into its own
// base.
func (r *paySlipRepositoryImpl) GetYtdTotals(ctx context.Context, employeeID string, year, month int) (statutory.YtdTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.ytd_gross_earnings, p.ytd_taxable_income,
			p.ytd_epf_employee, p.ytd_epf_employer,
			p.ytd_socso_employee, p.ytd_socso_employer,
			p.ytd_eis_employee, p.ytd_eis_employer, p.ytd_pcb
		FROM payslips p
		JOIN payroll_runs r ON r.id = p.run_id
		WHERE p.employee_id = $1
		  AND p.period_year = $2
		  AND p.period_month < $3
		  AND r.status != $4
		ORDER BY p.period_month DESC
		LIMIT 1
	`

	var totals statutory.YtdTotals
	err := q.QueryRow(ctx, query, employeeID, year, month, payroll.RunStatusCancelled).Scan(
		&totals.GrossEarnings, &totals.TaxableIncome,
		&totals.EPFEmployee, &totals.EPFEmployer,
		&totals.SocsoEmployee, &totals.SocsoEmployer,
		&totals.EISEmployee, &totals.EISEmployer,
		&totals.PCB,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return statutory.YtdTotals{}, nil
		}
		return statutory.YtdTotals{}, fmt.Errorf("failed to get year-to-date totals: %w", err)
	}

	return totals, nil
}
