package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/gajiflow/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type runRepositoryImpl struct {
	db *database.DB
}

func NewRunRepository(db *database.DB) payroll.RunRepository {
	return &runRepositoryImpl{db: db}
}

const runColumns = `
	id, company_id, period_year, period_month, run_number, status,
	total_gross, total_deductions, total_net,
	total_epf_employee, total_epf_employer,
	total_socso_employee, total_socso_employer,
	total_eis_employee, total_eis_employer, total_pcb,
	journal_entry_id, payment_journal_entry_id,
	created_at, updated_at
`

func scanRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	err := row.Scan(
		&run.ID, &run.CompanyID, &run.Period.Year, &run.Period.Month, &run.RunNumber, &run.Status,
		&run.Totals.Gross, &run.Totals.Deductions, &run.Totals.Net,
		&run.Totals.EPFEmployee, &run.Totals.EPFEmployer,
		&run.Totals.SocsoEmployee, &run.Totals.SocsoEmployer,
		&run.Totals.EISEmployee, &run.Totals.EISEmployer, &run.Totals.PCB,
		&run.JournalEntryID, &run.PaymentJournalEntryID,
		&run.CreatedAt, &run.UpdatedAt,
	)
	return run, err
}

// Create implements payroll.RunRepository.
func (r *runRepositoryImpl) Create(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (company_id, period_year, period_month, run_number, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + runColumns + `
	`

	created, err := scanRun(q.QueryRow(ctx, query,
		run.CompanyID, run.Period.Year, run.Period.Month, run.RunNumber, run.Status,
	))
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_run_period") {
			return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return created, nil
}

// GetByID implements payroll.RunRepository.
func (r *runRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + runColumns + `
		FROM payroll_runs
		WHERE id = $1 AND company_id = $2
	`

	run, err := scanRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

// GetByPeriod implements payroll.RunRepository.
func (r *runRepositoryImpl) GetByPeriod(ctx context.Context, companyID string, period payroll.Period) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + runColumns + `
		FROM payroll_runs
		WHERE company_id = $1 AND period_year = $2 AND period_month = $3 AND status != $4
	`

	run, err := scanRun(q.QueryRow(ctx, query, companyID, period.Year, period.Month, payroll.RunStatusCancelled))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run by period: %w", err)
	}

	return run, nil
}

// List implements payroll.RunRepository.
func (r *runRepositoryImpl) List(ctx context.Context, companyID string, year int) ([]payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + runColumns + `
		FROM payroll_runs
		WHERE company_id = $1 AND period_year = $2
		ORDER BY period_month DESC, run_number DESC
	`

	rows, err := q.Query(ctx, query, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll runs: %w", err)
	}

	return runs, nil
}

// NextRunNumber implements payroll.RunRepository.
func (r *runRepositoryImpl) NextRunNumber(ctx context.Context, companyID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(MAX(run_number), 0) + 1
		FROM payroll_runs
		WHERE company_id = $1
	`

	var next int
	if err := q.QueryRow(ctx, query, companyID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to get next run number: %w", err)
	}

	return next, nil
}

// UpdateStatus implements payroll.RunRepository. The WHERE clause carries the
// expected source status, so a run that moved concurrently updates zero rows
// and the transition is rejected.
func (r *runRepositoryImpl) UpdateStatus(ctx context.Context, id string, from, to payroll.RunStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	tag, err := q.Exec(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: run=%s expected=%s target=%s", payroll.ErrInvalidTransition, id, from, to)
	}

	return nil
}

// UpdateTotals implements payroll.RunRepository.
func (r *runRepositoryImpl) UpdateTotals(ctx context.Context, id string, totals payroll.RunTotals) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET total_gross = $1, total_deductions = $2, total_net = $3,
			total_epf_employee = $4, total_epf_employer = $5,
			total_socso_employee = $6, total_socso_employer = $7,
			total_eis_employee = $8, total_eis_employer = $9, total_pcb = $10,
			updated_at = NOW()
		WHERE id = $11
	`

	tag, err := q.Exec(ctx, query,
		totals.Gross, totals.Deductions, totals.Net,
		totals.EPFEmployee, totals.EPFEmployer,
		totals.SocsoEmployee, totals.SocsoEmployer,
		totals.EISEmployee, totals.EISEmployer, totals.PCB,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update run totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotFound
	}

	return nil
}

// LinkAccrualEntry implements payroll.RunRepository.
func (r *runRepositoryImpl) LinkAccrualEntry(ctx context.Context, id string, journalEntryID string) error {
	return r.linkEntry(ctx, id, "journal_entry_id", journalEntryID)
}

// LinkPaymentEntry implements payroll.RunRepository.
func (r *runRepositoryImpl) LinkPaymentEntry(ctx context.Context, id string, journalEntryID string) error {
	return r.linkEntry(ctx, id, "payment_journal_entry_id", journalEntryID)
}

func (r *runRepositoryImpl) linkEntry(ctx context.Context, id string, column string, journalEntryID string) error {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE payroll_runs
		SET %s = $1, updated_at = NOW()
		WHERE id = $2
	`, column)

	tag, err := q.Exec(ctx, query, journalEntryID, id)
	if err != nil {
		return fmt.Errorf("failed to link journal entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotFound
	}

	return nil
}

// Delete implements payroll.RunRepository.
func (r *runRepositoryImpl) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM payroll_runs
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotFound
	}

	return nil
}
