package payroll

import (
	"context"

	"github.com/gajiflow/payroll-backend-go/internal/domain/statutory"
)

// RunRepository persists payroll runs. UpdateStatus enforces the expected
// source status so concurrent transitions fail instead of racing.
type RunRepository interface {
	Create(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetByID(ctx context.Context, id string, companyID string) (PayrollRun, error)

	// GetByPeriod returns the non-cancelled run for the period, if any.
	GetByPeriod(ctx context.Context, companyID string, period Period) (PayrollRun, error)
	List(ctx context.Context, companyID string, year int) ([]PayrollRun, error)
	NextRunNumber(ctx context.Context, companyID string) (int, error)

	// UpdateStatus transitions id from one status to another. Returns
	// ErrInvalidTransition when the run is no longer in the from status.
	UpdateStatus(ctx context.Context, id string, from, to RunStatus) error
	UpdateTotals(ctx context.Context, id string, totals RunTotals) error
	LinkAccrualEntry(ctx context.Context, id string, journalEntryID string) error
	LinkPaymentEntry(ctx context.Context, id string, journalEntryID string) error
	Delete(ctx context.Context, id string, companyID string) error
}

type PaySlipRepository interface {
	Create(ctx context.Context, slip PaySlip) (PaySlip, error)
	GetByID(ctx context.Context, id string) (PaySlip, error)
	ListByRun(ctx context.Context, runID string) ([]PaySlip, error)
	DeleteByRun(ctx context.Context, runID string) error

	// UpdateCalculations replaces every computed field of an existing slip.
	UpdateCalculations(ctx context.Context, slip PaySlip) error

	BulkCreateItems(ctx context.Context, items []PaySlipItem) error
	ListItems(ctx context.Context, paySlipID string) ([]PaySlipItem, error)
	DeleteItems(ctx context.Context, paySlipID string) error

	// GetYtdTotals sums the employee's slips for the year strictly before
	// the given month, ignoring slips of cancelled runs.
	GetYtdTotals(ctx context.Context, employeeID string, year, month int) (statutory.YtdTotals, error)
}

type ComponentRepository interface {
	Create(ctx context.Context, component SalaryComponent) (SalaryComponent, error)
	GetByID(ctx context.Context, id string, companyID string) (SalaryComponent, error)
	FindActive(ctx context.Context, companyID string, componentType ComponentType) ([]SalaryComponent, error)
	List(ctx context.Context, companyID string) ([]SalaryComponent, error)
}
