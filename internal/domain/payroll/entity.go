package payroll

import (
	"fmt"
	"time"

	"github.com/gajiflow/payroll-backend-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// Period is one payroll month.
type Period struct {
	Year  int
	Month int
}

func (p Period) Validate() error {
	if p.Year < 2000 || p.Year > 2100 {
		return ErrInvalidPeriod
	}
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidPeriod
	}
	return nil
}

// Start is the first day of the period, used as the as-of date for
// effective-dated rate lookups.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End is the last day of the period, used as the accrual posting date.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// RunStatus enum
type RunStatus string

const (
	RunStatusDraft         RunStatus = "draft"
	RunStatusCalculating   RunStatus = "calculating"
	RunStatusPendingReview RunStatus = "pending_review"
	RunStatusApproved      RunStatus = "approved"
	RunStatusFinalized     RunStatus = "finalized"
	RunStatusPaid          RunStatus = "paid"
	RunStatusCancelled     RunStatus = "cancelled"
)

// CanCancel reports whether a run in this status may still be cancelled.
func (s RunStatus) CanCancel() bool {
	return s != RunStatusPaid && s != RunStatusCancelled
}

// RunTotals aggregates all payslips of a run.
type RunTotals struct {
	Gross         decimal.Decimal
	Deductions    decimal.Decimal
	Net           decimal.Decimal
	EPFEmployee   decimal.Decimal
	EPFEmployer   decimal.Decimal
	SocsoEmployee decimal.Decimal
	SocsoEmployer decimal.Decimal
	EISEmployee   decimal.Decimal
	EISEmployer   decimal.Decimal
	PCB           decimal.Decimal
}

// AddSlip folds one payslip into the totals.
func (t RunTotals) AddSlip(s PaySlip) RunTotals {
	return RunTotals{
		Gross:         t.Gross.Add(s.GrossSalary),
		Deductions:    t.Deductions.Add(s.GrossSalary.Sub(s.NetSalary)),
		Net:           t.Net.Add(s.NetSalary),
		EPFEmployee:   t.EPFEmployee.Add(s.EPFEmployee),
		EPFEmployer:   t.EPFEmployer.Add(s.EPFEmployer),
		SocsoEmployee: t.SocsoEmployee.Add(s.SocsoEmployee),
		SocsoEmployer: t.SocsoEmployer.Add(s.SocsoEmployer),
		EISEmployee:   t.EISEmployee.Add(s.EISEmployee),
		EISEmployer:   t.EISEmployer.Add(s.EISEmployer),
		PCB:           t.PCB.Add(s.PCB),
	}
}

// TotalEmployeeStatutory is the sum of all employee statutory shares.
func (t RunTotals) TotalEmployeeStatutory() decimal.Decimal {
	return t.EPFEmployee.Add(t.SocsoEmployee).Add(t.EISEmployee).Add(t.PCB)
}

// TotalEmployerStatutory is the sum of all employer statutory shares.
func (t RunTotals) TotalEmployerStatutory() decimal.Decimal {
	return t.EPFEmployer.Add(t.SocsoEmployer).Add(t.EISEmployer)
}

// PayrollRun is one payroll cycle for a company and period. Status
// transitions are owned exclusively by the run service.
type PayrollRun struct {
	ID                    string
	CompanyID             string
	Period                Period
	RunNumber             int
	Status                RunStatus
	Totals                RunTotals
	JournalEntryID        *string // accrual entry, linked on finalize
	PaymentJournalEntryID *string // payment entry, linked on mark-paid
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// RunError records one skipped employee during a calculation.
type RunError struct {
	EmployeeID   string
	EmployeeName string
	Reason       string
}

// ComponentType enum
type ComponentType string

const (
	ComponentTypeEarning   ComponentType = "earning"
	ComponentTypeDeduction ComponentType = "deduction"
)

// CalculationMethod enum
type CalculationMethod string

const (
	MethodFixed      CalculationMethod = "fixed"
	MethodPercentage CalculationMethod = "percentage" // of base salary
)

// SalaryComponent is a catalog entry for a recurring earning or deduction.
// Amount is a money value for fixed components and a percentage of base
// salary for percentage components.
type SalaryComponent struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Type      ComponentType
	Method    CalculationMethod
	Amount    decimal.Decimal

	// Applicability flags gate which statutory wage bases the component
	// feeds. A component excluded from a base is still part of gross pay.
	EPFApplicable   bool
	SocsoApplicable bool
	EISApplicable   bool
	PCBApplicable   bool

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaySlip is one employee's slip within a run. It snapshots the employee
// fields used at calculation time and is re-created, never patched, on
// recalculation.
type PaySlip struct {
	ID     string
	RunID  string
	Period Period

	EmployeeID            string
	EmployeeName          string
	EmployeeCode          string
	BankName              string
	BankAccountHolderName *string
	BankAccountNumber     string

	BaseSalary      decimal.Decimal
	TotalEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	GrossSalary     decimal.Decimal

	EPFEmployee   decimal.Decimal
	EPFEmployer   decimal.Decimal
	SocsoEmployee decimal.Decimal
	SocsoEmployer decimal.Decimal
	EISEmployee   decimal.Decimal
	EISEmployer   decimal.Decimal
	PCB           decimal.Decimal

	NetSalary decimal.Decimal

	// Running year-to-date figures including this slip's period.
	Ytd statutory.YtdTotals

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyStatutory copies a statutory result onto the slip and derives the
// net salary from the gross.
func (s *PaySlip) ApplyStatutory(res statutory.Result) {
	s.EPFEmployee = res.EPFEmployee
	s.EPFEmployer = res.EPFEmployer
	s.SocsoEmployee = res.SocsoEmployee
	s.SocsoEmployer = res.SocsoEmployer
	s.EISEmployee = res.EISEmployee
	s.EISEmployer = res.EISEmployer
	s.PCB = res.PCB
	s.NetSalary = s.GrossSalary.Sub(res.TotalEmployeeDeductions)
}

// PaySlipItem is one ordered line on a payslip. Earnings sort first,
// deduction components after, statutory deductions last.
type PaySlipItem struct {
	ID            string
	PaySlipID     string
	ComponentCode string
	Name          string
	Type          ComponentType
	Method        CalculationMethod
	Amount        decimal.Decimal
	SortOrder     int

	EPFApplicable   bool
	SocsoApplicable bool
	EISApplicable   bool
	PCBApplicable   bool
}
