package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gajiflow/payroll-backend-go/internal/domain/employee"
	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
)

// JournalPoster is the slice of the ledger service the run orchestrator
// consumes. Posting never mutates run status; the returned ids are recorded
// here.
type JournalPoster interface {
	PostAccrual(ctx context.Context, run payroll.PayrollRun) (string, error)
	PostPayment(ctx context.Context, run payroll.PayrollRun, paymentDate time.Time, bankAccountCode *string) (string, error)
	Reverse(ctx context.Context, journalEntryID string, date time.Time) (string, error)
}

// TxRunner executes a function atomically. Journal posting, run linkage and
// the status transition of finalize/mark-paid commit together.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CalculateResult is the outcome of one run calculation.
type CalculateResult struct {
	Run       payroll.PayrollRun
	SlipCount int
	Errors    []payroll.RunError
}

// RunService drives the payroll run lifecycle. It owns every status
// transition; no collaborator mutates run status directly.
type RunService struct {
	runRepo       payroll.RunRepository
	payslipRepo   payroll.PaySlipRepository
	componentRepo payroll.ComponentRepository
	employeeRepo  employee.EmployeeRepository
	slipCalc      *PayslipCalculator
	poster        JournalPoster
	tx            TxRunner
	logger        *slog.Logger
}

func NewRunService(
	runRepo payroll.RunRepository,
	payslipRepo payroll.PaySlipRepository,
	componentRepo payroll.ComponentRepository,
	employeeRepo employee.EmployeeRepository,
	slipCalc *PayslipCalculator,
	poster JournalPoster,
	tx TxRunner,
	logger *slog.Logger,
) *RunService {
	return &RunService{
		runRepo:       runRepo,
		payslipRepo:   payslipRepo,
		componentRepo: componentRepo,
		employeeRepo:  employeeRepo,
		slipCalc:      slipCalc,
		poster:        poster,
		tx:            tx,
		logger:        logger,
	}
}

// Create opens a draft run for the period. At most one non-cancelled run
// may exist per period.
func (s *RunService) Create(ctx context.Context, companyID string, period payroll.Period) (payroll.PayrollRun, error) {
	if err := period.Validate(); err != nil {
		return payroll.PayrollRun{}, err
	}

	if _, err := s.runRepo.GetByPeriod(ctx, companyID, period); err == nil {
		return payroll.PayrollRun{}, fmt.Errorf("%w: period=%s", payroll.ErrRunAlreadyExists, period)
	} else if !errors.Is(err, payroll.ErrRunNotFound) {
		return payroll.PayrollRun{}, err
	}

	runNumber, err := s.runRepo.NextRunNumber(ctx, companyID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	return s.runRepo.Create(ctx, payroll.PayrollRun{
		CompanyID: companyID,
		Period:    period,
		RunNumber: runNumber,
		Status:    payroll.RunStatusDraft,
	})
}

func (s *RunService) Get(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	return s.runRepo.GetByID(ctx, id, companyID)
}

func (s *RunService) List(ctx context.Context, companyID string, year int) ([]payroll.PayrollRun, error) {
	return s.runRepo.List(ctx, companyID, year)
}

func (s *RunService) PaySlips(ctx context.Context, runID string, companyID string) ([]payroll.PaySlip, error) {
	if _, err := s.runRepo.GetByID(ctx, runID, companyID); err != nil {
		return nil, err
	}
	return s.payslipRepo.ListByRun(ctx, runID)
}

// PaySlip returns one slip with its items, scoped to the company through the
// owning run.
func (s *RunService) PaySlip(ctx context.Context, paySlipID string, companyID string) (payroll.PaySlip, []payroll.PaySlipItem, error) {
	slip, err := s.payslipRepo.GetByID(ctx, paySlipID)
	if err != nil {
		return payroll.PaySlip{}, nil, err
	}
	if _, err := s.runRepo.GetByID(ctx, slip.RunID, companyID); err != nil {
		return payroll.PaySlip{}, nil, err
	}
	items, err := s.payslipRepo.ListItems(ctx, slip.ID)
	if err != nil {
		return payroll.PaySlip{}, nil, err
	}
	return slip, items, nil
}

// RecalculatePaySlip rebuilds one slip from current data while the run is
// still editable, then refreshes the run totals from all slips.
func (s *RunService) RecalculatePaySlip(ctx context.Context, paySlipID string, companyID string) (payroll.PaySlip, []payroll.PaySlipItem, error) {
	slip, err := s.payslipRepo.GetByID(ctx, paySlipID)
	if err != nil {
		return payroll.PaySlip{}, nil, err
	}
	run, err := s.runRepo.GetByID(ctx, slip.RunID, companyID)
	if err != nil {
		return payroll.PaySlip{}, nil, err
	}
	if run.Status != payroll.RunStatusPendingReview {
		return payroll.PaySlip{}, nil, fmt.Errorf("%w: run=%s status=%s action=recalculate_payslip", payroll.ErrInvalidTransition, run.ID, run.Status)
	}

	rebuilt, items, err := s.slipCalc.Recalculate(ctx, paySlipID, companyID)
	if err != nil {
		return payroll.PaySlip{}, nil, err
	}

	slips, err := s.payslipRepo.ListByRun(ctx, run.ID)
	if err != nil {
		return payroll.PaySlip{}, nil, err
	}
	var totals payroll.RunTotals
	for _, sl := range slips {
		totals = totals.AddSlip(sl)
	}
	if err := s.runRepo.UpdateTotals(ctx, run.ID, totals); err != nil {
		return payroll.PaySlip{}, nil, fmt.Errorf("refresh totals of run %s: %w", run.ID, err)
	}

	return rebuilt, items, nil
}

// Calculate runs the per-employee payslip loop for the whole run.
// Employees are processed strictly sequentially; a failing employee is
// recorded and skipped, the run continues. Re-entry is idempotent because
// prior payslips are deleted first. A run found in calculating (a previous
// attempt died mid-flight) is recovered the same way: recalculate from
// scratch.
func (s *RunService) Calculate(ctx context.Context, runID string, companyID string) (CalculateResult, error) {
	run, err := s.runRepo.GetByID(ctx, runID, companyID)
	if err != nil {
		return CalculateResult{}, err
	}
	switch run.Status {
	case payroll.RunStatusDraft, payroll.RunStatusPendingReview:
		if err := s.runRepo.UpdateStatus(ctx, run.ID, run.Status, payroll.RunStatusCalculating); err != nil {
			return CalculateResult{}, err
		}
	case payroll.RunStatusCalculating:
		// Already claimed; nothing to transition.
	default:
		return CalculateResult{}, fmt.Errorf("%w: run=%s status=%s action=calculate", payroll.ErrInvalidTransition, run.ID, run.Status)
	}

	totals, slipCount, runErrors, err := s.runCalculation(ctx, run)
	if err != nil {
		s.revertToDraft(ctx, run.ID)
		return CalculateResult{}, fmt.Errorf("calculate run %s period %s: %w", run.ID, run.Period, err)
	}
	if slipCount == 0 {
		s.revertToDraft(ctx, run.ID)
		return CalculateResult{Run: run, Errors: runErrors},
			fmt.Errorf("%w: run=%s period=%s", payroll.ErrNoEligibleEmployees, run.ID, run.Period)
	}

	if err := s.runRepo.UpdateTotals(ctx, run.ID, totals); err != nil {
		s.revertToDraft(ctx, run.ID)
		return CalculateResult{}, fmt.Errorf("persist totals of run %s: %w", run.ID, err)
	}
	if err := s.runRepo.UpdateStatus(ctx, run.ID, payroll.RunStatusCalculating, payroll.RunStatusPendingReview); err != nil {
		s.revertToDraft(ctx, run.ID)
		return CalculateResult{}, fmt.Errorf("move run %s to pending review: %w", run.ID, err)
	}

	run.Totals = totals
	run.Status = payroll.RunStatusPendingReview
	return CalculateResult{Run: run, SlipCount: slipCount, Errors: runErrors}, nil
}

func (s *RunService) runCalculation(ctx context.Context, run payroll.PayrollRun) (payroll.RunTotals, int, []payroll.RunError, error) {
	var totals payroll.RunTotals

	if err := s.payslipRepo.DeleteByRun(ctx, run.ID); err != nil {
		return totals, 0, nil, fmt.Errorf("delete prior payslips: %w", err)
	}

	employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, run.CompanyID)
	if err != nil {
		return totals, 0, nil, fmt.Errorf("fetch active employees: %w", err)
	}
	earnings, err := s.componentRepo.FindActive(ctx, run.CompanyID, payroll.ComponentTypeEarning)
	if err != nil {
		return totals, 0, nil, fmt.Errorf("fetch earning components: %w", err)
	}
	deductions, err := s.componentRepo.FindActive(ctx, run.CompanyID, payroll.ComponentTypeDeduction)
	if err != nil {
		return totals, 0, nil, fmt.Errorf("fetch deduction components: %w", err)
	}

	slipCount := 0
	var runErrors []payroll.RunError
	for _, emp := range employees {
		salary, err := s.employeeRepo.GetCurrentSalary(ctx, emp.ID)
		if err != nil {
			runErrors = append(runErrors, payroll.RunError{EmployeeID: emp.ID, EmployeeName: emp.FullName, Reason: err.Error()})
			s.logger.Warn("payroll: skipping employee", "run_id", run.ID, "employee_id", emp.ID, "reason", err.Error())
			continue
		}

		slip, items, err := s.slipCalc.Build(ctx, run.ID, run.Period, emp, salary.BaseSalary, earnings, deductions)
		if err != nil {
			runErrors = append(runErrors, payroll.RunError{EmployeeID: emp.ID, EmployeeName: emp.FullName, Reason: err.Error()})
			s.logger.Warn("payroll: skipping employee", "run_id", run.ID, "employee_id", emp.ID, "reason", err.Error())
			continue
		}

		created, err := s.payslipRepo.Create(ctx, slip)
		if err != nil {
			return totals, 0, nil, fmt.Errorf("create payslip for employee %s: %w", emp.ID, err)
		}
		for i := range items {
			items[i].PaySlipID = created.ID
		}
		if err := s.payslipRepo.BulkCreateItems(ctx, items); err != nil {
			return totals, 0, nil, fmt.Errorf("create payslip items for employee %s: %w", emp.ID, err)
		}

		totals = totals.AddSlip(slip)
		slipCount++
	}

	return totals, slipCount, runErrors, nil
}

func (s *RunService) revertToDraft(ctx context.Context, runID string) {
	if err := s.runRepo.UpdateStatus(ctx, runID, payroll.RunStatusCalculating, payroll.RunStatusDraft); err != nil {
		s.logger.Error("payroll: failed to revert run to draft", "run_id", runID, "error", err)
	}
}

// Approve moves a reviewed run to approved.
func (s *RunService) Approve(ctx context.Context, runID string, companyID string) (payroll.PayrollRun, error) {
	run, err := s.runRepo.GetByID(ctx, runID, companyID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	if run.Status != payroll.RunStatusPendingReview {
		return payroll.PayrollRun{}, fmt.Errorf("%w: run=%s status=%s action=approve", payroll.ErrInvalidTransition, run.ID, run.Status)
	}
	if err := s.runRepo.UpdateStatus(ctx, run.ID, payroll.RunStatusPendingReview, payroll.RunStatusApproved); err != nil {
		return payroll.PayrollRun{}, err
	}
	run.Status = payroll.RunStatusApproved
	return run, nil
}

// Finalize posts the accrual entry and moves the run to finalized. A
// posting failure (including a debit/credit imbalance) leaves the run in
// approved so it can be retried once the data is fixed.
func (s *RunService) Finalize(ctx context.Context, runID string, companyID string) (payroll.PayrollRun, error) {
	run, err := s.runRepo.GetByID(ctx, runID, companyID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	if run.Status != payroll.RunStatusApproved {
		return payroll.PayrollRun{}, fmt.Errorf("%w: run=%s status=%s action=finalize", payroll.ErrInvalidTransition, run.ID, run.Status)
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		entryID, err := s.poster.PostAccrual(ctx, run)
		if err != nil {
			return err
		}
		if err := s.runRepo.LinkAccrualEntry(ctx, run.ID, entryID); err != nil {
			return err
		}
		run.JournalEntryID = &entryID
		return s.runRepo.UpdateStatus(ctx, run.ID, payroll.RunStatusApproved, payroll.RunStatusFinalized)
	})
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("finalize run %s period %s: %w", run.ID, run.Period, err)
	}

	run.Status = payroll.RunStatusFinalized
	return run, nil
}

// MarkPaid posts the payment entry and moves the run to paid.
func (s *RunService) MarkPaid(ctx context.Context, runID string, companyID string, paymentDate time.Time, bankAccountCode *string) (payroll.PayrollRun, error) {
	run, err := s.runRepo.GetByID(ctx, runID, companyID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	if run.Status != payroll.RunStatusFinalized {
		return payroll.PayrollRun{}, fmt.Errorf("%w: run=%s status=%s action=mark_paid", payroll.ErrInvalidTransition, run.ID, run.Status)
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		entryID, err := s.poster.PostPayment(ctx, run, paymentDate, bankAccountCode)
		if err != nil {
			return err
		}
		if err := s.runRepo.LinkPaymentEntry(ctx, run.ID, entryID); err != nil {
			return err
		}
		run.PaymentJournalEntryID = &entryID
		return s.runRepo.UpdateStatus(ctx, run.ID, payroll.RunStatusFinalized, payroll.RunStatusPaid)
	})
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("mark run %s paid: %w", run.ID, err)
	}

	run.Status = payroll.RunStatusPaid
	return run, nil
}

// Cancel aborts a run in any state except paid, reversing linked journal
// entries when they exist.
func (s *RunService) Cancel(ctx context.Context, runID string, companyID string) (payroll.PayrollRun, error) {
	run, err := s.runRepo.GetByID(ctx, runID, companyID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	if !run.Status.CanCancel() {
		return payroll.PayrollRun{}, fmt.Errorf("%w: run=%s status=%s action=cancel", payroll.ErrInvalidTransition, run.ID, run.Status)
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		now := time.Now()
		if run.PaymentJournalEntryID != nil {
			if _, err := s.poster.Reverse(ctx, *run.PaymentJournalEntryID, now); err != nil {
				return err
			}
		}
		if run.JournalEntryID != nil {
			if _, err := s.poster.Reverse(ctx, *run.JournalEntryID, now); err != nil {
				return err
			}
		}
		return s.runRepo.UpdateStatus(ctx, run.ID, run.Status, payroll.RunStatusCancelled)
	})
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("cancel run %s: %w", run.ID, err)
	}

	run.Status = payroll.RunStatusCancelled
	return run, nil
}

// Delete removes a run that never left draft.
func (s *RunService) Delete(ctx context.Context, runID string, companyID string) error {
	run, err := s.runRepo.GetByID(ctx, runID, companyID)
	if err != nil {
		return err
	}
	if run.Status != payroll.RunStatusDraft {
		return fmt.Errorf("%w: run=%s status=%s", payroll.ErrRunNotDeletable, run.ID, run.Status)
	}
	if err := s.payslipRepo.DeleteByRun(ctx, run.ID); err != nil {
		return err
	}
	return s.runRepo.Delete(ctx, run.ID, companyID)
}
