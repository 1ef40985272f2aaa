package payroll

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gajiflow/payroll-backend-go/internal/domain/employee"
	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runServiceFixture struct {
	service      *RunService
	runRepo      *fakeRunRepo
	payslipRepo  *fakePayslipRepo
	employeeRepo *fakeEmployeeRepo
	poster       *fakePoster
}

func newRunServiceFixture(t *testing.T) *runServiceFixture {
	t.Helper()

	runRepo := newFakeRunRepo()
	payslipRepo := newFakePayslipRepo()
	componentRepo := &fakeComponentRepo{}
	employeeRepo := &fakeEmployeeRepo{
		employees: []employee.Employee{
			testEmployee("e1", "Aminah binti Hassan"),
			testEmployee("e2", "Lim Wei Jie"),
			testEmployee("e3", "Raj Kumar"),
		},
		salaries: map[string]employee.Salary{
			"e1": {EmployeeID: "e1", BaseSalary: decimal.NewFromInt(3000)},
			// e2 has no salary record on purpose.
			"e3": {EmployeeID: "e3", BaseSalary: decimal.NewFromInt(5000)},
		},
	}
	poster := &fakePoster{}
	slipCalc := NewPayslipCalculator(payslipRepo, employeeRepo, componentRepo, newTestStatutoryCalculator(t))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &runServiceFixture{
		service:      NewRunService(runRepo, payslipRepo, componentRepo, employeeRepo, slipCalc, poster, passthroughTx{}, logger),
		runRepo:      runRepo,
		payslipRepo:  payslipRepo,
		employeeRepo: employeeRepo,
		poster:       poster,
	}
}

func (f *runServiceFixture) createDraft(t *testing.T, ctx context.Context) payroll.PayrollRun {
	t.Helper()
	run, err := f.service.Create(ctx, testCompanyID, payroll.Period{Year: 2024, Month: 6})
	require.NoError(t, err)
	return run
}

func (f *runServiceFixture) calculatedRun(t *testing.T, ctx context.Context) payroll.PayrollRun {
	t.Helper()
	run := f.createDraft(t, ctx)
	result, err := f.service.Calculate(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	return result.Run
}

func (f *runServiceFixture) approvedRun(t *testing.T, ctx context.Context) payroll.PayrollRun {
	t.Helper()
	run := f.calculatedRun(t, ctx)
	approved, err := f.service.Approve(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	return approved
}

func TestRunService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)

	run := f.createDraft(t, ctx)
	assert.Equal(t, payroll.RunStatusDraft, run.Status)
	assert.Equal(t, 1, run.RunNumber)

	// A second non-cancelled run for the same period is rejected.
	_, err := f.service.Create(ctx, testCompanyID, payroll.Period{Year: 2024, Month: 6})
	assert.ErrorIs(t, err, payroll.ErrRunAlreadyExists)

	// A cancelled run frees the period.
	_, err = f.service.Cancel(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	again, err := f.service.Create(ctx, testCompanyID, payroll.Period{Year: 2024, Month: 6})
	require.NoError(t, err)
	assert.NotEqual(t, run.ID, again.ID)
}

func TestRunService_Create_InvalidPeriod(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)

	_, err := f.service.Create(ctx, testCompanyID, payroll.Period{Year: 2024, Month: 13})
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
	_, err = f.service.Create(ctx, testCompanyID, payroll.Period{Year: 1999, Month: 1})
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestRunService_Calculate_SkipsFailingEmployee(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)

	run := f.createDraft(t, ctx)
	result, err := f.service.Calculate(ctx, run.ID, testCompanyID)
	require.NoError(t, err)

	// e2 has no current salary: one error recorded, the other two slips
	// still produced, and the run reaches review.
	assert.Equal(t, 2, result.SlipCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "e2", result.Errors[0].EmployeeID)
	assert.Equal(t, payroll.RunStatusPendingReview, result.Run.Status)

	slips, err := f.payslipRepo.ListByRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, slips, 2)

	// Totals aggregate only the produced slips.
	assert.Equal(t, "8000.00", result.Run.Totals.Gross.StringFixed(2))
	assert.True(t, result.Run.Totals.Net.Add(result.Run.Totals.TotalEmployeeStatutory()).Equal(result.Run.Totals.Gross))
}

func TestRunService_Calculate_Recalculation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)

	run := f.calculatedRun(t, ctx)

	// Recalculating from review replaces, never duplicates, the slips.
	result, err := f.service.Calculate(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SlipCount)

	slips, err := f.payslipRepo.ListByRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, slips, 2)
}

func TestRunService_Calculate_NoEligibleEmployeesRevertsToDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)
	f.employeeRepo.employees = nil

	run := f.createDraft(t, ctx)
	_, err := f.service.Calculate(ctx, run.ID, testCompanyID)
	assert.ErrorIs(t, err, payroll.ErrNoEligibleEmployees)

	stored, err := f.runRepo.GetByID(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusDraft, stored.Status)
}

func TestRunService_Calculate_PersistenceFailureRevertsToDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)
	f.payslipRepo.failCreate = errPostingFailed

	run := f.createDraft(t, ctx)
	_, err := f.service.Calculate(ctx, run.ID, testCompanyID)
	require.Error(t, err)

	stored, err := f.runRepo.GetByID(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusDraft, stored.Status)
}

func TestRunService_Calculate_RecoversRunLeftInCalculating(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)

	// A previous calculation died mid-flight, leaving the run claimed.
	run := f.createDraft(t, ctx)
	require.NoError(t, f.runRepo.UpdateStatus(ctx, run.ID, payroll.RunStatusDraft, payroll.RunStatusCalculating))

	result, err := f.service.Calculate(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SlipCount)

	stored, err := f.runRepo.GetByID(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusPendingReview, stored.Status)

	slips, err := f.payslipRepo.ListByRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, slips, 2)
}

func TestRunService_Calculate_ReviewTransitionFailureRevertsToDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)
	f.runRepo.failTransitionTo = payroll.RunStatusPendingReview
	f.runRepo.transitionErr = errPostingFailed

	run := f.createDraft(t, ctx)
	_, err := f.service.Calculate(ctx, run.ID, testCompanyID)
	require.ErrorIs(t, err, errPostingFailed)

	stored, err := f.runRepo.GetByID(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusDraft, stored.Status)
}

func TestRunService_Calculate_RejectedAfterApproval(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)

	run := f.approvedRun(t, ctx)
	_, err := f.service.Calculate(ctx, run.ID, testCompanyID)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}

func TestRunService_Lifecycle_HappyPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)

	run := f.approvedRun(t, ctx)

	finalized, err := f.service.Finalize(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusFinalized, finalized.Status)
	require.NotNil(t, finalized.JournalEntryID)
	assert.Len(t, f.poster.accruals, 1)

	paid, err := f.service.MarkPaid(ctx, run.ID, testCompanyID, time.Date(2024, time.June, 28, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentJournalEntryID)
	assert.Len(t, f.poster.payments, 1)
}

func TestRunService_Finalize_RequiresApproved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)

	run := f.calculatedRun(t, ctx)
	_, err := f.service.Finalize(ctx, run.ID, testCompanyID)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}

func TestRunService_Finalize_PostingFailureLeavesRunApproved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)
	f.poster.failAccrual = errPostingFailed

	run := f.approvedRun(t, ctx)
	_, err := f.service.Finalize(ctx, run.ID, testCompanyID)
	require.ErrorIs(t, err, errPostingFailed)

	stored, err := f.runRepo.GetByID(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusApproved, stored.Status)
	assert.Nil(t, stored.JournalEntryID)
}

func TestRunService_MarkPaid_RequiresFinalized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)

	run := f.approvedRun(t, ctx)
	_, err := f.service.MarkPaid(ctx, run.ID, testCompanyID, time.Now(), nil)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}

func TestRunService_Cancel_ReversesPostedEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)

	run := f.approvedRun(t, ctx)
	finalized, err := f.service.Finalize(ctx, run.ID, testCompanyID)
	require.NoError(t, err)

	cancelled, err := f.service.Cancel(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusCancelled, cancelled.Status)
	assert.Equal(t, []string{*finalized.JournalEntryID}, f.poster.reversals)
}

func TestRunService_Cancel_PaidRunIsImmutable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)

	run := f.approvedRun(t, ctx)
	_, err := f.service.Finalize(ctx, run.ID, testCompanyID)
	require.NoError(t, err)
	_, err = f.service.MarkPaid(ctx, run.ID, testCompanyID, time.Now(), nil)
	require.NoError(t, err)

	_, err = f.service.Cancel(ctx, run.ID, testCompanyID)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}

func TestRunService_Delete_OnlyDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRunServiceFixture(t)

	draft := f.createDraft(t, ctx)
	require.NoError(t, f.service.Delete(ctx, draft.ID, testCompanyID))
	_, err := f.service.Get(ctx, draft.ID, testCompanyID)
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)

	reviewed := f.calculatedRun(t, ctx)
	err = f.service.Delete(ctx, reviewed.ID, testCompanyID)
	assert.ErrorIs(t, err, payroll.ErrRunNotDeletable)
}
