package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gajiflow/payroll-backend-go/internal/domain/employee"
	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/gajiflow/payroll-backend-go/internal/domain/statutory"
)

// In-memory repositories backing the service tests. They mirror the
// persistence contracts, including the from-status guard on UpdateStatus
// and the strictly-before-month year-to-date query.

type fakeRunRepo struct {
	runs   map[string]payroll.PayrollRun
	nextID int

	// When set, UpdateStatus calls targeting this status fail.
	failTransitionTo payroll.RunStatus
	transitionErr    error
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: make(map[string]payroll.PayrollRun)}
}

func (r *fakeRunRepo) Create(_ context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	r.nextID++
	run.ID = fmt.Sprintf("run-%d", r.nextID)
	run.CreatedAt = time.Now()
	r.runs[run.ID] = run
	return run, nil
}

func (r *fakeRunRepo) GetByID(_ context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	run, ok := r.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (r *fakeRunRepo) GetByPeriod(_ context.Context, companyID string, period payroll.Period) (payroll.PayrollRun, error) {
	for _, run := range r.runs {
		if run.CompanyID == companyID && run.Period == period && run.Status != payroll.RunStatusCancelled {
			return run, nil
		}
	}
	return payroll.PayrollRun{}, payroll.ErrRunNotFound
}

func (r *fakeRunRepo) List(_ context.Context, companyID string, year int) ([]payroll.PayrollRun, error) {
	var out []payroll.PayrollRun
	for _, run := range r.runs {
		if run.CompanyID == companyID && run.Period.Year == year {
			out = append(out, run)
		}
	}
	return out, nil
}

func (r *fakeRunRepo) NextRunNumber(_ context.Context, _ string) (int, error) {
	return len(r.runs) + 1, nil
}

func (r *fakeRunRepo) UpdateStatus(_ context.Context, id string, from, to payroll.RunStatus) error {
	if r.failTransitionTo != "" && to == r.failTransitionTo {
		return r.transitionErr
	}
	run, ok := r.runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	if run.Status != from {
		return fmt.Errorf("%w: run=%s expected=%s actual=%s", payroll.ErrInvalidTransition, id, from, run.Status)
	}
	run.Status = to
	r.runs[id] = run
	return nil
}

func (r *fakeRunRepo) UpdateTotals(_ context.Context, id string, totals payroll.RunTotals) error {
	run, ok := r.runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	run.Totals = totals
	r.runs[id] = run
	return nil
}

func (r *fakeRunRepo) LinkAccrualEntry(_ context.Context, id string, journalEntryID string) error {
	run, ok := r.runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	run.JournalEntryID = &journalEntryID
	r.runs[id] = run
	return nil
}

func (r *fakeRunRepo) LinkPaymentEntry(_ context.Context, id string, journalEntryID string) error {
	run, ok := r.runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	run.PaymentJournalEntryID = &journalEntryID
	r.runs[id] = run
	return nil
}

func (r *fakeRunRepo) Delete(_ context.Context, id string, companyID string) error {
	run, ok := r.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.ErrRunNotFound
	}
	delete(r.runs, id)
	return nil
}

type fakePayslipRepo struct {
	slips  map[string]payroll.PaySlip
	items  map[string][]payroll.PaySlipItem
	nextID int

	failCreate error
}

func newFakePayslipRepo() *fakePayslipRepo {
	return &fakePayslipRepo{
		slips: make(map[string]payroll.PaySlip),
		items: make(map[string][]payroll.PaySlipItem),
	}
}

func (r *fakePayslipRepo) Create(_ context.Context, slip payroll.PaySlip) (payroll.PaySlip, error) {
	if r.failCreate != nil {
		return payroll.PaySlip{}, r.failCreate
	}
	r.nextID++
	slip.ID = fmt.Sprintf("slip-%d", r.nextID)
	slip.CreatedAt = time.Now()
	r.slips[slip.ID] = slip
	return slip, nil
}

func (r *fakePayslipRepo) GetByID(_ context.Context, id string) (payroll.PaySlip, error) {
	slip, ok := r.slips[id]
	if !ok {
		return payroll.PaySlip{}, payroll.ErrPaySlipNotFound
	}
	return slip, nil
}

func (r *fakePayslipRepo) ListByRun(_ context.Context, runID string) ([]payroll.PaySlip, error) {
	var out []payroll.PaySlip
	for _, slip := range r.slips {
		if slip.RunID == runID {
			out = append(out, slip)
		}
	}
	return out, nil
}

func (r *fakePayslipRepo) DeleteByRun(_ context.Context, runID string) error {
	for id, slip := range r.slips {
		if slip.RunID == runID {
			delete(r.slips, id)
			delete(r.items, id)
		}
	}
	return nil
}

func (r *fakePayslipRepo) UpdateCalculations(_ context.Context, slip payroll.PaySlip) error {
	if _, ok := r.slips[slip.ID]; !ok {
		return payroll.ErrPaySlipNotFound
	}
	r.slips[slip.ID] = slip
	return nil
}

func (r *fakePayslipRepo) BulkCreateItems(_ context.Context, items []payroll.PaySlipItem) error {
	for i, item := range items {
		item.ID = fmt.Sprintf("item-%s-%d", item.PaySlipID, i)
		r.items[item.PaySlipID] = append(r.items[item.PaySlipID], item)
	}
	return nil
}

func (r *fakePayslipRepo) ListItems(_ context.Context, paySlipID string) ([]payroll.PaySlipItem, error) {
	return r.items[paySlipID], nil
}

func (r *fakePayslipRepo) DeleteItems(_ context.Context, paySlipID string) error {
	delete(r.items, paySlipID)
	return nil
}

// GetYtdTotals returns the cumulative snapshot of the latest slip strictly
// before the month. Slips carry their own running totals, so no resumming.
func (r *fakePayslipRepo) GetYtdTotals(_ context.Context, employeeID string, year, month int) (statutory.YtdTotals, error) {
	var totals statutory.YtdTotals
	latest := 0
	for _, slip := range r.slips {
		if slip.EmployeeID != employeeID || slip.Period.Year != year || slip.Period.Month >= month {
			continue
		}
		if slip.Period.Month > latest {
			latest = slip.Period.Month
			totals = slip.Ytd
		}
	}
	return totals, nil
}

type fakeComponentRepo struct {
	components []payroll.SalaryComponent
}

func (r *fakeComponentRepo) Create(_ context.Context, c payroll.SalaryComponent) (payroll.SalaryComponent, error) {
	for _, existing := range r.components {
		if existing.CompanyID == c.CompanyID && existing.Code == c.Code {
			return payroll.SalaryComponent{}, payroll.ErrComponentExists
		}
	}
	c.ID = fmt.Sprintf("comp-%d", len(r.components)+1)
	r.components = append(r.components, c)
	return c, nil
}

func (r *fakeComponentRepo) GetByID(_ context.Context, id string, companyID string) (payroll.SalaryComponent, error) {
	for _, c := range r.components {
		if c.ID == id && c.CompanyID == companyID {
			return c, nil
		}
	}
	return payroll.SalaryComponent{}, payroll.ErrComponentNotFound
}

func (r *fakeComponentRepo) FindActive(_ context.Context, companyID string, componentType payroll.ComponentType) ([]payroll.SalaryComponent, error) {
	var out []payroll.SalaryComponent
	for _, c := range r.components {
		if c.CompanyID == companyID && c.Type == componentType && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeComponentRepo) List(_ context.Context, companyID string) ([]payroll.SalaryComponent, error) {
	var out []payroll.SalaryComponent
	for _, c := range r.components {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
	salaries  map[string]employee.Salary
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string, companyID string) (employee.Employee, error) {
	for _, e := range r.employees {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) GetActiveByCompanyID(_ context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range r.employees {
		if e.CompanyID == companyID && e.EmploymentStatus == employee.EmploymentStatusActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) GetCurrentSalary(_ context.Context, employeeID string) (employee.Salary, error) {
	salary, ok := r.salaries[employeeID]
	if !ok {
		return employee.Salary{}, employee.ErrNoCurrentSalary
	}
	return salary, nil
}

type fakePoster struct {
	nextID      int
	accruals    []string
	payments    []string
	reversals   []string
	failAccrual error
	failPayment error
}

func (p *fakePoster) PostAccrual(_ context.Context, run payroll.PayrollRun) (string, error) {
	if p.failAccrual != nil {
		return "", p.failAccrual
	}
	p.nextID++
	id := fmt.Sprintf("journal-%d", p.nextID)
	p.accruals = append(p.accruals, id)
	return id, nil
}

func (p *fakePoster) PostPayment(_ context.Context, run payroll.PayrollRun, _ time.Time, _ *string) (string, error) {
	if p.failPayment != nil {
		return "", p.failPayment
	}
	p.nextID++
	id := fmt.Sprintf("journal-%d", p.nextID)
	p.payments = append(p.payments, id)
	return id, nil
}

func (p *fakePoster) Reverse(_ context.Context, journalEntryID string, _ time.Time) (string, error) {
	p.nextID++
	p.reversals = append(p.reversals, journalEntryID)
	return fmt.Sprintf("journal-%d", p.nextID), nil
}

// passthroughTx runs the function directly; the fakes have no transactions.
type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var errPostingFailed = errors.New("posting failed")
