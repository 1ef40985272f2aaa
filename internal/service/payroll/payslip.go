package payroll

import (
	"context"
	"fmt"

	"github.com/gajiflow/payroll-backend-go/internal/domain/employee"
	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/gajiflow/payroll-backend-go/internal/domain/statutory"
	statutorysvc "github.com/gajiflow/payroll-backend-go/internal/service/statutory"
	"github.com/shopspring/decimal"
)

const baseSalaryCode = "BASIC"

var oneHundred = decimal.NewFromInt(100)

// PayslipCalculator builds one employee's payslip snapshot: base salary,
// component amounts, statutory deductions and year-to-date figures.
type PayslipCalculator struct {
	payslipRepo   payroll.PaySlipRepository
	employeeRepo  employee.EmployeeRepository
	componentRepo payroll.ComponentRepository
	statutory     *statutorysvc.Calculator
}

func NewPayslipCalculator(
	payslipRepo payroll.PaySlipRepository,
	employeeRepo employee.EmployeeRepository,
	componentRepo payroll.ComponentRepository,
	statutoryCalc *statutorysvc.Calculator,
) *PayslipCalculator {
	return &PayslipCalculator{
		payslipRepo:   payslipRepo,
		employeeRepo:  employeeRepo,
		componentRepo: componentRepo,
		statutory:     statutoryCalc,
	}
}

// Build computes a payslip and its ordered items without persisting them.
// Item PaySlipID fields are filled in by the caller once the slip exists.
func (c *PayslipCalculator) Build(
	ctx context.Context,
	runID string,
	period payroll.Period,
	emp employee.Employee,
	baseSalary decimal.Decimal,
	earnings, deductions []payroll.SalaryComponent,
) (payroll.PaySlip, []payroll.PaySlipItem, error) {
	sortOrder := 0
	items := []payroll.PaySlipItem{{
		ComponentCode:   baseSalaryCode,
		Name:            "Base Salary",
		Type:            payroll.ComponentTypeEarning,
		Method:          payroll.MethodFixed,
		Amount:          baseSalary,
		SortOrder:       sortOrder,
		EPFApplicable:   true,
		SocsoApplicable: true,
		EISApplicable:   true,
		PCBApplicable:   true,
	}}

	totalEarnings := baseSalary
	for _, comp := range earnings {
		amount := componentAmount(comp, baseSalary)
		if amount.IsZero() {
			continue
		}
		sortOrder++
		items = append(items, componentItem(comp, amount, sortOrder))
		totalEarnings = totalEarnings.Add(amount)
	}

	totalDeductions := decimal.Zero
	for _, comp := range deductions {
		amount := componentAmount(comp, baseSalary)
		if amount.IsZero() {
			continue
		}
		sortOrder++
		items = append(items, componentItem(comp, amount, sortOrder))
		totalDeductions = totalDeductions.Add(amount)
	}

	// Base salary is already inside totalEarnings; adding it again here
	// would double-count it.
	grossSalary := totalEarnings.Sub(totalDeductions)

	priorYtd, err := c.payslipRepo.GetYtdTotals(ctx, emp.ID, period.Year, period.Month)
	if err != nil {
		return payroll.PaySlip{}, nil, fmt.Errorf("ytd totals for employee %s: %w", emp.ID, err)
	}

	bases := wageBases(items)
	result, err := c.statutory.Calculate(bases, emp.StatutoryProfile(), period.Year, period.Month, priorYtd)
	if err != nil {
		return payroll.PaySlip{}, nil, fmt.Errorf("statutory for employee %s: %w", emp.ID, err)
	}

	// Statutory deductions are terminal: they never feed back into
	// another statutory base.
	for _, st := range []struct {
		code, name string
		amount     decimal.Decimal
	}{
		{"EPF", "EPF Employee Contribution", result.EPFEmployee},
		{"SOCSO", "SOCSO Employee Contribution", result.SocsoEmployee},
		{"EIS", "EIS Employee Contribution", result.EISEmployee},
		{"PCB", "Monthly Tax Deduction", result.PCB},
	} {
		if st.amount.IsZero() {
			continue
		}
		sortOrder++
		items = append(items, payroll.PaySlipItem{
			ComponentCode: st.code,
			Name:          st.name,
			Type:          payroll.ComponentTypeDeduction,
			Method:        payroll.MethodFixed,
			Amount:        st.amount,
			SortOrder:     sortOrder,
		})
	}

	slip := payroll.PaySlip{
		RunID:                 runID,
		Period:                period,
		EmployeeID:            emp.ID,
		EmployeeName:          emp.FullName,
		EmployeeCode:          emp.EmployeeCode,
		BankName:              emp.BankName,
		BankAccountHolderName: emp.BankAccountHolderName,
		BankAccountNumber:     emp.BankAccountNumber,
		BaseSalary:            baseSalary,
		TotalEarnings:         totalEarnings,
		TotalDeductions:       totalDeductions,
		GrossSalary:           grossSalary,
	}
	slip.ApplyStatutory(result)
	slip.Ytd = result.Accumulate(priorYtd, grossSalary, bases.PCB)

	return slip, items, nil
}

// Recalculate rebuilds one payslip from current data. Existing items are
// deleted first and the slip's computed fields are fully replaced, so no
// stale values from an earlier calculation survive.
func (c *PayslipCalculator) Recalculate(ctx context.Context, paySlipID string, companyID string) (payroll.PaySlip, []payroll.PaySlipItem, error) {
	slip, err := c.payslipRepo.GetByID(ctx, paySlipID)
	if err != nil {
		return payroll.PaySlip{}, nil, err
	}

	emp, err := c.employeeRepo.GetByID(ctx, slip.EmployeeID, companyID)
	if err != nil {
		return payroll.PaySlip{}, nil, err
	}
	salary, err := c.employeeRepo.GetCurrentSalary(ctx, emp.ID)
	if err != nil {
		return payroll.PaySlip{}, nil, err
	}
	earnings, err := c.componentRepo.FindActive(ctx, companyID, payroll.ComponentTypeEarning)
	if err != nil {
		return payroll.PaySlip{}, nil, err
	}
	deductions, err := c.componentRepo.FindActive(ctx, companyID, payroll.ComponentTypeDeduction)
	if err != nil {
		return payroll.PaySlip{}, nil, err
	}

	if err := c.payslipRepo.DeleteItems(ctx, slip.ID); err != nil {
		return payroll.PaySlip{}, nil, fmt.Errorf("delete items of payslip %s: %w", slip.ID, err)
	}

	rebuilt, items, err := c.Build(ctx, slip.RunID, slip.Period, emp, salary.BaseSalary, earnings, deductions)
	if err != nil {
		return payroll.PaySlip{}, nil, err
	}
	rebuilt.ID = slip.ID
	rebuilt.CreatedAt = slip.CreatedAt

	if err := c.payslipRepo.UpdateCalculations(ctx, rebuilt); err != nil {
		return payroll.PaySlip{}, nil, fmt.Errorf("update payslip %s: %w", slip.ID, err)
	}
	for i := range items {
		items[i].PaySlipID = slip.ID
	}
	if err := c.payslipRepo.BulkCreateItems(ctx, items); err != nil {
		return payroll.PaySlip{}, nil, fmt.Errorf("create items of payslip %s: %w", slip.ID, err)
	}

	return rebuilt, items, nil
}

func componentAmount(comp payroll.SalaryComponent, baseSalary decimal.Decimal) decimal.Decimal {
	if comp.Method == payroll.MethodPercentage {
		return baseSalary.Mul(comp.Amount).Div(oneHundred).Round(2)
	}
	return comp.Amount
}

func componentItem(comp payroll.SalaryComponent, amount decimal.Decimal, sortOrder int) payroll.PaySlipItem {
	return payroll.PaySlipItem{
		ComponentCode:   comp.Code,
		Name:            comp.Name,
		Type:            comp.Type,
		Method:          comp.Method,
		Amount:          amount,
		SortOrder:       sortOrder,
		EPFApplicable:   comp.EPFApplicable,
		SocsoApplicable: comp.SocsoApplicable,
		EISApplicable:   comp.EISApplicable,
		PCBApplicable:   comp.PCBApplicable,
	}
}

// wageBases sums the signed item amounts into per-contribution bases. An
// item excluded from a base is excluded there only, not from gross pay.
func wageBases(items []payroll.PaySlipItem) statutory.WageBases {
	bases := statutory.WageBases{
		EPF:   decimal.Zero,
		Socso: decimal.Zero,
		EIS:   decimal.Zero,
		PCB:   decimal.Zero,
	}
	for _, it := range items {
		amount := it.Amount
		if it.Type == payroll.ComponentTypeDeduction {
			amount = amount.Neg()
		}
		if it.EPFApplicable {
			bases.EPF = bases.EPF.Add(amount)
		}
		if it.SocsoApplicable {
			bases.Socso = bases.Socso.Add(amount)
		}
		if it.EISApplicable {
			bases.EIS = bases.EIS.Add(amount)
		}
		if it.PCBApplicable {
			bases.PCB = bases.PCB.Add(amount)
		}
	}
	return bases
}
