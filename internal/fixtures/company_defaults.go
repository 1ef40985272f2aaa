package fixtures

import (
	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// GetDefaultSalaryComponents returns the starter component catalog for a new
// company. Amounts are placeholders the company tunes per employee; the
// applicability flags encode which statutory wage bases each component feeds
// under Malaysian practice.
func GetDefaultSalaryComponents(companyID string) []payroll.SalaryComponent {
	return []payroll.SalaryComponent{
		// Fixed allowance: contractual, counts toward every statutory base.
		{
			CompanyID:       companyID,
			Code:            "FIXALLOW",
			Name:            "Fixed Allowance",
			Type:            payroll.ComponentTypeEarning,
			Method:          payroll.MethodFixed,
			Amount:          decimal.NewFromInt(0),
			EPFApplicable:   true,
			SocsoApplicable: true,
			EISApplicable:   true,
			PCBApplicable:   true,
			IsActive:        true,
		},

		// Travel reimbursement: not wages, exempt from all statutory bases.
		{
			CompanyID: companyID,
			Code:      "TRAVEL",
			Name:      "Travel Allowance",
			Type:      payroll.ComponentTypeEarning,
			Method:    payroll.MethodFixed,
			Amount:    decimal.NewFromInt(0),
			IsActive:  true,
		},

		// Bonus: EPF and PCB apply; SOCSO and EIS exclude bonuses.
		{
			CompanyID:     companyID,
			Code:          "BONUS",
			Name:          "Bonus",
			Type:          payroll.ComponentTypeEarning,
			Method:        payroll.MethodPercentage,
			Amount:        decimal.NewFromInt(0),
			EPFApplicable: true,
			PCBApplicable: true,
			IsActive:      true,
		},

		// Overtime: subject to SOCSO, EIS and PCB but not EPF.
		{
			CompanyID:       companyID,
			Code:            "OVERTIME",
			Name:            "Overtime Pay",
			Type:            payroll.ComponentTypeEarning,
			Method:          payroll.MethodFixed,
			Amount:          decimal.NewFromInt(0),
			SocsoApplicable: true,
			EISApplicable:   true,
			PCBApplicable:   true,
			IsActive:        true,
		},

		// Unpaid leave: reduces every statutory base along with gross.
		{
			CompanyID:       companyID,
			Code:            "UNPAID",
			Name:            "Unpaid Leave Deduction",
			Type:            payroll.ComponentTypeDeduction,
			Method:          payroll.MethodFixed,
			Amount:          decimal.NewFromInt(0),
			EPFApplicable:   true,
			SocsoApplicable: true,
			EISApplicable:   true,
			PCBApplicable:   true,
			IsActive:        true,
		},

		// Salary advance recovery: a cash deduction, no statutory effect.
		{
			CompanyID: companyID,
			Code:      "ADVANCE",
			Name:      "Salary Advance Recovery",
			Type:      payroll.ComponentTypeDeduction,
			Method:    payroll.MethodFixed,
			Amount:    decimal.NewFromInt(0),
			IsActive:  true,
		},
	}
}
