package payroll

import (
	"github.com/gajiflow/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// All monetary values cross the DTO boundary as fixed-point decimal strings
// with exactly 2 decimal places; rates carry up to 4.

// ========== RUN DTOs ==========

type CreateRunRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 2000 and 2100"})
	}
	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunTotalsResponse struct {
	Gross         string `json:"gross"`
	Deductions    string `json:"deductions"`
	Net           string `json:"net"`
	EPFEmployee   string `json:"epf_employee"`
	EPFEmployer   string `json:"epf_employer"`
	SocsoEmployee string `json:"socso_employee"`
	SocsoEmployer string `json:"socso_employer"`
	EISEmployee   string `json:"eis_employee"`
	EISEmployer   string `json:"eis_employer"`
	PCB           string `json:"pcb"`
}

func NewRunTotalsResponse(t RunTotals) RunTotalsResponse {
	return RunTotalsResponse{
		Gross:         t.Gross.StringFixed(2),
		Deductions:    t.Deductions.StringFixed(2),
		Net:           t.Net.StringFixed(2),
		EPFEmployee:   t.EPFEmployee.StringFixed(2),
		EPFEmployer:   t.EPFEmployer.StringFixed(2),
		SocsoEmployee: t.SocsoEmployee.StringFixed(2),
		SocsoEmployer: t.SocsoEmployer.StringFixed(2),
		EISEmployee:   t.EISEmployee.StringFixed(2),
		EISEmployer:   t.EISEmployer.StringFixed(2),
		PCB:           t.PCB.StringFixed(2),
	}
}

type RunResponse struct {
	ID                    string            `json:"id"`
	CompanyID             string            `json:"company_id"`
	Year                  int               `json:"year"`
	Month                 int               `json:"month"`
	RunNumber             int               `json:"run_number"`
	Status                string            `json:"status"`
	Totals                RunTotalsResponse `json:"totals"`
	JournalEntryID        *string           `json:"journal_entry_id,omitempty"`
	PaymentJournalEntryID *string           `json:"payment_journal_entry_id,omitempty"`
}

func NewRunResponse(run PayrollRun) RunResponse {
	return RunResponse{
		ID:                    run.ID,
		CompanyID:             run.CompanyID,
		Year:                  run.Period.Year,
		Month:                 run.Period.Month,
		RunNumber:             run.RunNumber,
		Status:                string(run.Status),
		Totals:                NewRunTotalsResponse(run.Totals),
		JournalEntryID:        run.JournalEntryID,
		PaymentJournalEntryID: run.PaymentJournalEntryID,
	}
}

type RunErrorResponse struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	Reason       string `json:"reason"`
}

type CalculateRunResponse struct {
	Success       bool               `json:"success"`
	PaySlipCount  int                `json:"payslip_count"`
	Totals        RunTotalsResponse  `json:"totals"`
	Errors        []RunErrorResponse `json:"errors"`
}

type MarkPaidRequest struct {
	PaymentDate   string  `json:"payment_date"` // YYYY-MM-DD
	BankAccountID *string `json:"bank_account_id,omitempty"`
}

func (r *MarkPaidRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.PaymentDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== PAYSLIP DTOs ==========

type PaySlipItemResponse struct {
	ComponentCode string `json:"component_code"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Method        string `json:"calculation_method"`
	Amount        string `json:"amount"`
	SortOrder     int    `json:"sort_order"`
}

type PaySlipResponse struct {
	ID              string                `json:"id"`
	RunID           string                `json:"run_id"`
	EmployeeID      string                `json:"employee_id"`
	EmployeeName    string                `json:"employee_name"`
	EmployeeCode    string                `json:"employee_code"`
	BaseSalary      string                `json:"base_salary"`
	TotalEarnings   string                `json:"total_earnings"`
	TotalDeductions string                `json:"total_deductions"`
	GrossSalary     string                `json:"gross_salary"`
	EPFEmployee     string                `json:"epf_employee"`
	EPFEmployer     string                `json:"epf_employer"`
	SocsoEmployee   string                `json:"socso_employee"`
	SocsoEmployer   string                `json:"socso_employer"`
	EISEmployee     string                `json:"eis_employee"`
	EISEmployer     string                `json:"eis_employer"`
	PCB             string                `json:"pcb"`
	NetSalary       string                `json:"net_salary"`
	Items           []PaySlipItemResponse `json:"items,omitempty"`
}

func NewPaySlipResponse(s PaySlip, items []PaySlipItem) PaySlipResponse {
	resp := PaySlipResponse{
		ID:              s.ID,
		RunID:           s.RunID,
		EmployeeID:      s.EmployeeID,
		EmployeeName:    s.EmployeeName,
		EmployeeCode:    s.EmployeeCode,
		BaseSalary:      s.BaseSalary.StringFixed(2),
		TotalEarnings:   s.TotalEarnings.StringFixed(2),
		TotalDeductions: s.TotalDeductions.StringFixed(2),
		GrossSalary:     s.GrossSalary.StringFixed(2),
		EPFEmployee:     s.EPFEmployee.StringFixed(2),
		EPFEmployer:     s.EPFEmployer.StringFixed(2),
		SocsoEmployee:   s.SocsoEmployee.StringFixed(2),
		SocsoEmployer:   s.SocsoEmployer.StringFixed(2),
		EISEmployee:     s.EISEmployee.StringFixed(2),
		EISEmployer:     s.EISEmployer.StringFixed(2),
		PCB:             s.PCB.StringFixed(2),
		NetSalary:       s.NetSalary.StringFixed(2),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, PaySlipItemResponse{
			ComponentCode: it.ComponentCode,
			Name:          it.Name,
			Type:          string(it.Type),
			Method:        string(it.Method),
			Amount:        it.Amount.StringFixed(2),
			SortOrder:     it.SortOrder,
		})
	}
	return resp
}

// ========== COMPONENT DTOs ==========

type CreateComponentRequest struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Type            string `json:"type"`   // "earning" or "deduction"
	Method          string `json:"method"` // "fixed" or "percentage"
	Amount          string `json:"amount"`
	EPFApplicable   *bool  `json:"is_epf_applicable,omitempty"`
	SocsoApplicable *bool  `json:"is_socso_applicable,omitempty"`
	EISApplicable   *bool  `json:"is_eis_applicable,omitempty"`
	PCBApplicable   *bool  `json:"is_pcb_applicable,omitempty"`
}

func (r *CreateComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "is required"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.Type != string(ComponentTypeEarning) && r.Type != string(ComponentTypeDeduction) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "must be 'earning' or 'deduction'"})
	}
	if r.Method != string(MethodFixed) && r.Method != string(MethodPercentage) {
		errs = append(errs, validator.ValidationError{Field: "method", Message: "must be 'fixed' or 'percentage'"})
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be a decimal string"})
	} else if amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ComponentResponse struct {
	ID              string `json:"id"`
	CompanyID       string `json:"company_id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Method          string `json:"calculation_method"`
	Amount          string `json:"amount"`
	EPFApplicable   bool   `json:"is_epf_applicable"`
	SocsoApplicable bool   `json:"is_socso_applicable"`
	EISApplicable   bool   `json:"is_eis_applicable"`
	PCBApplicable   bool   `json:"is_pcb_applicable"`
	IsActive        bool   `json:"is_active"`
}

func NewComponentResponse(c SalaryComponent) ComponentResponse {
	return ComponentResponse{
		ID:              c.ID,
		CompanyID:       c.CompanyID,
		Code:            c.Code,
		Name:            c.Name,
		Type:            string(c.Type),
		Method:          string(c.Method),
		Amount:          c.Amount.StringFixed(2),
		EPFApplicable:   c.EPFApplicable,
		SocsoApplicable: c.SocsoApplicable,
		EISApplicable:   c.EISApplicable,
		PCBApplicable:   c.PCBApplicable,
		IsActive:        c.IsActive,
	}
}

// ========== STATUTORY PREVIEW DTOs ==========

type StatutoryPreviewRequest struct {
	MonthlyWage       string  `json:"monthly_wage"`
	Year              int     `json:"year"`
	Month             int     `json:"month"`
	DateOfBirth       string  `json:"date_of_birth"` // YYYY-MM-DD
	Nationality       string  `json:"nationality"`
	Married           bool    `json:"married"`
	SpouseEmployed    bool    `json:"spouse_employed"`
	Children          int     `json:"children"`
	YtdTaxableIncome  *string `json:"ytd_taxable_income,omitempty"`
	YtdPCBPaid        *string `json:"ytd_pcb_paid,omitempty"`
	EPFEmployeeRate   *string `json:"epf_employee_rate,omitempty"`
	EPFEmployerRate   *string `json:"epf_employer_rate,omitempty"`
}

func (r *StatutoryPreviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, err := decimal.NewFromString(r.MonthlyWage); err != nil {
		errs = append(errs, validator.ValidationError{Field: "monthly_wage", Message: "must be a decimal string"})
	}
	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if _, ok := validator.IsValidDate(r.DateOfBirth); !ok {
		errs = append(errs, validator.ValidationError{Field: "date_of_birth", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	switch r.Nationality {
	case "malaysian", "permanent_resident", "foreign":
	default:
		errs = append(errs, validator.ValidationError{Field: "nationality", Message: "must be 'malaysian', 'permanent_resident' or 'foreign'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type StatutoryPreviewResponse struct {
	EPFEmployee                string `json:"epf_employee"`
	EPFEmployer                string `json:"epf_employer"`
	SocsoEmployee              string `json:"socso_employee"`
	SocsoEmployer              string `json:"socso_employer"`
	EISEmployee                string `json:"eis_employee"`
	EISEmployer                string `json:"eis_employer"`
	PCB                        string `json:"pcb"`
	TotalEmployeeDeductions    string `json:"total_employee_deductions"`
	TotalEmployerContributions string `json:"total_employer_contributions"`
}
