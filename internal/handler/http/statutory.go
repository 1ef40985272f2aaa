package http

import (
	"encoding/json"
	"net/http"

	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/gajiflow/payroll-backend-go/internal/domain/statutory"
	"github.com/gajiflow/payroll-backend-go/internal/handler/http/response"
	"github.com/gajiflow/payroll-backend-go/internal/pkg/validator"
	statutorysvc "github.com/gajiflow/payroll-backend-go/internal/service/statutory"
	"github.com/shopspring/decimal"
)

type StatutoryHandler interface {
	Preview(w http.ResponseWriter, r *http.Request)
}

type statutoryHandlerImpl struct {
	calculator *statutorysvc.Calculator
}

func NewStatutoryHandler(calculator *statutorysvc.Calculator) StatutoryHandler {
	return &statutoryHandlerImpl{calculator: calculator}
}

// Preview runs a what-if statutory calculation for a single wage without
// touching any stored payroll data.
func (h *statutoryHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	var req payroll.StatutoryPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	wage, err := decimal.NewFromString(req.MonthlyWage)
	if err != nil {
		response.BadRequest(w, "Invalid monthly wage", nil)
		return
	}
	dob, _ := validator.IsValidDate(req.DateOfBirth)

	profile := statutory.Profile{
		DateOfBirth:    dob,
		Nationality:    statutory.Nationality(req.Nationality),
		Married:        req.Married,
		SpouseEmployed: req.SpouseEmployed,
		Children:       req.Children,
	}
	if req.EPFEmployeeRate != nil {
		rate, err := decimal.NewFromString(*req.EPFEmployeeRate)
		if err != nil {
			response.BadRequest(w, "Invalid EPF employee rate", nil)
			return
		}
		profile.EPFEmployeeRate = &rate
	}
	if req.EPFEmployerRate != nil {
		rate, err := decimal.NewFromString(*req.EPFEmployerRate)
		if err != nil {
			response.BadRequest(w, "Invalid EPF employer rate", nil)
			return
		}
		profile.EPFEmployerRate = &rate
	}

	var ytd statutory.YtdTotals
	if req.YtdTaxableIncome != nil {
		if ytd.TaxableIncome, err = decimal.NewFromString(*req.YtdTaxableIncome); err != nil {
			response.BadRequest(w, "Invalid YTD taxable income", nil)
			return
		}
	}
	if req.YtdPCBPaid != nil {
		if ytd.PCB, err = decimal.NewFromString(*req.YtdPCBPaid); err != nil {
			response.BadRequest(w, "Invalid YTD PCB paid", nil)
			return
		}
	}

	bases := statutory.WageBases{EPF: wage, Socso: wage, EIS: wage, PCB: wage}
	result, err := h.calculator.Calculate(bases, profile, req.Year, req.Month, ytd)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.StatutoryPreviewResponse{
		EPFEmployee:                result.EPFEmployee.StringFixed(2),
		EPFEmployer:                result.EPFEmployer.StringFixed(2),
		SocsoEmployee:              result.SocsoEmployee.StringFixed(2),
		SocsoEmployer:              result.SocsoEmployer.StringFixed(2),
		EISEmployee:                result.EISEmployee.StringFixed(2),
		EISEmployer:                result.EISEmployer.StringFixed(2),
		PCB:                        result.PCB.StringFixed(2),
		TotalEmployeeDeductions:    result.TotalEmployeeDeductions.StringFixed(2),
		TotalEmployerContributions: result.TotalEmployerContributions.StringFixed(2),
	})
}
