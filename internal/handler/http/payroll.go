package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/gajiflow/payroll-backend-go/internal/handler/http/response"
	"github.com/gajiflow/payroll-backend-go/internal/pkg/validator"
	payrollsvc "github.com/gajiflow/payroll-backend-go/internal/service/payroll"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type PayrollHandler interface {
	// Runs
	CreateRun(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
	CalculateRun(w http.ResponseWriter, r *http.Request)
	ApproveRun(w http.ResponseWriter, r *http.Request)
	FinalizeRun(w http.ResponseWriter, r *http.Request)
	MarkRunPaid(w http.ResponseWriter, r *http.Request)
	CancelRun(w http.ResponseWriter, r *http.Request)
	DeleteRun(w http.ResponseWriter, r *http.Request)

	// Payslips
	ListPaySlips(w http.ResponseWriter, r *http.Request)
	GetPaySlip(w http.ResponseWriter, r *http.Request)
	RecalculatePaySlip(w http.ResponseWriter, r *http.Request)

	// Components
	CreateComponent(w http.ResponseWriter, r *http.Request)
	GetComponent(w http.ResponseWriter, r *http.Request)
	ListComponents(w http.ResponseWriter, r *http.Request)
	SeedDefaultComponents(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	runService       *payrollsvc.RunService
	componentService *payrollsvc.ComponentService
}

func NewPayrollHandler(runService *payrollsvc.RunService, componentService *payrollsvc.ComponentService) PayrollHandler {
	return &payrollHandlerImpl{runService: runService, componentService: componentService}
}

func companyIDFromToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	_, claims, _ := jwtauth.FromContext(r.Context())
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		response.Unauthorized(w, "Company ID not found in token")
		return "", false
	}
	return companyID, true
}

// ========== RUNS ==========

func (h *payrollHandlerImpl) CreateRun(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	var req payroll.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	run, err := h.runService.Create(r.Context(), companyID, payroll.Period{Year: req.Year, Month: req.Month})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll run created", payroll.NewRunResponse(run))
}

func (h *payrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	run, err := h.runService.Get(r.Context(), chi.URLParam(r, "id"), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.NewRunResponse(run))
}

func (h *payrollHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "Query parameter 'year' is required", nil)
		return
	}

	runs, err := h.runService.List(r.Context(), companyID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]payroll.RunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, payroll.NewRunResponse(run))
	}
	response.Success(w, resp)
}

func (h *payrollHandlerImpl) CalculateRun(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	result, err := h.runService.Calculate(r.Context(), chi.URLParam(r, "id"), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := payroll.CalculateRunResponse{
		Success:      true,
		PaySlipCount: result.SlipCount,
		Totals:       payroll.NewRunTotalsResponse(result.Run.Totals),
	}
	for _, re := range result.Errors {
		resp.Errors = append(resp.Errors, payroll.RunErrorResponse{
			EmployeeID:   re.EmployeeID,
			EmployeeName: re.EmployeeName,
			Reason:       re.Reason,
		})
	}
	response.SuccessWithMessage(w, "Payroll run calculated", resp)
}

func (h *payrollHandlerImpl) ApproveRun(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	run, err := h.runService.Approve(r.Context(), chi.URLParam(r, "id"), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run approved", payroll.NewRunResponse(run))
}

func (h *payrollHandlerImpl) FinalizeRun(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	run, err := h.runService.Finalize(r.Context(), chi.URLParam(r, "id"), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run finalized", payroll.NewRunResponse(run))
}

func (h *payrollHandlerImpl) MarkRunPaid(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	var req payroll.MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}
	paymentDate, _ := validator.IsValidDate(req.PaymentDate)

	run, err := h.runService.MarkPaid(r.Context(), chi.URLParam(r, "id"), companyID, paymentDate, req.BankAccountID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run marked as paid", payroll.NewRunResponse(run))
}

func (h *payrollHandlerImpl) CancelRun(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	run, err := h.runService.Cancel(r.Context(), chi.URLParam(r, "id"), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run cancelled", payroll.NewRunResponse(run))
}

func (h *payrollHandlerImpl) DeleteRun(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	if err := h.runService.Delete(r.Context(), chi.URLParam(r, "id"), companyID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run deleted", nil)
}

// ========== PAYSLIPS ==========

func (h *payrollHandlerImpl) ListPaySlips(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	slips, err := h.runService.PaySlips(r.Context(), chi.URLParam(r, "id"), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]payroll.PaySlipResponse, 0, len(slips))
	for _, slip := range slips {
		resp = append(resp, payroll.NewPaySlipResponse(slip, nil))
	}
	response.Success(w, resp)
}

func (h *payrollHandlerImpl) GetPaySlip(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	slip, items, err := h.runService.PaySlip(r.Context(), chi.URLParam(r, "id"), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.NewPaySlipResponse(slip, items))
}

func (h *payrollHandlerImpl) RecalculatePaySlip(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	slip, items, err := h.runService.RecalculatePaySlip(r.Context(), chi.URLParam(r, "id"), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip recalculated", payroll.NewPaySlipResponse(slip, items))
}

// ========== COMPONENTS ==========

func (h *payrollHandlerImpl) CreateComponent(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	var req payroll.CreateComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	component, err := h.componentService.Create(r.Context(), companyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary component created", payroll.NewComponentResponse(component))
}

func (h *payrollHandlerImpl) GetComponent(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	component, err := h.componentService.Get(r.Context(), chi.URLParam(r, "id"), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.NewComponentResponse(component))
}

func (h *payrollHandlerImpl) ListComponents(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	components, err := h.componentService.List(r.Context(), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]payroll.ComponentResponse, 0, len(components))
	for _, c := range components {
		resp = append(resp, payroll.NewComponentResponse(c))
	}
	response.Success(w, resp)
}

func (h *payrollHandlerImpl) SeedDefaultComponents(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDFromToken(w, r)
	if !ok {
		return
	}

	created, err := h.componentService.SeedDefaults(r.Context(), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]payroll.ComponentResponse, 0, len(created))
	for _, c := range created {
		resp = append(resp, payroll.NewComponentResponse(c))
	}
	response.SuccessWithMessage(w, "Default salary components seeded", resp)
}
