package response

import (
	"errors"
	"net/http"

	"github.com/gajiflow/payroll-backend-go/internal/domain/employee"
	"github.com/gajiflow/payroll-backend-go/internal/domain/ledger"
	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/gajiflow/payroll-backend-go/internal/domain/statutory"
	"github.com/gajiflow/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrRunAlreadyExists):
		Conflict(w, "A payroll run already exists for this period")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)
	case errors.Is(err, payroll.ErrInvalidTransition):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrNoEligibleEmployees):
		BadRequest(w, "No eligible employees for this period", nil)
	case errors.Is(err, payroll.ErrRunNotDeletable):
		Conflict(w, "Only draft payroll runs can be deleted")
	case errors.Is(err, payroll.ErrPaySlipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrComponentNotFound):
		NotFound(w, "Salary component not found")
	case errors.Is(err, payroll.ErrComponentExists):
		Conflict(w, "Salary component code already exists")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrNoCurrentSalary):
		BadRequest(w, "Employee has no current salary record", nil)

	// Statutory domain errors
	case errors.Is(err, statutory.ErrNoMatchingRate),
		errors.Is(err, statutory.ErrAmbiguousRate),
		errors.Is(err, statutory.ErrInvalidDataset):
		UnprocessableEntity(w, err.Error())

	// Ledger domain errors
	case errors.Is(err, ledger.ErrAccountNotFound):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, ledger.ErrUnbalancedEntry):
		UnprocessableEntity(w, "Journal entry does not balance")
	case errors.Is(err, ledger.ErrEntryNotFound):
		NotFound(w, "Journal entry not found")
	case errors.Is(err, ledger.ErrEntryAlreadyReversed):
		Conflict(w, "Journal entry already reversed")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
