package payroll

import "errors"

var (
	ErrRunNotFound      = errors.New("payroll run not found")
	ErrRunAlreadyExists = errors.New("payroll run already exists for this period")
	ErrInvalidPeriod    = errors.New("invalid payroll period")

	// ErrInvalidTransition guards the run state machine. It is returned
	// before any side effect occurs.
	ErrInvalidTransition = errors.New("payroll run status does not allow this operation")

	ErrNoEligibleEmployees = errors.New("no eligible employees with a current salary record")
	ErrRunNotDeletable     = errors.New("only draft payroll runs can be deleted")

	ErrPaySlipNotFound   = errors.New("payslip not found")
	ErrComponentNotFound = errors.New("salary component not found")
	ErrComponentExists   = errors.New("salary component code already exists")
)
