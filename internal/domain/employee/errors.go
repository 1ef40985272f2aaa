package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNoCurrentSalary  = errors.New("employee has no current salary record")
)
