package employee

import (
	"time"

	"github.com/gajiflow/payroll-backend-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                    string
	CompanyID             string
	EmployeeCode          string
	FullName              string
	Gender                Gender
	DOB                   *time.Time
	Nationality           statutory.Nationality
	MaritalStatus         MaritalStatus
	SpouseEmployed        bool
	DependentChildren     int
	HireDate              time.Time
	ResignationDate       *time.Time
	EmploymentStatus      EmploymentStatus
	BankName              string
	BankAccountHolderName *string
	BankAccountNumber     string

	// Optional provident-fund rate overrides. When set they win over the
	// published schedule's rate; band and ceiling logic still applies.
	EPFEmployeeRate *decimal.Decimal
	EPFEmployerRate *decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// StatutoryProfile projects the fields the statutory calculator needs.
func (e Employee) StatutoryProfile() statutory.Profile {
	dob := time.Time{}
	if e.DOB != nil {
		dob = *e.DOB
	}
	return statutory.Profile{
		DateOfBirth:     dob,
		Nationality:     e.Nationality,
		Married:         e.MaritalStatus == MaritalStatusMarried,
		SpouseEmployed:  e.SpouseEmployed,
		Children:        e.DependentChildren,
		EPFEmployeeRate: e.EPFEmployeeRate,
		EPFEmployerRate: e.EPFEmployerRate,
	}
}

type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

type MaritalStatus string

const (
	MaritalStatusSingle  MaritalStatus = "single"
	MaritalStatusMarried MaritalStatus = "married"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// Salary is one effective-dated base-salary record for an employee.
type Salary struct {
	ID            string
	EmployeeID    string
	BaseSalary    decimal.Decimal
	EffectiveDate time.Time
	EndDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
