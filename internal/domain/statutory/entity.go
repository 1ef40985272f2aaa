package statutory

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionKind identifies one statutory contribution share. Employee and
// employer shares are separate kinds so their schedules can diverge.
type ContributionKind string

const (
	KindEPFEmployee   ContributionKind = "epf_employee"
	KindEPFEmployer   ContributionKind = "epf_employer"
	KindSocsoEmployee ContributionKind = "socso_employee"
	KindSocsoEmployer ContributionKind = "socso_employer"
	KindEISEmployee   ContributionKind = "eis_employee"
	KindEISEmployer   ContributionKind = "eis_employer"
	KindPCB           ContributionKind = "pcb"
)

// Schedule groups contribution kinds that share one dataset and wage ceiling.
type Schedule string

const (
	ScheduleEPF   Schedule = "epf"
	ScheduleSocso Schedule = "socso"
	ScheduleEIS   Schedule = "eis"
	SchedulePCB   Schedule = "pcb"
)

func (k ContributionKind) Schedule() Schedule {
	switch k {
	case KindEPFEmployee, KindEPFEmployer:
		return ScheduleEPF
	case KindSocsoEmployee, KindSocsoEmployer:
		return ScheduleSocso
	case KindEISEmployee, KindEISEmployer:
		return ScheduleEIS
	default:
		return SchedulePCB
	}
}

type AgeCategory string

const (
	AgeUnder60     AgeCategory = "under_60"
	Age60AndAbove  AgeCategory = "60_and_above"
	ageThresholdYr             = 60
)

type Nationality string

const (
	NationalityMalaysian         Nationality = "malaysian"
	NationalityPermanentResident Nationality = "permanent_resident"
	NationalityForeign           Nationality = "foreign"
)

type SalaryCategory string

const (
	Salary5000AndBelow SalaryCategory = "5000_and_below"
	SalaryAbove5000    SalaryCategory = "above_5000"
)

var salaryCategoryThreshold = decimal.NewFromInt(5000)

// ConditionSet holds the optional eligibility keys on a rate entry. An unset
// key matches any value.
type ConditionSet struct {
	AgeCategory    *AgeCategory
	Nationality    *Nationality
	SalaryCategory *SalaryCategory
}

// Specificity counts the keys an entry constrains. When multiple entries
// match one lookup, the highest specificity wins.
func (c ConditionSet) Specificity() int {
	n := 0
	if c.AgeCategory != nil {
		n++
	}
	if c.Nationality != nil {
		n++
	}
	if c.SalaryCategory != nil {
		n++
	}
	return n
}

func (c ConditionSet) Matches(f Facts) bool {
	if c.AgeCategory != nil && *c.AgeCategory != f.AgeCategory {
		return false
	}
	if c.Nationality != nil && *c.Nationality != f.Nationality {
		return false
	}
	if c.SalaryCategory != nil && *c.SalaryCategory != f.SalaryCategory {
		return false
	}
	return true
}

// Facts are the concrete condition values derived for one employee, wage and
// lookup date. The salary category is derived from the uncapped wage.
type Facts struct {
	AgeCategory    AgeCategory
	Nationality    Nationality
	SalaryCategory SalaryCategory
}

func DeriveFacts(dateOfBirth time.Time, nationality Nationality, monthlyWage decimal.Decimal, asOf time.Time) Facts {
	age := AgeUnder60
	if !dateOfBirth.IsZero() && !asOf.Before(dateOfBirth.AddDate(ageThresholdYr, 0, 0)) {
		age = Age60AndAbove
	}
	cat := Salary5000AndBelow
	if monthlyWage.GreaterThan(salaryCategoryThreshold) {
		cat = SalaryAbove5000
	}
	return Facts{AgeCategory: age, Nationality: nationality, SalaryCategory: cat}
}

// RateEntry is one published, effective-dated row of a contribution
// schedule. Exactly one of Amount and Rate is set. Entries are immutable
// once published; a change is a new entry with a later EffectiveFrom.
type RateEntry struct {
	Kind          ContributionKind
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	WageFrom      decimal.Decimal
	WageTo        *decimal.Decimal // nil = open upper bound
	Amount        *decimal.Decimal
	Rate          *decimal.Decimal
	Conditions    ConditionSet
}

func (e RateEntry) ActiveAt(t time.Time) bool {
	if t.Before(e.EffectiveFrom) {
		return false
	}
	return e.EffectiveTo == nil || t.Before(*e.EffectiveTo)
}

func (e RateEntry) ContainsWage(w decimal.Decimal) bool {
	if w.LessThan(e.WageFrom) {
		return false
	}
	return e.WageTo == nil || w.LessThanOrEqual(*e.WageTo)
}

// Resolution is the outcome of one rate-table lookup.
type Resolution struct {
	Amount      decimal.Decimal
	AppliedRate *decimal.Decimal // nil for flat table values
	BandFrom    decimal.Decimal
	BandTo      *decimal.Decimal
}

// Profile carries the payroll-relevant statutory fields of an employee.
type Profile struct {
	DateOfBirth    time.Time
	Nationality    Nationality
	Married        bool
	SpouseEmployed bool
	Children       int

	// Optional overrides. When set they replace the EPF rate only; the
	// wage-band and ceiling logic still applies.
	EPFEmployeeRate *decimal.Decimal
	EPFEmployerRate *decimal.Decimal
}

// WageBases are the per-contribution taxable bases for one period, after
// payslip-item applicability flags have been applied.
type WageBases struct {
	EPF   decimal.Decimal
	Socso decimal.Decimal
	EIS   decimal.Decimal
	PCB   decimal.Decimal
}

// YtdTotals are the running year-to-date figures carried between periods.
type YtdTotals struct {
	GrossEarnings decimal.Decimal
	TaxableIncome decimal.Decimal
	EPFEmployee   decimal.Decimal
	EPFEmployer   decimal.Decimal
	SocsoEmployee decimal.Decimal
	SocsoEmployer decimal.Decimal
	EISEmployee   decimal.Decimal
	EISEmployer   decimal.Decimal
	PCB           decimal.Decimal
}

// Result is the outcome of a full statutory calculation for one period.
type Result struct {
	EPFEmployee   decimal.Decimal
	EPFEmployer   decimal.Decimal
	SocsoEmployee decimal.Decimal
	SocsoEmployer decimal.Decimal
	EISEmployee   decimal.Decimal
	EISEmployer   decimal.Decimal
	PCB           decimal.Decimal

	TotalEmployeeDeductions    decimal.Decimal
	TotalEmployerContributions decimal.Decimal
}

// Accumulate folds this period's result into prior year-to-date totals.
// gross and taxable are the period's gross earnings and PCB taxable base.
func (r Result) Accumulate(prior YtdTotals, gross, taxable decimal.Decimal) YtdTotals {
	return YtdTotals{
		GrossEarnings: prior.GrossEarnings.Add(gross),
		TaxableIncome: prior.TaxableIncome.Add(taxable),
		EPFEmployee:   prior.EPFEmployee.Add(r.EPFEmployee),
		EPFEmployer:   prior.EPFEmployer.Add(r.EPFEmployer),
		SocsoEmployee: prior.SocsoEmployee.Add(r.SocsoEmployee),
		SocsoEmployer: prior.SocsoEmployer.Add(r.SocsoEmployer),
		EISEmployee:   prior.EISEmployee.Add(r.EISEmployee),
		EISEmployer:   prior.EISEmployer.Add(r.EISEmployer),
		PCB:           prior.PCB.Add(r.PCB),
	}
}
