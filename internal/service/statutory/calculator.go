package statutory

import (
	"fmt"
	"time"

	"github.com/gajiflow/payroll-backend-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// Annual relief amounts applied by the default withholding strategy.
var (
	individualRelief = decimal.NewFromInt(9000)
	spouseRelief     = decimal.NewFromInt(4000)
	childRelief      = decimal.NewFromInt(2000)
	monthsPerYear    = decimal.NewFromInt(12)
)

// ScheduleResolver computes the income-tax withholding for one period. The
// exact formula is a strategy so the schedule can be substituted without
// touching the payroll orchestrator.
type ScheduleResolver interface {
	MonthlyWithholding(taxable decimal.Decimal, profile statutory.Profile, year, month int, ytd statutory.YtdTotals) (decimal.Decimal, error)
}

// Calculator resolves the four statutory contribution kinds for one
// employee, wage and period.
type Calculator struct {
	table    *RateTable
	schedule ScheduleResolver
}

func NewCalculator(table *RateTable) *Calculator {
	return &Calculator{table: table, schedule: NewCumulativeScheduleResolver(table)}
}

func NewCalculatorWithSchedule(table *RateTable, schedule ScheduleResolver) *Calculator {
	return &Calculator{table: table, schedule: schedule}
}

// Calculate computes all contributions for one period. EPF, SOCSO and EIS
// are period-local; withholding is cumulative across the year via the
// schedule resolver. Each base already reflects the payslip items'
// applicability flags.
func (c *Calculator) Calculate(bases statutory.WageBases, profile statutory.Profile, year, month int, ytd statutory.YtdTotals) (statutory.Result, error) {
	if month < 1 || month > 12 {
		return statutory.Result{}, fmt.Errorf("invalid period month %d", month)
	}
	asOf := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	var res statutory.Result
	var err error

	if res.EPFEmployee, err = c.contribution(statutory.KindEPFEmployee, bases.EPF, asOf, profile, profile.EPFEmployeeRate); err != nil {
		return statutory.Result{}, err
	}
	if res.EPFEmployer, err = c.contribution(statutory.KindEPFEmployer, bases.EPF, asOf, profile, profile.EPFEmployerRate); err != nil {
		return statutory.Result{}, err
	}
	if res.SocsoEmployee, err = c.contribution(statutory.KindSocsoEmployee, bases.Socso, asOf, profile, nil); err != nil {
		return statutory.Result{}, err
	}
	if res.SocsoEmployer, err = c.contribution(statutory.KindSocsoEmployer, bases.Socso, asOf, profile, nil); err != nil {
		return statutory.Result{}, err
	}
	if res.EISEmployee, err = c.contribution(statutory.KindEISEmployee, bases.EIS, asOf, profile, nil); err != nil {
		return statutory.Result{}, err
	}
	if res.EISEmployer, err = c.contribution(statutory.KindEISEmployer, bases.EIS, asOf, profile, nil); err != nil {
		return statutory.Result{}, err
	}
	if res.PCB, err = c.schedule.MonthlyWithholding(bases.PCB, profile, year, month, ytd); err != nil {
		return statutory.Result{}, err
	}

	res.TotalEmployeeDeductions = res.EPFEmployee.Add(res.SocsoEmployee).Add(res.EISEmployee).Add(res.PCB)
	res.TotalEmployerContributions = res.EPFEmployer.Add(res.SocsoEmployer).Add(res.EISEmployer)
	return res, nil
}

// contribution resolves one kind. An override replaces the published rate
// only; the ceiling clamp and band selection still apply.
func (c *Calculator) contribution(kind statutory.ContributionKind, wage decimal.Decimal, asOf time.Time, profile statutory.Profile, override *decimal.Decimal) (decimal.Decimal, error) {
	if wage.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}
	facts := statutory.DeriveFacts(profile.DateOfBirth, profile.Nationality, wage, asOf)
	resolution, err := c.table.Resolve(kind, wage, asOf, facts)
	if err != nil {
		return decimal.Zero, err
	}
	if override != nil {
		return c.table.ClampWage(kind, wage).Mul(*override).Round(2), nil
	}
	return resolution.Amount, nil
}

// CumulativeScheduleResolver is the default withholding strategy: a
// cumulative-average method over the progressive schedule, self-correcting
// across the year when earnings are irregular.
type CumulativeScheduleResolver struct {
	table *RateTable
}

func NewCumulativeScheduleResolver(table *RateTable) *CumulativeScheduleResolver {
	return &CumulativeScheduleResolver{table: table}
}

func (r *CumulativeScheduleResolver) MonthlyWithholding(taxable decimal.Decimal, profile statutory.Profile, year, month int, ytd statutory.YtdTotals) (decimal.Decimal, error) {
	if month < 1 || month > 12 {
		return decimal.Zero, fmt.Errorf("invalid period month %d", month)
	}
	asOf := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	facts := statutory.DeriveFacts(profile.DateOfBirth, profile.Nationality, taxable, asOf)

	bands, err := r.table.Bands(statutory.KindPCB, asOf, facts)
	if err != nil {
		return decimal.Zero, err
	}

	// Non-residents withhold at the schedule's flat rate on the month's
	// taxable base, with no reliefs.
	if profile.Nationality == statutory.NationalityForeign {
		if bands[0].Rate == nil {
			return decimal.Zero, fmt.Errorf("%w: pcb entry without rate", statutory.ErrInvalidDataset)
		}
		if taxable.IsNegative() {
			return decimal.Zero, nil
		}
		return taxable.Mul(*bands[0].Rate).Round(2), nil
	}

	ytdTaxable := ytd.TaxableIncome.Add(taxable)
	if ytdTaxable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}

	months := decimal.NewFromInt(int64(month))
	annualized := ytdTaxable.Div(months).Mul(monthsPerYear)
	chargeable := annualized.Sub(reliefs(profile))
	if chargeable.IsNegative() {
		chargeable = decimal.Zero
	}

	annualTax, err := progressiveTax(bands, chargeable)
	if err != nil {
		return decimal.Zero, err
	}

	// Due-to-date minus what the year has already withheld, clamped at
	// zero: over-withheld months self-correct in later periods.
	dueToDate := annualTax.Mul(months).Div(monthsPerYear)
	current := dueToDate.Sub(ytd.PCB).Round(2)
	if current.IsNegative() {
		return decimal.Zero, nil
	}
	return current, nil
}

func reliefs(profile statutory.Profile) decimal.Decimal {
	total := individualRelief
	if profile.Married && !profile.SpouseEmployed {
		total = total.Add(spouseRelief)
	}
	if profile.Children > 0 {
		total = total.Add(childRelief.Mul(decimal.NewFromInt(int64(profile.Children))))
	}
	return total
}

// progressiveTax integrates the rate bands up to the chargeable amount.
func progressiveTax(bands []statutory.RateEntry, chargeable decimal.Decimal) (decimal.Decimal, error) {
	tax := decimal.Zero
	for _, b := range bands {
		if b.Rate == nil {
			return decimal.Zero, fmt.Errorf("%w: pcb band [%s, %v] without rate", statutory.ErrInvalidDataset, b.WageFrom, b.WageTo)
		}
		lower := b.WageFrom
		if !lower.IsZero() {
			lower = lower.Sub(cent)
		}
		if chargeable.LessThanOrEqual(lower) {
			break
		}
		upper := chargeable
		if b.WageTo != nil && b.WageTo.LessThan(chargeable) {
			upper = *b.WageTo
		}
		tax = tax.Add(upper.Sub(lower).Mul(*b.Rate))
	}
	return tax, nil
}
