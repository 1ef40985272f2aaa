package statutory

import (
	"fmt"
	"sort"
	"time"

	"github.com/gajiflow/payroll-backend-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// RateTable resolves statutory contributions from the versioned,
// effective-dated schedules.
type RateTable struct {
	entries  map[statutory.ContributionKind][]statutory.RateEntry
	ceilings map[statutory.Schedule]*decimal.Decimal
}

// NewRateTable loads and validates the embedded datasets.
func NewRateTable() (*RateTable, error) {
	entries, ceilings, err := loadEmbeddedDatasets()
	if err != nil {
		return nil, err
	}
	return NewRateTableFromEntries(flatten(entries), ceilings)
}

// NewRateTableFromEntries builds a table from an explicit entry set. Used by
// tests and by deployments that load schedules from external storage.
func NewRateTableFromEntries(entries []statutory.RateEntry, ceilings map[statutory.Schedule]*decimal.Decimal) (*RateTable, error) {
	byKind := make(map[statutory.ContributionKind][]statutory.RateEntry)
	for _, e := range entries {
		byKind[e.Kind] = append(byKind[e.Kind], e)
	}
	if err := validateEntries(byKind); err != nil {
		return nil, err
	}
	if ceilings == nil {
		ceilings = make(map[statutory.Schedule]*decimal.Decimal)
	}
	return &RateTable{entries: byKind, ceilings: ceilings}, nil
}

func flatten(m map[statutory.ContributionKind][]statutory.RateEntry) []statutory.RateEntry {
	var out []statutory.RateEntry
	for _, list := range m {
		out = append(out, list...)
	}
	return out
}

// Ceiling returns the wage ceiling for a contribution kind's schedule, or
// nil when the schedule is uncapped.
func (t *RateTable) Ceiling(kind statutory.ContributionKind) *decimal.Decimal {
	return t.ceilings[kind.Schedule()]
}

// ClampWage caps the wage at the schedule's ceiling before rate or band
// application. Contributions above the ceiling equal the contribution at
// the ceiling.
func (t *RateTable) ClampWage(kind statutory.ContributionKind, wage decimal.Decimal) decimal.Decimal {
	ceiling := t.Ceiling(kind)
	if ceiling != nil && wage.GreaterThan(*ceiling) {
		return *ceiling
	}
	return wage
}

// Resolve finds the single entry covering (kind, wage, asOf, facts) and
// computes the contribution. Flat amounts are used verbatim; rates apply to
// the ceiling-clamped wage, rounded to 2 decimals half-up. Zero matches is
// a configuration error, never a silent zero.
func (t *RateTable) Resolve(kind statutory.ContributionKind, wage decimal.Decimal, asOf time.Time, facts statutory.Facts) (statutory.Resolution, error) {
	list, ok := t.entries[kind]
	if !ok {
		return statutory.Resolution{}, fmt.Errorf("%w: %s", statutory.ErrUnknownContributionKind, kind)
	}

	clamped := t.ClampWage(kind, wage)

	var matches []statutory.RateEntry
	for _, e := range list {
		if e.ActiveAt(asOf) && e.Conditions.Matches(facts) && e.ContainsWage(clamped) {
			matches = append(matches, e)
		}
	}

	entry, err := pickMostSpecific(matches)
	if err != nil {
		return statutory.Resolution{}, fmt.Errorf("%w: kind=%s wage=%s as_of=%s", err, kind, wage.StringFixed(2), asOf.Format("2006-01-02"))
	}

	resolution := statutory.Resolution{BandFrom: entry.WageFrom, BandTo: entry.WageTo}
	if entry.Amount != nil {
		resolution.Amount = *entry.Amount
		return resolution, nil
	}
	resolution.AppliedRate = entry.Rate
	resolution.Amount = clamped.Mul(*entry.Rate).Round(2)
	return resolution, nil
}

// Bands returns the full sorted band set matching (kind, asOf, facts)
// regardless of wage, keeping only the most specific condition set. The
// cumulative withholding strategy walks these progressively.
func (t *RateTable) Bands(kind statutory.ContributionKind, asOf time.Time, facts statutory.Facts) ([]statutory.RateEntry, error) {
	list, ok := t.entries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", statutory.ErrUnknownContributionKind, kind)
	}

	best := -1
	var bands []statutory.RateEntry
	for _, e := range list {
		if !e.ActiveAt(asOf) || !e.Conditions.Matches(facts) {
			continue
		}
		if s := e.Conditions.Specificity(); s > best {
			best = s
			bands = bands[:0]
		} else if s < best {
			continue
		}
		bands = append(bands, e)
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: kind=%s as_of=%s", statutory.ErrNoMatchingRate, kind, asOf.Format("2006-01-02"))
	}

	sort.Slice(bands, func(i, j int) bool {
		return bands[i].WageFrom.LessThan(bands[j].WageFrom)
	})
	return bands, nil
}

func pickMostSpecific(matches []statutory.RateEntry) (statutory.RateEntry, error) {
	switch len(matches) {
	case 0:
		return statutory.RateEntry{}, statutory.ErrNoMatchingRate
	case 1:
		return matches[0], nil
	}

	best := matches[0]
	ties := 1
	for _, m := range matches[1:] {
		switch s, b := m.Conditions.Specificity(), best.Conditions.Specificity(); {
		case s > b:
			best, ties = m, 1
		case s == b:
			ties++
		}
	}
	if ties > 1 {
		return statutory.RateEntry{}, statutory.ErrAmbiguousRate
	}
	return best, nil
}
