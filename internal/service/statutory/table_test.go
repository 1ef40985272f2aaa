package statutory

import (
	"testing"
	"time"

	"github.com/gajiflow/payroll-backend-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf2024 = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func malaysianUnder60(wage string) statutory.Facts {
	return statutory.DeriveFacts(
		time.Date(1990, time.January, 15, 0, 0, 0, 0, time.UTC),
		statutory.NationalityMalaysian,
		decimal.RequireFromString(wage),
		asOf2024,
	)
}

func TestRateTable_EmbeddedDatasets_Load(t *testing.T) {
	t.Parallel()

	table, err := NewRateTable()
	require.NoError(t, err)

	for _, kind := range []statutory.ContributionKind{
		statutory.KindEPFEmployee, statutory.KindEPFEmployer,
		statutory.KindSocsoEmployee, statutory.KindSocsoEmployer,
		statutory.KindEISEmployee, statutory.KindEISEmployer,
		statutory.KindPCB,
	} {
		assert.NotEmpty(t, table.entries[kind], "kind %s has no entries", kind)
	}

	require.NotNil(t, table.Ceiling(statutory.KindEPFEmployee))
	assert.True(t, table.Ceiling(statutory.KindEPFEmployee).Equal(decimal.NewFromInt(20000)))
	require.NotNil(t, table.Ceiling(statutory.KindSocsoEmployee))
	assert.True(t, table.Ceiling(statutory.KindSocsoEmployee).Equal(decimal.NewFromInt(6000)))
	require.NotNil(t, table.Ceiling(statutory.KindEISEmployee))
	assert.True(t, table.Ceiling(statutory.KindEISEmployee).Equal(decimal.NewFromInt(6000)))
	assert.Nil(t, table.Ceiling(statutory.KindPCB))
}

func TestRateTable_Resolve_FlatBandAmounts(t *testing.T) {
	t.Parallel()

	table, err := NewRateTable()
	require.NoError(t, err)

	wage := decimal.RequireFromString("3000.00")
	facts := malaysianUnder60("3000.00")

	tests := []struct {
		kind statutory.ContributionKind
		want string
	}{
		{statutory.KindEPFEmployee, "330.00"},
		{statutory.KindEPFEmployer, "390.00"},
		{statutory.KindSocsoEmployee, "14.75"},
		{statutory.KindSocsoEmployer, "51.63"},
		{statutory.KindEISEmployee, "5.90"},
		{statutory.KindEISEmployer, "5.90"},
	}
	for _, tc := range tests {
		res, err := table.Resolve(tc.kind, wage, asOf2024, facts)
		require.NoError(t, err, "kind %s", tc.kind)
		assert.Equal(t, tc.want, res.Amount.StringFixed(2), "kind %s", tc.kind)
		assert.Nil(t, res.AppliedRate, "band amounts are flat values")
	}
}

func TestRateTable_Resolve_BandBoundaries(t *testing.T) {
	t.Parallel()

	table, err := NewRateTable()
	require.NoError(t, err)

	// 2900.00 sits in the band below, 2900.01 in the band above. A wage on
	// either side of the one-cent boundary must resolve to exactly one band.
	low, err := table.Resolve(statutory.KindEPFEmployee, decimal.RequireFromString("2900.00"), asOf2024, malaysianUnder60("2900.00"))
	require.NoError(t, err)
	high, err := table.Resolve(statutory.KindEPFEmployee, decimal.RequireFromString("2900.01"), asOf2024, malaysianUnder60("2900.01"))
	require.NoError(t, err)

	assert.True(t, low.BandTo.Equal(decimal.RequireFromString("2900.00")))
	assert.True(t, high.BandFrom.Equal(decimal.RequireFromString("2900.01")))
	assert.NotEqual(t, low.Amount.StringFixed(2), high.Amount.StringFixed(2))
}

func TestRateTable_Resolve_CeilingClampsWage(t *testing.T) {
	t.Parallel()

	table, err := NewRateTable()
	require.NoError(t, err)

	// 25,000 exceeds the 20,000 provident-fund ceiling: the contribution
	// equals the contribution at the ceiling.
	facts := malaysianUnder60("25000.00")
	res, err := table.Resolve(statutory.KindEPFEmployee, decimal.RequireFromString("25000.00"), asOf2024, facts)
	require.NoError(t, err)
	assert.Equal(t, "2200.00", res.Amount.StringFixed(2))

	atCeiling, err := table.Resolve(statutory.KindEPFEmployee, decimal.RequireFromString("20000.00"), asOf2024, facts)
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(atCeiling.Amount))

	er, err := table.Resolve(statutory.KindEPFEmployer, decimal.RequireFromString("25000.00"), asOf2024, facts)
	require.NoError(t, err)
	assert.Equal(t, "2400.00", er.Amount.StringFixed(2))
}

func TestRateTable_Resolve_SeniorRates(t *testing.T) {
	t.Parallel()

	table, err := NewRateTable()
	require.NoError(t, err)

	dob := time.Date(1960, time.March, 1, 0, 0, 0, 0, time.UTC)
	wage := decimal.RequireFromString("3000.00")
	facts := statutory.DeriveFacts(dob, statutory.NationalityMalaysian, wage, asOf2024)
	require.Equal(t, statutory.Age60AndAbove, facts.AgeCategory)

	emp, err := table.Resolve(statutory.KindEPFEmployee, wage, asOf2024, facts)
	require.NoError(t, err)
	assert.True(t, emp.Amount.IsZero())

	er, err := table.Resolve(statutory.KindEPFEmployer, wage, asOf2024, facts)
	require.NoError(t, err)
	assert.Equal(t, "120.00", er.Amount.StringFixed(2))

	socsoEr, err := table.Resolve(statutory.KindSocsoEmployer, wage, asOf2024, facts)
	require.NoError(t, err)
	assert.Equal(t, "37.50", socsoEr.Amount.StringFixed(2))
}

func TestRateTable_Resolve_NoMatchIsAnError(t *testing.T) {
	t.Parallel()

	effectiveFrom := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rate := decimal.RequireFromString("0.1100")
	entries := []statutory.RateEntry{{
		Kind:          statutory.KindEPFEmployee,
		EffectiveFrom: effectiveFrom,
		WageFrom:      decimal.Zero,
		Rate:          &rate,
	}}
	table, err := NewRateTableFromEntries(entries, nil)
	require.NoError(t, err)

	// A date before any entry's effective window must fail loudly, never
	// default to a zero contribution.
	before := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)
	_, err = table.Resolve(statutory.KindEPFEmployee, decimal.NewFromInt(3000), before, malaysianUnder60("3000.00"))
	assert.ErrorIs(t, err, statutory.ErrNoMatchingRate)

	_, err = table.Resolve(statutory.KindPCB, decimal.NewFromInt(3000), asOf2024, malaysianUnder60("3000.00"))
	assert.ErrorIs(t, err, statutory.ErrUnknownContributionKind)
}

func TestRateTable_Resolve_MostSpecificWins(t *testing.T) {
	t.Parallel()

	effectiveFrom := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	genericRate := decimal.RequireFromString("0.1000")
	foreignRate := decimal.RequireFromString("0.1100")
	foreign := statutory.NationalityForeign

	entries := []statutory.RateEntry{
		{
			Kind:          statutory.KindEPFEmployee,
			EffectiveFrom: effectiveFrom,
			WageFrom:      decimal.Zero,
			Rate:          &genericRate,
		},
		{
			Kind:          statutory.KindEPFEmployee,
			EffectiveFrom: effectiveFrom,
			WageFrom:      decimal.Zero,
			Rate:          &foreignRate,
			Conditions:    statutory.ConditionSet{Nationality: &foreign},
		},
	}
	table, err := NewRateTableFromEntries(entries, nil)
	require.NoError(t, err)

	facts := statutory.DeriveFacts(time.Time{}, statutory.NationalityForeign, decimal.NewFromInt(2000), asOf2024)
	res, err := table.Resolve(statutory.KindEPFEmployee, decimal.NewFromInt(2000), asOf2024, facts)
	require.NoError(t, err)
	assert.Equal(t, "220.00", res.Amount.StringFixed(2))
}

func TestRateTable_Resolve_EqualSpecificityIsAmbiguous(t *testing.T) {
	t.Parallel()

	effectiveFrom := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rateA := decimal.RequireFromString("0.1000")
	rateB := decimal.RequireFromString("0.1100")
	under60 := statutory.AgeUnder60
	malaysian := statutory.NationalityMalaysian

	// Two single-condition entries covering the same wage: neither is more
	// specific, so resolution must refuse instead of picking one.
	entries := []statutory.RateEntry{
		{
			Kind:          statutory.KindEPFEmployee,
			EffectiveFrom: effectiveFrom,
			WageFrom:      decimal.Zero,
			Rate:          &rateA,
			Conditions:    statutory.ConditionSet{AgeCategory: &under60},
		},
		{
			Kind:          statutory.KindEPFEmployee,
			EffectiveFrom: effectiveFrom,
			WageFrom:      decimal.Zero,
			Rate:          &rateB,
			Conditions:    statutory.ConditionSet{Nationality: &malaysian},
		},
	}
	table, err := NewRateTableFromEntries(entries, nil)
	require.NoError(t, err)

	_, err = table.Resolve(statutory.KindEPFEmployee, decimal.NewFromInt(2000), asOf2024, malaysianUnder60("2000.00"))
	assert.ErrorIs(t, err, statutory.ErrAmbiguousRate)
}

func TestRateTable_EffectiveDating_NewEntrySupersedes(t *testing.T) {
	t.Parallel()

	jan2023 := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	jan2024 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	oldRate := decimal.RequireFromString("0.0900")
	newRate := decimal.RequireFromString("0.1100")

	entries := []statutory.RateEntry{
		{
			Kind:          statutory.KindEPFEmployee,
			EffectiveFrom: jan2023,
			EffectiveTo:   &jan2024,
			WageFrom:      decimal.Zero,
			Rate:          &oldRate,
		},
		{
			Kind:          statutory.KindEPFEmployee,
			EffectiveFrom: jan2024,
			WageFrom:      decimal.Zero,
			Rate:          &newRate,
		},
	}
	table, err := NewRateTableFromEntries(entries, nil)
	require.NoError(t, err)

	wage := decimal.NewFromInt(1000)
	facts := malaysianUnder60("1000.00")

	old, err := table.Resolve(statutory.KindEPFEmployee, wage, time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), facts)
	require.NoError(t, err)
	assert.Equal(t, "90.00", old.Amount.StringFixed(2))

	current, err := table.Resolve(statutory.KindEPFEmployee, wage, asOf2024, facts)
	require.NoError(t, err)
	assert.Equal(t, "110.00", current.Amount.StringFixed(2))
}

func TestNewRateTableFromEntries_RejectsBrokenPartitions(t *testing.T) {
	t.Parallel()

	effectiveFrom := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rate := decimal.RequireFromString("0.1100")

	band := func(from, to string) statutory.RateEntry {
		e := statutory.RateEntry{
			Kind:          statutory.KindEPFEmployee,
			EffectiveFrom: effectiveFrom,
			WageFrom:      decimal.RequireFromString(from),
			Rate:          &rate,
		}
		if to != "" {
			upper := decimal.RequireFromString(to)
			e.WageTo = &upper
		}
		return e
	}

	tests := []struct {
		name    string
		entries []statutory.RateEntry
	}{
		{"first band not at zero", []statutory.RateEntry{band("100.00", "")}},
		{"gap between bands", []statutory.RateEntry{band("0.00", "100.00"), band("100.02", "")}},
		{"overlapping bands", []statutory.RateEntry{band("0.00", "100.00"), band("100.00", "")}},
		{"last band closed", []statutory.RateEntry{band("0.00", "100.00")}},
		{"amount and rate both set", func() []statutory.RateEntry {
			e := band("0.00", "")
			amount := decimal.NewFromInt(10)
			e.Amount = &amount
			return []statutory.RateEntry{e}
		}()},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRateTableFromEntries(tc.entries, nil)
			assert.ErrorIs(t, err, statutory.ErrInvalidDataset)
		})
	}
}

func TestRateTable_Bands_SortedProgressiveSchedule(t *testing.T) {
	t.Parallel()

	table, err := NewRateTable()
	require.NoError(t, err)

	bands, err := table.Bands(statutory.KindPCB, asOf2024, malaysianUnder60("3000.00"))
	require.NoError(t, err)
	require.NotEmpty(t, bands)

	assert.True(t, bands[0].WageFrom.IsZero())
	assert.Nil(t, bands[len(bands)-1].WageTo)
	for i := 1; i < len(bands); i++ {
		assert.True(t, bands[i-1].WageFrom.LessThan(bands[i].WageFrom))
	}
}

func TestDeriveFacts(t *testing.T) {
	t.Parallel()

	dob := time.Date(1964, time.June, 1, 0, 0, 0, 0, time.UTC)

	dayBefore60 := time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)
	facts := statutory.DeriveFacts(dob, statutory.NationalityMalaysian, decimal.NewFromInt(5000), dayBefore60)
	assert.Equal(t, statutory.AgeUnder60, facts.AgeCategory)
	assert.Equal(t, statutory.Salary5000AndBelow, facts.SalaryCategory)

	on60th := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	facts = statutory.DeriveFacts(dob, statutory.NationalityMalaysian, decimal.RequireFromString("5000.01"), on60th)
	assert.Equal(t, statutory.Age60AndAbove, facts.AgeCategory)
	assert.Equal(t, statutory.SalaryAbove5000, facts.SalaryCategory)
}
