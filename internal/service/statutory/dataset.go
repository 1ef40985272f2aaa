package statutory

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/gajiflow/payroll-backend-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// The contribution schedules ship as versioned datasets embedded in the
// binary. A jurisdictional update is a data change, not a code change.
//
//go:embed data/*.json
var dataFS embed.FS

type datasetFile struct {
	Schedule    string      `json:"schedule"`
	Description string      `json:"description"`
	WageCeiling *string     `json:"wage_ceiling"`
	Entries     []entryJSON `json:"entries"`
}

type entryJSON struct {
	Type          string         `json:"type"`
	EffectiveFrom string         `json:"effective_from"`
	EffectiveTo   *string        `json:"effective_to"`
	WageFrom      string         `json:"wage_from"`
	WageTo        *string        `json:"wage_to"`
	Amount        *string        `json:"amount"`
	Rate          *string        `json:"rate"`
	Conditions    conditionsJSON `json:"conditions"`
}

type conditionsJSON struct {
	AgeCategory    *string `json:"age_category"`
	Nationality    *string `json:"nationality"`
	SalaryCategory *string `json:"salary_category"`
}

func loadEmbeddedDatasets() (map[statutory.ContributionKind][]statutory.RateEntry, map[statutory.Schedule]*decimal.Decimal, error) {
	files, err := dataFS.ReadDir("data")
	if err != nil {
		return nil, nil, fmt.Errorf("read embedded datasets: %w", err)
	}

	entries := make(map[statutory.ContributionKind][]statutory.RateEntry)
	ceilings := make(map[statutory.Schedule]*decimal.Decimal)

	for _, f := range files {
		raw, err := dataFS.ReadFile("data/" + f.Name())
		if err != nil {
			return nil, nil, fmt.Errorf("read dataset %s: %w", f.Name(), err)
		}

		var file datasetFile
		if err := json.Unmarshal(raw, &file); err != nil {
			return nil, nil, fmt.Errorf("parse dataset %s: %w", f.Name(), err)
		}

		schedule := statutory.Schedule(file.Schedule)
		if file.WageCeiling != nil {
			ceiling, err := decimal.NewFromString(*file.WageCeiling)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: dataset %s has invalid wage_ceiling %q", statutory.ErrInvalidDataset, f.Name(), *file.WageCeiling)
			}
			ceilings[schedule] = &ceiling
		}

		for i, je := range file.Entries {
			entry, err := je.toEntry()
			if err != nil {
				return nil, nil, fmt.Errorf("dataset %s entry %d: %w", f.Name(), i, err)
			}
			entries[entry.Kind] = append(entries[entry.Kind], entry)
		}
	}

	return entries, ceilings, nil
}

func (e entryJSON) toEntry() (statutory.RateEntry, error) {
	entry := statutory.RateEntry{Kind: statutory.ContributionKind(e.Type)}

	from, err := time.Parse("2006-01-02", e.EffectiveFrom)
	if err != nil {
		return entry, fmt.Errorf("%w: invalid effective_from %q", statutory.ErrInvalidDataset, e.EffectiveFrom)
	}
	entry.EffectiveFrom = from
	if e.EffectiveTo != nil {
		to, err := time.Parse("2006-01-02", *e.EffectiveTo)
		if err != nil {
			return entry, fmt.Errorf("%w: invalid effective_to %q", statutory.ErrInvalidDataset, *e.EffectiveTo)
		}
		entry.EffectiveTo = &to
	}

	if entry.WageFrom, err = decimal.NewFromString(e.WageFrom); err != nil {
		return entry, fmt.Errorf("%w: invalid wage_from %q", statutory.ErrInvalidDataset, e.WageFrom)
	}
	if e.WageTo != nil {
		to, err := decimal.NewFromString(*e.WageTo)
		if err != nil {
			return entry, fmt.Errorf("%w: invalid wage_to %q", statutory.ErrInvalidDataset, *e.WageTo)
		}
		entry.WageTo = &to
	}

	if e.Amount != nil {
		amount, err := decimal.NewFromString(*e.Amount)
		if err != nil {
			return entry, fmt.Errorf("%w: invalid amount %q", statutory.ErrInvalidDataset, *e.Amount)
		}
		entry.Amount = &amount
	}
	if e.Rate != nil {
		rate, err := decimal.NewFromString(*e.Rate)
		if err != nil {
			return entry, fmt.Errorf("%w: invalid rate %q", statutory.ErrInvalidDataset, *e.Rate)
		}
		entry.Rate = &rate
	}

	if e.Conditions.AgeCategory != nil {
		age := statutory.AgeCategory(*e.Conditions.AgeCategory)
		entry.Conditions.AgeCategory = &age
	}
	if e.Conditions.Nationality != nil {
		nat := statutory.Nationality(*e.Conditions.Nationality)
		entry.Conditions.Nationality = &nat
	}
	if e.Conditions.SalaryCategory != nil {
		cat := statutory.SalaryCategory(*e.Conditions.SalaryCategory)
		entry.Conditions.SalaryCategory = &cat
	}

	return entry, nil
}

var cent = decimal.New(1, -2)

// validateEntries enforces the dataset invariants: every entry carries
// exactly one of amount/rate, and within one (kind, age, nationality,
// effective window) the wage bands partition [0, inf) with no gaps or
// overlaps. Salary-category variants of one band pool into the same
// partition because the category is derived from the wage itself.
func validateEntries(entries map[statutory.ContributionKind][]statutory.RateEntry) error {
	for kind, list := range entries {
		groups := make(map[string][]statutory.RateEntry)
		for _, e := range list {
			if (e.Amount == nil) == (e.Rate == nil) {
				return fmt.Errorf("%w: %s entry [%s, %v] must set exactly one of amount and rate",
					statutory.ErrInvalidDataset, kind, e.WageFrom, e.WageTo)
			}
			if e.WageTo != nil && e.WageTo.LessThan(e.WageFrom) {
				return fmt.Errorf("%w: %s entry has wage_to below wage_from", statutory.ErrInvalidDataset, kind)
			}
			key := groupKey(e)
			groups[key] = append(groups[key], e)
		}

		for key, group := range groups {
			sort.Slice(group, func(i, j int) bool {
				return group[i].WageFrom.LessThan(group[j].WageFrom)
			})
			if !group[0].WageFrom.IsZero() {
				return fmt.Errorf("%w: %s bands for %s do not start at 0", statutory.ErrInvalidDataset, kind, key)
			}
			for i := 0; i < len(group)-1; i++ {
				if group[i].WageTo == nil {
					return fmt.Errorf("%w: %s bands for %s have an open band before the last", statutory.ErrInvalidDataset, kind, key)
				}
				gap := group[i+1].WageFrom.Sub(*group[i].WageTo)
				if !gap.Equal(cent) {
					return fmt.Errorf("%w: %s bands for %s gap or overlap at %s", statutory.ErrInvalidDataset, kind, key, group[i+1].WageFrom)
				}
			}
			if group[len(group)-1].WageTo != nil {
				return fmt.Errorf("%w: %s bands for %s do not extend to infinity", statutory.ErrInvalidDataset, kind, key)
			}
		}
	}
	return nil
}

func groupKey(e statutory.RateEntry) string {
	age, nat := "", ""
	if e.Conditions.AgeCategory != nil {
		age = string(*e.Conditions.AgeCategory)
	}
	if e.Conditions.Nationality != nil {
		nat = string(*e.Conditions.Nationality)
	}
	return age + "|" + nat + "|" + e.EffectiveFrom.Format("2006-01-02")
}
