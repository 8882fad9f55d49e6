package dataprocessing

import (
	"errors"
	"sort"

	"uddannelsebi/pkg/contracts/domain"
)

// ErrNoData is returned when a selection matches no rows
var ErrNoData = errors.New("no data for selection")

// DropoutRate returns 100 * dropouts / (dropouts + completions). The rate is
// undefined when the denominator is not positive.
func DropoutRate(dropouts, completions float64) (float64, bool) {
	total := dropouts + completions
	if total <= 0 {
		return 0, false
	}
	return 100 * dropouts / total, true
}

// RatePtr is DropoutRate with the undefined case mapped to nil
func RatePtr(dropouts, completions float64) *float64 {
	rate, ok := DropoutRate(dropouts, completions)
	if !ok {
		return nil
	}
	return &rate
}

// Measure selects which count a ranking is based on
type Measure string

const (
	MeasureDropouts    Measure = "afbrudte"
	MeasureCompletions Measure = "fuldforte"
)

// TypeTotal sums the counts of one institution type
type TypeTotal struct {
	InstitutionType string  `json:"institution_type"`
	Dropouts        float64 `json:"afbrudte"`
	Completions     float64 `json:"fuldforte"`
}

// Value returns the count selected by m
func (t TypeTotal) Value(m Measure) float64 {
	if m == MeasureDropouts {
		return t.Dropouts
	}
	return t.Completions
}

// InstitutionTypeTotals sums dropouts and completions per institution type,
// ordered by m descending with ties broken by type name.
func InstitutionTypeTotals(records []domain.InstitutionRecord, m Measure) []TypeTotal {
	index := make(map[string]int)
	var totals []TypeTotal
	for _, r := range records {
		i, ok := index[r.InstitutionType]
		if !ok {
			i = len(totals)
			index[r.InstitutionType] = i
			totals = append(totals, TypeTotal{InstitutionType: r.InstitutionType})
		}
		totals[i].Dropouts += r.Dropouts
		totals[i].Completions += r.Completions
	}
	sort.SliceStable(totals, func(i, j int) bool {
		vi, vj := totals[i].Value(m), totals[j].Value(m)
		if vi != vj {
			return vi > vj
		}
		return totals[i].InstitutionType < totals[j].InstitutionType
	})
	return totals
}

// RatedInstitution is an active institution row with its dropout rate
type RatedInstitution struct {
	domain.InstitutionRecord
	DropoutRate float64 `json:"frafaldsrate"`
}

// ActiveInstitutions drops rows without any students and attaches the rate
// of every remaining row.
func ActiveInstitutions(records []domain.InstitutionRecord) []RatedInstitution {
	out := make([]RatedInstitution, 0, len(records))
	for _, r := range records {
		if !r.Active() {
			continue
		}
		rate, ok := DropoutRate(r.Dropouts, r.Completions)
		if !ok {
			continue
		}
		out = append(out, RatedInstitution{InstitutionRecord: r, DropoutRate: rate})
	}
	return out
}

// InstitutionTypes returns the sorted distinct types among active rows
func InstitutionTypes(records []domain.InstitutionRecord) []string {
	seen := make(map[string]bool)
	var types []string
	for _, r := range ActiveInstitutions(records) {
		if !seen[r.InstitutionType] {
			seen[r.InstitutionType] = true
			types = append(types, r.InstitutionType)
		}
	}
	sort.Strings(types)
	return types
}

// InstitutionYears returns the sorted distinct years of active rows of one type
func InstitutionYears(records []domain.InstitutionRecord, institutionType string) []int {
	seen := make(map[int]bool)
	var years []int
	for _, r := range ActiveInstitutions(records) {
		if r.InstitutionType != institutionType || seen[r.Year] {
			continue
		}
		seen[r.Year] = true
		years = append(years, r.Year)
	}
	sort.Ints(years)
	return years
}

// InstitutionSummary totals the active rows of one institution type
type InstitutionSummary struct {
	InstitutionType string   `json:"institution_type"`
	Year            *int     `json:"year"`
	Completions     float64  `json:"fuldforte"`
	Dropouts        float64  `json:"afbrudte"`
	DropoutRate     *float64 `json:"frafaldsrate"`
	Rows            int      `json:"rows"`
}

// SummarizeInstitution totals the active rows of institutionType, either for
// every year (year == nil) or for a single year. A single year still sums
// every row of the type in that year, so Rows can be greater than one and the
// rate is computed from the summed counts. ErrNoData is returned when nothing
// matches.
func SummarizeInstitution(records []domain.InstitutionRecord, institutionType string, year *int) (*InstitutionSummary, error) {
	summary := &InstitutionSummary{InstitutionType: institutionType, Year: year}
	for _, r := range ActiveInstitutions(records) {
		if r.InstitutionType != institutionType {
			continue
		}
		if year != nil && r.Year != *year {
			continue
		}
		summary.Completions += r.Completions
		summary.Dropouts += r.Dropouts
		summary.Rows++
	}
	if summary.Rows == 0 {
		return nil, ErrNoData
	}
	summary.DropoutRate = RatePtr(summary.Dropouts, summary.Completions)
	return summary, nil
}

// TypeRates holds the per-row dropout rates of one institution type
type TypeRates struct {
	InstitutionType string    `json:"institution_type"`
	Rates           []float64 `json:"rates"`
}

// RatesByType groups the per-row rates of active rows by institution type,
// ordered by type name.
func RatesByType(records []domain.InstitutionRecord) []TypeRates {
	index := make(map[string]int)
	var groups []TypeRates
	for _, r := range ActiveInstitutions(records) {
		i, ok := index[r.InstitutionType]
		if !ok {
			i = len(groups)
			index[r.InstitutionType] = i
			groups = append(groups, TypeRates{InstitutionType: r.InstitutionType})
		}
		groups[i].Rates = append(groups[i].Rates, r.DropoutRate)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].InstitutionType < groups[j].InstitutionType
	})
	return groups
}

// SubinstitutionTotal sums the counts of one subinstitution
type SubinstitutionTotal struct {
	Subinstitution string  `json:"subinstitution"`
	Dropouts       float64 `json:"afbrudte"`
	Completions    float64 `json:"fuldforte"`
}

// SubinstitutionTotals sums dropouts and completions per subinstitution,
// ordered by name.
func SubinstitutionTotals(records []domain.InstitutionRecord) []SubinstitutionTotal {
	index := make(map[string]int)
	var totals []SubinstitutionTotal
	for _, r := range records {
		i, ok := index[r.Subinstitution]
		if !ok {
			i = len(totals)
			index[r.Subinstitution] = i
			totals = append(totals, SubinstitutionTotal{Subinstitution: r.Subinstitution})
		}
		totals[i].Dropouts += r.Dropouts
		totals[i].Completions += r.Completions
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Subinstitution < totals[j].Subinstitution
	})
	return totals
}
