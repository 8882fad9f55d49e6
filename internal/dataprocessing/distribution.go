package dataprocessing

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"uddannelsebi/pkg/contracts/domain"
)

// LabelCount is the number of rows carrying a label
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TypeCounts counts subject rows per outcome type, ordered by type
func TypeCounts(records []domain.SubjectRecord) []LabelCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[string(r.Type)]++
	}
	out := make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// LabeledValues is a named sample used for box plots
type LabeledValues struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// YearLevels groups the counts of one year by outcome type
func YearLevels(records []domain.SubjectRecord, year int) []LabeledValues {
	index := make(map[domain.OutcomeType]int)
	var groups []LabeledValues
	for _, r := range records {
		i, ok := index[r.Type]
		if !ok {
			i = len(groups)
			index[r.Type] = i
			groups = append(groups, LabeledValues{Label: string(r.Type)})
		}
		groups[i].Values = append(groups[i].Values, r.Counts.At(year))
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Label < groups[j].Label })
	return groups
}

// BoxStats is the five number summary of a sample
type BoxStats struct {
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// BoxSummary computes the five number summary and mean of values.
// An empty sample yields the zero value.
func BoxSummary(values []float64) BoxStats {
	if len(values) == 0 {
		return BoxStats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return BoxStats{
		N:      len(sorted),
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
		Mean:   stat.Mean(sorted, nil),
	}
}

// Point is one program in a two-year scatter
type Point struct {
	Label string  `json:"label"`
	Group string  `json:"group"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// YearScatter pairs the counts of two years per subject row, grouped by type
func YearScatter(records []domain.SubjectRecord, xYear, yYear int) []Point {
	points := make([]Point, 0, len(records))
	for _, r := range records {
		points = append(points, Point{
			Label: r.SubjectDirection,
			Group: string(r.Type),
			X:     r.Counts.At(xYear),
			Y:     r.Counts.At(yYear),
		})
	}
	return points
}
