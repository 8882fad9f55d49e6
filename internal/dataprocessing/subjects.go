package dataprocessing

import (
	"sort"

	"uddannelsebi/pkg/contracts/domain"
)

// SubjectAggregate sums the yearly counts of one subject line and direction
// for both outcome types.
type SubjectAggregate struct {
	domain.SubjectKey
	Completed      domain.YearCounts `json:"fuldfort"`
	Dropped        domain.YearCounts `json:"afbrudt"`
	TotalCompleted float64           `json:"total_fuldfort"`
	TotalDropped   float64           `json:"total_afbrudt"`
	DropoutRate    *float64          `json:"frafaldsrate"`
}

// SubjectAggregates groups records by line and direction and keeps only the
// pairs that have both dropout and completion rows. The result is ordered
// by line, then direction.
func SubjectAggregates(records []domain.SubjectRecord) []SubjectAggregate {
	dropped := make(map[domain.SubjectKey]domain.YearCounts)
	completed := make(map[domain.SubjectKey]domain.YearCounts)
	for _, r := range records {
		key := domain.SubjectKey{SubjectLine: r.SubjectLine, SubjectDirection: r.SubjectDirection}
		switch r.Type {
		case domain.OutcomeDropout:
			dropped[key] = dropped[key].Add(r.Counts)
		case domain.OutcomeCompleted:
			completed[key] = completed[key].Add(r.Counts)
		}
	}

	aggs := make([]SubjectAggregate, 0, len(completed))
	for key, c := range completed {
		d, ok := dropped[key]
		if !ok {
			continue
		}
		agg := SubjectAggregate{
			SubjectKey:     key,
			Completed:      c,
			Dropped:        d,
			TotalCompleted: c.Sum(),
			TotalDropped:   d.Sum(),
		}
		agg.DropoutRate = RatePtr(agg.TotalDropped, agg.TotalCompleted)
		aggs = append(aggs, agg)
	}
	sort.Slice(aggs, func(i, j int) bool {
		if aggs[i].SubjectLine != aggs[j].SubjectLine {
			return aggs[i].SubjectLine < aggs[j].SubjectLine
		}
		return aggs[i].SubjectDirection < aggs[j].SubjectDirection
	})
	return aggs
}

// SubjectLines returns the sorted distinct subject lines
func SubjectLines(aggs []SubjectAggregate) []string {
	seen := make(map[string]bool)
	var lines []string
	for _, a := range aggs {
		if !seen[a.SubjectLine] {
			seen[a.SubjectLine] = true
			lines = append(lines, a.SubjectLine)
		}
	}
	sort.Strings(lines)
	return lines
}

// DirectionsFor returns the aggregates of one subject line ordered by dropout
// rate descending; directions without a defined rate come last.
func DirectionsFor(aggs []SubjectAggregate, line string) []SubjectAggregate {
	var out []SubjectAggregate
	for _, a := range aggs {
		if a.SubjectLine == line {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].DropoutRate, out[j].DropoutRate
		switch {
		case ri == nil:
			return false
		case rj == nil:
			return true
		default:
			return *ri > *rj
		}
	})
	return out
}

// LineTotals sums the yearly counts of a whole subject line per outcome type
type LineTotals struct {
	SubjectLine string            `json:"fag_linjer"`
	Completed   domain.YearCounts `json:"fuldfort"`
	Dropped     domain.YearCounts `json:"afbrudt"`
}

// LineTypeTotals sums the raw records of one subject line by type and year.
// ErrNoData is returned when the line has no rows.
func LineTypeTotals(records []domain.SubjectRecord, line string) (*LineTotals, error) {
	totals := &LineTotals{SubjectLine: line}
	found := false
	for _, r := range records {
		if r.SubjectLine != line {
			continue
		}
		found = true
		switch r.Type {
		case domain.OutcomeDropout:
			totals.Dropped = totals.Dropped.Add(r.Counts)
		case domain.OutcomeCompleted:
			totals.Completed = totals.Completed.Add(r.Counts)
		}
	}
	if !found {
		return nil, ErrNoData
	}
	return totals, nil
}

// DirectionSeries is the yearly history of one subject direction
type DirectionSeries struct {
	domain.SubjectKey
	Years     []int      `json:"years"`
	Completed []float64  `json:"fuldfort"`
	Dropped   []float64  `json:"afbrudt"`
	Rates     []*float64 `json:"frafaldsrate"`
}

// SeriesFor returns the per-year history of a line and direction pair.
// Years where no student finished or dropped out have a nil rate.
func SeriesFor(aggs []SubjectAggregate, line, direction string) (*DirectionSeries, error) {
	for _, a := range aggs {
		if a.SubjectLine != line || a.SubjectDirection != direction {
			continue
		}
		s := &DirectionSeries{SubjectKey: a.SubjectKey, Years: domain.Years()}
		for _, y := range s.Years {
			c, d := a.Completed.At(y), a.Dropped.At(y)
			s.Completed = append(s.Completed, c)
			s.Dropped = append(s.Dropped, d)
			s.Rates = append(s.Rates, RatePtr(d, c))
		}
		return s, nil
	}
	return nil, ErrNoData
}
