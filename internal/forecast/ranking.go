package forecast

import (
	"fmt"
	"sort"

	"uddannelsebi/pkg/contracts/domain"
)

// Measure selects the prediction column a ranking is ordered by
type Measure string

const (
	MeasureDropouts       Measure = "afbrudt"
	MeasureCompletions    Measure = "fuldfort"
	MeasureDropoutPercent Measure = "frafaldsprocent"
)

// DefaultTop is the length of the ranking charts
const DefaultTop = 20

// Value returns the column selected by m
func (p Prediction) Value(m Measure) *float64 {
	switch m {
	case MeasureDropouts:
		return p.PredictedDropouts
	case MeasureCompletions:
		return p.PredictedCompletions
	case MeasureDropoutPercent:
		return p.DropoutPercent
	}
	return nil
}

// Title returns the chart title of a ranking by m
func (m Measure) Title() string {
	switch m {
	case MeasureDropouts:
		return "Top 20 fagretninger – forudsagt frafald i 2025"
	case MeasureCompletions:
		return "Top 20 fagretninger – forudsagt fuldført i 2025"
	case MeasureDropoutPercent:
		return "Top 20 fagretninger – forudsagt frafaldsprocent i 2025"
	}
	return string(m)
}

// ParseMeasure validates a ranking measure
func ParseMeasure(s string) (Measure, error) {
	switch m := Measure(s); m {
	case MeasureDropouts, MeasureCompletions, MeasureDropoutPercent:
		return m, nil
	}
	return "", fmt.Errorf("unknown measure %q", s)
}

// TopN returns at most n rows ordered by m descending. Rows where m is
// undefined are left out.
func TopN(rows []Prediction, m Measure, n int) []Prediction {
	out := make([]Prediction, 0, len(rows))
	for _, r := range rows {
		if r.Value(m) != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Value(m) > *out[j].Value(m)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Directions lists the distinct non-empty subject directions of the table in
// row order.
func Directions(rows []Prediction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if r.SubjectDirection == "" || seen[r.SubjectDirection] {
			continue
		}
		seen[r.SubjectDirection] = true
		out = append(out, r.SubjectDirection)
	}
	return out
}

// History is the observed series of one outcome plus its estimate for the
// year after.
type History struct {
	Outcome   domain.OutcomeType `json:"outcome"`
	Program   domain.ProgramKey  `json:"program"`
	Years     []int              `json:"years"`
	Values    []float64          `json:"values"`
	Year      int                `json:"predicted_year"`
	Predicted float64            `json:"predicted"`
}

// DirectionHistory pairs the dropout and completion history of a direction
type DirectionHistory struct {
	SubjectDirection string  `json:"fag_retning"`
	Dropout          History `json:"afbrudt"`
	Completed        History `json:"fuldfort"`
}

// Direction returns the history of the first dropout row and the first
// completion row of a subject direction. ErrDirectionIncomplete is
// returned when either side has no such row.
func (r *Result) Direction(direction string) (*DirectionHistory, error) {
	ab, okAb := r.Dropout.history(direction)
	fu, okFu := r.Completed.history(direction)
	if !okAb || !okFu {
		return nil, ErrDirectionIncomplete
	}
	return &DirectionHistory{SubjectDirection: direction, Dropout: ab, Completed: fu}, nil
}

func (m *Model) history(direction string) (History, bool) {
	if m == nil {
		return History{}, false
	}
	for i, row := range m.Rows {
		if row.SubjectDirection != direction {
			continue
		}
		return History{
			Outcome:   m.Outcome,
			Program:   row.Key(),
			Years:     domain.Years(),
			Values:    row.Counts.Window(domain.FirstYear, domain.LastYear),
			Year:      domain.PredictionYear,
			Predicted: m.Predictions[i],
		}, true
	}
	return History{}, false
}
