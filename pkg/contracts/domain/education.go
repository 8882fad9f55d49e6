package domain

// Year window covered by the subject workbook. The prediction target is the
// year after LastYear.
const (
	FirstYear      = 2015
	LastYear       = 2024
	PredictionYear = LastYear + 1
	NumYears       = LastYear - FirstYear + 1
)

// Years returns the year columns of the subject workbook in ascending order.
func Years() []int {
	years := make([]int, 0, NumYears)
	for y := FirstYear; y <= LastYear; y++ {
		years = append(years, y)
	}
	return years
}

// OutcomeType distinguishes dropout rows from completion rows
type OutcomeType string

const (
	OutcomeDropout   OutcomeType = "Afbrudt"
	OutcomeCompleted OutcomeType = "Fuldført"
)

// Valid reports whether the outcome is one of the two known types
func (o OutcomeType) Valid() bool {
	return o == OutcomeDropout || o == OutcomeCompleted
}

// InstitutionRecord is one row of the institution workbook
type InstitutionRecord struct {
	Institution     string  `json:"institution"`
	InstitutionType string  `json:"institution_type"`
	Subinstitution  string  `json:"subinstitution"`
	Year            int     `json:"year"`
	Dropouts        float64 `json:"afbrudte"`
	Completions     float64 `json:"fuldforte"`
}

// Active reports whether the row carries any students. Rows with neither
// dropouts nor completions describe institutions that were not yet open or
// had closed.
func (r InstitutionRecord) Active() bool {
	return r.Dropouts != 0 || r.Completions != 0
}

// YearCounts holds one count per year from FirstYear to LastYear
type YearCounts [NumYears]float64

// At returns the count for the given year, or 0 outside the window
func (c YearCounts) At(year int) float64 {
	if year < FirstYear || year > LastYear {
		return 0
	}
	return c[year-FirstYear]
}

// Set stores the count for the given year; years outside the window are ignored
func (c *YearCounts) Set(year int, v float64) {
	if year < FirstYear || year > LastYear {
		return
	}
	c[year-FirstYear] = v
}

// Sum returns the total over all years
func (c YearCounts) Sum() float64 {
	var total float64
	for _, v := range c {
		total += v
	}
	return total
}

// Add returns the element-wise sum of two count vectors
func (c YearCounts) Add(o YearCounts) YearCounts {
	for i := range c {
		c[i] += o[i]
	}
	return c
}

// Window returns the counts for the years from..to inclusive
func (c YearCounts) Window(from, to int) []float64 {
	out := make([]float64, 0, to-from+1)
	for y := from; y <= to; y++ {
		out = append(out, c.At(y))
	}
	return out
}

// SubjectRecord is one row of the subject workbook: a program's yearly
// counts for a single outcome type.
type SubjectRecord struct {
	Education        string      `json:"uddannelse"`
	SubjectLine      string      `json:"fag_linjer"`
	SubjectDirection string      `json:"fag_retning"`
	Type             OutcomeType `json:"type"`
	Counts           YearCounts  `json:"counts"`
}

// SubjectKey identifies a subject line and direction pair
type SubjectKey struct {
	SubjectLine      string `json:"fag_linjer"`
	SubjectDirection string `json:"fag_retning"`
}

// ProgramKey identifies a program row in the prediction table
type ProgramKey struct {
	Education        string `json:"uddannelse"`
	SubjectLine      string `json:"fag_linjer"`
	SubjectDirection string `json:"fag_retning"`
}

// Less orders program keys lexicographically by education, line and direction
func (k ProgramKey) Less(o ProgramKey) bool {
	if k.Education != o.Education {
		return k.Education < o.Education
	}
	if k.SubjectLine != o.SubjectLine {
		return k.SubjectLine < o.SubjectLine
	}
	return k.SubjectDirection < o.SubjectDirection
}

// Key returns the program key of the record
func (r SubjectRecord) Key() ProgramKey {
	return ProgramKey{
		Education:        r.Education,
		SubjectLine:      r.SubjectLine,
		SubjectDirection: r.SubjectDirection,
	}
}

// Coordinate is a WGS84 position
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
