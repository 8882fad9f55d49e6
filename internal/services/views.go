package services

import (
	"uddannelsebi/internal/dataprocessing"
	"uddannelsebi/internal/forecast"
)

// Years compared in the distribution section of the subject view
const (
	TrendFrom = 2015
	TrendTo   = 2023
)

var (
	// LevelYears are the years drawn as box plots
	LevelYears = []int{2015, 2020, 2023}

	homepageText = Homepage{
		Title: "📊 Uddannelse Data Analysis",
		Paragraphs: []string{
			"Velkommen til vores BI-analyseværktøj for uddannelse og frafald.",
			"Brug menuen til venstre for at se grafer eller prøve en forudsigelsesmodel.",
		},
	}
)

// Homepage is the static landing page
type Homepage struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// InstitutionOverview holds the type totals in both bar chart orders
type InstitutionOverview struct {
	ByCompletions []dataprocessing.TypeTotal `json:"fuldforte"`
	ByDropouts    []dataprocessing.TypeTotal `json:"afbrudte"`
}

// InstitutionDrilldown is the state of the drill-down page. Types and Years
// are filled in even when the selection itself matched nothing.
type InstitutionDrilldown struct {
	Types      []string                           `json:"types"`
	Type       string                             `json:"type"`
	Years      []int                              `json:"years"`
	Year       *int                               `json:"year"`
	Summary    *dataprocessing.InstitutionSummary `json:"summary,omitempty"`
	Comparison []dataprocessing.TypeRates         `json:"comparison,omitempty"`
}

// YearLabel is the selector text of the chosen year
func (d *InstitutionDrilldown) YearLabel() string {
	return yearLabel(d.Year)
}

// SubjectView is the state of the subject page. Fields are filled in as far
// as the selection could be resolved.
type SubjectView struct {
	Lines            []string                          `json:"lines"`
	Line             string                            `json:"line"`
	Totals           *dataprocessing.LineTotals        `json:"totals,omitempty"`
	Directions       []dataprocessing.SubjectAggregate `json:"directions,omitempty"`
	DirectionOptions []string                          `json:"direction_options,omitempty"`
	Direction        string                            `json:"direction,omitempty"`
	Series           *dataprocessing.DirectionSeries   `json:"series,omitempty"`
	Distribution     *Distribution                     `json:"distribution,omitempty"`
}

// Distribution summarises the whole subject workbook
type Distribution struct {
	TypeCounts []dataprocessing.LabelCount `json:"type_counts"`
	Levels     []YearLevel                 `json:"levels"`
}

// YearLevel is the box plot data of one year
type YearLevel struct {
	Year    int                            `json:"year"`
	Groups  []dataprocessing.LabeledValues `json:"groups"`
	Summary []dataprocessing.BoxStats      `json:"summary"`
}

// Ranking is one top-N bar chart of the prediction page
type Ranking struct {
	Measure forecast.Measure      `json:"measure"`
	Title   string                `json:"title"`
	Rows    []forecast.Prediction `json:"rows"`
}

// PredictionView is the state of the prediction page
type PredictionView struct {
	Result     *forecast.Result           `json:"result"`
	Rankings   []Ranking                  `json:"rankings"`
	Directions []string                   `json:"directions"`
	Direction  string                     `json:"direction"`
	History    *forecast.DirectionHistory `json:"history,omitempty"`
}
