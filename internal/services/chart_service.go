package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"uddannelsebi/internal/charts"
	"uddannelsebi/internal/dataprocessing"
	"uddannelsebi/internal/forecast"
	api "uddannelsebi/pkg/contracts/api/v1"
	"uddannelsebi/pkg/contracts/domain"
)

// Chart names served under /charts/{name}.png
const (
	ChartCompletionsByType = "fuldforte-pr-type"
	ChartDropoutsByType    = "afbrudte-pr-type"
	ChartInstitution       = "institution"
	ChartRateByType        = "frafaldsrate-pr-type"
	ChartMap               = "kort"
	ChartLine              = "faglinje"
	ChartDirection         = "fagretning"
	ChartDirectionRate     = "fagretning-frafaldsrate"
	ChartTypeCounts        = "typer"
	ChartLevels            = "niveau"
	ChartTrend             = "tendens"
	ChartTop               = "top"
	ChartHistory           = "historik"
)

// ChartNames lists every chart the service can draw
func ChartNames() []string {
	return []string{
		ChartCompletionsByType, ChartDropoutsByType, ChartInstitution, ChartRateByType, ChartMap,
		ChartLine, ChartDirection, ChartDirectionRate, ChartTypeCounts, ChartLevels, ChartTrend,
		ChartTop, ChartHistory,
	}
}

// Chart renders the named chart as PNG. The selectors of req are
// interpreted like the page selectors of the same name.
func (s *DashboardService) Chart(ctx context.Context, req api.ChartRequest) ([]byte, error) {
	img, err := s.chart(ctx, req)
	s.metrics.RecordChartRender(ctx, req.Name, err)
	if err != nil {
		if _, warn := Warning(err); !warn {
			s.logger.WarnContext(ctx, "chart rendering failed",
				slog.String("chart", req.Name),
				slog.String("error", err.Error()))
		}
		return nil, err
	}
	return img, nil
}

func (s *DashboardService) chart(ctx context.Context, req api.ChartRequest) ([]byte, error) {
	switch req.Name {
	case ChartCompletionsByType, ChartDropoutsByType:
		return s.typeTotalsChart(ctx, req.Name)
	case ChartInstitution:
		return s.institutionChart(ctx, req)
	case ChartRateByType:
		return s.rateByTypeChart(ctx)
	case ChartMap:
		return s.mapChart(ctx)
	case ChartLine:
		return s.lineChart(ctx, req.Line)
	case ChartDirection, ChartDirectionRate:
		return s.directionChart(ctx, req)
	case ChartTypeCounts, ChartLevels, ChartTrend:
		return s.distributionChart(ctx, req)
	case ChartTop:
		return s.topChart(ctx, req.Measure)
	case ChartHistory:
		return s.historyChart(ctx, req)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChart, req.Name)
}

func (s *DashboardService) typeTotalsChart(ctx context.Context, name string) ([]byte, error) {
	overview, err := s.InstitutionOverview(ctx)
	if err != nil {
		return nil, err
	}
	title, totals, measure := "Fuldførte pr. InstitutionType", overview.ByCompletions, dataprocessing.MeasureCompletions
	if name == ChartDropoutsByType {
		title, totals, measure = "Afbrudte pr. InstitutionType", overview.ByDropouts, dataprocessing.MeasureDropouts
	}
	bars := make([]charts.Bar, len(totals))
	for i, t := range totals {
		bars[i] = charts.Bar{Label: t.InstitutionType, Value: t.Value(measure)}
	}
	return charts.BarChart(title, bars)
}

func (s *DashboardService) institutionChart(ctx context.Context, req api.ChartRequest) ([]byte, error) {
	year, err := parseYear(req.Year)
	if err != nil {
		return nil, err
	}
	view, err := s.InstitutionDrilldown(ctx, req.Type, year)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Fuldførte vs. Afbrudte (%s - %s)", view.Type, view.YearLabel())
	return charts.BarChart(title, []charts.Bar{
		{Label: "Fuldførte", Value: view.Summary.Completions},
		{Label: "Afbrudte", Value: view.Summary.Dropouts},
	})
}

func (s *DashboardService) rateByTypeChart(ctx context.Context) ([]byte, error) {
	records, err := s.loadInstitutions(ctx)
	if err != nil {
		return nil, err
	}
	var groups []charts.Group
	for _, g := range dataprocessing.RatesByType(records) {
		groups = append(groups, charts.Group{Label: g.InstitutionType, Values: g.Rates})
	}
	return charts.BoxPlot("Frafaldsrate fordelt på InstitutionType", "Frafaldsrate (%)", groups, true)
}

func (s *DashboardService) mapChart(ctx context.Context) ([]byte, error) {
	points, err := s.InstitutionMap(ctx)
	if err != nil {
		return nil, err
	}
	bubbles := make([]charts.Bubble, len(points))
	for i, p := range points {
		bubbles[i] = charts.Bubble{
			Label: p.Subinstitution,
			Lat:   p.Lat,
			Lon:   p.Lon,
			Size:  p.Dropouts,
			Shade: p.Completions,
		}
	}
	return charts.BubbleMap("Frafald og fuldførelse fordelt på institution", bubbles)
}

func (s *DashboardService) lineChart(ctx context.Context, line string) ([]byte, error) {
	view, err := s.Subjects(ctx, line, "")
	if view == nil || view.Totals == nil {
		return nil, err
	}
	stacks := make([]charts.Stack, 0, domain.NumYears)
	for _, y := range domain.Years() {
		stacks = append(stacks, charts.Stack{
			Label: strconv.Itoa(y),
			Parts: []charts.Bar{
				{Label: string(domain.OutcomeCompleted), Value: view.Totals.Completed.At(y)},
				{Label: string(domain.OutcomeDropout), Value: view.Totals.Dropped.At(y)},
			},
		})
	}
	return charts.StackedBarChart("Fuldført vs. Afbrudt for: "+view.Line, stacks)
}

func (s *DashboardService) directionChart(ctx context.Context, req api.ChartRequest) ([]byte, error) {
	view, err := s.Subjects(ctx, req.Line, req.Direction)
	if err != nil {
		return nil, err
	}
	series := view.Series
	years := make([]float64, len(series.Years))
	for i, y := range series.Years {
		years[i] = float64(y)
	}
	title := fmt.Sprintf("Tidsserie for %s under %s", series.SubjectDirection, series.SubjectLine)

	if req.Name == ChartDirectionRate {
		var xs, ys []float64
		for i, r := range series.Rates {
			if r != nil {
				xs = append(xs, years[i])
				ys = append(ys, *r)
			}
		}
		if len(xs) == 0 {
			return nil, charts.ErrNoData
		}
		return charts.LineChart(title, "År", "Frafaldsrate (%)", []charts.Series{
			{Name: "Frafaldsrate (%)", X: xs, Y: ys, Color: charts.ColorDropout, Dots: true},
		})
	}
	return charts.LineChart(title, "År", "Antal studerende", []charts.Series{
		{Name: "Fuldført", X: years, Y: series.Completed, Color: charts.ColorCompleted},
		{Name: "Afbrudt", X: years, Y: series.Dropped, Color: charts.ColorDropout},
	})
}

func (s *DashboardService) distributionChart(ctx context.Context, req api.ChartRequest) ([]byte, error) {
	records, err := s.loadSubjects(ctx)
	if err != nil {
		return nil, err
	}

	switch req.Name {
	case ChartTypeCounts:
		var bars []charts.Bar
		for _, c := range dataprocessing.TypeCounts(records) {
			bars = append(bars, charts.Bar{Label: c.Label, Value: float64(c.Count)})
		}
		return charts.CountChart("Antallet af afbrudte og fuldførte", "Antal rækker", bars)

	case ChartLevels:
		year := LevelYears[0]
		if req.Year != "" {
			y, err := parseDataYear(req.Year)
			if err != nil {
				return nil, err
			}
			if y == nil {
				return nil, fmt.Errorf("%w: a single year is required", ErrInvalidYear)
			}
			year = *y
		}
		var groups []charts.Group
		for _, g := range dataprocessing.YearLevels(records, year) {
			groups = append(groups, charts.Group{Label: g.Label, Values: g.Values})
		}
		return charts.BoxPlot(fmt.Sprintf("Niveau i %d", year), "Antal studerende", groups, false)

	default:
		byType := make(map[string]int)
		var groups []charts.ScatterGroup
		for _, p := range dataprocessing.YearScatter(records, TrendFrom, TrendTo) {
			i, ok := byType[p.Group]
			if !ok {
				i = len(groups)
				byType[p.Group] = i
				groups = append(groups, charts.ScatterGroup{Name: p.Group})
			}
			groups[i].Points = append(groups[i].Points, charts.XY{Label: p.Label, X: p.X, Y: p.Y})
		}
		return charts.Scatter(fmt.Sprintf("Tendenser %d–%d", TrendFrom, TrendTo),
			strconv.Itoa(TrendFrom), strconv.Itoa(TrendTo), groups)
	}
}

func (s *DashboardService) topChart(ctx context.Context, measure string) ([]byte, error) {
	if measure == "" {
		measure = string(forecast.MeasureDropouts)
	}
	rows, err := s.PredictionTop(ctx, measure, forecast.DefaultTop)
	if err != nil {
		return nil, err
	}
	m := forecast.Measure(measure)
	bars := make([]charts.Bar, len(rows))
	for i, r := range rows {
		bars[i] = charts.Bar{Label: r.SubjectDirection, Value: *r.Value(m)}
	}
	return charts.BarChart(m.Title(), bars)
}

func (s *DashboardService) historyChart(ctx context.Context, req api.ChartRequest) ([]byte, error) {
	history, err := s.PredictionDirection(ctx, req.Direction)
	if err != nil {
		return nil, err
	}

	h, color, dashed := history.Dropout, charts.ColorDropout, false
	switch req.Measure {
	case "", string(forecast.MeasureDropouts):
	case string(forecast.MeasureCompletions):
		h, color, dashed = history.Completed, charts.ColorCompleted, true
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMeasure, req.Measure)
	}

	years := make([]float64, len(h.Years))
	for i, y := range h.Years {
		years[i] = float64(y)
	}
	label := string(h.Outcome)
	return charts.LineChart(fmt.Sprintf("%s – %s", label, history.SubjectDirection), "År", "Antal studerende", []charts.Series{
		{
			Name:   fmt.Sprintf("%s %d–%d", label, domain.FirstYear, domain.LastYear),
			X:      years,
			Y:      h.Values,
			Color:  color,
			Dashed: dashed,
			Dots:   true,
		},
		{
			Name:  fmt.Sprintf("%s %d (forudsagt)", label, h.Year),
			X:     []float64{float64(h.Year)},
			Y:     []float64{h.Predicted},
			Color: charts.ColorPredicted,
			Dots:  true,
		},
	})
}

// parseYear maps a drill-down year selector onto nil (all years) or a
// single year
func parseYear(value string) (*int, error) {
	return yearSelection(api.ParseYear(value))
}

// parseDataYear is parseYear for selectors over the subject year columns
func parseDataYear(value string) (*int, error) {
	return yearSelection(api.ParseDataYear(value))
}

func yearSelection(year int, all bool, err error) (*int, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYear, err)
	}
	if all {
		return nil, nil
	}
	return &year, nil
}
