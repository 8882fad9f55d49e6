package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"uddannelsebi/internal/config"
	"uddannelsebi/internal/dataprocessing"
	"uddannelsebi/internal/forecast"
	"uddannelsebi/internal/geo"
	"uddannelsebi/internal/infrastructure"
	api "uddannelsebi/pkg/contracts/api/v1"
	"uddannelsebi/pkg/contracts/domain"
)

// Dataset names used in logs and metrics
const (
	DatasetInstitutions = "institutions"
	DatasetSubjects     = "subjects"
)

// DashboardService answers every view of the dashboard. Each call reads the
// workbooks it needs from disk; nothing derived is kept between calls.
type DashboardService struct {
	paths   *config.Paths
	metrics *infrastructure.DashboardMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewDashboardService creates the service. metrics may be nil.
func NewDashboardService(paths *config.Paths, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("service", "dashboard"))
	logger.Info("DashboardService initialized",
		slog.String("institution_file", paths.InstitutionFile),
		slog.String("subject_file", paths.SubjectFile))

	return &DashboardService{
		paths:   paths,
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
		logger:  logger,
	}
}

// Homepage returns the static landing page text
func (s *DashboardService) Homepage(context.Context) Homepage {
	return homepageText
}

// InstitutionOverview sums both outcomes per institution type
func (s *DashboardService) InstitutionOverview(ctx context.Context) (*InstitutionOverview, error) {
	records, err := s.loadInstitutions(ctx)
	if err != nil {
		return nil, err
	}
	return &InstitutionOverview{
		ByCompletions: dataprocessing.InstitutionTypeTotals(records, dataprocessing.MeasureCompletions),
		ByDropouts:    dataprocessing.InstitutionTypeTotals(records, dataprocessing.MeasureDropouts),
	}, nil
}

// InstitutionTypes lists the institution types that have any students
func (s *DashboardService) InstitutionTypes(ctx context.Context) ([]string, error) {
	records, err := s.loadInstitutions(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.InstitutionTypes(records), nil
}

// InstitutionDrilldown summarises one institution type for all years
// (year == nil) or a single year. An empty type selects the first type.
// ErrNoData is returned together with the selector options when the
// selection is empty.
func (s *DashboardService) InstitutionDrilldown(ctx context.Context, institutionType string, year *int) (*InstitutionDrilldown, error) {
	records, err := s.loadInstitutions(ctx)
	if err != nil {
		return nil, err
	}

	view := &InstitutionDrilldown{
		Types: dataprocessing.InstitutionTypes(records),
		Type:  institutionType,
		Year:  year,
	}
	if view.Type == "" && len(view.Types) > 0 {
		view.Type = view.Types[0]
	}
	view.Years = dataprocessing.InstitutionYears(records, view.Type)

	summary, err := dataprocessing.SummarizeInstitution(records, view.Type, year)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrNoData) {
			return view, ErrNoData
		}
		return nil, err
	}
	view.Summary = summary
	if year == nil {
		view.Comparison = dataprocessing.RatesByType(records)
	}

	s.logger.DebugContext(ctx, "institution drill-down",
		slog.String("type", view.Type),
		slog.String("year", yearLabel(year)),
		slog.Int("rows", summary.Rows))
	return view, nil
}

// InstitutionMap places the subinstitution totals on the map
func (s *DashboardService) InstitutionMap(ctx context.Context) ([]geo.MapPoint, error) {
	records, err := s.loadInstitutions(ctx)
	if err != nil {
		return nil, err
	}
	totals := dataprocessing.SubinstitutionTotals(records)
	points, err := geo.MapPoints(totals)
	if err != nil {
		s.logger.WarnContext(ctx, "no institution could be placed on the map",
			slog.Int("subinstitutions", len(totals)))
		return nil, err
	}
	if dropped := len(totals) - len(points); dropped > 0 {
		s.logger.DebugContext(ctx, "institutions without coordinates left off the map",
			slog.Int("dropped", dropped))
	}
	return points, nil
}

// SubjectLines lists the subject lines that have both outcome types
func (s *DashboardService) SubjectLines(ctx context.Context) ([]string, error) {
	records, err := s.loadSubjects(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.SubjectLines(dataprocessing.SubjectAggregates(records)), nil
}

// Subjects resolves the subject page for a line and direction. Empty
// selections pick the first option. ErrLineNotFound and
// ErrCombinationNotFound are returned with the view filled in up to the
// step that failed.
func (s *DashboardService) Subjects(ctx context.Context, line, direction string) (*SubjectView, error) {
	records, err := s.loadSubjects(ctx)
	if err != nil {
		return nil, err
	}
	aggs := dataprocessing.SubjectAggregates(records)

	view := &SubjectView{Lines: dataprocessing.SubjectLines(aggs), Line: line}
	if view.Line == "" && len(view.Lines) > 0 {
		view.Line = view.Lines[0]
	}

	view.Directions = dataprocessing.DirectionsFor(aggs, view.Line)
	if len(view.Directions) == 0 {
		return view, ErrLineNotFound
	}
	totals, err := dataprocessing.LineTypeTotals(records, view.Line)
	if err != nil {
		return view, ErrLineNotFound
	}
	view.Totals = totals
	for _, a := range aggs {
		if a.SubjectLine == view.Line {
			view.DirectionOptions = append(view.DirectionOptions, a.SubjectDirection)
		}
	}

	view.Direction = direction
	if view.Direction == "" {
		view.Direction = view.DirectionOptions[0]
	}
	series, err := dataprocessing.SeriesFor(aggs, view.Line, view.Direction)
	if err != nil {
		return view, ErrCombinationNotFound
	}
	view.Series = series
	view.Distribution = distribution(records)
	return view, nil
}

// SubjectDirection returns the yearly history of one line and direction
func (s *DashboardService) SubjectDirection(ctx context.Context, line, direction string) (*dataprocessing.DirectionSeries, error) {
	if line == "" || direction == "" {
		return nil, ErrCombinationNotFound
	}
	view, err := s.Subjects(ctx, line, direction)
	if err != nil {
		return nil, err
	}
	return view.Series, nil
}

func distribution(records []domain.SubjectRecord) *Distribution {
	d := &Distribution{TypeCounts: dataprocessing.TypeCounts(records)}
	for _, year := range LevelYears {
		level := YearLevel{Year: year, Groups: dataprocessing.YearLevels(records, year)}
		for _, g := range level.Groups {
			level.Summary = append(level.Summary, dataprocessing.BoxSummary(g.Values))
		}
		d.Levels = append(d.Levels, level)
	}
	return d
}

// Prediction fits both regression models and returns the merged table
func (s *DashboardService) Prediction(ctx context.Context) (*forecast.Result, error) {
	records, err := s.loadSubjects(ctx)
	if err != nil {
		return nil, err
	}
	return s.runForecast(ctx, records)
}

// PredictionTop ranks the prediction table by measure
func (s *DashboardService) PredictionTop(ctx context.Context, measure string, n int) ([]forecast.Prediction, error) {
	m, err := forecast.ParseMeasure(measure)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMeasure, err)
	}
	result, err := s.Prediction(ctx)
	if err != nil {
		return nil, err
	}
	return forecast.TopN(result.Rows, m, n), nil
}

// PredictionDirection returns the history and 2025 estimate of a direction.
// An empty direction selects the first one of the table.
func (s *DashboardService) PredictionDirection(ctx context.Context, direction string) (*forecast.DirectionHistory, error) {
	result, err := s.Prediction(ctx)
	if err != nil {
		return nil, err
	}
	if direction == "" {
		if dirs := forecast.Directions(result.Rows); len(dirs) > 0 {
			direction = dirs[0]
		}
	}
	return result.Direction(direction)
}

// PredictionPage builds the full prediction page. ErrDirectionIncomplete is
// returned with everything but the history filled in.
func (s *DashboardService) PredictionPage(ctx context.Context, direction string) (*PredictionView, error) {
	result, err := s.Prediction(ctx)
	if err != nil {
		return nil, err
	}

	view := &PredictionView{
		Result:     result,
		Directions: forecast.Directions(result.Rows),
		Direction:  direction,
	}
	for _, m := range []forecast.Measure{forecast.MeasureDropouts, forecast.MeasureCompletions, forecast.MeasureDropoutPercent} {
		view.Rankings = append(view.Rankings, Ranking{
			Measure: m,
			Title:   m.Title(),
			Rows:    forecast.TopN(result.Rows, m, forecast.DefaultTop),
		})
	}
	if view.Direction == "" && len(view.Directions) > 0 {
		view.Direction = view.Directions[0]
	}

	history, err := result.Direction(view.Direction)
	if err != nil {
		return view, err
	}
	view.History = history
	return view, nil
}

func (s *DashboardService) runForecast(ctx context.Context, records []domain.SubjectRecord) (*forecast.Result, error) {
	ctx, span := s.tracer.Start(ctx, "forecast.run",
		trace.WithAttributes(attribute.Int("records", len(records))))
	defer span.End()

	result, err := forecast.Run(ctx, records)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.metrics.RecordModelFit(ctx, "both", err)
		s.logger.WarnContext(ctx, "prediction failed", slog.String("error", err.Error()))
		return nil, err
	}
	for _, m := range []*forecast.Model{result.Dropout, result.Completed} {
		s.metrics.RecordModelFit(ctx, string(m.Outcome), nil)
		infrastructure.AddSpanEvent(ctx, "model fitted",
			attribute.String("outcome", string(m.Outcome)),
			attribute.Float64("mae", m.Quality.MAE),
			attribute.Int("rows", len(m.Rows)))
	}
	return result, nil
}

func (s *DashboardService) loadInstitutions(ctx context.Context) ([]domain.InstitutionRecord, error) {
	return load(ctx, s, DatasetInstitutions, s.paths.InstitutionFile, dataprocessing.LoadInstitutions)
}

func (s *DashboardService) loadSubjects(ctx context.Context) ([]domain.SubjectRecord, error) {
	return load(ctx, s, DatasetSubjects, s.paths.SubjectFile, dataprocessing.LoadSubjects)
}

// load reads one workbook under a span and records its metrics
func load[T any](ctx context.Context, s *DashboardService, dataset, path string, read func(string) ([]T, error)) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "dataset.load",
		trace.WithAttributes(attribute.String("dataset", dataset)))
	defer span.End()

	start := time.Now()
	records, err := read(path)
	duration := time.Since(start)
	s.metrics.RecordDatasetLoad(ctx, dataset, duration, len(records), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "failed to load workbook",
			slog.String("dataset", dataset),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.DebugContext(ctx, "workbook loaded",
		slog.String("dataset", dataset),
		slog.Int("records", len(records)),
		slog.Duration("duration", duration))
	return records, nil
}

func yearLabel(year *int) string {
	if year == nil {
		return api.AllYears
	}
	return strconv.Itoa(*year)
}
