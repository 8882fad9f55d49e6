package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uddannelsebi/internal/config"
	"uddannelsebi/internal/forecast"
	"uddannelsebi/internal/shared/testutil"
	api "uddannelsebi/pkg/contracts/api/v1"
	"uddannelsebi/pkg/contracts/domain"
)

func newSampleService(t *testing.T) (*DashboardService, *testutil.LogCapture) {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteSampleData(t, dir)
	logger, logs := testutil.NewTestLogger(t)
	return NewDashboardService(samplePaths(dir), nil, logger), logs
}

func samplePaths(dir string) *config.Paths {
	return &config.Paths{
		DataDir:         dir,
		InstitutionFile: filepath.Join(dir, testutil.InstitutionFile),
		SubjectFile:     filepath.Join(dir, testutil.SubjectFile),
	}
}

func TestHomepage(t *testing.T) {
	svc, _ := newSampleService(t)

	page := svc.Homepage(context.Background())
	assert.Equal(t, "📊 Uddannelse Data Analysis", page.Title)
	assert.Len(t, page.Paragraphs, 2)
}

func TestInstitutionOverview(t *testing.T) {
	svc, _ := newSampleService(t)

	overview, err := svc.InstitutionOverview(context.Background())
	require.NoError(t, err)
	require.Len(t, overview.ByCompletions, 2)
	require.Len(t, overview.ByDropouts, 2)

	var total float64
	for _, tt := range overview.ByCompletions {
		total += tt.Completions
	}
	assert.Equal(t, 205.0, total)
}

func TestInstitutionDrilldown(t *testing.T) {
	svc, _ := newSampleService(t)
	ctx := context.Background()

	t.Run("empty type selects the first", func(t *testing.T) {
		view, err := svc.InstitutionDrilldown(ctx, "", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Erhvervsakademier", "Professionshøjskoler"}, view.Types)
		assert.Equal(t, "Erhvervsakademier", view.Type)
		assert.Equal(t, []int{2022, 2023}, view.Years)
		assert.Equal(t, "Alle år", view.YearLabel())

		require.NotNil(t, view.Summary)
		assert.Equal(t, 55.0, view.Summary.Completions)
		assert.Equal(t, 15.0, view.Summary.Dropouts)
		assert.NotEmpty(t, view.Comparison)
	})

	t.Run("single year", func(t *testing.T) {
		year := 2023
		view, err := svc.InstitutionDrilldown(ctx, "Professionshøjskoler", &year)
		require.NoError(t, err)
		assert.Equal(t, 80.0, view.Summary.Completions)
		assert.Equal(t, 20.0, view.Summary.Dropouts)
		require.NotNil(t, view.Summary.DropoutRate)
		assert.InDelta(t, 20.0, *view.Summary.DropoutRate, 1e-9)
		assert.Nil(t, view.Comparison)
	})

	t.Run("no data keeps the selectors", func(t *testing.T) {
		year := 2015
		view, err := svc.InstitutionDrilldown(ctx, "Erhvervsakademier", &year)
		assert.ErrorIs(t, err, ErrNoData)
		require.NotNil(t, view)
		assert.Len(t, view.Types, 2)
		assert.Nil(t, view.Summary)

		msg, ok := Warning(err)
		assert.True(t, ok)
		assert.Equal(t, "Ingen data fundet for det valgte valg.", msg)
	})
}

func TestInstitutionDrilldown_YearBeforeSubjectColumns(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSampleData(t, dir)
	records := append(testutil.SampleInstitutions(), domain.InstitutionRecord{
		Institution: "Erhvervsakademi Aarhus", InstitutionType: "Erhvervsakademier",
		Subinstitution: "Erhvervsakademi Aarhus", Year: 2013, Dropouts: 4, Completions: 12,
	})
	testutil.WriteWorkbook(t, dir, testutil.InstitutionFile, testutil.InstitutionRows(records))
	logger, _ := testutil.NewTestLogger(t)
	svc := NewDashboardService(samplePaths(dir), nil, logger)

	year, all, err := api.ParseYear("2013")
	require.NoError(t, err)
	require.False(t, all)

	view, err := svc.InstitutionDrilldown(context.Background(), "Erhvervsakademier", &year)
	require.NoError(t, err)
	assert.Contains(t, view.Years, 2013)
	assert.Equal(t, 12.0, view.Summary.Completions)
	assert.Equal(t, 4.0, view.Summary.Dropouts)
}

func TestInstitutionMap(t *testing.T) {
	svc, logs := newSampleService(t)

	points, err := svc.InstitutionMap(context.Background())
	require.NoError(t, err)

	// Ukendt Skole has no coordinates
	require.Len(t, points, 2)
	for _, p := range points {
		assert.NotEqual(t, "Ukendt Skole", p.Subinstitution)
		assert.NotZero(t, p.Lat)
	}
	assert.True(t, logs.HasMessage("institutions without coordinates left off the map"))
}

func TestSubjects(t *testing.T) {
	svc, _ := newSampleService(t)
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		view, err := svc.Subjects(ctx, "", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"Sundhed"}, view.Lines)
		assert.Equal(t, "Sundhed", view.Line)
		assert.Equal(t, []string{"Fysioterapi", "Sygepleje"}, view.DirectionOptions)
		assert.Equal(t, "Fysioterapi", view.Direction)
		require.NotNil(t, view.Series)
		assert.Len(t, view.Series.Years, 10)
		require.NotNil(t, view.Distribution)
		assert.Len(t, view.Distribution.Levels, len(LevelYears))
	})

	t.Run("line without both outcomes", func(t *testing.T) {
		view, err := svc.Subjects(ctx, "Samfund", "")
		assert.ErrorIs(t, err, ErrLineNotFound)
		require.NotNil(t, view)
		assert.Equal(t, []string{"Sundhed"}, view.Lines)
		assert.Nil(t, view.Totals)
	})

	t.Run("unknown combination", func(t *testing.T) {
		view, err := svc.Subjects(ctx, "Sundhed", "Jura")
		assert.ErrorIs(t, err, ErrCombinationNotFound)
		require.NotNil(t, view)
		assert.NotNil(t, view.Totals)
		assert.Nil(t, view.Series)
	})
}

func TestSubjectDirection(t *testing.T) {
	svc, _ := newSampleService(t)
	ctx := context.Background()

	series, err := svc.SubjectDirection(ctx, "Sundhed", "Sygepleje")
	require.NoError(t, err)
	assert.Equal(t, 10.0, series.Dropped[0])
	assert.Equal(t, 90.0, series.Completed[0])

	_, err = svc.SubjectDirection(ctx, "Sundhed", "")
	assert.ErrorIs(t, err, ErrCombinationNotFound)
}

func TestPrediction(t *testing.T) {
	svc, _ := newSampleService(t)
	ctx := context.Background()

	result, err := svc.Prediction(ctx)
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)

	top, err := svc.PredictionTop(ctx, "frafaldsprocent", 20)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	_, err = svc.PredictionTop(ctx, "median", 20)
	assert.ErrorIs(t, err, ErrInvalidMeasure)
}

func TestPredictionDirection(t *testing.T) {
	svc, _ := newSampleService(t)
	ctx := context.Background()

	history, err := svc.PredictionDirection(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Fysioterapi", history.SubjectDirection)
	assert.Len(t, history.Dropout.Values, 10)

	_, err = svc.PredictionDirection(ctx, "Jura")
	assert.ErrorIs(t, err, ErrDirectionIncomplete)
	_, ok := Warning(err)
	assert.True(t, ok)
}

func TestPredictionPage(t *testing.T) {
	svc, _ := newSampleService(t)
	ctx := context.Background()

	view, err := svc.PredictionPage(ctx, "")
	require.NoError(t, err)
	require.Len(t, view.Rankings, 3)
	assert.Equal(t, forecast.MeasureDropouts, view.Rankings[0].Measure)
	assert.Len(t, view.Rankings[0].Rows, 3)
	assert.Equal(t, []string{"Fysioterapi", "Jura", "Sygepleje"}, view.Directions)
	assert.NotNil(t, view.History)

	view, err = svc.PredictionPage(ctx, "Jura")
	assert.ErrorIs(t, err, ErrDirectionIncomplete)
	require.NotNil(t, view)
	assert.Nil(t, view.History)
	assert.Len(t, view.Rankings, 3)
}

func TestMissingWorkbook(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	svc := NewDashboardService(samplePaths(t.TempDir()), nil, logger)

	_, err := svc.InstitutionOverview(context.Background())
	require.Error(t, err)
	_, warn := Warning(err)
	assert.False(t, warn)
	assert.True(t, logs.HasMessage("failed to load workbook"))
}

func TestCancelledContext(t *testing.T) {
	svc, _ := newSampleService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SubjectLines(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
