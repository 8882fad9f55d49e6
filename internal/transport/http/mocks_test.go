package http

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"uddannelsebi/internal/dataprocessing"
	apierrors "uddannelsebi/internal/errors"
	"uddannelsebi/internal/forecast"
	"uddannelsebi/internal/geo"
	mw "uddannelsebi/internal/middleware"
	"uddannelsebi/internal/services"
	"uddannelsebi/internal/shared/testutil"
	api "uddannelsebi/pkg/contracts/api/v1"
)

// MockDashboardService is a mock implementation of DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Homepage(ctx context.Context) services.Homepage {
	return m.Called().Get(0).(services.Homepage)
}

func (m *MockDashboardService) InstitutionOverview(ctx context.Context) (*services.InstitutionOverview, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.InstitutionOverview), args.Error(1)
}

func (m *MockDashboardService) InstitutionTypes(ctx context.Context) ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDashboardService) InstitutionDrilldown(ctx context.Context, institutionType string, year *int) (*services.InstitutionDrilldown, error) {
	args := m.Called(institutionType, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.InstitutionDrilldown), args.Error(1)
}

func (m *MockDashboardService) InstitutionMap(ctx context.Context) ([]geo.MapPoint, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]geo.MapPoint), args.Error(1)
}

func (m *MockDashboardService) SubjectLines(ctx context.Context) ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDashboardService) Subjects(ctx context.Context, line, direction string) (*services.SubjectView, error) {
	args := m.Called(line, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SubjectView), args.Error(1)
}

func (m *MockDashboardService) SubjectDirection(ctx context.Context, line, direction string) (*dataprocessing.DirectionSeries, error) {
	args := m.Called(line, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataprocessing.DirectionSeries), args.Error(1)
}

func (m *MockDashboardService) Prediction(ctx context.Context) (*forecast.Result, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forecast.Result), args.Error(1)
}

func (m *MockDashboardService) PredictionTop(ctx context.Context, measure string, n int) ([]forecast.Prediction, error) {
	args := m.Called(measure, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forecast.Prediction), args.Error(1)
}

func (m *MockDashboardService) PredictionDirection(ctx context.Context, direction string) (*forecast.DirectionHistory, error) {
	args := m.Called(direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forecast.DirectionHistory), args.Error(1)
}

func (m *MockDashboardService) PredictionPage(ctx context.Context, direction string) (*services.PredictionView, error) {
	args := m.Called(direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PredictionView), args.Error(1)
}

func (m *MockDashboardService) Chart(ctx context.Context, req api.ChartRequest) ([]byte, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockHealthService is a mock implementation of HealthService
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

// newTestRouter mounts every handler the way the application does
func newTestRouter(t *testing.T, svc DashboardService) (chi.Router, *testutil.LogCapture) {
	t.Helper()

	logger, logs := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validator := mw.NewValidator(logger)

	pages, err := NewPageHandler(svc, validator, nil, logger)
	if err != nil {
		t.Fatalf("failed to create page handler: %v", err)
	}

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.NotFound(errorHandler.NotFound)
	r.Method("GET", "/", pages)
	r.Mount("/charts", NewChartHandler(svc, validator, logger, errorHandler).Routes())
	r.Mount("/api", NewDataHandler(svc, validator, logger, errorHandler).Routes())
	return r, logs
}
