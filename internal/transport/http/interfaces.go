package http

import (
	"context"

	"uddannelsebi/internal/dataprocessing"
	"uddannelsebi/internal/forecast"
	"uddannelsebi/internal/geo"
	"uddannelsebi/internal/services"
	api "uddannelsebi/pkg/contracts/api/v1"
)

// DashboardService defines the views the handlers render
type DashboardService interface {
	Homepage(ctx context.Context) services.Homepage
	InstitutionOverview(ctx context.Context) (*services.InstitutionOverview, error)
	InstitutionTypes(ctx context.Context) ([]string, error)
	InstitutionDrilldown(ctx context.Context, institutionType string, year *int) (*services.InstitutionDrilldown, error)
	InstitutionMap(ctx context.Context) ([]geo.MapPoint, error)
	SubjectLines(ctx context.Context) ([]string, error)
	Subjects(ctx context.Context, line, direction string) (*services.SubjectView, error)
	SubjectDirection(ctx context.Context, line, direction string) (*dataprocessing.DirectionSeries, error)
	Prediction(ctx context.Context) (*forecast.Result, error)
	PredictionTop(ctx context.Context, measure string, n int) ([]forecast.Prediction, error)
	PredictionDirection(ctx context.Context, direction string) (*forecast.DirectionHistory, error)
	PredictionPage(ctx context.Context, direction string) (*services.PredictionView, error)
	Chart(ctx context.Context, req api.ChartRequest) ([]byte, error)
}

// HealthService defines the health and version endpoints
type HealthService interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
