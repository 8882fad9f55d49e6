package services

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"uddannelsebi/internal/config"
	"uddannelsebi/internal/dataprocessing"
	"uddannelsebi/internal/validation"
	"uddannelsebi/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	paths     *config.Paths
	files     *validation.FileValidator
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents the health of one dependency
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Records int    `json:"records,omitempty"`
}

// NewHealthService creates a health service for the configured workbooks
func NewHealthService(paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("service", "health"))
	logger.Info("HealthService initialized", slog.String("version", contracts.Version))

	return &HealthService{
		paths:     paths,
		files:     validation.NewFileValidator(logger),
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck loads both workbooks concurrently. The service is ready
// when each of them parses into at least one record.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services:  make(map[string]ServiceHealth, 2),
	}

	var mu sync.Mutex
	set := func(name string, h ServiceHealth) {
		mu.Lock()
		status.Services[name] = h
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h := hs.checkWorkbook(gctx, hs.paths.InstitutionFile, func(path string) (int, error) {
			records, err := dataprocessing.LoadInstitutions(path)
			return len(records), err
		})
		set(DatasetInstitutions, h)
		return nil
	})
	g.Go(func() error {
		h := hs.checkWorkbook(gctx, hs.paths.SubjectFile, func(path string) (int, error) {
			records, err := dataprocessing.LoadSubjects(path)
			return len(records), err
		})
		set(DatasetSubjects, h)
		return nil
	})
	_ = g.Wait()

	for name, h := range status.Services {
		if h.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "dataset not ready",
				slog.String("dataset", name),
				slog.String("reason", h.Message))
		}
	}
	return status
}

func (hs *HealthService) checkWorkbook(ctx context.Context, path string, load func(string) (int, error)) ServiceHealth {
	if err := ctx.Err(); err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	if err := hs.files.ValidateWorkbook(path); err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	n, err := load(path)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	if n == 0 {
		return ServiceHealth{Status: "not_ready", Message: "workbook has no data rows"}
	}
	return ServiceHealth{Status: "ready", Records: n}
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":         info.Version,
		"api_version":     info.APIVersion,
		"build_time":      info.BuildTime,
		"git_commit":      info.GitCommit,
		"go_version":      info.GoVersion,
		"platform":        info.Platform,
		"data_years":      info.DataYears,
		"prediction_year": info.PredictionYear,
		"uptime":          time.Since(hs.startTime).Seconds(),
		"start_time":      hs.startTime.Format(time.RFC3339),
	}
}
