package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uddannelsebi/internal/config"
	"uddannelsebi/internal/shared/testutil"
)

// newTestApplication builds an application over dir. When withData is set
// the sample workbooks are written there first.
func newTestApplication(t *testing.T, withData bool) *Application {
	t.Helper()

	dir := t.TempDir()
	if withData {
		testutil.WriteSampleData(t, dir)
	}

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Data.Dir = dir
	cfg.Logging.FilePath = ""
	cfg.Security.RateLimit.Enabled = false
	cfg.Telemetry.EnableTracing = false

	logger, _ := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestNew(t *testing.T) {
	app := newTestApplication(t, true)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.Services.Dashboard)
	assert.NotNil(t, app.Services.Health)
	assert.NotNil(t, app.Metrics)
	assert.Equal(t, ":0", app.Server.Addr)
	assert.Equal(t, app.Router, app.Server.Handler)
	assert.Equal(t, 15*time.Second, app.Server.ReadTimeout)
}

func TestRoutes(t *testing.T) {
	app := newTestApplication(t, true)

	tests := []struct {
		name        string
		target      string
		wantStatus  int
		contentType string
		contains    string
	}{
		{name: "homepage", target: "/", wantStatus: http.StatusOK, contentType: "text/html", contains: "Navigation"},
		{name: "institutions page", target: "/?page=Institutioner", wantStatus: http.StatusOK, contentType: "text/html", contains: "Antal fuldførte pr. institution"},
		{name: "prediction page", target: "/?page=Prediction", wantStatus: http.StatusOK, contentType: "text/html", contains: "Tabel med forudsagte værdier for 2025"},
		{name: "chart", target: "/charts/typer.png", wantStatus: http.StatusOK, contentType: "image/png"},
		{name: "overview", target: "/api/institutions/overview", wantStatus: http.StatusOK, contentType: "application/json", contains: `"status":"success"`},
		{name: "subject lines", target: "/api/subjects/lines", wantStatus: http.StatusOK, contentType: "application/json"},
		{name: "prediction", target: "/api/prediction", wantStatus: http.StatusOK, contentType: "application/json"},
		{name: "export", target: "/api/export/prediction.csv", wantStatus: http.StatusOK, contentType: "text/csv", contains: "Frafaldsprocent_2025"},
		{name: "health", target: "/api/health", wantStatus: http.StatusOK, contentType: "application/json", contains: `"status":"ok"`},
		{name: "readiness", target: "/api/health/ready", wantStatus: http.StatusOK, contains: `"status":"ready"`},
		{name: "liveness", target: "/api/health/live", wantStatus: http.StatusOK, contains: `"status":"alive"`},
		{name: "version", target: "/api/version", wantStatus: http.StatusOK, contains: `"api_version":"v1"`},
		{name: "unknown route", target: "/api/nothing-here", wantStatus: http.StatusNotFound, contentType: "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, app.Router, tt.target)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.contentType != "" {
				assert.Contains(t, w.Header().Get("Content-Type"), tt.contentType)
			}
			if tt.contains != "" {
				assert.Contains(t, w.Body.String(), tt.contains)
			}
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := newTestApplication(t, true)

	w := get(t, app.Router, "/api/health")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestMissingWorkbooks(t *testing.T) {
	app := newTestApplication(t, false)

	w := get(t, app.Router, "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "not_ready", body["status"])

	// pages stay usable and show the load error
	w = get(t, app.Router, "/?page=Institutioner")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "⚠️ Fejl under visning af siden")
	assert.Contains(t, w.Body.String(), "Vælg en side")

	assert.Error(t, app.performStartupHealthCheck(context.Background()))
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApplication(t, true)
	require.NotNil(t, app.OTelProviders.PrometheusHTTP)

	get(t, app.Router, "/?page=Homepage")

	w := get(t, app.Router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dashboard_page_renders_total")
}

func TestCORSConfig(t *testing.T) {
	app := newTestApplication(t, true)
	app.Config.Logging.Development = true
	app.Config.Server.Port = 8050

	cfg := app.getCORSConfig()
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:8050")
	assert.Contains(t, cfg.AllowedOrigins, "http://127.0.0.1:8050")
	assert.Contains(t, cfg.ExposedHeaders, "Content-Disposition")
	assert.Len(t, app.Config.Security.AllowedOrigins, 1)
}

func TestStartStop(t *testing.T) {
	app := newTestApplication(t, true)
	app.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	require.NoError(t, app.Stop(context.Background()))
}
