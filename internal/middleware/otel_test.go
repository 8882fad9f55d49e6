package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uddannelsebi/internal/infrastructure"
	"uddannelsebi/internal/shared/testutil"
)

func TestNewOTelMiddlewareRequiresInputs(t *testing.T) {
	_, err := NewOTelMiddleware(nil, &infrastructure.DashboardMetrics{})
	assert.Error(t, err)

	logger, _ := testutil.NewTestLogger(t)
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{TraceExporter: "none", MetricExporter: "none"}, logger)
	require.NoError(t, err)
	_, err = NewOTelMiddleware(providers, nil)
	assert.Error(t, err)
}

func TestOTelMiddlewareRecordsRoutePattern(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    infrastructure.ServiceName,
		ServiceVersion: "test",
		EnableMetrics:  true,
		MetricExporter: "prometheus",
	}, logger)
	require.NoError(t, err)
	metrics, err := infrastructure.CreateDashboardMetrics(providers.Meter)
	require.NoError(t, err)

	mw, err := NewOTelMiddleware(providers, metrics)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(mw.Handler)
	r.Get("/api/subjects/lines/{line}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/subjects/lines/Sundhed", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	scrape := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(scrape.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), `route="/api/subjects/lines/{line}"`)
	assert.Contains(t, string(body), `status_code="404"`)
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	_, _ = rw.Write([]byte("abc"))
	rw.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusOK, rw.statusCode)
	assert.EqualValues(t, 3, rw.bytesWritten)
	assert.Equal(t, rec, rw.Unwrap())
}
