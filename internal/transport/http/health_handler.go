package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// HealthHandler answers /api/health and /api/version
type HealthHandler struct {
	service HealthService
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// writeUncached writes a health answer that proxies must not cache
func writeUncached(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Cache-Control", "no-store")
	render.Status(r, status)
	render.JSON(w, r, v)
}

// HealthCheck reports the process and the state of both datasets
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeUncached(w, r, http.StatusOK, h.service.HealthCheck(r.Context()))
}

// ReadinessCheck answers 503 until both workbooks can be read
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.ReadinessCheck(r.Context())
	code := http.StatusOK
	if status.Status != "ready" {
		h.logger.WarnContext(r.Context(), "readiness check failed", slog.Any("services", status.Services))
		code = http.StatusServiceUnavailable
	}
	writeUncached(w, r, code, status)
}

// LivenessCheck only tells that the process answers
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	writeUncached(w, r, http.StatusOK, h.service.LivenessCheck(r.Context()))
}

// Version reports the build and the years the dashboard covers
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}
