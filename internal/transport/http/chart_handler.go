package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apierrors "uddannelsebi/internal/errors"
	mw "uddannelsebi/internal/middleware"
	"uddannelsebi/internal/services"
	api "uddannelsebi/pkg/contracts/api/v1"
)

// ChartHandler serves chart images
type ChartHandler struct {
	service      DashboardService
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service DashboardService, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("handler", "chart")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes, to be mounted under /charts
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(h.errorHandler.NotFound)
	r.Get("/{chart}.png", h.GetChart)
	return r
}

// GetChart handles GET /charts/{chart}.png with the page selectors as query
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := api.ChartRequest{
		Name:      chi.URLParam(r, "chart"),
		Type:      q.Get("type"),
		Year:      q.Get("year"),
		Line:      q.Get("line"),
		Direction: q.Get("direction"),
		Measure:   q.Get("measure"),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	img, err := h.service.Chart(r.Context(), req)
	if err != nil {
		if _, warn := services.Warning(err); !warn {
			h.logger.WarnContext(r.Context(), "chart failed",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("chart", req.Name),
				slog.String("error", err.Error()))
		}
		h.errorHandler.HandleError(w, r, toAPIError(err, req))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	_, _ = w.Write(img)
}
