package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "uddannelsebi/internal/errors"
	"uddannelsebi/internal/exporter"
	"uddannelsebi/internal/forecast"
	mw "uddannelsebi/internal/middleware"
	"uddannelsebi/internal/services"
	api "uddannelsebi/pkg/contracts/api/v1"
)

type ctxKey string

const (
	lineKey      ctxKey = "line"
	directionKey ctxKey = "direction"
)

// exportBaseName is the file name of prediction downloads, without extension
const exportBaseName = "forudsigelse_2025"

// DataHandler serves the dashboard views as JSON with RFC 7807 errors
type DataHandler struct {
	service      DashboardService
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler
func NewDataHandler(service DashboardService, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes, to be mounted under /api
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(h.errorHandler.NotFound)

	r.Route("/institutions", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/overview", h.GetInstitutionOverview)
		r.Get("/types", h.GetInstitutionTypes)
		r.Get("/summary", h.GetInstitutionSummary)
		r.Get("/map", h.GetInstitutionMap)
	})

	r.Route("/subjects", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/lines", h.GetSubjectLines)
		r.Route("/lines/{line}", func(r chi.Router) {
			r.Use(h.pathParamCtx("line", lineKey))
			r.Get("/", h.GetSubjectLine)
			r.With(h.pathParamCtx("direction", directionKey)).
				Get("/directions/{direction}", h.GetSubjectDirection)
		})
	})

	r.Route("/prediction", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/", h.GetPrediction)
		r.Get("/top/{measure}", h.GetPredictionTop)
		r.With(h.pathParamCtx("direction", directionKey)).
			Get("/directions/{direction}", h.GetPredictionDirection)
	})

	r.Get("/export/prediction.{format}", h.ExportPrediction)

	return r
}

// pathParamCtx decodes a path parameter and stores it in the context
func (h *DataHandler) pathParamCtx(param string, key ctxKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := chi.URLParam(r, param)
			value, err := url.PathUnescape(raw)
			if err != nil {
				value = raw
			}
			if value == "" || len(value) > 200 {
				h.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, "must be between 1 and 200 characters"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), key, value)))
		})
	}
}

func ctxString(ctx context.Context, key ctxKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// fail logs and answers a failed service call
func (h *DataHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error, selection interface{}) {
	if _, warn := services.Warning(err); warn {
		h.logger.InfoContext(r.Context(), op+": empty selection",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("reason", err.Error()))
	} else {
		h.logger.ErrorContext(r.Context(), op+" failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
	}
	h.errorHandler.HandleError(w, r, toAPIError(err, selection))
}

func success(w http.ResponseWriter, r *http.Request, data interface{}, count int) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  count,
	})
}

// GetInstitutionOverview handles GET /api/institutions/overview
func (h *DataHandler) GetInstitutionOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.InstitutionOverview(r.Context())
	if err != nil {
		h.fail(w, r, "institution overview", err, nil)
		return
	}
	success(w, r, overview, len(overview.ByCompletions))
}

// GetInstitutionTypes handles GET /api/institutions/types
func (h *DataHandler) GetInstitutionTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.InstitutionTypes(r.Context())
	if err != nil {
		h.fail(w, r, "institution types", err, nil)
		return
	}
	success(w, r, types, len(types))
}

// GetInstitutionSummary handles GET /api/institutions/summary?type=&year=
func (h *DataHandler) GetInstitutionSummary(w http.ResponseWriter, r *http.Request) {
	req := api.InstitutionSummaryRequest{
		Type: r.URL.Query().Get("type"),
		Year: r.URL.Query().Get("year"),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	year, all, err := api.ParseYear(req.Year)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("year", err.Error()))
		return
	}
	var yearPtr *int
	if !all {
		yearPtr = &year
	}

	view, err := h.service.InstitutionDrilldown(r.Context(), req.Type, yearPtr)
	if err != nil {
		h.fail(w, r, "institution summary", err, req)
		return
	}
	success(w, r, view, view.Summary.Rows)
}

// GetInstitutionMap handles GET /api/institutions/map
func (h *DataHandler) GetInstitutionMap(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.InstitutionMap(r.Context())
	if err != nil {
		h.fail(w, r, "institution map", err, nil)
		return
	}
	success(w, r, points, len(points))
}

// GetSubjectLines handles GET /api/subjects/lines
func (h *DataHandler) GetSubjectLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.SubjectLines(r.Context())
	if err != nil {
		h.fail(w, r, "subject lines", err, nil)
		return
	}
	success(w, r, lines, len(lines))
}

// GetSubjectLine handles GET /api/subjects/lines/{line}
func (h *DataHandler) GetSubjectLine(w http.ResponseWriter, r *http.Request) {
	line := ctxString(r.Context(), lineKey)
	view, err := h.service.Subjects(r.Context(), line, "")
	// the line resolves as soon as its totals do
	if err != nil && (view == nil || view.Totals == nil) {
		h.fail(w, r, "subject line", err, map[string]string{"line": line})
		return
	}
	success(w, r, map[string]interface{}{
		"line":       view.Line,
		"totals":     view.Totals,
		"directions": view.Directions,
	}, len(view.Directions))
}

// GetSubjectDirection handles GET /api/subjects/lines/{line}/directions/{direction}
func (h *DataHandler) GetSubjectDirection(w http.ResponseWriter, r *http.Request) {
	line := ctxString(r.Context(), lineKey)
	direction := ctxString(r.Context(), directionKey)
	series, err := h.service.SubjectDirection(r.Context(), line, direction)
	if err != nil {
		h.fail(w, r, "subject direction", err, map[string]string{"line": line, "direction": direction})
		return
	}
	success(w, r, series, len(series.Years))
}

// GetPrediction handles GET /api/prediction
func (h *DataHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Prediction(r.Context())
	if err != nil {
		h.fail(w, r, "prediction", err, nil)
		return
	}
	success(w, r, result, len(result.Rows))
}

// GetPredictionTop handles GET /api/prediction/top/{measure}?limit=
func (h *DataHandler) GetPredictionTop(w http.ResponseWriter, r *http.Request) {
	req := api.TopRequest{
		Measure: chi.URLParam(r, "measure"),
		Limit:   forecast.DefaultTop,
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "must be a whole number"))
			return
		}
		req.Limit = n
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.PredictionTop(r.Context(), req.Measure, req.Limit)
	if err != nil {
		h.fail(w, r, "prediction top", err, req)
		return
	}
	success(w, r, map[string]interface{}{
		"measure": req.Measure,
		"title":   forecast.Measure(req.Measure).Title(),
		"rows":    rows,
	}, len(rows))
}

// GetPredictionDirection handles GET /api/prediction/directions/{direction}
func (h *DataHandler) GetPredictionDirection(w http.ResponseWriter, r *http.Request) {
	direction := ctxString(r.Context(), directionKey)
	history, err := h.service.PredictionDirection(r.Context(), direction)
	if err != nil {
		h.fail(w, r, "prediction direction", err, map[string]string{"direction": direction})
		return
	}
	success(w, r, history, 2)
}

// ExportPrediction handles GET /api/export/prediction.{csv,xlsx}
func (h *DataHandler) ExportPrediction(w http.ResponseWriter, r *http.Request) {
	req := api.ExportRequest{Format: chi.URLParam(r, "format")}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	result, err := h.service.Prediction(r.Context())
	if err != nil {
		h.fail(w, r, "prediction export", err, req)
		return
	}

	var buf bytes.Buffer
	if err := exporter.WritePredictions(&buf, format, result.Rows); err != nil {
		h.fail(w, r, "prediction export", err, req)
		return
	}

	h.logger.InfoContext(r.Context(), "prediction exported",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("format", string(format)),
		slog.Int("rows", len(result.Rows)),
		slog.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.FileName(exportBaseName)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
