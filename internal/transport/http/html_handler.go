package http

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"uddannelsebi/internal/infrastructure"
	mw "uddannelsebi/internal/middleware"
	"uddannelsebi/internal/services"
	api "uddannelsebi/pkg/contracts/api/v1"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page outcomes recorded in metrics
const (
	outcomeOK      = "ok"
	outcomeWarning = "warning"
	outcomeError   = "error"
)

// pageData is what the layout template renders
type pageData struct {
	Pages   []string
	Page    string
	Warning string
	Error   string
	View    interface{}
}

type viewFunc func(ctx context.Context, req api.PageRequest) (interface{}, error)

// PageHandler renders the dashboard pages as HTML. The page is chosen by
// the "page" query parameter; the selectors of the page travel in the query
// string as well.
type PageHandler struct {
	service   DashboardService
	validator *mw.Validator
	metrics   *infrastructure.DashboardMetrics
	tmpl      *template.Template
	views     map[string]viewFunc
	logger    *slog.Logger
}

// NewPageHandler parses the embedded templates. metrics may be nil.
func NewPageHandler(service DashboardService, validator *mw.Validator, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := template.New("layout.html").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	h := &PageHandler{
		service:   service,
		validator: validator,
		metrics:   metrics,
		tmpl:      tmpl,
		logger:    logger.With(slog.String("handler", "page")),
	}
	h.views = map[string]viewFunc{
		api.PageHomepage:      h.homepage,
		api.PageVisualization: h.visualization,
		api.PagePrediction:    h.prediction,
		api.PageInstitutions:  h.institutions,
		api.PageInstitution:   h.institution,
		api.PageMap:           h.institutionMap,
	}
	return h, nil
}

// ServeHTTP handles GET /
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := api.PageRequest{
		Page:      q.Get("page"),
		Type:      q.Get("type"),
		Year:      q.Get("year"),
		Line:      q.Get("line"),
		Direction: q.Get("direction"),
	}
	if req.Page == "" {
		req.Page = api.PageHomepage
	}

	data := pageData{Pages: api.Pages(), Page: req.Page}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.metrics.RecordPageRender(r.Context(), req.Page, outcomeError)
		data.Page = ""
		data.Error = "Ugyldigt valg: " + err.Error()
		h.write(w, r, http.StatusBadRequest, data)
		return
	}

	view, err := h.render(r.Context(), req)
	data.View = view
	status := http.StatusOK
	outcome := outcomeOK
	if err != nil {
		if msg, warn := services.Warning(err); warn {
			data.Warning = msg
			outcome = outcomeWarning
		} else {
			h.logger.ErrorContext(r.Context(), "page failed",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("page", req.Page),
				slog.String("error", err.Error()))
			data.Error = "⚠️ Fejl under visning af siden: " + err.Error()
			status = http.StatusInternalServerError
			outcome = outcomeError
		}
	}
	h.metrics.RecordPageRender(r.Context(), req.Page, outcome)
	h.write(w, r, status, data)
}

// render runs one view and turns a panic inside it into an error
func (h *PageHandler) render(ctx context.Context, req api.PageRequest) (view interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.ErrorContext(ctx, "page panicked",
				slog.String("page", req.Page),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			view, err = nil, fmt.Errorf("%v", rec)
		}
	}()
	return h.views[req.Page](ctx, req)
}

// write executes the layout into a buffer so a template failure can still
// be answered with a clean 500.
func (h *PageHandler) write(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.logger.ErrorContext(r.Context(), "template failed",
			slog.String("page", data.Page),
			slog.String("error", err.Error()))
		http.Error(w, "⚠️ Fejl under visning af siden: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *PageHandler) homepage(ctx context.Context, _ api.PageRequest) (interface{}, error) {
	return h.service.Homepage(ctx), nil
}

func (h *PageHandler) institutions(ctx context.Context, _ api.PageRequest) (interface{}, error) {
	return h.service.InstitutionOverview(ctx)
}

func (h *PageHandler) institution(ctx context.Context, req api.PageRequest) (interface{}, error) {
	year, all, err := api.ParseYear(req.Year)
	if err != nil {
		return nil, err
	}
	var yearPtr *int
	if !all {
		yearPtr = &year
	}
	return h.service.InstitutionDrilldown(ctx, req.Type, yearPtr)
}

func (h *PageHandler) institutionMap(ctx context.Context, _ api.PageRequest) (interface{}, error) {
	return h.service.InstitutionMap(ctx)
}

func (h *PageHandler) visualization(ctx context.Context, req api.PageRequest) (interface{}, error) {
	return h.service.Subjects(ctx, req.Line, req.Direction)
}

func (h *PageHandler) prediction(ctx context.Context, req api.PageRequest) (interface{}, error) {
	return h.service.PredictionPage(ctx, req.Direction)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"chartURL": chartURL,
		"count": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 0, 64)
		},
		"num": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 2, 64)
		},
		"opt": func(v *float64) string {
			if v == nil {
				return "–"
			}
			return strconv.FormatFloat(*v, 'f', 2, 64)
		},
		"allYears": func() string { return api.AllYears },
		"yearIs": func(y *int, v int) bool {
			return y != nil && *y == v
		},
	}
}

// chartURL builds /charts/<name>.png with key/value query pairs. Empty
// values are left out.
func chartURL(name string, kv ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	u := "/charts/" + url.PathEscape(name) + ".png"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}
