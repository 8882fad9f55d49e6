package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"uddannelsebi/internal/dataprocessing"
	apierrors "uddannelsebi/internal/errors"
	"uddannelsebi/internal/forecast"
	"uddannelsebi/internal/services"
	"uddannelsebi/pkg/contracts/domain"
)

func ptr(v float64) *float64 { return &v }

func samplePredictionResult() *forecast.Result {
	return &forecast.Result{
		Rows: []forecast.Prediction{
			{
				ProgramKey:           domain.ProgramKey{Education: "Sygeplejerske", SubjectLine: "Sundhed", SubjectDirection: "Sygepleje"},
				Dropouts2024:         ptr(19),
				PredictedDropouts:    ptr(20),
				Completions2024:      ptr(108),
				PredictedCompletions: ptr(110),
				DropoutPercent:       ptr(15.38),
			},
		},
	}
}

func doRequest(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestDataHandler_InstitutionOverview(t *testing.T) {
	tests := []struct {
		name       string
		setupMock  func(m *MockDashboardService)
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "success",
			setupMock: func(m *MockDashboardService) {
				m.On("InstitutionOverview").Return(&services.InstitutionOverview{
					ByCompletions: []dataprocessing.TypeTotal{{InstitutionType: "Erhvervsakademier", Completions: 55, Dropouts: 15}},
					ByDropouts:    []dataprocessing.TypeTotal{{InstitutionType: "Erhvervsakademier", Completions: 55, Dropouts: 15}},
				}, nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "success", body["status"])
				assert.Equal(t, float64(1), body["count"])
			},
		},
		{
			name: "unreadable workbook",
			setupMock: func(m *MockDashboardService) {
				m.On("InstitutionOverview").Return(nil, apierrors.NewParsingError("institution.xlsx", errors.New("zip: not a valid zip file")))
			},
			wantStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "PARSING", body["error_type"])
				assert.NotEmpty(t, body["trace_id"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setupMock(svc)
			router, _ := newTestRouter(t, svc)

			w := doRequest(t, router, "/api/institutions/overview")
			assert.Equal(t, tt.wantStatus, w.Code)
			tt.check(t, decode(t, w))
			svc.AssertExpectations(t)
		})
	}
}

func TestDataHandler_InstitutionSummary(t *testing.T) {
	t.Run("single year", func(t *testing.T) {
		svc := new(MockDashboardService)
		is2023 := mock.MatchedBy(func(y *int) bool { return y != nil && *y == 2023 })
		svc.On("InstitutionDrilldown", "Erhvervsakademier", is2023).Return(&services.InstitutionDrilldown{
			Type:    "Erhvervsakademier",
			Summary: &dataprocessing.InstitutionSummary{InstitutionType: "Erhvervsakademier", Completions: 15, Dropouts: 5, Rows: 1},
		}, nil)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/institutions/summary?type=Erhvervsakademier&year=2023")
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("all years", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("InstitutionDrilldown", "Erhvervsakademier", (*int)(nil)).Return(&services.InstitutionDrilldown{
			Summary: &dataprocessing.InstitutionSummary{Rows: 3},
		}, nil)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/institutions/summary?type=Erhvervsakademier&year=Alle%20%C3%A5r")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(3), decode(t, w)["count"])
	})

	t.Run("missing type", func(t *testing.T) {
		svc := new(MockDashboardService)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/institutions/summary?year=2023")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "InstitutionDrilldown", mock.Anything, mock.Anything)
	})

	t.Run("year before the subject columns", func(t *testing.T) {
		svc := new(MockDashboardService)
		is2013 := mock.MatchedBy(func(y *int) bool { return y != nil && *y == 2013 })
		svc.On("InstitutionDrilldown", "Erhvervsakademier", is2013).Return(&services.InstitutionDrilldown{
			Type:    "Erhvervsakademier",
			Years:   []int{2013, 2022},
			Summary: &dataprocessing.InstitutionSummary{InstitutionType: "Erhvervsakademier", Completions: 12, Dropouts: 4, Rows: 1},
		}, nil)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/institutions/summary?type=Erhvervsakademier&year=2013")
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("year the data does not know", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("InstitutionDrilldown", "Erhvervsakademier", mock.Anything).
			Return(&services.InstitutionDrilldown{Type: "Erhvervsakademier"}, services.ErrNoData)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/institutions/summary?type=Erhvervsakademier&year=2030")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apierrors.CodeNoData, decode(t, w)["error_code"])
	})

	t.Run("year not positive", func(t *testing.T) {
		svc := new(MockDashboardService)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/institutions/summary?type=X&year=0")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "InstitutionDrilldown", mock.Anything, mock.Anything)
	})

	t.Run("empty selection", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("InstitutionDrilldown", "Erhvervsakademier", mock.Anything).
			Return(&services.InstitutionDrilldown{Types: []string{"Erhvervsakademier"}}, services.ErrNoData)
		router, logs := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/institutions/summary?type=Erhvervsakademier&year=2015")
		assert.Equal(t, http.StatusNotFound, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Ingen data fundet for det valgte valg.", body["detail"])
		assert.Equal(t, apierrors.CodeNoData, body["error_code"])
		assert.True(t, logs.HasMessage("institution summary: empty selection"))
	})
}

func TestDataHandler_InstitutionMap_NoCoordinates(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("InstitutionMap").Return(nil, services.ErrNoCoordinates)
	router, _ := newTestRouter(t, svc)

	w := doRequest(t, router, "/api/institutions/map")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apierrors.CodeNoCoordinates, decode(t, w)["error_code"])
}

func TestDataHandler_Subjects(t *testing.T) {
	t.Run("lines", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("SubjectLines").Return([]string{"Sundhed og omsorg"}, nil)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/subjects/lines")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []interface{}{"Sundhed og omsorg"}, decode(t, w)["data"])
	})

	t.Run("line with spaces", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Subjects", "Sundhed og omsorg", "").Return(&services.SubjectView{
			Line:       "Sundhed og omsorg",
			Totals:     &dataprocessing.LineTotals{SubjectLine: "Sundhed og omsorg"},
			Directions: []dataprocessing.SubjectAggregate{{}, {}},
		}, nil)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/subjects/lines/Sundhed%20og%20omsorg")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), decode(t, w)["count"])
		svc.AssertExpectations(t)
	})

	t.Run("unknown line", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Subjects", "Samfund", "").Return(&services.SubjectView{Lines: []string{"Sundhed"}}, services.ErrLineNotFound)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/subjects/lines/Samfund")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Ingen data fundet for den valgte FagLinje.", decode(t, w)["detail"])
	})

	t.Run("direction", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("SubjectDirection", "Sundhed", "Sygepleje").Return(&dataprocessing.DirectionSeries{
			Years: domain.Years(),
		}, nil)
		svc.On("SubjectDirection", "Sundhed", "Jura").Return(nil, services.ErrCombinationNotFound)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/subjects/lines/Sundhed/directions/Sygepleje")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(domain.NumYears), decode(t, w)["count"])

		w = doRequest(t, router, "/api/subjects/lines/Sundhed/directions/Jura")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDataHandler_Prediction(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Prediction").Return(samplePredictionResult(), nil)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/prediction")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode(t, w)["count"])
	})

	t.Run("insufficient data", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Prediction").Return(nil, forecast.ErrInsufficientData)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/prediction")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, apierrors.CodeInsufficientData, decode(t, w)["error_code"])
	})

	t.Run("top with limit", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("PredictionTop", "frafaldsprocent", 5).Return(samplePredictionResult().Rows, nil)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/prediction/top/frafaldsprocent?limit=5")
		assert.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "Top 20 fagretninger – forudsagt frafaldsprocent i 2025", data["title"])
	})

	t.Run("top defaults to twenty", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("PredictionTop", "afbrudt", forecast.DefaultTop).Return([]forecast.Prediction{}, nil)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/prediction/top/afbrudt")
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("top rejects input", func(t *testing.T) {
		router, _ := newTestRouter(t, new(MockDashboardService))

		assert.Equal(t, http.StatusBadRequest, doRequest(t, router, "/api/prediction/top/median").Code)
		assert.Equal(t, http.StatusBadRequest, doRequest(t, router, "/api/prediction/top/afbrudt?limit=0").Code)
		assert.Equal(t, http.StatusBadRequest, doRequest(t, router, "/api/prediction/top/afbrudt?limit=abc").Code)
	})

	t.Run("direction incomplete", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("PredictionDirection", "Jura").Return(nil, services.ErrDirectionIncomplete)
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, "/api/prediction/directions/Jura")
		assert.Equal(t, http.StatusNotFound, w.Code)
		body := decode(t, w)
		assert.Equal(t, apierrors.CodeDirectionMissing, body["error_code"])
		assert.Equal(t, "Valgt fagretning findes ikke i både afbrudt og fuldført data.", body["detail"])
	})
}

func TestDataHandler_ExportPrediction(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Prediction").Return(samplePredictionResult(), nil)
	router, logs := newTestRouter(t, svc)

	t.Run("csv", func(t *testing.T) {
		w := doRequest(t, router, "/api/export/prediction.csv")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "forudsigelse_2025.csv")
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
		assert.Contains(t, w.Body.String(), "Sygepleje")
	})

	t.Run("xlsx", func(t *testing.T) {
		w := doRequest(t, router, "/api/export/prediction.xlsx")
		require.Equal(t, http.StatusOK, w.Code)

		f, err := excelize.OpenReader(w.Body)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("unknown format", func(t *testing.T) {
		w := doRequest(t, router, "/api/export/prediction.pdf")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.True(t, logs.HasMessage("prediction exported"))
}
