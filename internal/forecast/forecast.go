// Package forecast extrapolates the yearly dropout and completion counts of
// every program one year past the last observed year.
//
// One linear model per outcome type maps the counts of nine consecutive
// years onto the count of the following year. The models are trained on
// 2015-2023 against 2024 and then applied to 2016-2024 to estimate 2025.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "uddannelsebi/internal/errors"
	"uddannelsebi/pkg/contracts/domain"
)

// Training window and target
const (
	TrainFrom  = domain.FirstYear
	TrainTo    = domain.LastYear - 1
	TargetYear = domain.LastYear
)

// ErrDirectionIncomplete is returned when a subject direction lacks either
// dropout or completion rows.
var ErrDirectionIncomplete = errors.New("Valgt fagretning findes ikke i både afbrudt og fuldført data.")

// Model is a fitted regression for one outcome type together with the rows
// it was trained on and their 2025 estimates.
type Model struct {
	Outcome     domain.OutcomeType     `json:"outcome"`
	Regression  *LinearRegression      `json:"regression"`
	Quality     Quality                `json:"quality"`
	Rows        []domain.SubjectRecord `json:"-"`
	Predictions []float64              `json:"-"`
}

// Prediction is one row of the merged prediction table. Columns of the side
// a program is missing from are nil.
type Prediction struct {
	domain.ProgramKey
	Dropouts2024         *float64 `json:"afbrudt_2024"`
	PredictedDropouts    *float64 `json:"afbrudt_2025_forudsagt"`
	Completions2024      *float64 `json:"fuldfort_2024"`
	PredictedCompletions *float64 `json:"fuldfort_2025_forudsagt"`
	DropoutPercent       *float64 `json:"frafaldsprocent_2025"`
}

// Result holds both models and the merged prediction table
type Result struct {
	Dropout   *Model       `json:"afbrudt"`
	Completed *Model       `json:"fuldfort"`
	Rows      []Prediction `json:"rows"`
}

// Run fits the dropout and completion models concurrently and merges their
// estimates into a single table.
func Run(ctx context.Context, records []domain.SubjectRecord) (*Result, error) {
	start := time.Now()
	logger := slog.Default()

	var dropoutRows, completedRows []domain.SubjectRecord
	for _, r := range records {
		switch r.Type {
		case domain.OutcomeDropout:
			dropoutRows = append(dropoutRows, r)
		case domain.OutcomeCompleted:
			completedRows = append(completedRows, r)
		}
	}

	result := &Result{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := fitModel(ctx, domain.OutcomeDropout, dropoutRows)
		result.Dropout = m
		return err
	})
	g.Go(func() error {
		m, err := fitModel(ctx, domain.OutcomeCompleted, completedRows)
		result.Completed = m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Rows = merge(result.Dropout, result.Completed)

	logger.DebugContext(ctx, "prediction models fitted",
		"dropout_rows", len(dropoutRows),
		"completed_rows", len(completedRows),
		"merged_rows", len(result.Rows),
		"duration", time.Since(start),
	)
	return result, nil
}

func fitModel(ctx context.Context, outcome domain.OutcomeType, rows []domain.SubjectRecord) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", outcome, ErrInsufficientData)
	}

	X := make([][]float64, len(rows))
	shifted := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		X[i] = r.Counts.Window(TrainFrom, TrainTo)
		shifted[i] = r.Counts.Window(TrainFrom+1, TargetYear)
		y[i] = r.Counts.At(TargetYear)
	}

	reg, err := Fit(X, y)
	if err != nil {
		return nil, apperrors.NewModelError(fmt.Sprintf("fit %s model", outcome), err).
			WithContext("rows", len(rows))
	}
	return &Model{
		Outcome:     outcome,
		Regression:  reg,
		Quality:     Score(reg.PredictAll(X), y),
		Rows:        rows,
		Predictions: reg.PredictAll(shifted),
	}, nil
}

// merge joins the two models' rows on program key. Keys are emitted in
// lexicographic order; a key repeated on both sides yields every pairing.
func merge(dropout, completed *Model) []Prediction {
	left := indexByKey(dropout.Rows)
	right := indexByKey(completed.Rows)

	keys := make([]domain.ProgramKey, 0, len(left)+len(right))
	for k := range left {
		keys = append(keys, k)
	}
	for k := range right {
		if _, ok := left[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	var rows []Prediction
	for _, key := range keys {
		ls, rs := left[key], right[key]
		switch {
		case len(rs) == 0:
			for _, l := range ls {
				rows = append(rows, newPrediction(key, dropout, l, nil, -1))
			}
		case len(ls) == 0:
			for _, r := range rs {
				rows = append(rows, newPrediction(key, nil, -1, completed, r))
			}
		default:
			for _, l := range ls {
				for _, r := range rs {
					rows = append(rows, newPrediction(key, dropout, l, completed, r))
				}
			}
		}
	}
	return rows
}

func newPrediction(key domain.ProgramKey, dropout *Model, di int, completed *Model, ci int) Prediction {
	p := Prediction{ProgramKey: key}
	if dropout != nil && di >= 0 {
		p.Dropouts2024 = ptr(dropout.Rows[di].Counts.At(TargetYear))
		p.PredictedDropouts = ptr(dropout.Predictions[di])
	}
	if completed != nil && ci >= 0 {
		p.Completions2024 = ptr(completed.Rows[ci].Counts.At(TargetYear))
		p.PredictedCompletions = ptr(completed.Predictions[ci])
	}
	if p.PredictedDropouts != nil && p.PredictedCompletions != nil {
		if total := *p.PredictedDropouts + *p.PredictedCompletions; total != 0 {
			p.DropoutPercent = ptr(100 * *p.PredictedDropouts / total)
		}
	}
	return p
}

func indexByKey(rows []domain.SubjectRecord) map[domain.ProgramKey][]int {
	index := make(map[domain.ProgramKey][]int)
	for i, r := range rows {
		index[r.Key()] = append(index[r.Key()], i)
	}
	return index
}

func ptr(v float64) *float64 { return &v }
