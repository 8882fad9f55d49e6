package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// rcond is the relative cutoff below which singular values are treated as zero
const rcond = 1e-12

var (
	ErrInsufficientData = errors.New("insufficient training data")
	ErrShapeMismatch    = errors.New("feature and target lengths differ")
)

// LinearRegression is an ordinary least squares model with intercept
type LinearRegression struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// Fit estimates coefficients for y ≈ X·coef + intercept. Both X and y are
// centred so the intercept is recovered from the means. Rank deficient
// designs, including a single training row, get the minimum norm solution.
func Fit(X [][]float64, y []float64) (*LinearRegression, error) {
	n := len(X)
	if n == 0 {
		return nil, ErrInsufficientData
	}
	if len(y) != n {
		return nil, fmt.Errorf("%w: %d rows, %d targets", ErrShapeMismatch, n, len(y))
	}
	p := len(X[0])
	if p == 0 {
		return nil, fmt.Errorf("%w: no features", ErrInsufficientData)
	}

	xMean := make([]float64, p)
	for i, row := range X {
		if len(row) != p {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), p)
		}
		for j, v := range row {
			xMean[j] += v
		}
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean := stat.Mean(y, nil)

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i, row := range X {
		for j, v := range row {
			xc.Set(i, j, v-xMean[j])
		}
		yc.SetVec(i, y[i]-yMean)
	}

	coef := make([]float64, p)
	var svd mat.SVD
	if !svd.Factorize(xc, mat.SVDThin) {
		return nil, errors.New("singular value decomposition did not converge")
	}
	if rank := svd.Rank(rcond); rank > 0 {
		beta := mat.NewVecDense(p, nil)
		svd.SolveVecTo(beta, yc, rank)
		for j := range coef {
			coef[j] = beta.AtVec(j)
		}
	}

	intercept := yMean
	for j, c := range coef {
		intercept -= c * xMean[j]
	}
	return &LinearRegression{Coef: coef, Intercept: intercept}, nil
}

// Predict returns the estimate for a single feature row
func (m *LinearRegression) Predict(x []float64) float64 {
	v := m.Intercept
	for j, c := range m.Coef {
		if j < len(x) {
			v += c * x[j]
		}
	}
	return v
}

// PredictAll returns one estimate per row of X
func (m *LinearRegression) PredictAll(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = m.Predict(row)
	}
	return out
}

// Quality is the in-sample fit of a model
type Quality struct {
	R2  *float64 `json:"r2"`
	MAE float64  `json:"mae"`
}

// Score compares estimates with observed values. R² is nil when the
// observations have no variance.
func Score(estimates, observed []float64) Quality {
	if len(observed) == 0 || len(estimates) != len(observed) {
		return Quality{}
	}
	var q Quality
	var absErr float64
	for i := range observed {
		absErr += math.Abs(estimates[i] - observed[i])
	}
	q.MAE = absErr / float64(len(observed))

	r2 := stat.RSquaredFrom(estimates, observed, nil)
	if !math.IsNaN(r2) && !math.IsInf(r2, 0) {
		q.R2 = &r2
	}
	return q
}
