// Package model fits, evaluates, persists and serves the linear regression
// model that predicts an integrity score from processed features.
package model

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/huangsam/rideintegrity/core/dataset"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Sentinel errors returned by the model package.
var (
	ErrModelNotFound   = eris.New("model file not found")
	ErrNotTrained      = eris.New("model is not trained")
	ErrFeatureMismatch = eris.New("feature vector does not match the model")
)

// Regressor is the narrow capability the predictor and the visualizer need.
type Regressor interface {
	IsTrained() bool
	FeatureNames() []string
	Predict(rows [][]float64) ([]float64, error)
}

// LinearModel is a ridge-regularised linear regression over named features.
type LinearModel struct {
	ID           string
	Target       string
	Features     []string
	Coefficients []float64
	Intercept    float64
	Importances  []float64 // Normalized |coef| * std(x), sums to 1
	Ridge        float64
	TrainedAt    time.Time

	trained bool
}

var _ Regressor = (*LinearModel)(nil)

// IsTrained reports whether the model holds fitted coefficients.
func (m *LinearModel) IsTrained() bool {
	return m != nil && m.trained
}

// FeatureNames returns the ordered feature names the model expects.
func (m *LinearModel) FeatureNames() []string {
	return slices.Clone(m.Features)
}

// Predict returns one prediction per row. Every row must have one value per feature.
func (m *LinearModel) Predict(rows [][]float64) ([]float64, error) {
	if !m.IsTrained() {
		return nil, ErrNotTrained
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(m.Coefficients) {
			return nil, eris.Wrapf(ErrFeatureMismatch, "row %d has %d values, model expects %d", i, len(row), len(m.Coefficients))
		}
		v := m.Intercept
		for j, x := range row {
			v += m.Coefficients[j] * x
		}
		out[i] = v
	}
	return out, nil
}

// PredictFrame predicts every row of df using the columns named by the model.
func (m *LinearModel) PredictFrame(df dataframe.DataFrame) ([]float64, error) {
	if !m.IsTrained() {
		return nil, ErrNotTrained
	}
	rows, err := dataset.ToMatrix(df, m.Features)
	if err != nil {
		return nil, eris.Wrapf(ErrFeatureMismatch, "%v", err)
	}
	return m.Predict(rows)
}

// FeatureImportances pairs each feature with its coefficient and importance.
func (m *LinearModel) FeatureImportances() []schema.FeatureImportance {
	out := make([]schema.FeatureImportance, len(m.Features))
	for i, name := range m.Features {
		out[i] = schema.FeatureImportance{
			Feature:     name,
			Coefficient: m.Coefficients[i],
			Importance:  m.Importances[i],
		}
	}
	return out
}

// Fit solves (XᵀX + λI)β = Xᵀy on centred data and recovers the intercept
// from the means. λ is ridge scaled by the mean diagonal of XᵀX so the
// penalty stays small relative to the data while keeping rank-deficient
// designs solvable.
func Fit(X [][]float64, y []float64, names []string, ridge float64) (*LinearModel, error) {
	n := len(X)
	if n == 0 {
		return nil, fmt.Errorf("cannot fit a model on zero rows")
	}
	if len(y) != n {
		return nil, fmt.Errorf("got %d rows but %d target values", n, len(y))
	}
	p := len(names)
	if p == 0 {
		return nil, fmt.Errorf("cannot fit a model without features")
	}
	if ridge < 0 {
		return nil, fmt.Errorf("ridge must not be negative, got %g", ridge)
	}

	columns := make([][]float64, p)
	for j := range columns {
		columns[j] = make([]float64, n)
	}
	for i, row := range X {
		if len(row) != p {
			return nil, eris.Wrapf(ErrFeatureMismatch, "row %d has %d values, expected %d", i, len(row), p)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("feature %q has a non-finite value at row %d", names[j], i)
			}
			columns[j][i] = v
		}
	}

	means := make([]float64, p)
	stds := make([]float64, p)
	centred := mat.NewDense(n, p, nil)
	for j, col := range columns {
		means[j] = stat.Mean(col, nil)
		if n > 1 {
			stds[j] = stat.StdDev(col, nil)
		}
		for i, v := range col {
			centred.Set(i, j, v-means[j])
		}
	}
	yMean := stat.Mean(y, nil)
	yc := mat.NewVecDense(n, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}

	var xtx mat.Dense
	xtx.Mul(centred.T(), centred)
	lambda := ridge * math.Max(1, mat.Trace(&xtx)/float64(p))
	gram := mat.NewSymDense(p, nil)
	for i := range p {
		for j := i; j < p; j++ {
			v := xtx.At(i, j)
			if i == j {
				v += lambda
			}
			gram.SetSym(i, j, v)
		}
	}

	var xty mat.VecDense
	xty.MulVec(centred.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return nil, fmt.Errorf("design matrix is singular; use a positive ridge penalty")
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil, eris.Wrap(err, "solve normal equations")
	}

	coefs := make([]float64, p)
	intercept := yMean
	for j := range coefs {
		coefs[j] = beta.AtVec(j)
		intercept -= coefs[j] * means[j]
	}

	return &LinearModel{
		Features:     slices.Clone(names),
		Coefficients: coefs,
		Intercept:    intercept,
		Importances:  importances(coefs, stds),
		Ridge:        ridge,
		TrainedAt:    time.Now(),
		trained:      true,
	}, nil
}

// importances weighs each coefficient by the spread of its feature and
// normalizes the result to sum to 1.
func importances(coefs, stds []float64) []float64 {
	out := make([]float64, len(coefs))
	var total float64
	for j, c := range coefs {
		out[j] = math.Abs(c) * stds[j]
		total += out[j]
	}
	if total == 0 {
		return out
	}
	for j := range out {
		out[j] /= total
	}
	return out
}
