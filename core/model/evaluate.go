package model

import (
	"fmt"
	"math"

	"github.com/huangsam/rideintegrity/schema"
	"gonum.org/v1/gonum/stat"
)

// Evaluate scores predictions of m on X against the true values y.
// R² is undefined for a constant target and is reported as 0.
func Evaluate(m Regressor, X [][]float64, y []float64) (schema.EvaluationMetrics, error) {
	if len(X) != len(y) {
		return schema.EvaluationMetrics{}, fmt.Errorf("got %d rows but %d target values", len(X), len(y))
	}
	if len(y) == 0 {
		return schema.EvaluationMetrics{}, fmt.Errorf("cannot evaluate on zero rows")
	}
	pred, err := m.Predict(X)
	if err != nil {
		return schema.EvaluationMetrics{}, err
	}

	var sse, sae float64
	for i, p := range pred {
		d := p - y[i]
		sse += d * d
		sae += math.Abs(d)
	}
	n := float64(len(y))
	mse := sse / n

	r2 := stat.RSquaredFrom(pred, y, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	return schema.EvaluationMetrics{
		R2:   r2,
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAE:  sae / n,
	}, nil
}
