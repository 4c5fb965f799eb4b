package core

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/huangsam/rideintegrity/core/dataset"
	"github.com/huangsam/rideintegrity/schema"
)

// weightTolerance bounds the rounding error allowed in a weight sum.
const weightTolerance = 1e-9

// CalculateIntegrityScore returns the composite integrity score of a platform
// using the default weights. The result is rounded to two decimals.
//
// Inputs are expected in [0,100] but are not validated, so out-of-range
// inputs produce out-of-range scores. Callers that need to warn should use
// OutOfRange.
func CalculateIntegrityScore(honesty, transparency, accountability, ethics, consistency float64) float64 {
	m := schema.Metrics{
		Honesty:        honesty,
		Transparency:   transparency,
		Accountability: accountability,
		Ethics:         ethics,
		Consistency:    consistency,
	}
	return ScoreMetrics(m, schema.GetDefaultWeights()).Score
}

// ScoreMetrics computes the weighted score and its per-metric breakdown.
// Missing weights count as zero.
func ScoreMetrics(m schema.Metrics, w schema.Weights) schema.PlatformScore {
	breakdown := make(map[schema.MetricKey]float64, len(schema.AllMetrics))
	var raw float64
	for _, key := range schema.AllMetrics {
		contribution := m.Get(key) * w[key]
		breakdown[key] = contribution
		raw += contribution
	}
	return schema.PlatformScore{
		Metrics:   m,
		Score:     round2(raw),
		Breakdown: breakdown,
	}
}

// ScoreDataset scores every row of a table that carries the five metric
// columns. Metric columns are matched by name ignoring case. Rows are named
// by idColumn when present, otherwise by their index.
func ScoreDataset(df dataframe.DataFrame, idColumn string, w schema.Weights) ([]schema.PlatformScore, error) {
	cols, err := MetricColumns(df)
	if err != nil {
		return nil, err
	}

	values := make([][]float64, len(schema.AllMetrics))
	for i, key := range schema.AllMetrics {
		col := df.Col(cols[key])
		if !dataset.IsNumeric(col.Type()) {
			return nil, fmt.Errorf("metric column %q is not numeric", cols[key])
		}
		values[i] = col.Float()
	}

	var names []string
	if slices.Contains(df.Names(), idColumn) {
		names = df.Col(idColumn).Records()
	}

	scores := make([]schema.PlatformScore, df.Nrow())
	for row := range scores {
		vec := make([]float64, len(schema.AllMetrics))
		for i := range schema.AllMetrics {
			v := values[i][row]
			if math.IsNaN(v) {
				return nil, fmt.Errorf("row %d has a missing %s value", row, schema.AllMetrics[i])
			}
			vec[i] = v
		}
		m, err := schema.NewMetrics(vec)
		if err != nil {
			return nil, err
		}
		scores[row] = ScoreMetrics(m, w)
		if names != nil {
			scores[row].Platform = names[row]
		} else {
			scores[row].Platform = fmt.Sprintf("row %d", row+1)
		}
	}
	return scores, nil
}

// MetricColumns maps each metric to the matching column name in df.
func MetricColumns(df dataframe.DataFrame) (map[schema.MetricKey]string, error) {
	found := make(map[schema.MetricKey]string, len(schema.AllMetrics))
	for _, name := range df.Names() {
		key := schema.MetricKey(strings.ToLower(strings.TrimSpace(name)))
		if slices.Contains(schema.AllMetrics, key) {
			if _, dup := found[key]; !dup {
				found[key] = name
			}
		}
	}
	var missing []string
	for _, key := range schema.AllMetrics {
		if _, ok := found[key]; !ok {
			missing = append(missing, string(key))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing metric columns: %s", strings.Join(missing, ", "))
	}
	return found, nil
}

// ValidateWeights checks that every metric has a non-negative weight and
// that the weights sum to 1.0.
func ValidateWeights(w schema.Weights) error {
	var sum float64
	for _, key := range schema.AllMetrics {
		v, ok := w[key]
		if !ok {
			return fmt.Errorf("weight for %s is not set", key)
		}
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weight for %s must not be negative, got %g", key, v)
		}
		sum += v
	}
	if len(w) != len(schema.AllMetrics) {
		return fmt.Errorf("expected %d weights, got %d", len(schema.AllMetrics), len(w))
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %.6f", sum)
	}
	return nil
}

// OutOfRange returns the metrics whose value lies outside [0,100].
func OutOfRange(m schema.Metrics) []schema.MetricKey {
	var out []schema.MetricKey
	for _, key := range schema.AllMetrics {
		v := m.Get(key)
		if v < 0 || v > 100 || math.IsNaN(v) {
			out = append(out, key)
		}
	}
	return out
}

// round2 rounds half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
