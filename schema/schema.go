// Package schema has configs, models and constants for all parts of rideintegrity.
package schema

import (
	"fmt"
	"time"
)

// Weights maps each metric to its coefficient in the composite score.
type Weights map[MetricKey]float64

// Metrics holds the five survey metrics for a single platform.
// Values are expected in [0,100] but nothing enforces it.
type Metrics struct {
	Honesty        float64 `json:"honesty" yaml:"honesty"`
	Transparency   float64 `json:"transparency" yaml:"transparency"`
	Accountability float64 `json:"accountability" yaml:"accountability"`
	Ethics         float64 `json:"ethics" yaml:"ethics"`
	Consistency    float64 `json:"consistency" yaml:"consistency"`
}

// NewMetrics builds Metrics from a slice in canonical order.
func NewMetrics(values []float64) (Metrics, error) {
	if len(values) != len(AllMetrics) {
		return Metrics{}, fmt.Errorf("expected %d metric values, got %d", len(AllMetrics), len(values))
	}
	return Metrics{
		Honesty:        values[0],
		Transparency:   values[1],
		Accountability: values[2],
		Ethics:         values[3],
		Consistency:    values[4],
	}, nil
}

// Values returns the metrics in canonical order.
func (m Metrics) Values() []float64 {
	return []float64{m.Honesty, m.Transparency, m.Accountability, m.Ethics, m.Consistency}
}

// Get returns the value for a single metric key.
func (m Metrics) Get(key MetricKey) float64 {
	switch key {
	case Honesty:
		return m.Honesty
	case Transparency:
		return m.Transparency
	case Accountability:
		return m.Accountability
	case Ethics:
		return m.Ethics
	case Consistency:
		return m.Consistency
	default:
		return 0
	}
}

// PlatformScore is the integrity score for a single platform.
type PlatformScore struct {
	Platform  string                `json:"platform" yaml:"platform"`
	Metrics   Metrics               `json:"metrics" yaml:"metrics"`
	Score     float64               `json:"score" yaml:"score"`           // Rounded to 2 decimals
	Breakdown map[MetricKey]float64 `json:"breakdown" yaml:"breakdown"`   // Weighted contribution per metric
	Label     string                `json:"label,omitempty" yaml:"label"` // Filled in by the writers
}

// FeatureImportance is the relative weight of one model feature.
type FeatureImportance struct {
	Feature     string  `json:"feature" yaml:"feature"`
	Coefficient float64 `json:"coefficient" yaml:"coefficient"`
	Importance  float64 `json:"importance" yaml:"importance"`
}

// EvaluationMetrics summarizes regression quality on a held-out split.
type EvaluationMetrics struct {
	R2   float64 `json:"r2" yaml:"r2"`
	MSE  float64 `json:"mse" yaml:"mse"`
	RMSE float64 `json:"rmse" yaml:"rmse"`
	MAE  float64 `json:"mae" yaml:"mae"`
}

// TrainingReport describes the outcome of a single training run.
type TrainingReport struct {
	ModelID      string              `json:"model_id" yaml:"model_id"`
	Target       string              `json:"target" yaml:"target"`
	Features     []string            `json:"features" yaml:"features"`
	TrainRows    int                 `json:"train_rows" yaml:"train_rows"`
	TestRows     int                 `json:"test_rows" yaml:"test_rows"`
	TestSize     float64             `json:"test_size" yaml:"test_size"`
	Seed         int64               `json:"seed" yaml:"seed"`
	Ridge        float64             `json:"ridge" yaml:"ridge"`
	Intercept    float64             `json:"intercept" yaml:"intercept"`
	Train        EvaluationMetrics   `json:"train" yaml:"train"`
	Test         EvaluationMetrics   `json:"test" yaml:"test"`
	Importances  []FeatureImportance `json:"importances" yaml:"importances"`
	ModelPath    string              `json:"model_path,omitempty" yaml:"model_path,omitempty"`
	TrainedAt    time.Time           `json:"trained_at" yaml:"trained_at"`
	TrainingTime time.Duration       `json:"training_time" yaml:"training_time"`
}

// Prediction is a single model prediction for a feature vector.
type Prediction struct {
	ModelID  string             `json:"model_id" yaml:"model_id"`
	Features map[string]float64 `json:"features" yaml:"features"`
	Value    float64            `json:"value" yaml:"value"`
}
