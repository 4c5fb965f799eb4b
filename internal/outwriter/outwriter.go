// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"time"

	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct {
	chartOut io.Writer
}

// NewOutWriter creates a new instance of the output writer.
// Charts are drawn to chartOut.
func NewOutWriter(chartOut io.Writer) *OutWriter {
	return &OutWriter{chartOut: chartOut}
}

// WriteScores prints platform scores using the configured output format.
func (ow *OutWriter) WriteScores(scores []schema.PlatformScore, cfg *contract.Config, duration time.Duration) error {
	return WriteScores(scores, cfg, duration)
}

// WriteTrainingReport prints a training report using the configured output format.
func (ow *OutWriter) WriteTrainingReport(report *schema.TrainingReport, cfg *contract.Config) error {
	return WriteTrainingReport(report, cfg)
}

// WriteWeights prints the active composite weights using the configured output format.
func (ow *OutWriter) WriteWeights(weights schema.Weights, custom bool, cfg *contract.Config) error {
	return WriteWeights(weights, custom, cfg)
}

// WritePrediction prints a model prediction using the configured output format.
func (ow *OutWriter) WritePrediction(pred schema.Prediction, order []string, cfg *contract.Config) error {
	return WritePrediction(pred, order, cfg)
}

// PlotScores draws the score chart for already ranked platforms.
func (ow *OutWriter) PlotScores(scores []schema.PlatformScore, cfg *contract.Config) error {
	platforms := make([]string, len(scores))
	values := make([]float64, len(scores))
	for i, s := range scores {
		platforms[i] = s.Platform
		values[i] = s.Score
	}
	return PlotIntegrityScores(ow.chartOut, platforms, values, ChartOptionsFromConfig(cfg, ""))
}

// PlotImportance draws the feature importance chart of a trained model.
func (ow *OutWriter) PlotImportance(m ImportanceSource, cfg *contract.Config) error {
	return PlotFeatureImportance(ow.chartOut, m, nil, ChartOptionsFromConfig(cfg, ""))
}
