package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// weightEntry is one metric and its coefficient.
type weightEntry struct {
	Metric string  `json:"metric" yaml:"metric"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// weightsRenderModel holds everything shown by the weights command.
type weightsRenderModel struct {
	Title   string        `json:"title" yaml:"title"`
	Formula string        `json:"formula" yaml:"formula"`
	Custom  bool          `json:"custom" yaml:"custom"`
	Weights []weightEntry `json:"weights" yaml:"weights"`
	Labels  []string      `json:"labels" yaml:"labels"`
}

// WriteWeights displays the active composite weights and the scoring formula.
func WriteWeights(weights schema.Weights, custom bool, cfg *contract.Config) error {
	model := buildWeightsRenderModel(weights, custom)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, model)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"metric", "weight"}, func(cw *csv.Writer) error {
				for _, e := range model.Weights {
					if err := cw.Write([]string{e.Metric, fmt.Sprintf("%.2f", e.Weight)}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for platform scores")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeWeightsText(w, model)
		}, "Wrote text")
	}
}

// buildWeightsRenderModel orders the weights canonically and builds the formula.
func buildWeightsRenderModel(weights schema.Weights, custom bool) *weightsRenderModel {
	entries := make([]weightEntry, 0, len(schema.AllMetrics))
	parts := make([]string, 0, len(schema.AllMetrics))
	for _, key := range schema.AllMetrics {
		weight := weights[key]
		entries = append(entries, weightEntry{Metric: string(key), Weight: weight})
		parts = append(parts, fmt.Sprintf("%.2f*%s", weight, key))
	}
	return &weightsRenderModel{
		Title:   "Integrity Score Weights",
		Formula: strings.Join(parts, " + "),
		Custom:  custom,
		Weights: entries,
		Labels: []string{
			fmt.Sprintf("%s: score >= 80", contract.ExemplaryValue),
			fmt.Sprintf("%s: score >= 60", contract.TrustedValue),
			fmt.Sprintf("%s: score >= 40", contract.QuestionableValue),
			fmt.Sprintf("%s: score < 40", contract.UntrustedValue),
		},
	}
}

// writeWeightsText displays the weights in human-readable text format.
func writeWeightsText(w io.Writer, model *weightsRenderModel) error {
	source := "defaults"
	if model.Custom {
		source = "custom (config file)"
	}
	if _, err := fmt.Fprintf(w, "⚖️  %s [%s]\n\n", model.Title, source); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Weight"})
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, e := range model.Weights {
		data = append(data, []string{e.Metric, fmt.Sprintf("%.2f", e.Weight)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nFormula: Score = round(%s, 2)\n\n", model.Formula); err != nil {
		return err
	}
	for _, label := range model.Labels {
		if _, err := fmt.Fprintf(w, "  %s\n", label); err != nil {
			return err
		}
	}
	return nil
}
