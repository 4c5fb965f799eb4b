package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// predictionView is a Prediction with its label, used for JSON and YAML output.
type predictionView struct {
	schema.Prediction `yaml:",inline"`
	Label             string `json:"label" yaml:"label"`
}

// WritePrediction outputs a single model prediction using the configured output format.
func WritePrediction(pred schema.Prediction, order []string, cfg *contract.Config) error {
	fmtFloat := createFormatters(cfg.Precision)
	view := predictionView{Prediction: pred, Label: contract.GetPlainLabel(pred.Value)}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, view)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, view)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := append(append([]string{}, order...), "prediction", "label")
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				rec := make([]string, 0, len(header))
				for _, name := range order {
					rec = append(rec, fmtFloat(pred.Features[name]))
				}
				rec = append(rec, fmtFloat(pred.Value), view.Label)
				return cw.Write(rec)
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for platform scores")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePredictionText(w, view, order, cfg, fmtFloat)
		}, "Wrote text")
	}
}

func writePredictionText(w io.Writer, view predictionView, order []string, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Feature", "Value"})
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, name := range order {
		data = append(data, []string{name, fmtFloat(view.Features[name])})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	label := view.Label
	if cfg.UseColors {
		label = contract.GetColorLabel(view.Value)
	}
	_, err := fmt.Fprintf(w, "Predicted integrity: %s (%s) [model %s]\n", fmtFloat(view.Value), label, view.ModelID)
	return err
}
