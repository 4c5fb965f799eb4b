package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteTrainingReport outputs a training report using the configured output format.
func WriteTrainingReport(report *schema.TrainingReport, cfg *contract.Config) error {
	fmtFloat := createFormatters(max(cfg.Precision, 3))

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, report)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrainingCSV(w, report, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for platform scores")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrainingText(w, report, fmtFloat)
		}, "Wrote text")
	}
}

// writeTrainingText prints a summary, the evaluation table and the feature importances.
func writeTrainingText(w io.Writer, report *schema.TrainingReport, fmtFloat func(float64) string) error {
	lines := []string{
		fmt.Sprintf("Model ID:   %s", report.ModelID),
		fmt.Sprintf("Target:     %s", report.Target),
		fmt.Sprintf("Features:   %d", len(report.Features)),
		fmt.Sprintf("Rows:       %d train / %d test (test size %g, seed %d)", report.TrainRows, report.TestRows, report.TestSize, report.Seed),
		fmt.Sprintf("Ridge:      %g", report.Ridge),
		fmt.Sprintf("Intercept:  %s", fmtFloat(report.Intercept)),
	}
	if report.ModelPath != "" {
		lines = append(lines, fmt.Sprintf("Saved to:   %s", report.ModelPath))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	eval := tablewriter.NewWriter(w)
	eval.Header([]string{"Split", "R2", "MSE", "RMSE", "MAE"})
	eval.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignRight
	})
	evalRows := [][]string{
		evaluationRow("train", report.Train, fmtFloat),
		evaluationRow("test", report.Test, fmtFloat),
	}
	if err := eval.Bulk(evalRows); err != nil {
		return err
	}
	if err := eval.Render(); err != nil {
		return err
	}

	if len(report.Importances) > 0 {
		imp := tablewriter.NewWriter(w)
		imp.Header([]string{"Rank", "Feature", "Coefficient", "Importance"})
		imp.Configure(func(config *tablewriter.Config) {
			config.Row.Alignment.Global = tw.AlignRight
		})
		var data [][]string
		for i, fi := range report.Importances {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				fi.Feature,
				fmtFloat(fi.Coefficient),
				fmtFloat(fi.Importance),
			})
		}
		if err := imp.Bulk(data); err != nil {
			return err
		}
		if err := imp.Render(); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Training completed in %v\n", report.TrainingTime.Round(time.Millisecond))
	return err
}

func evaluationRow(split string, m schema.EvaluationMetrics, fmtFloat func(float64) string) []string {
	return []string{split, fmtFloat(m.R2), fmtFloat(m.MSE), fmtFloat(m.RMSE), fmtFloat(m.MAE)}
}

// writeTrainingCSV writes one row per split with the evaluation metrics.
func writeTrainingCSV(w io.Writer, report *schema.TrainingReport, fmtFloat func(float64) string) error {
	header := []string{"model_id", "target", "split", "rows", "r2", "mse", "rmse", "mae"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		splits := []struct {
			name string
			rows int
			m    schema.EvaluationMetrics
		}{
			{"train", report.TrainRows, report.Train},
			{"test", report.TestRows, report.Test},
		}
		for _, s := range splits {
			rec := []string{
				report.ModelID,
				report.Target,
				s.name,
				strconv.Itoa(s.rows),
				fmtFloat(s.m.R2),
				fmtFloat(s.m.MSE),
				fmtFloat(s.m.RMSE),
				fmtFloat(s.m.MAE),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
