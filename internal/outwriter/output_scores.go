package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/internal/parquet"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// scoreRow is a PlatformScore with its rank, used for JSON and YAML output.
type scoreRow struct {
	Rank                 int `json:"rank" yaml:"rank"`
	schema.PlatformScore `yaml:",inline"`
}

// WriteScores outputs platform scores, dispatching based on the output format configured.
func WriteScores(scores []schema.PlatformScore, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatters(cfg.Precision)
	labeled := withLabels(scores)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rankedScoreRows(labeled))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, rankedScoreRows(labeled))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoresCSV(w, labeled, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		rows := parquet.ConvertPlatformScores(labeled, time.Now())
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, rows)
		}, "Wrote Parquet")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoresTable(w, labeled, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// withLabels returns a copy of scores with the plain label filled in.
func withLabels(scores []schema.PlatformScore) []schema.PlatformScore {
	labeled := make([]schema.PlatformScore, len(scores))
	for i, s := range scores {
		if s.Label == "" {
			s.Label = contract.GetPlainLabel(s.Score)
		}
		labeled[i] = s
	}
	return labeled
}

func rankedScoreRows(scores []schema.PlatformScore) []scoreRow {
	rows := make([]scoreRow, len(scores))
	for i, s := range scores {
		rows[i] = scoreRow{Rank: i + 1, PlatformScore: s}
	}
	return rows
}

// writeScoresTable generates and writes the human-readable table.
func writeScoresTable(w io.Writer, scores []schema.PlatformScore, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Platform", "Honesty", "Transparency", "Accountability", "Ethics", "Consistency", "Score", "Label"})
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	var total float64
	for i, s := range scores {
		label := s.Label
		if cfg.UseColors {
			label = contract.GetLabelColor(s.Score).Sprint(s.Label)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(s.Platform, nameWidth),
			fmtFloat(s.Metrics.Honesty),
			fmtFloat(s.Metrics.Transparency),
			fmtFloat(s.Metrics.Accountability),
			fmtFloat(s.Metrics.Ethics),
			fmtFloat(s.Metrics.Consistency),
			fmtFloat(s.Score),
			label,
		})
		total += s.Score
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	mean := 0.0
	if len(scores) > 0 {
		mean = total / float64(len(scores))
	}
	if _, err := fmt.Fprintf(w, "Scored %d platforms (mean score: %s)\n", len(scores), fmtFloat(mean)); err != nil {
		return err
	}
	if duration > 0 {
		if _, err := fmt.Fprintf(w, "Scoring completed in %v. Runs backend: %s\n", duration.Round(time.Millisecond), cfg.StoreBackend); err != nil {
			return err
		}
	}
	return nil
}

// writeScoresCSV writes the scores in CSV format.
func writeScoresCSV(w io.Writer, scores []schema.PlatformScore, fmtFloat func(float64) string) error {
	header := []string{"rank", "platform", "honesty", "transparency", "accountability", "ethics", "consistency", "score", "label"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, s := range scores {
			rec := []string{
				strconv.Itoa(i + 1),
				s.Platform,
				fmtFloat(s.Metrics.Honesty),
				fmtFloat(s.Metrics.Transparency),
				fmtFloat(s.Metrics.Accountability),
				fmtFloat(s.Metrics.Ethics),
				fmtFloat(s.Metrics.Consistency),
				fmtFloat(s.Score),
				s.Label,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
