package outwriter

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// barGlyph is the unit of a terminal bar.
const barGlyph = "█"

// ChartOptions controls how bar charts are rendered.
type ChartOptions struct {
	Title     string
	Width     int    // Terminal width override (0 = auto-detect)
	Precision int    // Decimal places for the value column
	UseColors bool   // Color bars by label (scores) or with a single color (importance)
	ImagePath string // Optional PNG/SVG/PDF destination rendered with gonum/plot
}

// ChartOptionsFromConfig derives chart options from the validated config.
func ChartOptionsFromConfig(cfg *contract.Config, title string) ChartOptions {
	return ChartOptions{
		Title:     title,
		Width:     cfg.Width,
		Precision: cfg.Precision,
		UseColors: cfg.UseColors,
		ImagePath: cfg.ChartFile,
	}
}

// ImportanceSource is a trained model that can report feature importances.
type ImportanceSource interface {
	IsTrained() bool
	FeatureNames() []string
	FeatureImportances() []schema.FeatureImportance
}

// bar is one labelled value of a chart.
type bar struct {
	name  string
	value float64
	paint *color.Color
	label string
}

// PlotIntegrityScores renders a horizontal bar chart of scores by platform.
// Bars are scaled against the full 0-100 range and colored by label.
func PlotIntegrityScores(w io.Writer, platforms []string, scores []float64, opts ChartOptions) error {
	if len(platforms) != len(scores) {
		return fmt.Errorf("platforms and scores differ in length (%d vs %d)", len(platforms), len(scores))
	}
	if len(scores) == 0 {
		return errors.New("no scores to plot")
	}

	bars := make([]bar, len(scores))
	for i, s := range scores {
		bars[i] = bar{
			name:  platforms[i],
			value: s,
			paint: contract.GetLabelColor(s),
			label: contract.GetPlainLabel(s),
		}
	}

	title := opts.Title
	if title == "" {
		title = "Integrity Scores by Platform"
	}
	if err := renderBars(w, title, "Platform", bars, 100, opts); err != nil {
		return err
	}
	if opts.ImagePath != "" {
		return saveBarChartImage(opts.ImagePath, title, "Integrity score", bars, schema.ScoreChart)
	}
	return nil
}

// PlotFeatureImportance renders a horizontal bar chart of importance by feature.
// Names default to the model's feature names.
func PlotFeatureImportance(w io.Writer, m ImportanceSource, names []string, opts ChartOptions) error {
	if m == nil || !m.IsTrained() {
		return errors.New("feature importance requires a trained model")
	}
	importances := m.FeatureImportances()
	if names == nil {
		names = m.FeatureNames()
	}
	if len(names) != len(importances) {
		return fmt.Errorf("got %d names for %d features", len(names), len(importances))
	}
	if len(importances) == 0 {
		return errors.New("model has no features to plot")
	}

	bars := make([]bar, len(importances))
	maxValue := 0.0
	for i, fi := range importances {
		bars[i] = bar{name: names[i], value: fi.Importance, paint: contract.TrustedColor}
		maxValue = math.Max(maxValue, fi.Importance)
	}

	title := opts.Title
	if title == "" {
		title = "Feature Importance"
	}
	if err := renderBars(w, title, "Feature", bars, maxValue, opts); err != nil {
		return err
	}
	if opts.ImagePath != "" {
		return saveBarChartImage(opts.ImagePath, title, "Relative importance", bars, schema.ImportanceChart)
	}
	return nil
}

// renderBars lays out one row per bar with tablewriter.
func renderBars(w io.Writer, title, nameHeader string, bars []bar, scaleMax float64, opts ChartOptions) error {
	if _, err := fmt.Fprintf(w, "%s\n", title); err != nil {
		return err
	}

	nameWidth := minNameWidth
	for _, b := range bars {
		nameWidth = max(nameWidth, len([]rune(b.name)))
	}
	nameWidth = min(nameWidth, maxNameWidth)
	barWidth := getBarWidth(opts.Width, nameWidth)
	fmtFloat := createFormatters(opts.Precision)

	hasLabels := false
	for _, b := range bars {
		if b.label != "" {
			hasLabels = true
			break
		}
	}

	headers := []string{nameHeader, "", "Value"}
	if hasLabels {
		headers = append(headers, "Label")
	}

	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignRight, tw.AlignLeft}
	})

	var data [][]string
	for _, b := range bars {
		glyphs := strings.Repeat(barGlyph, barLength(b.value, scaleMax, barWidth))
		if opts.UseColors && b.paint != nil {
			glyphs = b.paint.Sprint(glyphs)
		}
		row := []string{contract.TruncateText(b.name, nameWidth), glyphs, fmtFloat(b.value)}
		if hasLabels {
			row = append(row, b.label)
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// barLength scales value against scaleMax into [0, width] glyphs.
func barLength(value, scaleMax float64, width int) int {
	if scaleMax <= 0 || value <= 0 || math.IsNaN(value) {
		return 0
	}
	n := int(math.Round(value / scaleMax * float64(width)))
	return clampWidth(n, 0, width)
}
