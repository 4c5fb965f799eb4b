package outwriter

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/schema"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Image colors matching the terminal label colors.
var (
	exemplaryRGBA    = color.RGBA{R: 46, G: 160, B: 67, A: 255}
	trustedRGBA      = color.RGBA{R: 23, G: 162, B: 184, A: 255}
	questionableRGBA = color.RGBA{R: 230, G: 170, B: 30, A: 255}
	untrustedRGBA    = color.RGBA{R: 200, G: 35, B: 51, A: 255}
)

// supportedImageFormats lists the extensions gonum/plot can write that we expose.
var supportedImageFormats = map[string]struct{}{
	".png": {},
	".svg": {},
	".pdf": {},
}

// labelRGBA maps an integrity label to its image color.
func labelRGBA(label string) color.Color {
	switch label {
	case contract.ExemplaryValue:
		return exemplaryRGBA
	case contract.TrustedValue:
		return trustedRGBA
	case contract.QuestionableValue:
		return questionableRGBA
	default:
		return untrustedRGBA
	}
}

// saveBarChartImage writes a horizontal bar chart to path; the format follows the extension.
func saveBarChartImage(path, title, valueLabel string, bars []bar, kind schema.ChartKind) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedImageFormats[ext]; !ok {
		return fmt.Errorf("unsupported chart format %q: use .png, .svg or .pdf", ext)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = valueLabel
	p.X.Min = 0
	if kind == schema.ScoreChart {
		p.X.Max = 100
	}

	names := make([]string, len(bars))
	barWidth := vg.Points(18)
	for i, b := range bars {
		names[i] = b.name
		chart, err := plotter.NewBarChart(plotter.Values{b.value}, barWidth)
		if err != nil {
			return fmt.Errorf("failed to build bar for %s: %w", b.name, err)
		}
		chart.Horizontal = true
		chart.XMin = float64(i)
		chart.LineStyle.Width = vg.Length(0)
		if kind == schema.ScoreChart {
			chart.Color = labelRGBA(b.label)
		} else {
			chart.Color = trustedRGBA
		}
		p.Add(chart)
	}
	p.NominalY(names...)

	height := max(3*vg.Inch, vg.Length(len(bars))*0.35*vg.Inch)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create chart directory %s: %w", dir, err)
		}
	}
	if err := p.Save(7*vg.Inch, height, path); err != nil {
		return fmt.Errorf("failed to save chart to %s: %w", path, err)
	}
	zap.L().Info("chart saved", zap.String("path", path), zap.String("kind", string(kind)))
	return nil
}
