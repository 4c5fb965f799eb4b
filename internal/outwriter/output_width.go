package outwriter

import (
	"os"

	"github.com/huangsam/rideintegrity/internal/contract"
	"golang.org/x/term"
)

// Bounds for the variable-width columns.
const (
	defaultTermWidth = 80 // Conservative default for narrow terminals and CI
	minNameWidth     = 10
	maxNameWidth     = 30
	minBarWidth      = 10
	maxBarWidth      = 60
)

// getTerminalWidth returns the width override, the detected terminal width,
// or a conservative default.
func getTerminalWidth(width int) int {
	// Check for absolute width override from flag/env
	if width > 0 {
		return width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return defaultTermWidth
	}
	return detectedWidth
}

// GetMaxTableNameWidth calculates the maximum width for platform names in table output
// based on terminal width and table configuration.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	termWidth := getTerminalWidth(cfg.Width)

	// Rank + five metrics + Score + Label with borders/padding
	baseWidth := 95

	available := termWidth - baseWidth
	return clampWidth(available, minNameWidth, maxNameWidth)
}

// getBarWidth returns how many glyphs the longest bar may use, given the
// width of the name column.
func getBarWidth(width, nameWidth int) int {
	termWidth := getTerminalWidth(width)

	// Name + Value + Label columns with borders/padding
	available := termWidth - nameWidth - 35
	return clampWidth(available, minBarWidth, maxBarWidth)
}

func clampWidth(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
