package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// Integrity label constants.
const (
	ExemplaryValue    = "Exemplary"    // Exemplary value
	TrustedValue      = "Trusted"      // Trusted value
	QuestionableValue = "Questionable" // Questionable value
	UntrustedValue    = "Untrusted"    // Untrusted value
)

// Color variables for console output.
var (
	ExemplaryColor    = color.New(color.FgGreen, color.Bold) // exemplaryColor represents a clean record.
	TrustedColor      = color.New(color.FgCyan)              // trustedColor represents acceptable integrity.
	QuestionableColor = color.New(color.FgYellow)            // questionableColor represents standard caution, not bold.
	UntrustedColor    = color.New(color.FgRed, color.Bold)   // untrustedColor represents standard danger.
)

// GetPlainLabel returns a plain text label describing the integrity level
// of a platform based on its composite score. This is the core logic used for
// CSV, JSON, and table printing.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 80:
		return ExemplaryValue
	case score >= 60:
		return TrustedValue
	case score >= 40:
		return QuestionableValue
	default:
		return UntrustedValue
	}
}

// GetLabelColor returns the console color associated with a score.
func GetLabelColor(score float64) *color.Color {
	switch GetPlainLabel(score) {
	case ExemplaryValue:
		return ExemplaryColor
	case TrustedValue:
		return TrustedColor
	case QuestionableValue:
		return QuestionableColor
	default: // "Untrusted"
		return UntrustedColor
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score float64) string {
	return GetLabelColor(score).Sprint(GetPlainLabel(score))
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is set and creates parent directories otherwise.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	zap.L().Error(msg, zap.Error(err))
	_ = zap.L().Sync()
	os.Exit(1)
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	zap.L().Warn(msg, zap.Error(err))
}

// GetRunStoreDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".rideintegrity_runs.db"
	}
	return filepath.Join(homeDir, ".rideintegrity_runs.db")
}

// TruncateText shortens text to maxWidth runes, keeping the beginning.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a boolean from common string representations.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
