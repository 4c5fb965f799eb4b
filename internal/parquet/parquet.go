// Package parquet provides data structures and functions for storing rideintegrity
// models, run history and platform scores as Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/rideintegrity/schema"
	"github.com/parquet-go/parquet-go"
)

// Row kinds stored in a model file.
const (
	KindMeta      = "meta"
	KindIntercept = "intercept"
	KindFeature   = "feature"
)

// ModelRow is one entry of a persisted regression model.
// A model file holds meta rows, a single intercept row and one row per feature.
type ModelRow struct {
	// Kind is one of meta, intercept or feature
	Kind string `parquet:"kind,snappy"`

	// Name is the meta key or the feature name
	Name string `parquet:"name,snappy"`

	// Position is the column index of a feature in the model input
	Position int32 `parquet:"position,snappy"`

	// Coefficient is the fitted weight, or the intercept value
	Coefficient float64 `parquet:"coefficient,snappy"`

	// Importance is the normalized feature importance
	Importance float64 `parquet:"importance,snappy"`

	// Value holds the text value of a meta row (nullable)
	Value *string `parquet:"value,optional,snappy"`
}

// TrainingRun represents a single tracked run with metadata.
// This struct maps to the integrity_runs database table.
type TrainingRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Kind is the command that opened the run (train, score, pipeline)
	Kind string `parquet:"kind,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// ModelID is the UUID of the trained model (nullable)
	ModelID *string `parquet:"model_id,optional,snappy"`

	// TrainRows is the number of rows used for fitting
	TrainRows int32 `parquet:"train_rows,snappy"`

	// TestRows is the number of held-out rows
	TestRows int32 `parquet:"test_rows,snappy"`

	// TestR2 is the coefficient of determination on the test split (nullable)
	TestR2 *float64 `parquet:"test_r2,optional,snappy"`

	// TestRMSE is the root mean squared error on the test split (nullable)
	TestRMSE *float64 `parquet:"test_rmse,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// PlatformScore represents the metrics and composite score of a single platform.
// This struct maps to the integrity_platform_scores database table.
type PlatformScore struct {
	RunID          int64     `parquet:"run_id,snappy"`
	Platform       string    `parquet:"platform,snappy"`
	ScoredAt       time.Time `parquet:"scored_at,snappy"`
	Honesty        float64   `parquet:"honesty,snappy"`
	Transparency   float64   `parquet:"transparency,snappy"`
	Accountability float64   `parquet:"accountability,snappy"`
	Ethics         float64   `parquet:"ethics,snappy"`
	Consistency    float64   `parquet:"consistency,snappy"`
	Score          float64   `parquet:"score,snappy"`
	Label          string    `parquet:"label,snappy"`
}

// WriteRows writes rows to w using the schema derived from the struct tags of T.
func WriteRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet data: %w", err)
	}
	return nil
}

// WriteFile creates outputPath and writes rows to it.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ReadFile reads every row of a parquet file into a slice of T.
func ReadFile[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	return rows[:n], nil
}

// WriteModelParquet writes the rows of a model to outputPath.
func WriteModelParquet(rows []ModelRow, outputPath string) error {
	return WriteFile(rows, outputPath)
}

// ReadModelParquet reads the rows of a model from path.
func ReadModelParquet(path string) ([]ModelRow, error) {
	return ReadFile[ModelRow](path)
}

// WriteTrainingRunsParquet writes a slice of TrainingRun structs to a Parquet file.
func WriteTrainingRunsParquet(data []TrainingRun, outputPath string) error {
	return WriteFile(data, outputPath)
}

// WritePlatformScoresParquet writes a slice of PlatformScore structs to a Parquet file.
func WritePlatformScoresParquet(data []PlatformScore, outputPath string) error {
	return WriteFile(data, outputPath)
}

// ConvertTrainingRunRecords converts schema.TrainingRunRecord to TrainingRun for Parquet export.
func ConvertTrainingRunRecords(records []schema.TrainingRunRecord) []TrainingRun {
	result := make([]TrainingRun, len(records))
	for i, record := range records {
		result[i] = TrainingRun{
			RunID:         record.RunID,
			Kind:          record.Kind,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			ModelID:       record.ModelID,
			TrainRows:     record.TrainRows,
			TestRows:      record.TestRows,
			TestR2:        record.TestR2,
			TestRMSE:      record.TestRMSE,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertPlatformScoreRecords converts schema.PlatformScoreRecord to PlatformScore for Parquet export.
func ConvertPlatformScoreRecords(records []schema.PlatformScoreRecord) []PlatformScore {
	result := make([]PlatformScore, len(records))
	for i, record := range records {
		result[i] = PlatformScore{
			RunID:          record.RunID,
			Platform:       record.Platform,
			ScoredAt:       record.ScoredAt,
			Honesty:        record.Honesty,
			Transparency:   record.Transparency,
			Accountability: record.Accountability,
			Ethics:         record.Ethics,
			Consistency:    record.Consistency,
			Score:          record.Score,
			Label:          record.Label,
		}
	}
	return result
}

// ConvertPlatformScores converts freshly computed scores for direct Parquet output.
func ConvertPlatformScores(scores []schema.PlatformScore, scoredAt time.Time) []PlatformScore {
	result := make([]PlatformScore, len(scores))
	for i, s := range scores {
		result[i] = PlatformScore{
			Platform:       s.Platform,
			ScoredAt:       scoredAt,
			Honesty:        s.Metrics.Honesty,
			Transparency:   s.Metrics.Transparency,
			Accountability: s.Metrics.Accountability,
			Ethics:         s.Metrics.Ethics,
			Consistency:    s.Metrics.Consistency,
			Score:          s.Score,
			Label:          s.Label,
		}
	}
	return result
}
