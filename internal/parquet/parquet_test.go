package parquet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/rideintegrity/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{
			name:    "model rows",
			model:   new(ModelRow),
			columns: []string{"kind", "name", "position", "coefficient", "importance", "value"},
		},
		{
			name:  "training runs",
			model: new(TrainingRun),
			columns: []string{
				"run_id", "kind", "start_time", "end_time", "run_duration_ms", "model_id",
				"train_rows", "test_rows", "test_r2", "test_rmse", "config_params",
			},
		},
		{
			name:  "platform scores",
			model: new(PlatformScore),
			columns: []string{
				"run_id", "platform", "scored_at", "honesty", "transparency",
				"accountability", "ethics", "consistency", "score", "label",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, colName := range tt.columns {
				_, ok := s.Lookup(colName)
				assert.True(t, ok, "Column %s should exist in schema", colName)
			}
		})
	}
}

func TestModelParquetRoundTrip(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "model.parquet")
	rows := []ModelRow{
		{Kind: KindMeta, Name: "model_id", Value: strPtr("abc")},
		{Kind: KindIntercept, Name: "intercept", Coefficient: 1.25},
		{Kind: KindFeature, Name: "Honesty", Position: 0, Coefficient: 0.2, Importance: 0.7},
		{Kind: KindFeature, Name: "Region_B", Position: 1, Coefficient: -3.5, Importance: 0.3},
	}

	require.NoError(t, WriteModelParquet(rows, outputPath))

	got, err := ReadModelParquet(outputPath)
	require.NoError(t, err)
	require.Len(t, got, len(rows))
	for i := range rows {
		assert.Equal(t, rows[i].Kind, got[i].Kind)
		assert.Equal(t, rows[i].Name, got[i].Name)
		assert.Equal(t, rows[i].Position, got[i].Position)
		assert.Equal(t, rows[i].Coefficient, got[i].Coefficient)
		assert.Equal(t, rows[i].Importance, got[i].Importance)
		if rows[i].Value == nil {
			assert.Nil(t, got[i].Value)
		} else {
			require.NotNil(t, got[i].Value)
			assert.Equal(t, *rows[i].Value, *got[i].Value)
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadModelParquet(filepath.Join(t.TempDir(), "nope.parquet"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteTrainingRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	start := time.Now().Add(-time.Minute)
	end := time.Now()
	duration := int32(end.Sub(start).Milliseconds())
	r2 := 0.93

	records := []schema.TrainingRunRecord{
		{
			RunID: 1, Kind: string(schema.TrainRun), StartTime: start, EndTime: &end,
			RunDurationMs: &duration, ModelID: strPtr("m-1"), TrainRows: 80, TestRows: 20, TestR2: &r2,
		},
		{RunID: 2, Kind: string(schema.ScoreRun), StartTime: start}, // still running
	}
	data := ConvertTrainingRunRecords(records)
	require.NoError(t, WriteTrainingRunsParquet(data, outputPath))

	got, err := ReadFile[TrainingRun](outputPath)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].RunID)
	assert.Equal(t, "train", got[0].Kind)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Microsecond)
	require.NotNil(t, got[0].TestR2)
	assert.InDelta(t, 0.93, *got[0].TestR2, 1e-12)
	assert.Nil(t, got[0].TestRMSE)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].ModelID)
}

func TestWritePlatformScores(t *testing.T) {
	scores := []schema.PlatformScore{
		{
			Platform: "Uber",
			Metrics:  schema.Metrics{Honesty: 80, Transparency: 70, Accountability: 60, Ethics: 75, Consistency: 85},
			Score:    71.5,
			Label:    "Trusted",
		},
	}
	data := ConvertPlatformScores(scores, time.Now())

	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, data))
	assert.Greater(t, buf.Len(), 0)

	reader := parquet.NewGenericReader[PlatformScore](bytes.NewReader(buf.Bytes()))
	defer func() { _ = reader.Close() }()
	assert.Equal(t, int64(1), reader.NumRows())

	outputPath := filepath.Join(t.TempDir(), "scores.parquet")
	require.NoError(t, WritePlatformScoresParquet(data, outputPath))
	got, err := ReadFile[PlatformScore](outputPath)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Uber", got[0].Platform)
	assert.Equal(t, 71.5, got[0].Score)
	assert.Equal(t, 75.0, got[0].Ethics)
	assert.Equal(t, "Trusted", got[0].Label)
}

func TestConvertPlatformScoreRecords(t *testing.T) {
	now := time.Now()
	got := ConvertPlatformScoreRecords([]schema.PlatformScoreRecord{
		{RunID: 4, Platform: "Bolt", ScoredAt: now, Honesty: 50, Score: 42, Label: "Questionable"},
	})
	require.Len(t, got, 1)
	assert.Equal(t, int64(4), got[0].RunID)
	assert.Equal(t, "Bolt", got[0].Platform)
	assert.Equal(t, now, got[0].ScoredAt)
	assert.Equal(t, 42.0, got[0].Score)
}

func TestWriteEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteTrainingRunsParquet([]TrainingRun{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	got, err := ReadFile[TrainingRun](outputPath)
	require.NoError(t, err)
	assert.Empty(t, got)
}
