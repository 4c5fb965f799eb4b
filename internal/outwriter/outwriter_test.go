package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/internal/parquet"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testConfig(t *testing.T, output schema.OutputMode, file string) *contract.Config {
	t.Helper()
	return &contract.Config{
		Output:       output,
		OutputFile:   file,
		Precision:    2,
		Width:        120,
		StoreBackend: schema.NoneBackend,
	}
}

func sampleScores() []schema.PlatformScore {
	return []schema.PlatformScore{
		{
			Platform: "Uber",
			Metrics:  schema.Metrics{Honesty: 80, Transparency: 70, Accountability: 60, Ethics: 75, Consistency: 85},
			Score:    71.5,
		},
		{
			Platform: "Little Cab",
			Metrics:  schema.Metrics{Honesty: 40, Transparency: 35, Accountability: 30, Ethics: 45, Consistency: 50},
			Score:    38.5,
		},
	}
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteScores(t *testing.T) {
	dir := t.TempDir()

	t.Run("text", func(t *testing.T) {
		path := filepath.Join(dir, "scores.txt")
		require.NoError(t, WriteScores(sampleScores(), testConfig(t, schema.TextOut, path), time.Second))
		out := readOutput(t, path)
		assert.Contains(t, out, "Uber")
		assert.Contains(t, out, "71.50")
		assert.Contains(t, out, contract.TrustedValue)
		assert.Contains(t, out, contract.UntrustedValue)
		assert.Contains(t, out, "Scored 2 platforms (mean score: 55.00)")
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "scores.csv")
		require.NoError(t, WriteScores(sampleScores(), testConfig(t, schema.CSVOut, path), 0))
		lines := strings.Split(strings.TrimSpace(readOutput(t, path)), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "rank,platform,honesty,transparency,accountability,ethics,consistency,score,label", lines[0])
		assert.Equal(t, "1,Uber,80.00,70.00,60.00,75.00,85.00,71.50,Trusted", lines[1])
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "scores.json")
		require.NoError(t, WriteScores(sampleScores(), testConfig(t, schema.JSONOut, path), 0))
		var rows []map[string]any
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, path)), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, float64(1), rows[0]["rank"])
		assert.Equal(t, "Uber", rows[0]["platform"])
		assert.Equal(t, contract.TrustedValue, rows[0]["label"])
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "scores.yaml")
		require.NoError(t, WriteScores(sampleScores(), testConfig(t, schema.YAMLOut, path), 0))
		var rows []map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(readOutput(t, path)), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "Little Cab", rows[1]["platform"])
		assert.Equal(t, 2, rows[1]["rank"])
	})

	t.Run("parquet", func(t *testing.T) {
		path := filepath.Join(dir, "scores.parquet")
		require.NoError(t, WriteScores(sampleScores(), testConfig(t, schema.ParquetOut, path), 0))
		rows, err := parquet.ReadFile[parquet.PlatformScore](path)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Uber", rows[0].Platform)
		assert.Equal(t, contract.TrustedValue, rows[0].Label)
	})
}

func TestWithLabelsKeepsInput(t *testing.T) {
	scores := sampleScores()
	labeled := withLabels(scores)
	assert.Empty(t, scores[0].Label)
	assert.Equal(t, contract.TrustedValue, labeled[0].Label)
}

func sampleReport() *schema.TrainingReport {
	return &schema.TrainingReport{
		ModelID:   "abc-123",
		Target:    "target",
		Features:  []string{"Honesty", "Ethics"},
		TrainRows: 80,
		TestRows:  20,
		TestSize:  0.2,
		Seed:      42,
		Ridge:     1e-6,
		Intercept: 1.5,
		Train:     schema.EvaluationMetrics{R2: 0.95, MSE: 4, RMSE: 2, MAE: 1.5},
		Test:      schema.EvaluationMetrics{R2: 0.9, MSE: 9, RMSE: 3, MAE: 2.5},
		Importances: []schema.FeatureImportance{
			{Feature: "Honesty", Coefficient: 0.6, Importance: 0.7},
			{Feature: "Ethics", Coefficient: 0.2, Importance: 0.3},
		},
		ModelPath:    "models/integrity_model.parquet",
		TrainingTime: 15 * time.Millisecond,
	}
}

func TestWriteTrainingReport(t *testing.T) {
	dir := t.TempDir()

	t.Run("text", func(t *testing.T) {
		path := filepath.Join(dir, "report.txt")
		require.NoError(t, WriteTrainingReport(sampleReport(), testConfig(t, schema.TextOut, path)))
		out := readOutput(t, path)
		assert.Contains(t, out, "abc-123")
		assert.Contains(t, out, "80 train / 20 test")
		assert.Contains(t, out, "0.900")
		assert.Contains(t, out, "Honesty")
		assert.Contains(t, out, "Saved to:   models/integrity_model.parquet")
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "report.csv")
		require.NoError(t, WriteTrainingReport(sampleReport(), testConfig(t, schema.CSVOut, path)))
		lines := strings.Split(strings.TrimSpace(readOutput(t, path)), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "abc-123,target,test,20,0.900,9.000,3.000,2.500", lines[2])
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "report.json")
		require.NoError(t, WriteTrainingReport(sampleReport(), testConfig(t, schema.JSONOut, path)))
		var got schema.TrainingReport
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, path)), &got))
		assert.Equal(t, "abc-123", got.ModelID)
		assert.Len(t, got.Importances, 2)
	})

	t.Run("parquet is rejected", func(t *testing.T) {
		err := WriteTrainingReport(sampleReport(), testConfig(t, schema.ParquetOut, filepath.Join(dir, "r.parquet")))
		assert.Error(t, err)
	})
}

func TestWriteWeights(t *testing.T) {
	dir := t.TempDir()

	t.Run("text", func(t *testing.T) {
		path := filepath.Join(dir, "weights.txt")
		require.NoError(t, WriteWeights(schema.GetDefaultWeights(), false, testConfig(t, schema.TextOut, path)))
		out := readOutput(t, path)
		assert.Contains(t, out, "[defaults]")
		assert.Contains(t, out, "0.20*honesty + 0.20*transparency + 0.30*accountability + 0.20*ethics + 0.10*consistency")
		assert.Contains(t, out, "Exemplary: score >= 80")
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "weights.csv")
		require.NoError(t, WriteWeights(schema.GetDefaultWeights(), true, testConfig(t, schema.CSVOut, path)))
		assert.Equal(t,
			"metric,weight\nhonesty,0.20\ntransparency,0.20\naccountability,0.30\nethics,0.20\nconsistency,0.10\n",
			readOutput(t, path))
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "weights.yaml")
		require.NoError(t, WriteWeights(schema.GetDefaultWeights(), true, testConfig(t, schema.YAMLOut, path)))
		var got weightsRenderModel
		require.NoError(t, yaml.Unmarshal([]byte(readOutput(t, path)), &got))
		assert.True(t, got.Custom)
		require.Len(t, got.Weights, 5)
		assert.Equal(t, "accountability", got.Weights[2].Metric)
		assert.Equal(t, 0.3, got.Weights[2].Weight)
	})
}

func TestWritePrediction(t *testing.T) {
	dir := t.TempDir()
	pred := schema.Prediction{
		ModelID:  "abc-123",
		Features: map[string]float64{"Honesty": 80, "Ethics": 60},
		Value:    72.346,
	}
	order := []string{"Honesty", "Ethics"}

	t.Run("text", func(t *testing.T) {
		path := filepath.Join(dir, "pred.txt")
		require.NoError(t, WritePrediction(pred, order, testConfig(t, schema.TextOut, path)))
		out := readOutput(t, path)
		assert.Contains(t, out, "Predicted integrity: 72.35 (Trusted) [model abc-123]")
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "pred.csv")
		require.NoError(t, WritePrediction(pred, order, testConfig(t, schema.CSVOut, path)))
		assert.Equal(t, "Honesty,Ethics,prediction,label\n80.00,60.00,72.35,Trusted\n", readOutput(t, path))
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "pred.json")
		require.NoError(t, WritePrediction(pred, order, testConfig(t, schema.JSONOut, path)))
		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, path)), &got))
		assert.Equal(t, "abc-123", got["model_id"])
		assert.Equal(t, "Trusted", got["label"])
	})
}

func TestOutWriterPlots(t *testing.T) {
	var buf bytes.Buffer
	ow := NewOutWriter(&buf)
	cfg := testConfig(t, schema.TextOut, "")

	require.NoError(t, ow.PlotScores(sampleScores(), cfg))
	out := buf.String()
	assert.Contains(t, out, "Integrity Scores by Platform")
	assert.Contains(t, out, "Little Cab")
	assert.Contains(t, out, barGlyph)
}
