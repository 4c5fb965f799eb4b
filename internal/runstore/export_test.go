package runstore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/rideintegrity/internal/parquet"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunsExport(t *testing.T) {
	store := newMemoryStore(t)

	runID, err := store.BeginRun(schema.ScoreRun, time.Now(), map[string]any{"output": "text"})
	require.NoError(t, err)
	require.NoError(t, store.RecordPlatformScore(runID, time.Now(), samplePlatformScore("Uber", 71.5)))
	require.NoError(t, store.RecordPlatformScore(runID, time.Now(), samplePlatformScore("Bolt", 64)))
	require.NoError(t, store.EndRun(runID, schema.RunOutcome{EndTime: time.Now()}))

	prefix := filepath.Join(t.TempDir(), "export")
	var buf bytes.Buffer
	require.NoError(t, ExecuteRunsExport(&buf, store, prefix))

	assert.Contains(t, buf.String(), "Exported 1 runs")
	assert.Contains(t, buf.String(), "Exported 2 platform scores")

	runs, err := parquet.ReadFile[parquet.TrainingRun](prefix + ".runs.parquet")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)

	scores, err := parquet.ReadFile[parquet.PlatformScore](prefix + ".platform_scores.parquet")
	require.NoError(t, err)
	assert.Len(t, scores, 2)
}

func TestExecuteRunsExport_Errors(t *testing.T) {
	var buf bytes.Buffer

	err := ExecuteRunsExport(&buf, newMemoryStore(t), "")
	assert.ErrorContains(t, err, "--output-file")

	err = ExecuteRunsExport(&buf, nil, "out")
	assert.ErrorContains(t, err, "not enabled")

	err = ExecuteRunsExport(&buf, newMemoryStore(t), filepath.Join(t.TempDir(), "x"))
	assert.ErrorContains(t, err, "no run data")
}

func TestExecuteRunsExport_StoreFailure(t *testing.T) {
	store := &MockRunStore{}
	store.On("GetStatus").Return(schema.RunStoreStatus{Backend: "sqlite", Connected: true, TotalRuns: 1}, nil)
	store.On("GetAllRuns").Return(nil, errors.New("boom"))

	prefix := filepath.Join(t.TempDir(), "export")
	err := ExecuteRunsExport(&bytes.Buffer{}, store, prefix)
	assert.ErrorContains(t, err, "boom")

	_, statErr := os.Stat(prefix + ".runs.parquet")
	assert.True(t, os.IsNotExist(statErr))
	store.AssertExpectations(t)
}
