package runstore

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlatformScore(platform string, score float64) schema.PlatformScore {
	return schema.PlatformScore{
		Platform: platform,
		Metrics: schema.Metrics{
			Honesty:        70,
			Transparency:   65,
			Accountability: 80,
			Ethics:         75,
			Consistency:    60,
		},
		Score: score,
	}
}

func newMemoryStore(t *testing.T) contract.RunStore {
	t.Helper()
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	runID, err := store.BeginRun(schema.ScoreRun, time.Now(), map[string]any{"test": "value"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	assert.NoError(t, store.EndRun(1, schema.RunOutcome{EndTime: time.Now()}))
	assert.NoError(t, store.RecordPlatformScore(1, time.Now(), samplePlatformScore("Uber", 71.5)))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	assert.NoError(t, store.Close())
}

func TestRunStore_UnsupportedBackend(t *testing.T) {
	_, err := NewRunStore("oracle", "")
	assert.Error(t, err)
}

func TestRunStore_SQLite(t *testing.T) {
	store := newMemoryStore(t)

	startTime := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(schema.TrainRun, startTime, map[string]any{
		"target":    "target",
		"test_size": 0.2,
	})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	r2, rmse := 0.91, 3.2
	err = store.EndRun(runID, schema.RunOutcome{
		EndTime:   startTime.Add(1500 * time.Millisecond),
		ModelID:   "model-1",
		TrainRows: 80,
		TestRows:  20,
		TestR2:    &r2,
		TestRMSE:  &rmse,
	})
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Equal(t, string(schema.TrainRun), run.Kind)
	assert.True(t, run.StartTime.Equal(startTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	require.NotNil(t, run.ModelID)
	assert.Equal(t, "model-1", *run.ModelID)
	assert.Equal(t, int32(80), run.TrainRows)
	assert.Equal(t, int32(20), run.TestRows)
	require.NotNil(t, run.TestR2)
	assert.InDelta(t, 0.91, *run.TestR2, 1e-12)
	require.NotNil(t, run.ConfigParams)
	assert.Contains(t, *run.ConfigParams, `"target":"target"`)
}

func TestRunStore_ScoreRunWithoutModel(t *testing.T) {
	store := newMemoryStore(t)

	runID, err := store.BeginRun(schema.ScoreRun, time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.EndRun(runID, schema.RunOutcome{EndTime: time.Now()}))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].ModelID)
	assert.Nil(t, runs[0].TestR2)
}

func TestRunStore_EndUnknownRun(t *testing.T) {
	store := newMemoryStore(t)
	err := store.EndRun(42, schema.RunOutcome{EndTime: time.Now()})
	assert.Error(t, err)
}

func TestRunStore_PlatformScores(t *testing.T) {
	store := newMemoryStore(t)

	runID, err := store.BeginRun(schema.ScoreRun, time.Now(), nil)
	require.NoError(t, err)

	scoredAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordPlatformScore(runID, scoredAt, samplePlatformScore("Uber", 71.5)))

	labeled := samplePlatformScore("Bolt", 85)
	labeled.Label = "Custom"
	require.NoError(t, store.RecordPlatformScore(runID, scoredAt, labeled))

	// Same platform twice in one run violates the primary key
	assert.Error(t, store.RecordPlatformScore(runID, scoredAt, samplePlatformScore("Uber", 50)))

	scores, err := store.GetAllPlatformScores()
	require.NoError(t, err)
	require.Len(t, scores, 2)

	// Ordered by run, then platform
	assert.Equal(t, "Bolt", scores[0].Platform)
	assert.Equal(t, "Custom", scores[0].Label)
	assert.Equal(t, "Uber", scores[1].Platform)
	assert.Equal(t, contract.TrustedValue, scores[1].Label)
	assert.Equal(t, 80.0, scores[1].Accountability)
	assert.True(t, scores[1].ScoredAt.Equal(scoredAt))
}

func TestRunStore_Status(t *testing.T) {
	store := newMemoryStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)
	_, err = store.BeginRun(schema.TrainRun, first, nil)
	require.NoError(t, err)
	runID, err := store.BeginRun(schema.ScoreRun, second, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordPlatformScore(runID, second, samplePlatformScore("Uber", 71.5)))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, string(schema.SQLiteBackend), status.Backend)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.True(t, status.LastRunTime.Equal(second))
	assert.True(t, status.OldestRunTime.Equal(first))
	assert.Equal(t, 1, status.TotalPlatformScores)
	assert.Equal(t, int64(2), status.TableSizes[runsTable])

	var buf bytes.Buffer
	PrintRunStoreStatus(&buf, status)
	out := buf.String()
	assert.Contains(t, out, "Runs Backend: sqlite")
	assert.Contains(t, out, "Total Runs: 2")
	assert.Contains(t, out, "integrity_platform_scores: 1 rows")
}

func TestPrintRunStoreStatus_Disconnected(t *testing.T) {
	var buf bytes.Buffer
	PrintRunStoreStatus(&buf, schema.RunStoreStatus{Backend: "none"})
	assert.Equal(t, "Runs Backend: none\nConnected: false\n", buf.String())
}

func TestClearRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = os.Stat(dbPath)
	require.NoError(t, err)

	require.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine
	assert.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))
	assert.NoError(t, ClearRuns(schema.NoneBackend, "", ""))
	assert.Error(t, ClearRuns(schema.SQLiteBackend, "", ""))
	assert.Error(t, ClearRuns("oracle", "", ""))
}

func TestManager_GetRunStore(t *testing.T) {
	mgr := &RunStoreManager{}
	assert.Nil(t, mgr.GetRunStore())

	store := &MockRunStore{}
	mgr.runs = store
	assert.Same(t, store, mgr.GetRunStore())
}
