package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/schema"
)

// runTracker records one command invocation in the run store.
// A nil store turns every method into a no-op.
type runTracker struct {
	store contract.RunStore
	kind  schema.RunKind
}

// beginRun opens a tracked run and returns a context carrying its ID.
// Tracking failures are logged and never stop the pipeline.
func beginRun(ctx context.Context, mgr contract.StoreManager, kind schema.RunKind, cfg *contract.Config) (context.Context, *runTracker) {
	tracker := &runTracker{kind: kind}
	if mgr == nil {
		return ctx, tracker
	}
	store := mgr.GetRunStore()
	if store == nil {
		return ctx, tracker
	}
	tracker.store = store

	runID, err := store.BeginRun(kind, time.Now(), runConfigParams(cfg))
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx, tracker
	}
	if runID > 0 {
		ctx = withRunID(ctx, runID)
	}
	return ctx, tracker
}

// runConfigParams captures the settings that influence a run's results.
func runConfigParams(cfg *contract.Config) map[string]any {
	weights := make(map[string]float64, len(cfg.Weights))
	for k, v := range cfg.Weights {
		weights[string(k)] = v
	}
	return map[string]any{
		"data_path":     cfg.DataPath,
		"target":        cfg.Target,
		"id_columns":    cfg.IDColumns,
		"test_size":     cfg.TestSize,
		"seed":          cfg.Seed,
		"ridge":         cfg.Ridge,
		"scale":         cfg.Scale,
		"derive_target": cfg.DeriveTarget,
		"model_path":    cfg.ModelPath,
		"weights":       weights,
	}
}

// recordScores stores every scored platform under the run in ctx.
func (t *runTracker) recordScores(ctx context.Context, scores []schema.PlatformScore) {
	runID := runIDFromContext(ctx)
	if t.store == nil || runID == 0 {
		return
	}
	scoredAt := time.Now()
	for _, s := range scores {
		if err := t.store.RecordPlatformScore(runID, scoredAt, s); err != nil {
			logTrackingError("RecordPlatformScore", s.Platform, err)
		}
	}
}

// end finalizes the run in ctx with the given outcome.
func (t *runTracker) end(ctx context.Context, outcome schema.RunOutcome) {
	runID := runIDFromContext(ctx)
	if t.store == nil || runID == 0 {
		return
	}
	outcome.EndTime = time.Now()
	if err := t.store.EndRun(runID, outcome); err != nil {
		logTrackingError("EndRun", string(t.kind), err)
	}
}

// trainingOutcome summarizes a training report for the run store.
func trainingOutcome(report *schema.TrainingReport) schema.RunOutcome {
	if report == nil {
		return schema.RunOutcome{}
	}
	r2, rmse := report.Test.R2, report.Test.RMSE
	return schema.RunOutcome{
		ModelID:   report.ModelID,
		TrainRows: report.TrainRows,
		TestRows:  report.TestRows,
		TestR2:    &r2,
		TestRMSE:  &rmse,
	}
}

// logTrackingError logs a run tracking failure without failing the command.
func logTrackingError(operation, subject string, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on %s", operation, subject), err)
}
