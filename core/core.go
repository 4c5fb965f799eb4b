// Package core has core logic for the integrity pipeline, scoring and ranking.
package core

import (
	"context"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/huangsam/rideintegrity/core/dataset"
	"github.com/huangsam/rideintegrity/core/model"
	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/internal/outwriter"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ExecutorFunc defines the function signature for executing a pipeline command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// stdout is where results go; tests point it at a buffer.
var stdout io.Writer = os.Stdout

// ExecuteRun runs the fixed pipeline: load, preprocess, derive the target when
// needed, train, save the model, score every platform and chart the scores.
// Platforms are scored on the imputed table before anything is saved.
// The training report is always printed as text; the scores follow --output.
func ExecuteRun(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	ctx, tracker := beginRun(ctx, mgr, schema.PipelineRun, cfg)

	raw, err := loadData(cfg)
	if err != nil {
		tracker.end(ctx, schema.RunOutcome{})
		return err
	}

	imputed, err := dataset.FillMissing(raw)
	if err != nil {
		tracker.end(ctx, schema.RunOutcome{})
		return err
	}
	scores, err := scoreFrame(ctx, imputed, cfg, tracker)
	if err != nil {
		tracker.end(ctx, schema.RunOutcome{})
		return err
	}

	report, err := trainAndSave(raw, cfg)
	if err != nil {
		tracker.end(ctx, schema.RunOutcome{})
		return err
	}
	tracker.end(ctx, trainingOutcome(report))

	reportCfg := cfg.Clone()
	reportCfg.Output = schema.TextOut
	reportCfg.OutputFile = ""
	ow := newOutWriter(cfg)
	if err := ow.WriteTrainingReport(report, reportCfg); err != nil {
		return err
	}
	if err := ow.WriteScores(scores, cfg, time.Since(start)); err != nil {
		return err
	}
	return ow.PlotScores(scores, cfg)
}

// ExecuteScore scores every platform row of the input table, or the inline
// platforms when any are given, and prints them ranked by score.
func ExecuteScore(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, inline []schema.PlatformScore) error {
	start := time.Now()
	if err := ValidateWeights(cfg.Weights); err != nil {
		return err
	}
	ctx, tracker := beginRun(ctx, mgr, schema.ScoreRun, cfg)

	var scores []schema.PlatformScore
	if len(inline) > 0 {
		scores = make([]schema.PlatformScore, len(inline))
		for i, p := range inline {
			warnOutOfRange(p.Platform, p.Metrics)
			scores[i] = ScoreMetrics(p.Metrics, cfg.Weights)
			scores[i].Platform = p.Platform
		}
		tracker.recordScores(ctx, scores)
		RankPlatforms(scores, 0)
	} else {
		raw, err := loadData(cfg)
		if err != nil {
			tracker.end(ctx, schema.RunOutcome{})
			return err
		}
		scores, err = scoreFrame(ctx, raw, cfg, tracker)
		if err != nil {
			tracker.end(ctx, schema.RunOutcome{})
			return err
		}
	}
	tracker.end(ctx, schema.RunOutcome{})

	ow := newOutWriter(cfg)
	if err := ow.WriteScores(scores, cfg, time.Since(start)); err != nil {
		return err
	}
	return ow.PlotScores(scores, cfg)
}

// ExecuteTrain preprocesses the input table, trains and evaluates a model,
// saves it to the configured model path and prints the training report.
func ExecuteTrain(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	ctx, tracker := beginRun(ctx, mgr, schema.TrainRun, cfg)

	raw, err := loadData(cfg)
	if err != nil {
		tracker.end(ctx, schema.RunOutcome{})
		return err
	}
	report, err := trainAndSave(raw, cfg)
	if err != nil {
		tracker.end(ctx, schema.RunOutcome{})
		return err
	}
	tracker.end(ctx, trainingOutcome(report))

	return newOutWriter(cfg).WriteTrainingReport(report, cfg)
}

// ExecutePredict predicts one feature vector with the persisted model.
// Values must follow the model's feature order.
func ExecutePredict(_ context.Context, cfg *contract.Config, values []float64) error {
	m, err := model.Load(cfg.ModelPath)
	if err != nil {
		return err
	}
	out, err := m.Predict([][]float64{values})
	if err != nil {
		return eris.Wrapf(err, "model expects %d values in order: %s", len(m.FeatureNames()), strings.Join(m.FeatureNames(), ", "))
	}

	features := make(map[string]float64, len(values))
	for i, name := range m.FeatureNames() {
		features[name] = values[i]
	}
	pred := schema.Prediction{ModelID: m.ID, Features: features, Value: out[0]}
	return newOutWriter(cfg).WritePrediction(pred, m.FeatureNames(), cfg)
}

// ExecuteImportance charts the feature importances of the persisted model.
func ExecuteImportance(_ context.Context, cfg *contract.Config) error {
	m, err := model.Load(cfg.ModelPath)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter(stdout).PlotImportance(m, cfg)
}

// ExecuteWeights prints the active composite weights and the score formula.
func ExecuteWeights(_ context.Context, cfg *contract.Config) error {
	if err := ValidateWeights(cfg.Weights); err != nil {
		return err
	}
	return newOutWriter(cfg).WriteWeights(cfg.Weights, cfg.CustomWeights, cfg)
}

// newOutWriter sends charts to stdout for text output and drops them otherwise,
// so structured output on stdout stays parseable.
func newOutWriter(cfg *contract.Config) *outwriter.OutWriter {
	if cfg.Output == schema.TextOut {
		return outwriter.NewOutWriter(stdout)
	}
	return outwriter.NewOutWriter(io.Discard)
}

// loadData reads the configured input table.
func loadData(cfg *contract.Config) (dataframe.DataFrame, error) {
	return dataset.Load(cfg.DataPath, dataset.WithDelimiter(cfg.Delimiter))
}

// trainAndSave prepares the training table, fits the model and persists it.
func trainAndSave(raw dataframe.DataFrame, cfg *contract.Config) (*schema.TrainingReport, error) {
	df, err := PrepareTrainingFrame(raw, cfg)
	if err != nil {
		return nil, err
	}

	m, report, err := model.Train(df, cfg.Target, model.TrainOptions{
		TestSize:  cfg.TestSize,
		Seed:      cfg.Seed,
		Ridge:     cfg.Ridge,
		IDColumns: cfg.IDColumns,
	})
	if err != nil {
		return nil, err
	}
	if err := model.Save(m, cfg.ModelPath); err != nil {
		return nil, err
	}
	report.ModelPath = cfg.ModelPath
	report.Importances = RankImportances(report.Importances)
	return report, nil
}

// PrepareTrainingFrame imputes and encodes the raw table, derives the target
// from the five metrics when it is absent and allowed, and scales last so the
// derived target is computed on the original metric values.
func PrepareTrainingFrame(raw dataframe.DataFrame, cfg *contract.Config) (dataframe.DataFrame, error) {
	opts := dataset.Options{IDColumns: cfg.IDColumns, Exclude: []string{cfg.Target}}
	df, err := dataset.Preprocess(raw, opts)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	if !slices.Contains(df.Names(), cfg.Target) {
		if !cfg.DeriveTarget {
			return dataframe.DataFrame{}, eris.Wrapf(dataset.ErrMissingTargetColumn, "%s (enable --derive-target to compute it)", cfg.Target)
		}
		df, err = deriveTarget(df, cfg)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
	}

	if cfg.Scale {
		opts.Scale = true
		df, err = dataset.Preprocess(df, opts)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
	}
	return df, nil
}

// deriveTarget appends the integrity score of every row as the target column.
func deriveTarget(df dataframe.DataFrame, cfg *contract.Config) (dataframe.DataFrame, error) {
	scores, err := ScoreDataset(df, idColumn(cfg), cfg.Weights)
	if err != nil {
		return dataframe.DataFrame{}, eris.Wrapf(err, "cannot derive target %q", cfg.Target)
	}
	values := make([]float64, len(scores))
	for i, s := range scores {
		values[i] = s.Score
	}
	out := df.Mutate(series.New(values, series.Float, cfg.Target))
	if out.Err != nil {
		return dataframe.DataFrame{}, eris.Wrap(out.Err, "append derived target")
	}
	zap.L().Info("target derived from integrity scores", zap.String("target", cfg.Target), zap.Int("rows", len(values)))
	return out, nil
}

// scoreFrame scores the raw table, warns on out-of-range metrics, records the
// scores for the tracked run and returns them ranked.
func scoreFrame(ctx context.Context, raw dataframe.DataFrame, cfg *contract.Config, tracker *runTracker) ([]schema.PlatformScore, error) {
	scores, err := ScoreDataset(raw, idColumn(cfg), cfg.Weights)
	if err != nil {
		zap.L().Error("scoring failed", zap.String("path", cfg.DataPath), zap.Error(err))
		return nil, err
	}
	for _, s := range scores {
		warnOutOfRange(s.Platform, s.Metrics)
	}
	tracker.recordScores(ctx, scores)
	return RankPlatforms(scores, 0), nil
}

// warnOutOfRange logs metrics outside the expected [0,100] domain.
func warnOutOfRange(platform string, m schema.Metrics) {
	if keys := OutOfRange(m); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = string(k)
		}
		zap.L().Warn("metrics outside [0,100]; score may fall outside the expected range",
			zap.String("platform", platform),
			zap.Strings("metrics", names),
		)
	}
}

// idColumn names the rows of a scored table.
func idColumn(cfg *contract.Config) string {
	if len(cfg.IDColumns) > 0 {
		return cfg.IDColumns[0]
	}
	return schema.DefaultIDColumn
}
