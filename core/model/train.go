package model

import (
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
	"github.com/huangsam/rideintegrity/core/dataset"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// TrainOptions controls Train.
type TrainOptions struct {
	TestSize  float64
	Seed      int64
	Ridge     float64
	IDColumns []string
}

// DefaultTrainOptions returns the options used when nothing is configured.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		TestSize:  schema.DefaultTestSize,
		Seed:      schema.DefaultSeed,
		Ridge:     schema.DefaultRidge,
		IDColumns: []string{schema.DefaultIDColumn},
	}
}

// Train splits a preprocessed table, fits a model on the training rows and
// evaluates it on both halves. The model is not persisted.
func Train(df dataframe.DataFrame, target string, opts TrainOptions) (*LinearModel, *schema.TrainingReport, error) {
	start := time.Now()

	split, err := dataset.Split(df, target, dataset.SplitOptions{
		TestSize:  opts.TestSize,
		Seed:      opts.Seed,
		IDColumns: opts.IDColumns,
	})
	if err != nil {
		return nil, nil, err
	}

	trainX, err := dataset.ToMatrix(split.TrainX, split.Features)
	if err != nil {
		return nil, nil, eris.Wrap(err, "train features")
	}
	testX, err := dataset.ToMatrix(split.TestX, split.Features)
	if err != nil {
		return nil, nil, eris.Wrap(err, "test features")
	}

	m, err := Fit(trainX, split.TrainY, split.Features, opts.Ridge)
	if err != nil {
		zap.L().Error("model fitting failed", zap.Error(err))
		return nil, nil, err
	}
	m.ID = uuid.NewString()
	m.Target = target

	trainEval, err := Evaluate(m, trainX, split.TrainY)
	if err != nil {
		return nil, nil, eris.Wrap(err, "evaluate train split")
	}
	testEval, err := Evaluate(m, testX, split.TestY)
	if err != nil {
		return nil, nil, eris.Wrap(err, "evaluate test split")
	}

	report := &schema.TrainingReport{
		ModelID:      m.ID,
		Target:       target,
		Features:     m.FeatureNames(),
		TrainRows:    len(trainX),
		TestRows:     len(testX),
		TestSize:     opts.TestSize,
		Seed:         opts.Seed,
		Ridge:        opts.Ridge,
		Intercept:    m.Intercept,
		Train:        trainEval,
		Test:         testEval,
		Importances:  m.FeatureImportances(),
		TrainedAt:    m.TrainedAt,
		TrainingTime: time.Since(start),
	}

	zap.L().Info("model trained",
		zap.String("model_id", m.ID),
		zap.Int("features", len(m.Features)),
		zap.Float64("test_r2", testEval.R2),
		zap.Float64("test_rmse", testEval.RMSE),
	)
	return m, report, nil
}
