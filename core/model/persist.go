package model

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/huangsam/rideintegrity/internal/parquet"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Meta keys stored in a model file.
const (
	metaModelID   = "model_id"
	metaTarget    = "target"
	metaRidge     = "ridge"
	metaTrainedAt = "trained_at"
)

// Save writes a trained model to path, creating parent directories.
func Save(m *LinearModel, path string) error {
	if !m.IsTrained() {
		return ErrNotTrained
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "create model directory %s", dir)
		}
	}

	meta := func(name, value string) parquet.ModelRow {
		return parquet.ModelRow{Kind: parquet.KindMeta, Name: name, Value: &value}
	}
	rows := []parquet.ModelRow{
		meta(metaModelID, m.ID),
		meta(metaTarget, m.Target),
		meta(metaRidge, strconv.FormatFloat(m.Ridge, 'g', -1, 64)),
		meta(metaTrainedAt, m.TrainedAt.UTC().Format(time.RFC3339Nano)),
		{Kind: parquet.KindIntercept, Name: "intercept", Coefficient: m.Intercept},
	}
	for i, name := range m.Features {
		rows = append(rows, parquet.ModelRow{
			Kind:        parquet.KindFeature,
			Name:        name,
			Position:    int32(i),
			Coefficient: m.Coefficients[i],
			Importance:  m.Importances[i],
		})
	}

	if err := parquet.WriteModelParquet(rows, path); err != nil {
		zap.L().Error("could not save the model", zap.String("path", path), zap.Error(err))
		return eris.Wrapf(err, "save model %s", path)
	}
	zap.L().Info("model saved", zap.String("path", path), zap.String("model_id", m.ID))
	return nil
}

// Load reads a model written by Save.
func Load(path string) (*LinearModel, error) {
	rows, err := parquet.ReadModelParquet(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			zap.L().Error("no trained model at path", zap.String("path", path))
			return nil, eris.Wrapf(ErrModelNotFound, "%s", path)
		}
		zap.L().Error("could not read the model", zap.String("path", path), zap.Error(err))
		return nil, eris.Wrapf(err, "load model %s", path)
	}

	m := &LinearModel{}
	var features []parquet.ModelRow
	hasIntercept := false
	for _, row := range rows {
		switch row.Kind {
		case parquet.KindMeta:
			if row.Value == nil {
				continue
			}
			switch row.Name {
			case metaModelID:
				m.ID = *row.Value
			case metaTarget:
				m.Target = *row.Value
			case metaRidge:
				if m.Ridge, err = strconv.ParseFloat(*row.Value, 64); err != nil {
					return nil, eris.Wrapf(err, "model file %s has an invalid ridge %q", path, *row.Value)
				}
			case metaTrainedAt:
				if m.TrainedAt, err = time.Parse(time.RFC3339Nano, *row.Value); err != nil {
					return nil, eris.Wrapf(err, "model file %s has an invalid training time %q", path, *row.Value)
				}
			}
		case parquet.KindIntercept:
			m.Intercept = row.Coefficient
			hasIntercept = true
		case parquet.KindFeature:
			features = append(features, row)
		}
	}
	if !hasIntercept || len(features) == 0 {
		return nil, eris.Errorf("model file %s is incomplete", path)
	}

	sort.Slice(features, func(i, j int) bool { return features[i].Position < features[j].Position })
	for i, f := range features {
		if int(f.Position) != i {
			return nil, eris.Errorf("model file %s has a gap at feature position %d", path, i)
		}
		m.Features = append(m.Features, f.Name)
		m.Coefficients = append(m.Coefficients, f.Coefficient)
		m.Importances = append(m.Importances, f.Importance)
	}
	m.trained = true

	zap.L().Debug("model loaded", zap.String("path", path), zap.Int("features", len(m.Features)))
	return m, nil
}
