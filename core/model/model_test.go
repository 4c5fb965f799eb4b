package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/huangsam/rideintegrity/internal/parquet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearRows builds rows where y = 3a - 2b + 5.
func linearRows(n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range n {
		a, b := float64(i), float64((i*3)%7)
		X[i] = []float64{a, b}
		y[i] = 3*a - 2*b + 5
	}
	return X, y
}

func syntheticFrame(n int) dataframe.DataFrame {
	X, y := linearRows(n)
	ids := make([]string, n)
	a := make([]float64, n)
	b := make([]float64, n)
	for i, row := range X {
		ids[i] = fmt.Sprintf("p%03d", i)
		a[i], b[i] = row[0], row[1]
	}
	return dataframe.New(
		series.New(ids, series.String, "Platform"),
		series.New(a, series.Float, "a"),
		series.New(b, series.Float, "b"),
		series.New(y, series.Float, "target"),
	)
}

func TestFitRecoversCoefficients(t *testing.T) {
	X, y := linearRows(50)
	m, err := Fit(X, y, []string{"a", "b"}, 1e-9)
	require.NoError(t, err)

	assert.True(t, m.IsTrained())
	assert.InDelta(t, 3.0, m.Coefficients[0], 1e-4)
	assert.InDelta(t, -2.0, m.Coefficients[1], 1e-4)
	assert.InDelta(t, 5.0, m.Intercept, 1e-3)

	var total float64
	for _, imp := range m.Importances {
		total += imp
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestFitRankDeficient(t *testing.T) {
	t.Run("duplicate column", func(t *testing.T) {
		X := [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}}
		y := []float64{2, 4, 6, 8}
		m, err := Fit(X, y, []string{"x", "x_copy"}, 1e-6)
		require.NoError(t, err)
		pred, err := m.Predict([][]float64{{5, 5}})
		require.NoError(t, err)
		assert.InDelta(t, 10.0, pred[0], 1e-3)
	})

	t.Run("more features than rows", func(t *testing.T) {
		X := [][]float64{{1, 0, 3}, {0, 1, 2}}
		y := []float64{1, 2}
		_, err := Fit(X, y, []string{"a", "b", "c"}, 1e-6)
		assert.NoError(t, err)
	})

	t.Run("constant column", func(t *testing.T) {
		X := [][]float64{{1, 7}, {2, 7}, {3, 7}}
		y := []float64{1, 2, 3}
		m, err := Fit(X, y, []string{"x", "k"}, 1e-6)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, m.Coefficients[1], 1e-6)
		assert.InDelta(t, 0.0, m.Importances[1], 1e-6)
	})
}

func TestFitErrors(t *testing.T) {
	_, err := Fit(nil, nil, []string{"a"}, 1e-6)
	assert.Error(t, err)

	_, err = Fit([][]float64{{1}}, []float64{1, 2}, []string{"a"}, 1e-6)
	assert.Error(t, err)

	_, err = Fit([][]float64{{1, 2}}, []float64{1}, []string{"a"}, 1e-6)
	assert.True(t, errors.Is(err, ErrFeatureMismatch))

	_, err = Fit([][]float64{{1}}, []float64{1}, []string{"a"}, -1)
	assert.Error(t, err)
}

func TestPredictErrors(t *testing.T) {
	var untrained LinearModel
	_, err := untrained.Predict([][]float64{{1}})
	assert.True(t, errors.Is(err, ErrNotTrained))

	X, y := linearRows(10)
	m, err := Fit(X, y, []string{"a", "b"}, 1e-6)
	require.NoError(t, err)

	_, err = m.Predict([][]float64{{1, 2, 3}})
	assert.True(t, errors.Is(err, ErrFeatureMismatch))
}

func TestPredictFrame(t *testing.T) {
	df := syntheticFrame(20)
	X, y := linearRows(20)
	m, err := Fit(X, y, []string{"a", "b"}, 1e-9)
	require.NoError(t, err)

	pred, err := m.PredictFrame(df)
	require.NoError(t, err)
	require.Len(t, pred, 20)
	assert.InDelta(t, y[7], pred[7], 1e-3)

	_, err = m.PredictFrame(df.Drop("b"))
	assert.True(t, errors.Is(err, ErrFeatureMismatch))
}

func TestTrain(t *testing.T) {
	df := syntheticFrame(100)
	m, report, err := Train(df, "target", DefaultTrainOptions())
	require.NoError(t, err)

	assert.True(t, m.IsTrained())
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "target", m.Target)
	assert.Equal(t, []string{"a", "b"}, m.FeatureNames())

	assert.Equal(t, m.ID, report.ModelID)
	assert.Equal(t, 80, report.TrainRows)
	assert.Equal(t, 20, report.TestRows)
	assert.Greater(t, report.Test.R2, 0.99)
	assert.Less(t, report.Test.RMSE, 0.1)
	assert.Len(t, report.Importances, 2)

	pred, err := m.PredictFrame(df)
	require.NoError(t, err)
	assert.Len(t, pred, df.Nrow())
}

func TestTrainMissingTarget(t *testing.T) {
	_, _, err := Train(syntheticFrame(10), "nope", DefaultTrainOptions())
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	m := &LinearModel{Features: []string{"x"}, Coefficients: []float64{1}, Importances: []float64{1}, trained: true}

	got, err := Evaluate(m, [][]float64{{1}, {2}, {3}}, []float64{1, 2, 5})
	require.NoError(t, err)
	assert.InDelta(t, 4.0/3.0, got.MSE, 1e-12)
	assert.InDelta(t, 2.0/3.0, got.MAE, 1e-12)

	constant, err := Evaluate(m, [][]float64{{1}, {2}}, []float64{3, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, constant.R2)

	_, err = Evaluate(m, [][]float64{{1}}, []float64{1, 2})
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, _, err := Train(syntheticFrame(60), "target", DefaultTrainOptions())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "models", "integrity_model.parquet")
	require.NoError(t, Save(m, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.IsTrained())
	assert.Equal(t, m.ID, loaded.ID)
	assert.Equal(t, m.Target, loaded.Target)
	assert.Equal(t, m.Features, loaded.Features)
	assert.Equal(t, m.Coefficients, loaded.Coefficients)
	assert.Equal(t, m.Intercept, loaded.Intercept)
	assert.Equal(t, m.Ridge, loaded.Ridge)
	assert.WithinDuration(t, m.TrainedAt, loaded.TrainedAt, 0)

	rows := [][]float64{{1, 2}, {10, 3}}
	want, err := m.Predict(rows)
	require.NoError(t, err)
	got, err := loaded.Predict(rows)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	value, err := PredictIntegrity(path, []float64{4, 4})
	require.NoError(t, err)
	assert.InDelta(t, 3*4-2*4+5, value, 1e-2)
}

func TestSaveUntrained(t *testing.T) {
	err := Save(&LinearModel{}, filepath.Join(t.TempDir(), "m.parquet"))
	assert.True(t, errors.Is(err, ErrNotTrained))
}

func TestPredictIntegrityMissingModel(t *testing.T) {
	_, err := PredictIntegrity(filepath.Join(t.TempDir(), "missing.parquet"), []float64{1, 2, 3, 4, 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelNotFound))

	_, err = Load(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.True(t, errors.Is(err, ErrModelNotFound))
}

func TestLoadCorruptMeta(t *testing.T) {
	m, _, err := Train(syntheticFrame(30), "target", DefaultTrainOptions())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "m.parquet")
	require.NoError(t, Save(m, path))
	rows, err := parquet.ReadModelParquet(path)
	require.NoError(t, err)

	tests := []struct {
		meta  string
		value string
	}{
		{metaRidge, "not-a-number"},
		{metaTrainedAt, "yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.meta, func(t *testing.T) {
			corrupt := make([]parquet.ModelRow, len(rows))
			copy(corrupt, rows)
			for i, row := range corrupt {
				if row.Kind == parquet.KindMeta && row.Name == tt.meta {
					v := tt.value
					corrupt[i].Value = &v
				}
			}
			bad := filepath.Join(t.TempDir(), "bad.parquet")
			require.NoError(t, parquet.WriteModelParquet(corrupt, bad))

			_, err := Load(bad)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.value)
		})
	}
}
