package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SplitOptions controls Split.
type SplitOptions struct {
	TestSize  float64  // Fraction of rows held out, in (0,1)
	Seed      int64    // Seed for the row permutation
	IDColumns []string // Columns excluded from the features
}

// DefaultSplitOptions returns a 80/20 split seeded with 42.
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{
		TestSize:  schema.DefaultTestSize,
		Seed:      schema.DefaultSeed,
		IDColumns: []string{schema.DefaultIDColumn},
	}
}

// Partition holds the train and test halves of a dataset.
type Partition struct {
	Features []string
	TrainX   dataframe.DataFrame
	TestX    dataframe.DataFrame
	TrainY   []float64
	TestY    []float64
}

// FeatureColumns returns every column except the target and the identifiers.
// All returned columns must be numeric.
func FeatureColumns(df dataframe.DataFrame, target string, idColumns []string) ([]string, error) {
	var features []string
	for _, name := range df.Names() {
		if name == target || slices.Contains(idColumns, name) {
			continue
		}
		if !IsNumeric(df.Col(name).Type()) {
			return nil, fmt.Errorf("feature column %q is not numeric; preprocess the data first", name)
		}
		features = append(features, name)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("no feature columns besides target %q", target)
	}
	return features, nil
}

// Split partitions the rows of df into train and test sets. The test set has
// ceil(n*TestSize) rows and the same seed always yields the same partition.
func Split(df dataframe.DataFrame, target string, opts SplitOptions) (*Partition, error) {
	if !slices.Contains(df.Names(), target) {
		zap.L().Error("the target column is missing", zap.String("target", target))
		return nil, eris.Wrapf(ErrMissingTargetColumn, "%s", target)
	}
	if opts.TestSize <= 0 || opts.TestSize >= 1 {
		return nil, fmt.Errorf("test size must be between 0 and 1 exclusive, got %g", opts.TestSize)
	}

	targetCol := df.Col(target)
	if !IsNumeric(targetCol.Type()) {
		return nil, fmt.Errorf("target column %q is not numeric", target)
	}
	y := targetCol.Float()
	for i, v := range y {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("target column %q has a missing value at row %d", target, i)
		}
	}

	features, err := FeatureColumns(df, target, opts.IDColumns)
	if err != nil {
		return nil, err
	}

	n := df.Nrow()
	nTest := int(math.Ceil(float64(n)*opts.TestSize - 1e-9))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, fmt.Errorf("cannot split %d rows with test size %g", n, opts.TestSize)
	}

	seed := uint64(opts.Seed)
	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)
	testIdx, trainIdx := perm[:nTest], perm[nTest:]

	X := df.Select(features)
	p := &Partition{
		Features: features,
		TrainX:   X.Subset(trainIdx),
		TestX:    X.Subset(testIdx),
		TrainY:   pick(y, trainIdx),
		TestY:    pick(y, testIdx),
	}
	if p.TrainX.Err != nil {
		return nil, eris.Wrap(p.TrainX.Err, "subset train rows")
	}
	if p.TestX.Err != nil {
		return nil, eris.Wrap(p.TestX.Err, "subset test rows")
	}

	zap.L().Info("data split",
		zap.Int("train_rows", nTrain),
		zap.Int("test_rows", nTest),
		zap.Int("features", len(features)),
		zap.Int64("seed", opts.Seed),
	)
	return p, nil
}

// ToMatrix converts the named columns of df into row-major float rows.
func ToMatrix(df dataframe.DataFrame, columns []string) ([][]float64, error) {
	cols := make([][]float64, len(columns))
	for j, name := range columns {
		if !slices.Contains(df.Names(), name) {
			return nil, fmt.Errorf("column %q not found", name)
		}
		col := df.Col(name)
		if !IsNumeric(col.Type()) {
			return nil, fmt.Errorf("column %q is not numeric", name)
		}
		cols[j] = col.Float()
	}
	rows := make([][]float64, df.Nrow())
	for i := range rows {
		row := make([]float64, len(columns))
		for j := range columns {
			row[j] = cols[j][i]
		}
		rows[i] = row
	}
	return rows, nil
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
