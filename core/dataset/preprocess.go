package dataset

import (
	"math"
	"slices"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Options controls Preprocess.
type Options struct {
	// IDColumns pass through untouched and are never encoded or scaled.
	IDColumns []string

	// Exclude lists numeric columns that must not be scaled, such as the target.
	Exclude []string

	// Scale enables min-max scaling of numeric columns to [0,1].
	Scale bool
}

// DefaultOptions returns the options used by the CLI when nothing is configured.
func DefaultOptions() Options {
	return Options{IDColumns: []string{schema.DefaultIDColumn}}
}

// IsNumeric reports whether a column type can be used as a model feature.
func IsNumeric(t series.Type) bool {
	return t == series.Float || t == series.Int || t == series.Bool
}

// MissingColumns returns the names of columns that contain at least one missing value.
func MissingColumns(df dataframe.DataFrame) []string {
	var missing []string
	for _, name := range df.Names() {
		if slices.Contains(df.Col(name).IsNaN(), true) {
			missing = append(missing, name)
		}
	}
	return missing
}

// CategoricalColumns returns the string columns that are not identifiers.
func CategoricalColumns(df dataframe.DataFrame, idColumns []string) []string {
	var cats []string
	for _, name := range df.Names() {
		if slices.Contains(idColumns, name) {
			continue
		}
		if df.Col(name).Type() == series.String {
			cats = append(cats, name)
		}
	}
	return cats
}

// Preprocess imputes missing values, one-hot encodes categorical columns and
// optionally scales numeric columns. The input DataFrame is not modified.
func Preprocess(df dataframe.DataFrame, opts Options) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return dataframe.DataFrame{}, eris.Wrap(df.Err, "preprocess input")
	}

	out, err := FillMissing(df)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	out, err = oneHotEncode(out, CategoricalColumns(out, opts.IDColumns))
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	if opts.Scale {
		out, err = minMaxScale(out, append(slices.Clone(opts.IDColumns), opts.Exclude...))
		if err != nil {
			return dataframe.DataFrame{}, err
		}
	}

	zap.L().Info("data preprocessed",
		zap.Int("rows", out.Nrow()),
		zap.Int("columns", out.Ncol()),
		zap.Bool("scaled", opts.Scale),
	)
	return out, nil
}

// FillMissing replaces missing numeric entries with the column mean and
// missing text entries with the unknown category.
func FillMissing(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	missing := MissingColumns(df)
	if len(missing) == 0 {
		zap.L().Info("no missing values found")
		return df, nil
	}
	zap.L().Info("missing values found", zap.Strings("columns", missing))

	out := df
	for _, name := range missing {
		col := out.Col(name)
		var filled series.Series
		if IsNumeric(col.Type()) {
			values := col.Float()
			mean := nanMean(values)
			for i, v := range values {
				if math.IsNaN(v) {
					values[i] = mean
				}
			}
			filled = series.New(values, series.Float, name)
		} else {
			values := col.Records()
			for i, isNA := range col.IsNaN() {
				if isNA {
					values[i] = schema.UnknownCategory
				}
			}
			filled = series.New(values, series.String, name)
		}
		out = out.Mutate(filled)
		if out.Err != nil {
			return dataframe.DataFrame{}, eris.Wrapf(out.Err, "fill column %s", name)
		}
	}
	return out, nil
}

// nanMean is the mean of the non-NaN values, or 0 when none remain.
func nanMean(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// oneHotEncode replaces each categorical column with k-1 indicator columns.
// Categories are sorted and the first one is dropped.
func oneHotEncode(df dataframe.DataFrame, cats []string) (dataframe.DataFrame, error) {
	if len(cats) == 0 {
		return df, nil
	}
	zap.L().Info("encoding categorical columns", zap.Strings("columns", cats))

	var indicators []series.Series
	for _, name := range cats {
		records := df.Col(name).Records()
		levels := distinct(records)
		if len(levels) < 2 {
			continue
		}
		for _, level := range levels[1:] {
			values := make([]int, len(records))
			for i, r := range records {
				if r == level {
					values[i] = 1
				}
			}
			indicators = append(indicators, series.New(values, series.Int, name+"_"+level))
		}
	}

	out := df.Drop(cats)
	if out.Err != nil {
		return dataframe.DataFrame{}, eris.Wrap(out.Err, "drop categorical columns")
	}
	if len(indicators) == 0 {
		return out, nil
	}
	encoded := dataframe.New(indicators...)
	if out.Ncol() == 0 {
		return encoded, nil
	}
	out = out.CBind(encoded)
	if out.Err != nil {
		return dataframe.DataFrame{}, eris.Wrap(out.Err, "append indicator columns")
	}
	return out, nil
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var levels []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		levels = append(levels, v)
	}
	sort.Strings(levels)
	return levels
}

// minMaxScale maps every numeric column not in skip to [0,1].
// Constant columns become 0.
func minMaxScale(df dataframe.DataFrame, skip []string) (dataframe.DataFrame, error) {
	out := df
	for _, name := range df.Names() {
		col := df.Col(name)
		if slices.Contains(skip, name) || !IsNumeric(col.Type()) {
			continue
		}
		values := col.Float()
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		span := hi - lo
		for i, v := range values {
			if span == 0 {
				values[i] = 0
				continue
			}
			values[i] = (v - lo) / span
		}
		out = out.Mutate(series.New(values, series.Float, name))
		if out.Err != nil {
			return dataframe.DataFrame{}, eris.Wrapf(out.Err, "scale column %s", name)
		}
	}
	return out, nil
}
