// Package dataset loads tabular survey data and prepares it for scoring and training.
package dataset

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"os"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Sentinel errors returned by the dataset package.
var (
	ErrFileNotFound        = eris.New("data file not found")
	ErrEmptyData           = eris.New("data file is empty")
	ErrGenericIO           = eris.New("failed to read data file")
	ErrMissingTargetColumn = eris.New("target column not found")
)

// MissingValues lists the cell contents treated as missing when loading.
var MissingValues = []string{"", "NA", "N/A", "NaN", "null", "<nil>"}

type loadConfig struct {
	delimiter rune
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

// WithDelimiter sets the field delimiter. The default is a comma.
func WithDelimiter(r rune) LoadOption {
	return func(c *loadConfig) {
		if r != 0 {
			c.delimiter = r
		}
	}
}

// Load reads a delimited file with a header row into a DataFrame.
// Column types are detected from the values.
func Load(path string, opts ...LoadOption) (dataframe.DataFrame, error) {
	cfg := loadConfig{delimiter: ','}
	for _, opt := range opts {
		opt(&cfg)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			zap.L().Error("the data file was not found", zap.String("path", path))
			return dataframe.DataFrame{}, eris.Wrapf(ErrFileNotFound, "%s", path)
		}
		zap.L().Error("could not read the data file", zap.String("path", path), zap.Error(err))
		return dataframe.DataFrame{}, eris.Wrapf(ErrGenericIO, "%s: %v", path, err)
	}

	if countNonBlankLines(raw) < 2 {
		zap.L().Error("the data file has no data rows", zap.String("path", path))
		return dataframe.DataFrame{}, eris.Wrapf(ErrEmptyData, "%s", path)
	}

	df := readCSV(raw, cfg.delimiter, nil)
	if empty := emptyColumns(df); df.Err == nil && len(empty) > 0 {
		// Detection types these as text; read them again as numeric
		types := make(map[string]series.Type, len(empty))
		for _, name := range empty {
			types[name] = series.Float
		}
		zap.L().Debug("columns without values read as numeric", zap.Strings("columns", empty))
		df = readCSV(raw, cfg.delimiter, types)
	}
	if df.Err != nil {
		zap.L().Error("could not parse the data file", zap.String("path", path), zap.Error(df.Err))
		return dataframe.DataFrame{}, eris.Wrapf(ErrGenericIO, "%s: %v", path, df.Err)
	}
	if df.Nrow() == 0 || df.Ncol() == 0 {
		zap.L().Error("the data file has no data rows", zap.String("path", path))
		return dataframe.DataFrame{}, eris.Wrapf(ErrEmptyData, "%s", path)
	}

	zap.L().Info("data loaded",
		zap.String("path", path),
		zap.Int("rows", df.Nrow()),
		zap.Int("columns", df.Ncol()),
	)
	return df, nil
}

func readCSV(raw []byte, delimiter rune, types map[string]series.Type) dataframe.DataFrame {
	opts := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(MissingValues),
		dataframe.WithDelimiter(delimiter),
	}
	if len(types) > 0 {
		opts = append(opts, dataframe.WithTypes(types))
	}
	return dataframe.ReadCSV(bytes.NewReader(raw), opts...)
}

// emptyColumns returns the columns whose every cell is missing.
func emptyColumns(df dataframe.DataFrame) []string {
	if df.Err != nil || df.Nrow() == 0 {
		return nil
	}
	var empty []string
	for _, name := range df.Names() {
		if !slices.Contains(df.Col(name).IsNaN(), false) {
			empty = append(empty, name)
		}
	}
	return empty
}

// countNonBlankLines stops counting at two since callers only need to know
// whether a header and at least one row are present.
func countNonBlankLines(raw []byte) int {
	count := 0
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) > 0 {
			count++
			if count >= 2 {
				break
			}
		}
	}
	return count
}
