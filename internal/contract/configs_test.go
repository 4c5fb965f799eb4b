package contract

import (
	"testing"

	"github.com/huangsam/rideintegrity/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrFloat(v float64) *float64 { return &v }

// validInput returns the raw input the CLI produces with all defaults applied.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Target:       schema.DefaultTargetColumn,
		IDColumns:    schema.DefaultIDColumn,
		TestSize:     schema.DefaultTestSize,
		Seed:         schema.DefaultSeed,
		Ridge:        schema.DefaultRidge,
		DeriveTarget: true,
		Output:       "text",
		Precision:    DefaultPrecision,
		Color:        "yes",
		LogLevel:     "info",
		StoreBackend: "none",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid defaults", mutate: func(*ConfigRawInput) {}},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "parquet with file", mutate: func(in *ConfigRawInput) {
			in.Output = "parquet"
			in.OutputFile = "scores.parquet"
		}},
		{name: "precision too high", mutate: func(in *ConfigRawInput) { in.Precision = 9 }, expectError: true},
		{name: "test size zero", mutate: func(in *ConfigRawInput) { in.TestSize = 0 }, expectError: true},
		{name: "test size one", mutate: func(in *ConfigRawInput) { in.TestSize = 1 }, expectError: true},
		{name: "negative ridge", mutate: func(in *ConfigRawInput) { in.Ridge = -1 }, expectError: true},
		{name: "bad color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: true},
		{name: "bad log format", mutate: func(in *ConfigRawInput) { in.LogFormat = "xml" }, expectError: true},
		{name: "bad backend", mutate: func(in *ConfigRawInput) { in.StoreBackend = "oracle" }, expectError: true},
		{name: "mysql without connection", mutate: func(in *ConfigRawInput) { in.StoreBackend = "mysql" }, expectError: true},
		{name: "postgres with connection", mutate: func(in *ConfigRawInput) {
			in.StoreBackend = "postgresql"
			in.StoreDBConnect = "host=localhost dbname=runs"
		}},
		{name: "target used as id", mutate: func(in *ConfigRawInput) { in.IDColumns = "Platform,target" }, expectError: true},
		{name: "multi-char delimiter", mutate: func(in *ConfigRawInput) { in.Delimiter = ";;" }, expectError: true},
		{name: "weights not summing to one", mutate: func(in *ConfigRawInput) {
			in.Weights = WeightsRawInput{
				Honesty: ptrFloat(0.5), Transparency: ptrFloat(0.5), Accountability: ptrFloat(0.5),
				Ethics: ptrFloat(0.0), Consistency: ptrFloat(0.0),
			}
		}, expectError: true},
		{name: "partial weights", mutate: func(in *ConfigRawInput) {
			in.Weights = WeightsRawInput{Honesty: ptrFloat(1.0)}
		}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, schema.DefaultDataPath, cfg.DataPath)
	assert.Equal(t, schema.DefaultTargetColumn, cfg.Target)
	assert.Equal(t, []string{schema.DefaultIDColumn}, cfg.IDColumns)
	assert.Equal(t, schema.DefaultModelPath, cfg.ModelPath)
	assert.Equal(t, ',', cfg.Delimiter)
	assert.Equal(t, schema.NoneBackend, cfg.StoreBackend)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.False(t, cfg.CustomWeights)
	assert.Equal(t, schema.GetDefaultWeights(), cfg.Weights)
}

func TestProcessAndValidateCustomWeights(t *testing.T) {
	input := validInput()
	input.Weights = WeightsRawInput{
		Honesty:        ptrFloat(0.25),
		Transparency:   ptrFloat(0.25),
		Accountability: ptrFloat(0.2),
		Ethics:         ptrFloat(0.2),
		Consistency:    ptrFloat(0.1),
	}
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.True(t, cfg.CustomWeights)
	assert.InDelta(t, 0.25, cfg.Weights[schema.Honesty], 1e-12)
	assert.InDelta(t, 0.2, cfg.Weights[schema.Accountability], 1e-12)
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", ',', false},
		{"comma", ',', false},
		{"tab", '\t', false},
		{";", ';', false},
		{"|", '|', false},
		{`"`, 0, true},
		{"ab", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDelimiter(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{IDColumns: []string{"Platform"}, Weights: schema.GetDefaultWeights()}
	clone := cfg.Clone()
	clone.IDColumns[0] = "Changed"
	clone.Weights[schema.Honesty] = 0.9

	assert.Equal(t, "Platform", cfg.IDColumns[0])
	assert.InDelta(t, 0.2, cfg.Weights[schema.Honesty], 1e-12)
}
