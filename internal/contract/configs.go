package contract

import (
	"fmt"
	"maps"
	"math"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/rideintegrity/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 4
	weightTolerance  = 1e-9
)

// WeightsRawInput holds custom composite weights from the YAML config file.
// Use float64 pointers so that omitted metrics can be detected.
type WeightsRawInput struct {
	Honesty        *float64 `mapstructure:"honesty"`
	Transparency   *float64 `mapstructure:"transparency"`
	Accountability *float64 `mapstructure:"accountability"`
	Ethics         *float64 `mapstructure:"ethics"`
	Consistency    *float64 `mapstructure:"consistency"`
}

// Config holds the runtime configuration for the pipeline.
// This struct is the "final, validated" config.
type Config struct {
	DataPath     string
	Target       string
	IDColumns    []string
	TestSize     float64
	Seed         int64
	Ridge        float64
	Scale        bool
	DeriveTarget bool
	ModelPath    string
	Delimiter    rune

	Output     schema.OutputMode
	OutputFile string
	ChartFile  string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	LogLevel  string
	LogFormat string

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	// Weights is the active composite weights map, defaults merged with overrides.
	Weights schema.Weights

	// CustomWeights is true when the config file overrode the defaults.
	CustomWeights bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	DataPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Target         string  `mapstructure:"target"`
	IDColumns      string  `mapstructure:"id-columns"`
	TestSize       float64 `mapstructure:"test-size"`
	Seed           int64   `mapstructure:"seed"`
	Ridge          float64 `mapstructure:"ridge"`
	Scale          bool    `mapstructure:"scale"`
	DeriveTarget   bool    `mapstructure:"derive-target"`
	ModelPath      string  `mapstructure:"model-path"`
	Delimiter      string  `mapstructure:"delimiter"`
	Output         string  `mapstructure:"output"`
	OutputFile     string  `mapstructure:"output-file"`
	ChartFile      string  `mapstructure:"chart-file"`
	Precision      int     `mapstructure:"precision"`
	Width          int     `mapstructure:"width"`
	Color          string  `mapstructure:"color"`
	LogLevel       string  `mapstructure:"log-level"`
	LogFormat      string  `mapstructure:"log-format"`
	StoreBackend   string  `mapstructure:"store-backend"`
	StoreDBConnect string  `mapstructure:"store-db-connect"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.IDColumns != nil {
		clone.IDColumns = make([]string, len(c.IDColumns))
		copy(clone.IDColumns, c.IDColumns)
	}
	if c.Weights != nil {
		clone.Weights = make(schema.Weights, len(c.Weights))
		maps.Copy(clone.Weights, c.Weights)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validatePipelineInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return processCustomWeights(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBackend normalizes a backend string, treating empty as disabled.
func ParseBackend(s string) (schema.DatabaseBackend, error) {
	if strings.TrimSpace(s) == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// validateBackendConfigs validates the run store configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseBackend(input.StoreBackend)
	if err != nil {
		return err
	}
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// validateSimpleInputs processes and validates output and logging fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.ChartFile = input.ChartFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Precision and Output Validation ---
	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	if cfg.Width < 0 {
		return fmt.Errorf("width must not be negative (received %d)", cfg.Width)
	}

	// --- 2. Logging ---
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	switch cfg.LogFormat {
	case "", "console":
		cfg.LogFormat = "console"
	case "json":
	default:
		return fmt.Errorf("invalid log format '%s'. must be console or json", input.LogFormat)
	}

	return nil
}

// validatePipelineInputs processes the dataset, split and model fields.
func validatePipelineInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.DataPath = input.DataPathStr
	if cfg.DataPath == "" {
		cfg.DataPath = schema.DefaultDataPath
	}

	cfg.Target = strings.TrimSpace(input.Target)
	if cfg.Target == "" {
		cfg.Target = schema.DefaultTargetColumn
	}

	cfg.IDColumns = nil
	for p := range strings.SplitSeq(input.IDColumns, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cfg.IDColumns = append(cfg.IDColumns, trimmed)
		}
	}
	for _, id := range cfg.IDColumns {
		if id == cfg.Target {
			return fmt.Errorf("target column %q cannot also be an id column", cfg.Target)
		}
	}

	if input.TestSize <= 0 || input.TestSize >= 1 {
		return fmt.Errorf("test-size must be between 0 and 1 exclusive (received %g)", input.TestSize)
	}
	cfg.TestSize = input.TestSize
	cfg.Seed = input.Seed

	if input.Ridge < 0 || math.IsNaN(input.Ridge) {
		return fmt.Errorf("ridge must not be negative (received %g)", input.Ridge)
	}
	cfg.Ridge = input.Ridge
	cfg.Scale = input.Scale
	cfg.DeriveTarget = input.DeriveTarget

	cfg.ModelPath = input.ModelPath
	if cfg.ModelPath == "" {
		cfg.ModelPath = schema.DefaultModelPath
	}
	cfg.ModelPath = filepath.Clean(cfg.ModelPath)

	delim, err := parseDelimiter(input.Delimiter)
	if err != nil {
		return err
	}
	cfg.Delimiter = delim
	return nil
}

// parseDelimiter accepts a single character or the words "tab"/"comma".
func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "comma":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character (received %q)", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// ProcessWeightsRawInput converts the raw weights into a map.
// When validateSum is true the provided weights must cover every metric,
// be non-negative and sum to 1.0.
func ProcessWeightsRawInput(weights WeightsRawInput, validateSum bool) (schema.Weights, error) {
	raw := map[schema.MetricKey]*float64{
		schema.Honesty:        weights.Honesty,
		schema.Transparency:   weights.Transparency,
		schema.Accountability: weights.Accountability,
		schema.Ethics:         weights.Ethics,
		schema.Consistency:    weights.Consistency,
	}

	result := make(schema.Weights)
	sum := 0.0
	for _, key := range schema.AllMetrics {
		v := raw[key]
		if v == nil {
			continue
		}
		if *v < 0 || math.IsNaN(*v) {
			return nil, fmt.Errorf("weight for %s must not be negative, got %g", key, *v)
		}
		result[key] = *v
		sum += *v
	}

	if len(result) == 0 {
		return nil, nil
	}
	if validateSum {
		if len(result) != len(schema.AllMetrics) {
			return nil, fmt.Errorf("custom weights must set all %d metrics, got %d", len(schema.AllMetrics), len(result))
		}
		if math.Abs(sum-1.0) > weightTolerance {
			return nil, fmt.Errorf("custom weights must sum to 1.0, got %.6f", sum)
		}
	}
	return result, nil
}

// processCustomWeights merges the custom weights over the defaults.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	custom, err := ProcessWeightsRawInput(input.Weights, true)
	if err != nil {
		return err
	}
	cfg.Weights = schema.GetDefaultWeights()
	cfg.CustomWeights = custom != nil
	maps.Copy(cfg.Weights, custom)
	return nil
}
