package schema

// Custom string types for type safety.
type (
	// MetricKey represents one of the five survey metrics.
	MetricKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string

	// ChartKind represents the kind of bar chart being rendered.
	ChartKind string
)

// Metric keys in their canonical order.
const (
	Honesty        MetricKey = "honesty"
	Transparency   MetricKey = "transparency"
	Accountability MetricKey = "accountability"
	Ethics         MetricKey = "ethics"
	Consistency    MetricKey = "consistency"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All run store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// All chart kinds supported.
const (
	ScoreChart      ChartKind = "scores"
	ImportanceChart ChartKind = "importance"
)

// Pipeline defaults.
const (
	DefaultDataPath     = "data/kenya_rideshare_data.csv"
	DefaultModelPath    = "models/integrity_model.parquet"
	DefaultTargetColumn = "target"
	DefaultIDColumn     = "Platform"
	DefaultTestSize     = 0.2
	DefaultSeed         = 42
	DefaultRidge        = 1e-6
	UnknownCategory     = "Unknown"
)

// AllMetrics lists the metric keys in the order the scorer consumes them.
var AllMetrics = []MetricKey{Honesty, Transparency, Accountability, Ethics, Consistency}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid run store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// GetDefaultWeights returns a fresh copy of the composite weights.
// The values sum to 1.0.
func GetDefaultWeights() Weights {
	return Weights{
		Honesty:        0.2,
		Transparency:   0.2,
		Accountability: 0.3,
		Ethics:         0.2,
		Consistency:    0.1,
	}
}
