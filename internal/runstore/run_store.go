package runstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for run tracking.
const (
	runsTable           = "integrity_runs"
	platformScoresTable = "integrity_platform_scores"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// openDB opens a connection pool for the backend without verifying it.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetRunStoreDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		// and to keep ":memory:" databases alive across calls.
		db.SetMaxOpenConns(1)
		return db, "sqlite", nil

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil {
			return nil, "", fmt.Errorf("invalid MySQL connection string: %w. Expected format: user:password@tcp(host:port)/dbname", err)
		}
		// DATETIME columns are scanned into time.Time
		cfg.ParseTime = true
		db, err := sql.Open("mysql", cfg.FormatDSN())
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, "mysql", nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=... user=...", err)
		}
		return db, "pgx", nil

	default:
		return nil, "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{platformScoresTable, getCreatePlatformScoresQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for integrity_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				kind VARCHAR(32) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				model_id VARCHAR(64),
				train_rows INT NOT NULL DEFAULT 0,
				test_rows INT NOT NULL DEFAULT 0,
				test_r2 DOUBLE,
				test_rmse DOUBLE,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				kind TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				model_id TEXT,
				train_rows INT NOT NULL DEFAULT 0,
				test_rows INT NOT NULL DEFAULT 0,
				test_r2 DOUBLE PRECISION,
				test_rmse DOUBLE PRECISION,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				kind TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				model_id TEXT,
				train_rows INTEGER NOT NULL DEFAULT 0,
				test_rows INTEGER NOT NULL DEFAULT 0,
				test_r2 REAL,
				test_rmse REAL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreatePlatformScoresQuery returns the CREATE TABLE query for integrity_platform_scores.
func getCreatePlatformScoresQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(platformScoresTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				platform VARCHAR(255) NOT NULL,
				scored_at DATETIME(6) NOT NULL,
				honesty DOUBLE NOT NULL,
				transparency DOUBLE NOT NULL,
				accountability DOUBLE NOT NULL,
				ethics DOUBLE NOT NULL,
				consistency DOUBLE NOT NULL,
				score DOUBLE NOT NULL,
				label VARCHAR(32) NOT NULL,
				PRIMARY KEY (run_id, platform)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				platform TEXT NOT NULL,
				scored_at TIMESTAMPTZ NOT NULL,
				honesty DOUBLE PRECISION NOT NULL,
				transparency DOUBLE PRECISION NOT NULL,
				accountability DOUBLE PRECISION NOT NULL,
				ethics DOUBLE PRECISION NOT NULL,
				consistency DOUBLE PRECISION NOT NULL,
				score DOUBLE PRECISION NOT NULL,
				label TEXT NOT NULL,
				PRIMARY KEY (run_id, platform)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				platform TEXT NOT NULL,
				scored_at TEXT NOT NULL,
				honesty REAL NOT NULL,
				transparency REAL NOT NULL,
				accountability REAL NOT NULL,
				ethics REAL NOT NULL,
				consistency REAL NOT NULL,
				score REAL NOT NULL,
				label TEXT NOT NULL,
				PRIMARY KEY (run_id, platform)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(kind schema.RunKind, startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (kind, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, string(kind), startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (kind, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, string(kind), formatTime(startTime, rs.backend), string(configJSON))
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, outcome schema.RunOutcome) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	// First, get the start_time to calculate duration
	row := rs.db.QueryRow(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`,
		quotedTableName, placeholder(rs.backend, 1)), runID)
	startTime, err := scanTime(row, rs.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := outcome.EndTime.Sub(startTime).Milliseconds()

	var modelID any
	if outcome.ModelID != "" {
		modelID = outcome.ModelID
	}

	updateQuery := fmt.Sprintf(
		`UPDATE %s SET end_time = %s, run_duration_ms = %s, model_id = %s, train_rows = %s, test_rows = %s, test_r2 = %s, test_rmse = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3), placeholder(rs.backend, 4),
		placeholder(rs.backend, 5), placeholder(rs.backend, 6), placeholder(rs.backend, 7), placeholder(rs.backend, 8),
	)
	args := []any{
		formatTime(outcome.EndTime, rs.backend), durationMs, modelID, outcome.TrainRows,
		outcome.TestRows, outcome.TestR2, outcome.TestRMSE, runID,
	}

	if _, err := rs.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}

// RecordPlatformScore stores one scored platform for a run.
func (rs *RunStoreImpl) RecordPlatformScore(runID int64, scoredAt time.Time, score schema.PlatformScore) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(platformScoresTable, rs.backend)

	values := make([]string, 10)
	for i := range values {
		values[i] = placeholder(rs.backend, i+1)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, platform, scored_at, honesty, transparency,
		                accountability, ethics, consistency, score, label)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
	`, quotedTableName, values[0], values[1], values[2], values[3], values[4],
		values[5], values[6], values[7], values[8], values[9])

	label := score.Label
	if label == "" {
		label = contract.GetPlainLabel(score.Score)
	}
	m := score.Metrics
	args := []any{
		runID, score.Platform, formatTime(scoredAt, rs.backend), m.Honesty, m.Transparency,
		m.Accountability, m.Ethics, m.Consistency, score.Score, label,
	}

	if _, err := rs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert platform score: %w", err)
	}

	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStoreStatus, error) {
	status := schema.RunStoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	runsTableName := quoteTableName(runsTable, rs.backend)

	// Get total runs
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTableName))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		row = rs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", runsTableName))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTableName))
		lastRunTime, err := scanTime(row, rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		// Get oldest run time
		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTableName))
		oldestRunTime, err := scanTime(row, rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime
	}

	// Get table sizes
	for _, table := range []string{runsTable, platformScoresTable} {
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalPlatformScores = int(status.TableSizes[platformScoresTable])

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.TrainingRunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, kind, start_time, end_time, run_duration_ms, model_id,
		train_rows, test_rows, test_r2, test_rmse, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.TrainingRunRecord

	for rows.Next() {
		var record schema.TrainingRunRecord
		var startTime, endTime timeScanner
		startTime.backend, endTime.backend = rs.backend, rs.backend

		if err := rows.Scan(&record.RunID, &record.Kind, &startTime, &endTime, &record.RunDurationMs,
			&record.ModelID, &record.TrainRows, &record.TestRows, &record.TestR2, &record.TestRMSE,
			&record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		record.StartTime = startTime.value
		if endTime.valid {
			end := endTime.value
			record.EndTime = &end
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return results, nil
}

// GetAllPlatformScores retrieves all platform scores from the store.
func (rs *RunStoreImpl) GetAllPlatformScores() ([]schema.PlatformScoreRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, platform, scored_at, honesty, transparency,
		accountability, ethics, consistency, score, label
		FROM %s ORDER BY run_id, platform`, quoteTableName(platformScoresTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query platform scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PlatformScoreRecord

	for rows.Next() {
		var record schema.PlatformScoreRecord
		scoredAt := timeScanner{backend: rs.backend}

		if err := rows.Scan(&record.RunID, &record.Platform, &scoredAt, &record.Honesty,
			&record.Transparency, &record.Accountability, &record.Ethics, &record.Consistency,
			&record.Score, &record.Label); err != nil {
			return nil, fmt.Errorf("failed to scan platform score: %w", err)
		}
		record.ScoredAt = scoredAt.value

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating platform scores: %w", err)
	}

	return results, nil
}
