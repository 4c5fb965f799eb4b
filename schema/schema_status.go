package schema

import "time"

// RunStoreStatus represents the status of the run store.
type RunStoreStatus struct {
	Backend             string           `json:"backend"`
	Connected           bool             `json:"connected"`
	TotalRuns           int              `json:"total_runs"`
	LastRunID           int64            `json:"last_run_id"`
	LastRunTime         time.Time        `json:"last_run_time"`
	OldestRunTime       time.Time        `json:"oldest_run_time"`
	TotalPlatformScores int              `json:"total_platform_scores"`
	TableSizes          map[string]int64 `json:"table_sizes"`
}

// PlatformScoreRecord represents a row from the integrity_platform_scores table.
type PlatformScoreRecord struct {
	RunID          int64
	Platform       string
	ScoredAt       time.Time
	Honesty        float64
	Transparency   float64
	Accountability float64
	Ethics         float64
	Consistency    float64
	Score          float64
	Label          string
}
