// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/rideintegrity/schema"
)

// StoreManager defines the interface for managing persistence stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking pipeline runs and the scores they produce.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(kind schema.RunKind, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, outcome schema.RunOutcome) error

	// RecordPlatformScore stores one scored platform for a run
	RecordPlatformScore(runID int64, scoredAt time.Time, score schema.PlatformScore) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStoreStatus, error)

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.TrainingRunRecord, error)

	// GetAllPlatformScores returns every recorded platform score ordered by run
	GetAllPlatformScores() ([]schema.PlatformScoreRecord, error)

	// Close closes the underlying connection
	Close() error
}
