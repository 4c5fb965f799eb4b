package schema

import "time"

// RunKind distinguishes the commands that open a tracked run.
type RunKind string

// All run kinds recorded by the run store.
const (
	TrainRun    RunKind = "train"
	ScoreRun    RunKind = "score"
	PipelineRun RunKind = "pipeline"
)

// TrainingRunRecord represents a row from the integrity_runs table.
type TrainingRunRecord struct {
	RunID         int64
	Kind          string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	ModelID       *string
	TrainRows     int32
	TestRows      int32
	TestR2        *float64
	TestRMSE      *float64
	ConfigParams  *string
}

// RunOutcome carries the values written when a run completes.
type RunOutcome struct {
	EndTime   time.Time
	ModelID   string
	TrainRows int
	TestRows  int
	TestR2    *float64
	TestRMSE  *float64
}
