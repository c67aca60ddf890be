package core

import "time"

// Store defines the interface for state management operations.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// Run operations
	CreateRun(env string) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetLatestRun(env string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	// Stage operations
	RecordStage(stage *StageRun) error
	CompleteStage(id string, status RunStatus, rowsAffected int64, errMsg string) error
	GetStagesForRun(runID string) ([]*StageRun, error)

	// Snapshot markers
	SaveSnapshot(info *SnapshotInfo) error
	GetSnapshot(name string) (*SnapshotInfo, error)
	DeleteSnapshot(name string) error
	ListSnapshots() ([]*SnapshotInfo, error)
}

// RunStatus represents the status of a workflow run or stage.
type RunStatus string

// Run and stage status values.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusSkipped   RunStatus = "skipped"
)

// Run represents one execution of the analysis workflow.
type Run struct {
	ID          string     `json:"id" yaml:"id"`
	Environment string     `json:"environment" yaml:"environment"`
	Status      RunStatus  `json:"status" yaml:"status"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// StageRun records one stage of a workflow run.
type StageRun struct {
	ID           string     `json:"id" yaml:"id"`
	RunID        string     `json:"run_id" yaml:"run_id"`
	Stage        Stage      `json:"stage" yaml:"stage"`
	Status       RunStatus  `json:"status" yaml:"status"`
	RowsAffected int64      `json:"rows_affected" yaml:"rows_affected"`
	StartedAt    time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Error        string     `json:"error,omitempty" yaml:"error,omitempty"`
	ExecutionMS  int64      `json:"execution_ms" yaml:"execution_ms"`
}

// Stage names the workflow stages in dependency order.
type Stage string

// Workflow stages.
const (
	StageSchema    Stage = "schema"
	StageInspect   Stage = "inspect"
	StageClean     Stage = "clean"
	StageAggregate Stage = "aggregate"
	StageViews     Stage = "views"
	StageSnapshots Stage = "snapshots"
	StageAnalytics Stage = "analytics"
)

// Stages lists every stage in execution order.
var Stages = []Stage{
	StageSchema, StageInspect, StageClean, StageAggregate,
	StageViews, StageSnapshots, StageAnalytics,
}

// Fingerprint summarizes the base table so snapshot staleness can be detected.
type Fingerprint struct {
	RowCount   int64   `json:"row_count" yaml:"row_count"`
	GoalSum    float64 `json:"goal_sum" yaml:"goal_sum"`
	PledgedSum float64 `json:"pledged_sum" yaml:"pledged_sum"`
	// Checksum is an order-independent hash over every column of every row.
	Checksum string `json:"checksum" yaml:"checksum"`
}

// SnapshotInfo is the computed-at marker of a materialized snapshot.
type SnapshotInfo struct {
	Name       string      `json:"name" yaml:"name"`
	RunID      string      `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	ComputedAt time.Time   `json:"computed_at" yaml:"computed_at"`
	RowCount   int64       `json:"row_count" yaml:"row_count"`
	Source     Fingerprint `json:"source" yaml:"source"`
}

// SnapshotStatus compares a snapshot marker with the current base table.
type SnapshotStatus struct {
	Name    string        `json:"name" yaml:"name"`
	Exists  bool          `json:"exists" yaml:"exists"`
	Info    *SnapshotInfo `json:"info,omitempty" yaml:"info,omitempty"`
	Current Fingerprint   `json:"current" yaml:"current"`
	Stale   bool          `json:"stale" yaml:"stale"`
}
