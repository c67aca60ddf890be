package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// RecordStage inserts a stage run. ID and StartedAt are filled in when empty.
func (s *SQLiteStore) RecordStage(stage *core.StageRun) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if stage.ID == "" {
		stage.ID = generateID()
	}
	if stage.StartedAt.IsZero() {
		stage.StartedAt = time.Now().UTC()
	}
	if stage.Status == "" {
		stage.Status = core.RunStatusRunning
	}

	_, err := s.db.ExecContext(ctx(),
		`INSERT INTO stage_runs (id, run_id, stage, status, rows_affected, started_at, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stage.ID, stage.RunID, string(stage.Stage), string(stage.Status),
		stage.RowsAffected, stage.StartedAt, nullString(stage.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to record stage %s: %w", stage.Stage, err)
	}
	return nil
}

// CompleteStage finishes a stage run and stores its duration.
func (s *SQLiteStore) CompleteStage(id string, status core.RunStatus, rowsAffected int64, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var startedAt time.Time
	err := s.db.QueryRowContext(ctx(), `SELECT started_at FROM stage_runs WHERE id = ?`, id).Scan(&startedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("stage run not found: %s", id)
	}
	if err != nil {
		return fmt.Errorf("failed to read stage run: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx(),
		`UPDATE stage_runs
		 SET status = ?, rows_affected = ?, completed_at = ?, error = ?, execution_ms = ?
		 WHERE id = ?`,
		string(status), rowsAffected, now, nullString(errMsg), now.Sub(startedAt).Milliseconds(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete stage: %w", err)
	}
	return nil
}

// GetStagesForRun returns all stage runs of a run in start order.
func (s *SQLiteStore) GetStagesForRun(runID string) ([]*core.StageRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT id, run_id, stage, status, rows_affected, started_at, completed_at, error, execution_ms
		 FROM stage_runs WHERE run_id = ? ORDER BY started_at, rowid`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stages []*core.StageRun
	for rows.Next() {
		sr := &core.StageRun{}
		var stage, status string
		var completedAt sql.NullTime
		var errMsg sql.NullString
		if err := rows.Scan(&sr.ID, &sr.RunID, &stage, &status, &sr.RowsAffected,
			&sr.StartedAt, &completedAt, &errMsg, &sr.ExecutionMS); err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		sr.Stage = core.Stage(stage)
		sr.Status = core.RunStatus(status)
		sr.CompletedAt = nullTime(completedAt)
		sr.Error = errMsg.String
		stages = append(stages, sr)
	}
	return stages, rows.Err()
}
