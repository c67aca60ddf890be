package state

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// SaveSnapshot stores or replaces the marker for a snapshot.
func (s *SQLiteStore) SaveSnapshot(info *core.SnapshotInfo) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.ExecContext(ctx(), `
		INSERT INTO snapshots (name, run_id, computed_at, row_count, source_rows, source_goal_sum, source_pledged_sum, source_checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			run_id = excluded.run_id,
			computed_at = excluded.computed_at,
			row_count = excluded.row_count,
			source_rows = excluded.source_rows,
			source_goal_sum = excluded.source_goal_sum,
			source_pledged_sum = excluded.source_pledged_sum,
			source_checksum = excluded.source_checksum
	`, info.Name, nullString(info.RunID), info.ComputedAt.UTC(), info.RowCount,
		info.Source.RowCount, info.Source.GoalSum, info.Source.PledgedSum, info.Source.Checksum)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", info.Name, err)
	}
	return nil
}

// GetSnapshot returns the marker of a snapshot, or nil if none was recorded.
func (s *SQLiteStore) GetSnapshot(name string) (*core.SnapshotInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	info, err := scanSnapshot(s.db.QueryRowContext(ctx(), `
		SELECT name, run_id, computed_at, row_count, source_rows, source_goal_sum, source_pledged_sum, source_checksum
		FROM snapshots WHERE name = ?
	`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", name, err)
	}
	return info, nil
}

// DeleteSnapshot removes a snapshot marker.
func (s *SQLiteStore) DeleteSnapshot(name string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if _, err := s.db.ExecContext(ctx(), `DELETE FROM snapshots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}
	return nil
}

// ListSnapshots returns all snapshot markers ordered by name.
func (s *SQLiteStore) ListSnapshots() ([]*core.SnapshotInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx(), `
		SELECT name, run_id, computed_at, row_count, source_rows, source_goal_sum, source_pledged_sum, source_checksum
		FROM snapshots ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []*core.SnapshotInfo
	for rows.Next() {
		info, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func scanSnapshot(row rowScanner) (*core.SnapshotInfo, error) {
	info := &core.SnapshotInfo{}
	var runID sql.NullString
	if err := row.Scan(&info.Name, &runID, &info.ComputedAt, &info.RowCount,
		&info.Source.RowCount, &info.Source.GoalSum, &info.Source.PledgedSum, &info.Source.Checksum); err != nil {
		return nil, err
	}
	info.RunID = runID.String
	return info, nil
}
