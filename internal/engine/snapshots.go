package engine

// snapshots.go - Materialized snapshot tables and their staleness markers

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// EnsureSnapshot creates the snapshot table only if it does not exist yet.
// It never overwrites: the returned bool reports whether a build happened.
// The returned info is never nil; an existing table without a marker yields
// a marker-less info carrying only the name.
func (e *Engine) EnsureSnapshot(ctx context.Context, name string) (*core.SnapshotInfo, bool, error) {
	return e.ensureSnapshot(ctx, name, "")
}

func (e *Engine) ensureSnapshot(ctx context.Context, name, runID string) (*core.SnapshotInfo, bool, error) {
	obj, err := e.lookup(name, core.ModeSnapshot)
	if err != nil {
		return nil, false, err
	}
	if err := e.prepare(ctx); err != nil {
		return nil, false, err
	}

	exists, err := e.db.TableExists(ctx, obj.Name)
	if err != nil {
		return nil, false, err
	}
	if exists {
		e.logger.Debug("snapshot exists, skipping build", "snapshot", obj.Name)
		info, err := e.store.GetSnapshot(obj.Name)
		if err != nil {
			return nil, false, err
		}
		if info == nil {
			// Built outside this state store; without a marker it reads as stale.
			e.logger.Warn("snapshot has no marker", "snapshot", obj.Name)
			info = &core.SnapshotInfo{Name: obj.Name}
		}
		return info, false, nil
	}

	info, err := e.buildSnapshot(ctx, obj, runID,
		fmt.Sprintf("CREATE TABLE %s AS %s", obj.Name, obj.SQL))
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// RefreshSnapshot drops and rebuilds the snapshot table in one transaction.
func (e *Engine) RefreshSnapshot(ctx context.Context, name string) (*core.SnapshotInfo, error) {
	return e.refreshSnapshot(ctx, name, "")
}

func (e *Engine) refreshSnapshot(ctx context.Context, name, runID string) (*core.SnapshotInfo, error) {
	obj, err := e.lookup(name, core.ModeSnapshot)
	if err != nil {
		return nil, err
	}
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	return e.buildSnapshot(ctx, obj, runID,
		fmt.Sprintf("DROP TABLE IF EXISTS %s", obj.Name),
		fmt.Sprintf("CREATE TABLE %s AS %s", obj.Name, obj.SQL))
}

// buildSnapshot fingerprints the base table before the build transaction.
// A write landing between the two leaves a marker older than the snapshot
// contents, so the snapshot reads as stale rather than falsely fresh.
func (e *Engine) buildSnapshot(ctx context.Context, obj core.DerivedObject, runID string, stmts ...string) (*core.SnapshotInfo, error) {
	start := time.Now()
	source, err := e.Fingerprint(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := e.db.ExecTx(ctx, stmts...); err != nil {
		return nil, fmt.Errorf("failed to build snapshot %s: %w", obj.Name, err)
	}

	rowCount, err := e.count(ctx, obj.Name)
	if err != nil {
		return nil, err
	}

	info := &core.SnapshotInfo{
		Name:       obj.Name,
		RunID:      runID,
		ComputedAt: time.Now().UTC(),
		RowCount:   rowCount,
		Source:     source,
	}
	if err := e.store.SaveSnapshot(info); err != nil {
		return nil, err
	}

	e.logger.Info("snapshot built",
		"snapshot", obj.Name,
		"rows", rowCount,
		"duration_ms", time.Since(start).Milliseconds())
	return info, nil
}

// Fingerprint summarizes the current base table: row count, goal and pledged
// sums, and a checksum that changes when any value in any row changes.
func (e *Engine) Fingerprint(ctx context.Context) (core.Fingerprint, error) {
	if err := e.prepare(ctx); err != nil {
		return core.Fingerprint{}, err
	}

	var (
		rows                    int64
		goalCents, pledgedCents int64
		checksum                uint64
	)
	err := e.queryAll(ctx, fingerprintSQL(e.db.Dialect(), e.table), func(r *core.Rows) error {
		digest, goal, pledged, err := scanDigest(r)
		if err != nil {
			return err
		}
		rows++
		goalCents += int64(math.Round(goal * 100))
		pledgedCents += int64(math.Round(pledged * 100))
		checksum += digest
		return nil
	})
	if err != nil {
		return core.Fingerprint{}, fmt.Errorf("failed to fingerprint %s: %w", e.table, err)
	}
	return core.Fingerprint{
		RowCount:   rows,
		GoalSum:    float64(goalCents) / 100,
		PledgedSum: float64(pledgedCents) / 100,
		Checksum:   fmt.Sprintf("%016x", checksum),
	}, nil
}

// SnapshotStatus reports whether a snapshot exists and whether the base
// table changed since it was computed. A snapshot without a marker is stale.
func (e *Engine) SnapshotStatus(ctx context.Context, name string) (*core.SnapshotStatus, error) {
	obj, err := e.lookup(name, core.ModeSnapshot)
	if err != nil {
		return nil, err
	}
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	status := &core.SnapshotStatus{Name: obj.Name}
	if status.Exists, err = e.db.TableExists(ctx, obj.Name); err != nil {
		return nil, err
	}
	if status.Info, err = e.store.GetSnapshot(obj.Name); err != nil {
		return nil, err
	}
	if status.Current, err = e.Fingerprint(ctx); err != nil {
		return nil, err
	}

	status.Stale = !status.Exists || status.Info == nil || status.Info.Source != status.Current
	return status, nil
}

// SnapshotStatuses reports the status of every snapshot.
func (e *Engine) SnapshotStatuses(ctx context.Context) ([]*core.SnapshotStatus, error) {
	var out []*core.SnapshotStatus
	for _, name := range e.ObjectNames(core.ModeSnapshot) {
		st, err := e.SnapshotStatus(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// ReadSnapshot returns the rows of a snapshot table.
func (e *Engine) ReadSnapshot(ctx context.Context, name string) (*core.ResultSet, error) {
	obj, err := e.lookup(name, core.ModeSnapshot)
	if err != nil {
		return nil, err
	}
	if err := e.requireSnapshot(ctx, obj.Name); err != nil {
		return nil, err
	}
	return e.readAll(ctx, fmt.Sprintf("SELECT * FROM %s", obj.Name))
}

// KPIs reads the single row of the project_kpis snapshot.
func (e *Engine) KPIs(ctx context.Context) (*core.KPISummary, error) {
	if err := e.requireSnapshot(ctx, SnapshotProjectKPIs); err != nil {
		return nil, err
	}

	var kpi core.KPISummary
	var rate, avgPledged, avgGoal sql.NullFloat64
	query := fmt.Sprintf("SELECT total_projects, success_rate, avg_pledged, avg_goal FROM %s", SnapshotProjectKPIs)
	if err := e.queryRow(ctx, query, &kpi.TotalProjects, &rate, &avgPledged, &avgGoal); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SnapshotProjectKPIs, err)
	}
	kpi.SuccessRate = rate.Float64
	kpi.AvgPledged = avgPledged.Float64
	kpi.AvgGoal = avgGoal.Float64
	return &kpi, nil
}

// Anomalies reads the anomalies snapshot ordered by id.
func (e *Engine) Anomalies(ctx context.Context) ([]core.Project, error) {
	if err := e.requireSnapshot(ctx, SnapshotAnomalies); err != nil {
		return nil, err
	}

	out := []core.Project{}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", projectColumns(e.db.Dialect()), SnapshotAnomalies)
	err := e.queryAll(ctx, query, func(rows *core.Rows) error {
		p, err := scanProject(rows)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SnapshotAnomalies, err)
	}
	return out, nil
}

func (e *Engine) requireSnapshot(ctx context.Context, name string) error {
	if err := e.ensureDBConnected(ctx); err != nil {
		return err
	}
	exists, err := e.db.TableExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return &core.MissingObjectError{Kind: "snapshot", Name: name}
	}
	return nil
}
