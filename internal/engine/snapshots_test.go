package engine

import (
	"context"
	"testing"

	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSnapshot_Guarded(t *testing.T) {
	ctx := context.Background()
	e := newSeededEngine(t, exampleRows()...)

	_, err := e.KPIs(ctx)
	assert.True(t, core.IsMissingObject(err))

	info, created, err := e.EnsureSnapshot(ctx, SnapshotProjectKPIs)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), info.RowCount)
	assert.Equal(t, int64(3), info.Source.RowCount)
	assert.Equal(t, 3000.0, info.Source.GoalSum)
	assert.Equal(t, 160.0, info.Source.PledgedSum)
	assert.Len(t, info.Source.Checksum, 16)

	kpi, err := e.KPIs(ctx)
	require.NoError(t, err)
	assert.Equal(t, &core.KPISummary{TotalProjects: 3, SuccessRate: 66.67, AvgPledged: 53.33, AvgGoal: 1000}, kpi)

	// Mutate the base table; the guarded create does not overwrite.
	insert(t, e, project(4, "late", "C", 1000, "successful"))

	again, created, err := e.EnsureSnapshot(ctx, SnapshotProjectKPIs)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, info.ComputedAt.Equal(again.ComputedAt))

	kpi, err = e.KPIs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), kpi.TotalProjects)
}

func TestSnapshotStatus_StaleAndRefresh(t *testing.T) {
	ctx := context.Background()
	e := newSeededEngine(t, exampleRows()...)

	status, err := e.SnapshotStatus(ctx, SnapshotProjectKPIs)
	require.NoError(t, err)
	assert.False(t, status.Exists)
	assert.Nil(t, status.Info)
	assert.True(t, status.Stale)

	_, _, err = e.EnsureSnapshot(ctx, SnapshotProjectKPIs)
	require.NoError(t, err)

	status, err = e.SnapshotStatus(ctx, SnapshotProjectKPIs)
	require.NoError(t, err)
	assert.True(t, status.Exists)
	assert.False(t, status.Stale)

	insert(t, e, project(4, "late", "C", 1000, "successful"))

	status, err = e.SnapshotStatus(ctx, SnapshotProjectKPIs)
	require.NoError(t, err)
	assert.True(t, status.Stale)
	assert.Equal(t, int64(4), status.Current.RowCount)

	info, err := e.RefreshSnapshot(ctx, SnapshotProjectKPIs)
	require.NoError(t, err)
	assert.Equal(t, int64(4), info.Source.RowCount)

	kpi, err := e.KPIs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), kpi.TotalProjects)
	assert.Equal(t, 75.0, kpi.SuccessRate)

	statuses, err := e.SnapshotStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, SnapshotAnomalies, statuses[0].Name)
	assert.True(t, statuses[0].Stale)
	assert.False(t, statuses[1].Stale)
}

func TestSnapshotStatus_DetectsValueChanges(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		update string
	}{
		{name: "state", update: "UPDATE projects SET state = 'successful' WHERE id = 2"},
		{name: "main category", update: "UPDATE projects SET main_category = 'B' WHERE id = 1"},
		{name: "currency", update: "UPDATE projects SET currency = 'EUR' WHERE id = 3"},
		{name: "country", update: "UPDATE projects SET country = 'GB' WHERE id = 3"},
		{name: "name to null", update: "UPDATE projects SET name = NULL WHERE id = 1"},
		{name: "swap pledged", update: "UPDATE projects SET pledged = CASE id WHEN 1 THEN 50 WHEN 2 THEN 100 ELSE pledged END"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newSeededEngine(t, exampleRows()...)

			_, _, err := e.EnsureSnapshot(ctx, SnapshotProjectKPIs)
			require.NoError(t, err)

			exec(t, e, tt.update)

			status, err := e.SnapshotStatus(ctx, SnapshotProjectKPIs)
			require.NoError(t, err)
			assert.True(t, status.Stale)
			assert.Equal(t, int64(3), status.Current.RowCount)
		})
	}
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	ctx := context.Background()
	rows := exampleRows()

	forward := newSeededEngine(t, rows...)
	reversed := newSeededEngine(t, rows[2], rows[1], rows[0])

	a, err := forward.Fingerprint(ctx)
	require.NoError(t, err)
	b, err := reversed.Fingerprint(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEnsureSnapshot_ExistingTableWithoutMarker(t *testing.T) {
	ctx := context.Background()
	e := newSeededEngine(t, exampleRows()...)
	exec(t, e, "CREATE TABLE project_kpis AS SELECT 1 AS total_projects")

	info, created, err := e.EnsureSnapshot(ctx, SnapshotProjectKPIs)
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, info)
	assert.Equal(t, SnapshotProjectKPIs, info.Name)
	assert.True(t, info.ComputedAt.IsZero())

	status, err := e.SnapshotStatus(ctx, SnapshotProjectKPIs)
	require.NoError(t, err)
	assert.True(t, status.Exists)
	assert.Nil(t, status.Info)
	assert.True(t, status.Stale)
}

func TestAnomalies(t *testing.T) {
	ctx := context.Background()
	rows := []row{
		project(1, "normal", "A", 100, "successful"),
		project(2, "huge pledge", "A", 3_000_000, "successful"),
		project(3, "at pledge limit", "A", 2_000_000, "successful"),
		project(4, "huge goal", "B", 10, "failed"),
		project(5, "at goal limit", "B", 10, "failed"),
	}
	rows[3].goal = num(5_000_000)
	rows[4].goal = num(1_000_000)
	e := newSeededEngine(t, rows...)

	_, err := e.Anomalies(ctx)
	assert.True(t, core.IsMissingObject(err))

	info, created, err := e.EnsureSnapshot(ctx, SnapshotAnomalies)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(2), info.RowCount)

	got, err := e.Anomalies(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "huge pledge", got[0].Name)
	assert.Equal(t, "huge goal", got[1].Name)
	assert.Equal(t, 5_000_000.0, got[1].Goal)

	// Snapshot semantics: later anomalies appear only after a refresh.
	insert(t, e, project(6, "late", "C", 9_000_000, "successful"))
	got, err = e.Anomalies(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = e.RefreshSnapshot(ctx, SnapshotAnomalies)
	require.NoError(t, err)
	got, err = e.Anomalies(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	rs, err := e.ReadSnapshot(ctx, SnapshotAnomalies)
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 3)
}

func TestSnapshot_Unknown(t *testing.T) {
	ctx := context.Background()
	e := newSeededEngine(t, exampleRows()...)

	_, _, err := e.EnsureSnapshot(ctx, ViewSuccessfulProjects)
	assert.Error(t, err)
	_, err = e.RefreshSnapshot(ctx, "nope")
	assert.Error(t, err)
	_, err = e.SnapshotStatus(ctx, "nope")
	assert.Error(t, err)
}
