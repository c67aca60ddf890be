package engine

import (
	"context"
	"testing"

	"github.com/leapstack-labs/crowdstat/internal/testutil"
	"github.com/leapstack-labs/crowdstat/pkg/adapter"
	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Complete(t *testing.T) {
	ctx := context.Background()
	e := newSeededEngine(t, dirtyRows()...)

	res, err := e.Run(ctx, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, core.RunStatusCompleted, res.Run.Status)
	assert.NotNil(t, res.Run.CompletedAt)
	assert.Equal(t, int64(9), res.Inspection.RowCount)
	assert.Equal(t, int64(5), res.Clean.Remaining)
	require.NotNil(t, res.Report)
	assert.Len(t, res.Views, 3)
	assert.Len(t, res.Snapshots, 2)
	assert.Equal(t, res.Report.SuccessByCategory, res.Rollup)
	assert.Equal(t, 5, res.RankedRows)
	for _, s := range res.Snapshots {
		assert.Equal(t, res.Run.ID, s.RunID)
	}

	stages, err := e.RunStages(res.Run.ID)
	require.NoError(t, err)
	require.Len(t, stages, len(core.Stages))
	for i, s := range stages {
		assert.Equal(t, core.Stages[i], s.Stage)
		assert.Equal(t, core.RunStatusCompleted, s.Status)
	}
	assert.Equal(t, int64(6), stages[2].RowsAffected, "clean stage records affected rows")

	kpi, err := e.KPIs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), kpi.TotalProjects)
}

func TestRun_RefreshRebuildsSnapshots(t *testing.T) {
	ctx := context.Background()
	e := newSeededEngine(t, exampleRows()...)

	_, err := e.Run(ctx, RunOptions{})
	require.NoError(t, err)

	insert(t, e, project(4, "late", "C", 5_000_000, "successful"))

	_, err = e.Run(ctx, RunOptions{})
	require.NoError(t, err)
	anomalies, err := e.Anomalies(ctx)
	require.NoError(t, err)
	assert.Empty(t, anomalies, "guarded create keeps the old snapshot")

	_, err = e.Run(ctx, RunOptions{Refresh: true})
	require.NoError(t, err)
	anomalies, err = e.Anomalies(ctx)
	require.NoError(t, err)
	assert.Len(t, anomalies, 1)

	runs, err := e.Runs(10)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRun_SkipClean(t *testing.T) {
	ctx := context.Background()

	t.Run("refused on dirty table", func(t *testing.T) {
		e := newSeededEngine(t, dirtyRows()...)

		res, err := e.Run(ctx, RunOptions{SkipClean: true})
		require.ErrorIs(t, err, ErrInvariantsViolated)
		assert.Equal(t, core.RunStatusFailed, res.Run.Status)
		assert.Contains(t, res.Run.Error, "stage clean")

		stages, err := e.RunStages(res.Run.ID)
		require.NoError(t, err)
		require.Len(t, stages, 3)
		assert.Equal(t, core.RunStatusFailed, stages[2].Status)
		assert.Nil(t, res.Report, "later stages never ran")
	})

	t.Run("allowed on clean table", func(t *testing.T) {
		e := newSeededEngine(t, exampleRows()...)

		res, err := e.Run(ctx, RunOptions{SkipClean: true})
		require.NoError(t, err)
		assert.Nil(t, res.Clean)

		stages, err := e.RunStages(res.Run.ID)
		require.NoError(t, err)
		assert.Equal(t, core.RunStatusSkipped, stages[2].Status)
	})
}

func TestRun_MissingTableFails(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.True(t, core.IsMissingObject(err))
	assert.Equal(t, core.RunStatusFailed, res.Run.Status)

	stages, err := e.RunStages(res.Run.ID)
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, core.StageSchema, stages[0].Stage)
	assert.Equal(t, core.RunStatusFailed, stages[0].Status)
}

func TestRun_LogsStages(t *testing.T) {
	logger, logs := testutil.NewBufferLogger()
	e, err := New(Config{
		AdapterConfig: adapter.Config{Type: "duckdb", Path: ":memory:"},
		Logger:        logger,
	})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	_, err = e.Run(context.Background(), RunOptions{})
	require.Error(t, err)

	assert.True(t, logs.Contains("msg=\"starting run\""))
	assert.True(t, logs.Contains("msg=\"stage failed\" stage=schema"))
	assert.True(t, logs.Contains("msg=\"run failed\""))
}

func TestPlanStages(t *testing.T) {
	plan, err := PlanStages()
	require.NoError(t, err)
	assert.Equal(t, core.Stages, plan)

	plan, err = PlanStages(core.StageAnalytics)
	require.NoError(t, err)
	assert.Equal(t, []core.Stage{core.StageSchema, core.StageInspect, core.StageClean, core.StageAggregate, core.StageAnalytics}, plan)

	_, err = PlanStages("deploy")
	assert.Error(t, err)
}

func TestRun_SelectedStages(t *testing.T) {
	ctx := context.Background()
	e := newSeededEngine(t, dirtyRows()...)

	res, err := e.Run(ctx, RunOptions{Stages: []core.Stage{core.StageViews}})
	require.NoError(t, err)
	assert.Len(t, res.Views, 3)
	assert.NotNil(t, res.Clean, "views depend on cleaning")
	assert.Nil(t, res.Report)
	assert.Empty(t, res.Snapshots)

	stages, err := e.RunStages(res.Run.ID)
	require.NoError(t, err)
	require.Len(t, stages, 4)
	assert.Equal(t, core.StageViews, stages[3].Stage)

	_, err = e.Run(ctx, RunOptions{Stages: []core.Stage{"deploy"}})
	require.Error(t, err)
	runs, err := e.Runs(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1, "an invalid plan records no run")
}
