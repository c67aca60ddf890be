package engine

// run.go - Execution orchestration for the full workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/crowdstat/internal/dag"
	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// RunOptions controls a workflow run.
type RunOptions struct {
	// Refresh rebuilds snapshots instead of the guarded create.
	Refresh bool
	// SkipClean skips the cleaning stage. Refused when the table violates
	// the cleaning invariants.
	SkipClean bool
	// Stages limits the run to these stages and the stages they depend on.
	// Empty runs every stage.
	Stages []core.Stage
}

// RunResult collects the output of every stage of a run.
type RunResult struct {
	Run        *core.Run              `json:"run" yaml:"run"`
	Inspection *core.InspectionReport `json:"inspection,omitempty" yaml:"inspection,omitempty"`
	Clean      *core.CleanReport      `json:"clean,omitempty" yaml:"clean,omitempty"`
	Report     *core.Report           `json:"report,omitempty" yaml:"report,omitempty"`
	Views      []string               `json:"views,omitempty" yaml:"views,omitempty"`
	Snapshots  []*core.SnapshotInfo   `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
	Rollup     []core.SuccessRate     `json:"rollup,omitempty" yaml:"rollup,omitempty"`
	RankedRows int                    `json:"ranked_rows" yaml:"ranked_rows"`
}

// ErrInvariantsViolated is returned when cleaning is skipped on a dirty table.
var ErrInvariantsViolated = errors.New("base table violates cleaning invariants")

// errStageSkipped marks a stage that ran its checks but did no work.
var errStageSkipped = errors.New("stage skipped")

// Run executes every stage in dependency order and records the run and its
// stages in the state store. The first failing stage aborts the run.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	plan, err := PlanStages(opts.Stages...)
	if err != nil {
		return nil, err
	}
	e.logger.Info("starting run", "environment", e.environment, "table", e.table, "refresh", opts.Refresh, "stages", len(plan))

	run, err := e.store.CreateRun(e.environment)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	e.logger.Debug("created run", "run_id", run.ID)

	res := &RunResult{Run: run}
	runErr := e.runStages(ctx, run.ID, plan, opts, res)

	if runErr != nil {
		e.logger.Info("run failed", "run_id", run.ID, "error", runErr.Error())
		_ = e.store.CompleteRun(run.ID, core.RunStatusFailed, runErr.Error())
	} else {
		e.logger.Info("run completed", "run_id", run.ID)
		_ = e.store.CompleteRun(run.ID, core.RunStatusCompleted, "")
	}

	if finished, err := e.store.GetRun(run.ID); err == nil {
		res.Run = finished
	}
	return res, runErr
}

// stageDeps declares what each stage needs, in declaration order.
var stageDeps = []struct {
	stage core.Stage
	deps  []core.Stage
}{
	{core.StageSchema, nil},
	{core.StageInspect, []core.Stage{core.StageSchema}},
	{core.StageClean, []core.Stage{core.StageInspect}},
	{core.StageAggregate, []core.Stage{core.StageClean}},
	{core.StageViews, []core.Stage{core.StageClean}},
	{core.StageSnapshots, []core.Stage{core.StageClean}},
	// The rollup is verified against the aggregation.
	{core.StageAnalytics, []core.Stage{core.StageAggregate}},
}

func stageGraph() *dag.Graph {
	g := dag.New()
	for _, s := range stageDeps {
		deps := make([]string, len(s.deps))
		for i, d := range s.deps {
			deps[i] = string(d)
		}
		if err := g.Add(string(s.stage), deps...); err != nil {
			panic(err)
		}
	}
	return g
}

// PlanStages returns the stages a run executes, in execution order. With no
// arguments every stage runs; otherwise the named stages and everything
// they depend on.
func PlanStages(only ...core.Stage) ([]core.Stage, error) {
	g := stageGraph()

	ids := g.Sort()
	if len(only) > 0 {
		names := make([]string, len(only))
		for i, s := range only {
			names[i] = string(s)
		}
		var err error
		if ids, err = g.Upstream(names...); err != nil {
			return nil, err
		}
	}

	plan := make([]core.Stage, len(ids))
	for i, id := range ids {
		plan[i] = core.Stage(id)
	}
	return plan, nil
}

func (e *Engine) runStages(ctx context.Context, runID string, plan []core.Stage, opts RunOptions, res *RunResult) error {
	stages := map[core.Stage]func() (int64, error){
		core.StageSchema: func() (int64, error) {
			if err := e.ensureDBConnected(ctx); err != nil {
				return 0, err
			}
			e.schemaOK = false
			if err := e.prepare(ctx); err != nil {
				return 0, err
			}
			return 0, nil
		},
		core.StageInspect: func() (int64, error) {
			var err error
			res.Inspection, err = e.Inspect(ctx)
			if err != nil {
				return 0, err
			}
			return res.Inspection.RowCount, nil
		},
		core.StageClean: func() (int64, error) {
			if opts.SkipClean {
				if err := e.checkInvariants(ctx); err != nil {
					return 0, err
				}
				return 0, errStageSkipped
			}
			var err error
			res.Clean, err = e.Clean(ctx)
			if err != nil {
				return 0, err
			}
			return res.Clean.DeletedMissing + res.Clean.DeletedNonPositive + res.Clean.NormalizedCurrency, nil
		},
		core.StageAggregate: func() (int64, error) {
			var err error
			res.Report, err = e.Report(ctx)
			return 0, err
		},
		core.StageViews: func() (int64, error) {
			var err error
			res.Views, err = e.BuildViews(ctx)
			return int64(len(res.Views)), err
		},
		core.StageSnapshots: func() (int64, error) {
			var total int64
			for _, obj := range e.objectsByMode(core.ModeSnapshot) {
				info, err := e.snapshot(ctx, obj.Name, runID, opts.Refresh)
				if err != nil {
					return total, err
				}
				if info != nil {
					res.Snapshots = append(res.Snapshots, info)
					total += info.RowCount
				}
			}
			return total, nil
		},
		core.StageAnalytics: func() (int64, error) {
			ranked, err := e.RankWithinCategory(ctx, "")
			if err != nil {
				return 0, err
			}
			res.RankedRows = len(ranked)
			if res.Rollup, err = e.CategoryRollup(ctx); err != nil {
				return 0, err
			}
			if err := VerifyRollup(res.Report.SuccessByCategory, res.Rollup); err != nil {
				return 0, err
			}
			return int64(len(ranked)), nil
		},
	}

	for _, stage := range plan {
		if err := e.runStage(runID, stage, stages[stage]); err != nil {
			if rest := stageGraph().Downstream(string(stage))[1:]; len(rest) > 0 {
				e.logger.Debug("dependent stages not run", "stage", stage, "dependents", rest)
			}
			return fmt.Errorf("stage %s: %w", stage, err)
		}
	}
	return nil
}

// runStage records one stage around fn.
func (e *Engine) runStage(runID string, stage core.Stage, fn func() (int64, error)) error {
	sr := &core.StageRun{RunID: runID, Stage: stage}
	if err := e.store.RecordStage(sr); err != nil {
		return err
	}

	start := time.Now()
	e.logger.Debug("stage started", "stage", stage)

	n, err := fn()
	if errors.Is(err, errStageSkipped) {
		e.logger.Info("stage skipped", "stage", stage)
		return e.store.CompleteStage(sr.ID, core.RunStatusSkipped, 0, "")
	}
	if err != nil {
		_ = e.store.CompleteStage(sr.ID, core.RunStatusFailed, n, err.Error())
		e.logger.Error("stage failed", "stage", stage, "error", err)
		return err
	}

	if err := e.store.CompleteStage(sr.ID, core.RunStatusCompleted, n, ""); err != nil {
		return err
	}
	e.logger.Debug("stage completed", "stage", stage, "rows", n, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (e *Engine) snapshot(ctx context.Context, name, runID string, refresh bool) (*core.SnapshotInfo, error) {
	if refresh {
		return e.refreshSnapshot(ctx, name, runID)
	}
	info, _, err := e.ensureSnapshot(ctx, name, runID)
	return info, err
}

func (e *Engine) checkInvariants(ctx context.Context) error {
	n, err := e.Violations(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d row(s) would be cleaned", ErrInvariantsViolated, n)
	}
	return nil
}

// Runs lists the most recent workflow runs.
func (e *Engine) Runs(limit int) ([]*core.Run, error) {
	return e.store.ListRuns(limit)
}

// RunStages returns the recorded stages of a run.
func (e *Engine) RunStages(runID string) ([]*core.StageRun, error) {
	return e.store.GetStagesForRun(runID)
}
