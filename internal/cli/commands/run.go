package commands

import (
	"time"

	"github.com/leapstack-labs/crowdstat/internal/cli/output"
	"github.com/leapstack-labs/crowdstat/internal/engine"
	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := engine.RunOptions{}
	var only []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the whole analysis workflow",
		Long: `Execute every stage in dependency order: schema check, inspection,
cleaning, aggregation, views, snapshots and analytics. The run and each
stage are recorded in the state database. The first failing stage aborts
the run.`,
		Example: `  # Full workflow, keeping existing snapshots
  crowdstat run

  # Rebuild snapshots from the current base table
  crowdstat run --refresh

  # The table is known to be clean
  crowdstat run --skip-clean -o json

  # Only the views, plus the stages they depend on
  crowdstat run --stage views`,
		Aliases: []string{"all"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			for _, s := range only {
				opts.Stages = append(opts.Stages, core.Stage(s))
			}

			start := time.Now()
			res, runErr := cc.Engine.Run(cmd.Context(), opts)
			if res == nil {
				return runErr
			}

			stages, err := cc.Engine.RunStages(res.Run.ID)
			if err != nil {
				return err
			}
			if err := renderRun(cc.Renderer, res, stages, time.Since(start)); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "Drop and rebuild snapshots instead of keeping existing ones")
	cmd.Flags().BoolVar(&opts.SkipClean, "skip-clean", false, "Skip cleaning (refused when the table needs cleaning)")
	cmd.Flags().StringSliceVar(&only, "stage", nil, "Run only these stages and their dependencies")
	_ = cmd.RegisterFlagCompletionFunc("stage", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(core.Stages))
		for i, s := range core.Stages {
			names[i] = string(s)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

type runSummary struct {
	Result *engine.RunResult `json:"result" yaml:"result"`
	Stages []*core.StageRun  `json:"stages" yaml:"stages"`
}

func renderRun(r *output.Renderer, res *engine.RunResult, stages []*core.StageRun, elapsed time.Duration) error {
	if ok, err := r.Structured(runSummary{Result: res, Stages: stages}); ok {
		return err
	}

	r.Header(1, "Run "+res.Run.ID)
	r.KeyValue("Environment", res.Run.Environment)
	r.KeyValue("Status", string(res.Run.Status))
	if res.Run.Error != "" {
		r.KeyValue("Error", res.Run.Error)
	}
	r.Println()

	renderStages(r, stages)

	if res.Clean != nil {
		r.KeyValue("Rows remaining after clean", itoa(res.Clean.Remaining))
	}
	for _, info := range res.Snapshots {
		r.KeyValue("Snapshot "+info.Name, info.ComputedAt.Local().Format(time.DateTime)+" ("+itoa(info.RowCount)+" rows)")
	}
	r.Println()

	switch res.Run.Status {
	case core.RunStatusCompleted:
		r.Success("completed in " + elapsed.Round(time.Millisecond).String())
	default:
		r.Warning("run " + string(res.Run.Status))
	}
	return nil
}

func renderStages(r *output.Renderer, stages []*core.StageRun) {
	rows := make([][]any, len(stages))
	for i, s := range stages {
		rows[i] = []any{string(s.Stage), string(s.Status), s.RowsAffected, s.ExecutionMS, s.Error}
	}
	r.Table([]string{"stage", "status", "rows", "ms", "error"}, rows)
}
