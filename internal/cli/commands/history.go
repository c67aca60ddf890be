package commands

import (
	"time"

	"github.com/leapstack-labs/crowdstat/internal/cli/output"
	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "history [run-id]",
		Aliases: []string{"runs"},
		Short:   "Show recorded workflow runs",
		Long: `List the most recent workflow runs from the state database. With a run id,
show the stages of that run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 1 {
				run, err := cc.Engine.StateStore().GetRun(args[0])
				if err != nil {
					return err
				}
				stages, err := cc.Engine.RunStages(run.ID)
				if err != nil {
					return err
				}
				if ok, err := cc.Renderer.Structured(map[string]any{"run": run, "stages": stages}); ok {
					return err
				}
				cc.Renderer.Header(1, "Run "+run.ID)
				cc.Renderer.KeyValue("Status", string(run.Status))
				cc.Renderer.KeyValue("Started", run.StartedAt.Local().Format(time.DateTime))
				cc.Renderer.Println()
				renderStages(cc.Renderer, stages)
				return nil
			}

			runs, err := cc.Engine.Runs(limit)
			if err != nil {
				return err
			}
			return renderRuns(cc.Renderer, runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs")
	return cmd
}

func renderRuns(r *output.Renderer, runs []*core.Run) error {
	if ok, err := r.Structured(runs); ok {
		return err
	}

	rows := make([][]any, len(runs))
	for i, run := range runs {
		completed := "-"
		if run.CompletedAt != nil {
			completed = run.CompletedAt.Local().Format(time.DateTime)
		}
		rows[i] = []any{run.ID, run.Environment, string(run.Status), run.StartedAt.Local().Format(time.DateTime), completed, run.Error}
	}
	r.Table([]string{"id", "environment", "status", "started_at", "completed_at", "error"}, rows)
	return nil
}
