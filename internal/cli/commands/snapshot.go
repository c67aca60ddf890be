package commands

import (
	"context"
	"time"

	"github.com/leapstack-labs/crowdstat/internal/cli/output"
	"github.com/leapstack-labs/crowdstat/internal/engine"
	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/spf13/cobra"
)

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snapshots"},
		Short:   "Build, refresh and read the snapshot tables",
		Long: `Snapshot tables are computed once and reflect the base table at build
time. build creates missing snapshots and never overwrites an existing one.
refresh drops and rebuilds. Without a subcommand the staleness of every
snapshot is reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshotStatus(cmd)
		},
	}

	cmd.AddCommand(newSnapshotBuildCommand(false))
	cmd.AddCommand(newSnapshotBuildCommand(true))
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Compare each snapshot with the current base table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshotStatus(cmd)
		},
	})
	cmd.AddCommand(newSnapshotShowCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the snapshot catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return renderCatalog(cc.Renderer, cc.Engine.Catalog(), core.ModeSnapshot)
		},
	})
	return cmd
}

func newSnapshotBuildCommand(refresh bool) *cobra.Command {
	use, short := "build [snapshot...]", "Create missing snapshots (existing ones are kept)"
	if refresh {
		use, short = "refresh [snapshot...]", "Drop and rebuild snapshots"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		ValidArgsFunction: func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return catalogNames(cmd, core.ModeSnapshot), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			names := args
			if len(names) == 0 {
				names = cc.Engine.ObjectNames(core.ModeSnapshot)
			}

			results, err := buildSnapshots(cmd.Context(), cc.Engine, names, refresh)
			if err != nil {
				return err
			}
			if ok, err := cc.Renderer.Structured(results); ok {
				return err
			}
			for _, res := range results {
				switch {
				case res.Created:
					cc.Renderer.Success("built " + res.Info.Name + " (" + itoa(res.Info.RowCount) + " rows)")
				default:
					cc.Renderer.Muted("kept " + res.Info.Name + " (exists, use refresh to rebuild)")
				}
			}
			return nil
		},
	}
}

type snapshotBuild struct {
	Info    *core.SnapshotInfo `json:"info" yaml:"info"`
	Created bool               `json:"created" yaml:"created"`
}

func buildSnapshots(ctx context.Context, e *engine.Engine, names []string, refresh bool) ([]snapshotBuild, error) {
	results := make([]snapshotBuild, 0, len(names))
	for _, name := range names {
		if refresh {
			info, err := e.RefreshSnapshot(ctx, name)
			if err != nil {
				return nil, err
			}
			results = append(results, snapshotBuild{Info: info, Created: true})
			continue
		}
		info, created, err := e.EnsureSnapshot(ctx, name)
		if err != nil {
			return nil, err
		}
		results = append(results, snapshotBuild{Info: info, Created: created})
	}
	return results, nil
}

func runSnapshotStatus(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	statuses, err := cc.Engine.SnapshotStatuses(cmd.Context())
	if err != nil {
		return err
	}
	return renderSnapshotStatuses(cc.Renderer, statuses)
}

func renderSnapshotStatuses(r *output.Renderer, statuses []*core.SnapshotStatus) error {
	if ok, err := r.Structured(statuses); ok {
		return err
	}

	rows := make([][]any, len(statuses))
	for i, s := range statuses {
		state := "fresh"
		switch {
		case !s.Exists:
			state = "missing"
		case s.Stale:
			state = "stale"
		}
		computed, built := "-", "-"
		if s.Info != nil {
			computed = s.Info.ComputedAt.Local().Format(time.DateTime)
			built = itoa(s.Info.Source.RowCount)
		}
		rows[i] = []any{s.Name, state, computed, built, s.Current.RowCount}
	}
	r.Table([]string{"snapshot", "status", "computed_at", "source_rows", "current_rows"}, rows)
	return nil
}

func newSnapshotShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <snapshot>",
		Short: "Print the rows of a snapshot",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return catalogNames(cmd, core.ModeSnapshot), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, r := cmd.Context(), cc.Renderer
			switch args[0] {
			case engine.SnapshotProjectKPIs:
				kpis, err := cc.Engine.KPIs(ctx)
				if err != nil {
					return err
				}
				if ok, err := r.Structured(kpis); ok {
					return err
				}
				r.Header(1, "Project KPIs")
				renderKPIs(r, kpis)
				return nil
			case engine.SnapshotAnomalies:
				anomalies, err := cc.Engine.Anomalies(ctx)
				if err != nil {
					return err
				}
				if ok, err := r.Structured(anomalies); ok {
					return err
				}
				renderProjects(r, anomalies)
				return nil
			default:
				rs, err := cc.Engine.ReadSnapshot(ctx, args[0])
				if err != nil {
					return err
				}
				return renderResultSet(r, rs)
			}
		},
	}
}
