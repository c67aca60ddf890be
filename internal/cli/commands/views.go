package commands

import (
	"github.com/leapstack-labs/crowdstat/internal/cli/output"
	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/spf13/cobra"
)

// NewViewsCommand creates the views command.
func NewViewsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "views",
		Short: "List, build and read the live views",
		Long: `Live views are recomputed on every read, so they always reflect the
current base table. Without a subcommand the view catalog is listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return renderCatalog(cc.Renderer, cc.Engine.Catalog(), core.ModeLive)
		},
	}

	cmd.AddCommand(newViewsBuildCommand())
	cmd.AddCommand(newViewsShowCommand())
	return cmd
}

func newViewsBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Create or redefine every view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			names, err := cc.Engine.BuildViews(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := cc.Renderer.Structured(names); ok {
				return err
			}
			for _, name := range names {
				cc.Renderer.Success("view " + name)
			}
			return nil
		},
	}
}

func newViewsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <view>",
		Short: "Print the rows of a view",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return catalogNames(cmd, core.ModeLive), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			rs, err := cc.Engine.ReadView(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderResultSet(cc.Renderer, rs)
		},
	}
}

func renderCatalog(r *output.Renderer, catalog []core.DerivedObject, mode core.Mode) error {
	var objects []core.DerivedObject
	for _, obj := range catalog {
		if obj.Mode == mode {
			objects = append(objects, obj)
		}
	}
	if ok, err := r.Structured(objects); ok {
		return err
	}

	rows := make([][]any, len(objects))
	for i, obj := range objects {
		rows[i] = []any{obj.Name, string(obj.Mode), obj.Description}
	}
	r.Table([]string{"name", "mode", "description"}, rows)
	return nil
}

// catalogNames lists derived object names for shell completion.
func catalogNames(cmd *cobra.Command, mode core.Mode) []string {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return nil
	}
	defer cleanup()
	return cc.Engine.ObjectNames(mode)
}
