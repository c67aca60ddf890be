package commands

import (
	"github.com/spf13/cobra"
)

// NewTopCommand creates the top command.
func NewTopCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top <main_category>",
		Short: "Most funded projects of one main category",
		Long: `List the name and pledged amount of the most funded projects whose
main_category equals the argument exactly. Ties on pledged are broken by id.`,
		Example: `  crowdstat top Games
  crowdstat top "Film & Video" -n 3 -o csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			n := limit
			if !cmd.Flags().Changed("limit") {
				n = cc.Cfg.TopLimit
			}

			projects, err := cc.Engine.TopProjects(cmd.Context(), args[0], n)
			if err != nil {
				return err
			}
			if ok, err := cc.Renderer.Structured(projects); ok {
				return err
			}
			renderProjectFunding(cc.Renderer, projects)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of projects (default: top_limit)")
	return cmd
}
