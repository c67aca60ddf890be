package commands

import (
	"github.com/spf13/cobra"
)

// NewRankCommand creates the rank command.
func NewRankCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank projects by pledged within their main category",
		Long: `Rank every project by pledged amount within its main category. Projects
with equal pledged share a rank and the next rank is skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ranked, err := cc.Engine.RankWithinCategory(cmd.Context(), category)
			if err != nil {
				return err
			}
			if ok, err := cc.Renderer.Structured(ranked); ok {
				return err
			}
			renderRanked(cc.Renderer, ranked)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only rank projects of this main category")
	return cmd
}
