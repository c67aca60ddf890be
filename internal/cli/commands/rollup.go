package commands

import (
	"github.com/leapstack-labs/crowdstat/internal/engine"
	"github.com/spf13/cobra"
)

// NewRollupCommand creates the rollup command.
func NewRollupCommand() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "rollup",
		Short: "Success rate per main category via category totals",
		Long: `Compute the per category success rate from an intermediate table of
category totals. With --verify the result is compared with the direct
aggregation and any difference is an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			rollup, err := cc.Engine.CategoryRollup(ctx)
			if err != nil {
				return err
			}

			if verify {
				direct, err := cc.Engine.SuccessRateByCategory(ctx)
				if err != nil {
					return err
				}
				if err := engine.VerifyRollup(direct, rollup); err != nil {
					return err
				}
			}

			if ok, err := cc.Renderer.Structured(rollup); ok {
				return err
			}
			renderSuccessRates(cc.Renderer, "main_category", rollup)
			if verify {
				cc.Renderer.Success("rollup matches the direct aggregation")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Compare with the direct aggregation")
	return cmd
}
