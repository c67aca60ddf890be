package commands

import (
	"github.com/leapstack-labs/crowdstat/internal/cli/output"
	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/spf13/cobra"
)

// NewCleanCommand creates the clean command.
func NewCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Clean the base table in place",
		Long: `Delete projects without a name or goal, delete projects with a goal that
is not positive, and uppercase currency codes. All three steps run in one
transaction. Running clean again on a clean table changes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := cc.Engine.Clean(cmd.Context())
			if err != nil {
				return err
			}
			return renderClean(cc.Renderer, report)
		},
	}
}

func renderClean(r *output.Renderer, rep *core.CleanReport) error {
	if ok, err := r.Structured(rep); ok {
		return err
	}

	r.Header(1, "Clean")
	r.KeyValue("Deleted (missing name or goal)", itoa(rep.DeletedMissing))
	r.KeyValue("Deleted (goal not positive)", itoa(rep.DeletedNonPositive))
	r.KeyValue("Currency codes normalized", itoa(rep.NormalizedCurrency))
	r.KeyValue("Remaining rows", itoa(rep.Remaining))
	r.Println()

	if rep.Changed() {
		r.Success("table cleaned")
	} else {
		r.Success("table already clean")
	}
	return nil
}
