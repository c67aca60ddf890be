package commands

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/crowdstat/internal/cli/output"
	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/spf13/cobra"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Inspect the base table",
		Long: `Report row and column counts, the distinct project states, projects per
country and NULL counts of the key columns. Nothing is modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := cc.Engine.Inspect(cmd.Context())
			if err != nil {
				return err
			}
			return renderInspection(cc.Renderer, report)
		},
	}
}

func renderInspection(r *output.Renderer, rep *core.InspectionReport) error {
	if ok, err := r.Structured(rep); ok {
		return err
	}

	r.Header(1, "Inspection: "+rep.Table)
	r.KeyValue("Rows", itoa(rep.RowCount))
	r.KeyValue("Columns", strconv.Itoa(rep.ColumnCount))
	r.KeyValue("States", strings.Join(rep.States, ", "))
	r.Println()

	r.Header(2, "Projects by country")
	rows := make([][]any, len(rep.CountryCounts))
	for i, c := range rep.CountryCounts {
		rows[i] = []any{c.Country, c.Count}
	}
	r.Table([]string{"country", "projects"}, rows)

	r.Header(2, "NULL counts")
	rows = make([][]any, len(rep.NullCounts))
	for i, n := range rep.NullCounts {
		rows[i] = []any{n.Column, n.Nulls}
	}
	r.Table([]string{"column", "nulls"}, rows)
	return nil
}
