package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/crowdstat/internal/cli/output"
	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/spf13/cobra"
)

// Report sections selectable with --only.
const (
	sectionPopularity     = "popularity"
	sectionAvgPledged     = "avg-pledged"
	sectionCategorySucc   = "category-success"
	sectionTopFunded      = "top-funded"
	sectionCountrySuccess = "country-success"
	sectionLowSuccess     = "low-success"
	sectionCrossTab       = "cross-tab"
)

var reportSections = []string{
	sectionPopularity, sectionAvgPledged, sectionCategorySucc, sectionTopFunded,
	sectionCountrySuccess, sectionLowSuccess, sectionCrossTab,
}

// ReportOptions holds options for the report command.
type ReportOptions struct {
	Only  string
	Limit int
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute the category and country aggregations",
		Long: `Compute every aggregation over the base table: category popularity,
average pledged per category, success rate per category and per country,
the top-funded projects, low-success categories and the category by
country cross tab.

The aggregations are read-only and run concurrently. Use --only to compute
a single one.`,
		Example: `  crowdstat report
  crowdstat report --only category-success -o json
  crowdstat report --only top-funded --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Only != "" && !slices.Contains(reportSections, opts.Only) {
				return fmt.Errorf("unknown report section %q (valid: %s)", opts.Only, strings.Join(reportSections, ", "))
			}

			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if opts.Only != "" {
				return runReportSection(cmd.Context(), cc, opts)
			}

			report, err := cc.Engine.Report(cmd.Context())
			if err != nil {
				return err
			}
			return renderReport(cc.Renderer, report)
		},
	}

	cmd.Flags().StringVar(&opts.Only, "only", "", "Compute one section ("+strings.Join(reportSections, "|")+")")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Row count of the top-funded section (default: top_limit)")
	_ = cmd.RegisterFlagCompletionFunc("only", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return reportSections, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runReportSection(ctx context.Context, cc *CommandContext, opts *ReportOptions) error {
	e, r := cc.Engine, cc.Renderer

	var (
		data   any
		err    error
		render func()
	)
	switch opts.Only {
	case sectionPopularity:
		var v []core.CategoryCount
		v, err = e.CategoryPopularity(ctx)
		data, render = v, func() { renderCategoryCounts(r, v) }
	case sectionAvgPledged:
		var v []core.CategoryAverage
		v, err = e.AveragePledgedByCategory(ctx)
		data, render = v, func() { renderCategoryAverages(r, v) }
	case sectionCategorySucc:
		var v []core.SuccessRate
		v, err = e.SuccessRateByCategory(ctx)
		data, render = v, func() { renderSuccessRates(r, "main_category", v) }
	case sectionTopFunded:
		var v []core.Project
		v, err = e.TopFunded(ctx, opts.Limit)
		data, render = v, func() { renderProjects(r, v) }
	case sectionCountrySuccess:
		var v []core.SuccessRate
		v, err = e.SuccessRateByCountry(ctx)
		data, render = v, func() { renderSuccessRates(r, "country", v) }
	case sectionLowSuccess:
		var v []core.CategoryFunding
		v, err = e.LowSuccessCategories(ctx)
		data, render = v, func() { renderFunding(r, v) }
	case sectionCrossTab:
		var v []core.CrossTabRow
		v, err = e.CategoryCountryCrossTab(ctx)
		data, render = v, func() { renderCrossTab(r, v) }
	}
	if err != nil {
		return err
	}

	if ok, err := r.Structured(data); ok {
		return err
	}
	render()
	return nil
}

func renderReport(r *output.Renderer, rep *core.Report) error {
	if ok, err := r.Structured(rep); ok {
		return err
	}

	r.Header(1, "Report")
	r.Header(2, "Projects per main category")
	renderCategoryCounts(r, rep.CategoryPopularity)
	r.Header(2, "Average pledged per main category")
	renderCategoryAverages(r, rep.AvgPledgedByCategory)
	r.Header(2, "Success rate per main category")
	renderSuccessRates(r, "main_category", rep.SuccessByCategory)
	r.Header(2, "Top funded projects")
	renderProjects(r, rep.TopFunded)
	r.Header(2, "Success rate per country")
	renderSuccessRates(r, "country", rep.SuccessByCountry)
	r.Header(2, "Low success categories")
	renderFunding(r, rep.LowSuccessCategories)
	r.Header(2, "Success rate per main category and country")
	renderCrossTab(r, rep.CategoryCountry)
	return nil
}
