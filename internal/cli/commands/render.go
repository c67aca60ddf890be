package commands

import (
	"strconv"

	"github.com/leapstack-labs/crowdstat/internal/cli/output"
	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// renderResultSet writes a generic result. Machine formats get one object per row.
func renderResultSet(r *output.Renderer, rs *core.ResultSet) error {
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		records := make([]map[string]any, 0, len(rs.Rows))
		for _, row := range rs.Rows {
			rec := make(map[string]any, len(rs.Columns))
			for i, col := range rs.Columns {
				rec[col] = row[i]
			}
			records = append(records, rec)
		}
		_, err := r.Structured(records)
		return err
	}
	r.Table(rs.Columns, rs.Rows)
	return nil
}

func renderCategoryCounts(r *output.Renderer, counts []core.CategoryCount) {
	rows := make([][]any, len(counts))
	for i, c := range counts {
		rows[i] = []any{c.Category, c.Count}
	}
	r.Table([]string{"main_category", "projects"}, rows)
}

func renderCategoryAverages(r *output.Renderer, avgs []core.CategoryAverage) {
	rows := make([][]any, len(avgs))
	for i, a := range avgs {
		rows[i] = []any{a.Category, output.FormatAmount(a.AvgPledged)}
	}
	r.Table([]string{"main_category", "avg_pledged"}, rows)
}

func renderSuccessRates(r *output.Renderer, key string, rates []core.SuccessRate) {
	rows := make([][]any, len(rates))
	for i, s := range rates {
		rows[i] = []any{s.Key, s.Total, s.Successful, output.FormatPercent(s.Rate)}
	}
	r.Table([]string{key, "total", "successful", "success_rate"}, rows)
}

func renderProjects(r *output.Renderer, projects []core.Project) {
	rows := make([][]any, len(projects))
	for i, p := range projects {
		rows[i] = []any{p.ID, p.Name, p.MainCategory, p.Country, output.FormatAmount(p.Goal), output.FormatAmount(p.Pledged), p.State}
	}
	r.Table([]string{"id", "name", "main_category", "country", "goal", "pledged", "state"}, rows)
}

func renderFunding(r *output.Renderer, funding []core.CategoryFunding) {
	rows := make([][]any, len(funding))
	for i, f := range funding {
		rows[i] = []any{f.Category, output.FormatAmount(f.AvgPledged), output.FormatPercent(f.SuccessRate)}
	}
	r.Table([]string{"main_category", "avg_pledged", "success_rate"}, rows)
}

func renderCrossTab(r *output.Renderer, cells []core.CrossTabRow) {
	rows := make([][]any, len(cells))
	for i, c := range cells {
		rows[i] = []any{c.Country, c.Category, c.Total, output.FormatPercent(c.SuccessRate)}
	}
	r.Table([]string{"country", "main_category", "total", "success_rate"}, rows)
}

func renderProjectFunding(r *output.Renderer, projects []core.ProjectFunding) {
	rows := make([][]any, len(projects))
	for i, p := range projects {
		rows[i] = []any{p.Name, output.FormatAmount(p.Pledged)}
	}
	r.Table([]string{"name", "pledged"}, rows)
}

func renderRanked(r *output.Renderer, ranked []core.RankedProject) {
	rows := make([][]any, len(ranked))
	for i, p := range ranked {
		rows[i] = []any{p.MainCategory, p.Rank, p.ID, p.Name, output.FormatAmount(p.Pledged)}
	}
	r.Table([]string{"main_category", "pledged_rank", "id", "name", "pledged"}, rows)
}

func renderKPIs(r *output.Renderer, k *core.KPISummary) {
	r.KeyValue("Total projects", strconv.FormatInt(k.TotalProjects, 10))
	r.KeyValue("Success rate", output.FormatPercent(k.SuccessRate))
	r.KeyValue("Average pledged", output.FormatAmount(k.AvgPledged))
	r.KeyValue("Average goal", output.FormatAmount(k.AvgGoal))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
