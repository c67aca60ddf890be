package engine

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// Derived object names.
const (
	ViewSuccessfulProjects = "successful_projects"
	ViewCountrySuccessRate = "country_success_rate"
	ViewHighValueSuccess   = "high_value_success"
	SnapshotProjectKPIs    = "project_kpis"
	SnapshotAnomalies      = "anomalies"
)

// Catalog lists every derived object with the query that defines it.
// Views are listed before snapshots, each group in build order.
func (e *Engine) Catalog() []core.DerivedObject {
	d := e.dialectOrDefault()
	t := e.table
	th := e.thresholds

	return []core.DerivedObject{
		{
			Name:        ViewSuccessfulProjects,
			Mode:        core.ModeLive,
			Description: "projects whose state is successful",
			SQL:         fmt.Sprintf("SELECT * FROM %s WHERE state = '%s'", t, core.StateSuccessful),
		},
		{
			Name:        ViewCountrySuccessRate,
			Mode:        core.ModeLive,
			Description: "success rate per launch country",
			SQL: fmt.Sprintf(`SELECT country, COUNT(*) AS total_projects, %s AS successful_projects, %s AS success_rate
FROM %s
GROUP BY country`, successCount, successRate(d), t),
		},
		{
			Name:        ViewHighValueSuccess,
			Mode:        core.ModeLive,
			Description: fmt.Sprintf("successful projects pledged above %s", literal(th.HighValuePledged)),
			SQL: fmt.Sprintf(`SELECT id, name, main_category, country, pledged
FROM %s
WHERE state = '%s' AND pledged > %s`, t, core.StateSuccessful, literal(th.HighValuePledged)),
		},
		{
			Name:        SnapshotProjectKPIs,
			Mode:        core.ModeSnapshot,
			Description: "total projects, overall success rate, average pledged and average goal",
			SQL: fmt.Sprintf(`SELECT
    COUNT(*) AS total_projects,
    %s AS success_rate,
    %s AS avg_pledged,
    %s AS avg_goal
FROM %s`, rateOf(d, successCount, "NULLIF(COUNT(*), 0)"), d.Round("AVG(pledged)", 2), d.Round("AVG(goal)", 2), t),
		},
		{
			Name:        SnapshotAnomalies,
			Mode:        core.ModeSnapshot,
			Description: fmt.Sprintf("projects with goal above %s or pledged above %s", literal(th.AnomalyGoal), literal(th.AnomalyPledged)),
			SQL: fmt.Sprintf("SELECT * FROM %s WHERE goal > %s OR pledged > %s",
				t, literal(th.AnomalyGoal), literal(th.AnomalyPledged)),
		},
	}
}

// Object looks up a derived object by name.
func (e *Engine) Object(name string) (core.DerivedObject, bool) {
	for _, obj := range e.Catalog() {
		if obj.Name == name {
			return obj, true
		}
	}
	return core.DerivedObject{}, false
}

// ObjectNames returns the sorted names of derived objects in the given mode.
func (e *Engine) ObjectNames(mode core.Mode) []string {
	var names []string
	for _, obj := range e.Catalog() {
		if obj.Mode == mode {
			names = append(names, obj.Name)
		}
	}
	sort.Strings(names)
	return names
}

func (e *Engine) objectsByMode(mode core.Mode) []core.DerivedObject {
	var out []core.DerivedObject
	for _, obj := range e.Catalog() {
		if obj.Mode == mode {
			out = append(out, obj)
		}
	}
	return out
}

func (e *Engine) lookup(name string, mode core.Mode) (core.DerivedObject, error) {
	obj, ok := e.Object(name)
	if !ok || obj.Mode != mode {
		kind := "view"
		if mode == core.ModeSnapshot {
			kind = "snapshot"
		}
		return core.DerivedObject{}, fmt.Errorf("unknown %s %q (available: %v)", kind, name, e.ObjectNames(mode))
	}
	return obj, nil
}

// dialectOrDefault lets the catalog be listed before the warehouse is connected.
func (e *Engine) dialectOrDefault() *core.Dialect {
	if d := e.Dialect(); d != nil {
		return d
	}
	switch e.dbConfig.Type {
	case "postgres":
		return core.PostgresDialect
	case "sqlite":
		return core.SQLiteDialect
	default:
		return core.DuckDBDialect
	}
}
