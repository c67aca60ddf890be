package engine

import (
	"context"
	"testing"

	"github.com/leapstack-labs/crowdstat/internal/testutil"
	"github.com/leapstack-labs/crowdstat/pkg/adapter"
	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/crowdstat/pkg/adapters/duckdb"
)

const createProjects = `CREATE TABLE projects (
    id BIGINT,
    name VARCHAR,
    category VARCHAR,
    main_category VARCHAR,
    country VARCHAR,
    currency VARCHAR,
    goal DOUBLE,
    pledged DOUBLE,
    backers INTEGER,
    state VARCHAR
)`

// row is a compact fixture; nil pointers become NULL.
type row struct {
	id       int64
	name     *string
	main     string
	country  string
	currency string
	goal     *float64
	pledged  float64
	state    string
}

func str(s string) *string   { return &s }
func num(f float64) *float64 { return &f }
func project(id int64, name, main string, pledged float64, state string) row {
	return row{id: id, name: str(name), main: main, country: "US", currency: "USD", goal: num(1000), pledged: pledged, state: state}
}

// exampleRows is the canonical three-row fixture.
func exampleRows() []row {
	return []row{
		project(1, "x", "A", 100, "successful"),
		project(2, "y", "A", 50, "failed"),
		project(3, "z", "B", 10, "successful"),
	}
}

// newTestEngine returns an engine over an in-memory DuckDB warehouse.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Config{
		AdapterConfig: adapter.Config{Type: "duckdb", Path: ":memory:"},
		Logger:        testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	require.NoError(t, e.ensureDBConnected(context.Background()))
	return e
}

// newSeededEngine creates the projects table and inserts rows.
func newSeededEngine(t *testing.T, rows ...row) *Engine {
	t.Helper()
	e := newTestEngine(t)
	exec(t, e, createProjects)
	insert(t, e, rows...)
	return e
}

func insert(t *testing.T, e *Engine, rows ...row) {
	t.Helper()
	for _, r := range rows {
		var name, goal any
		if r.name != nil {
			name = *r.name
		}
		if r.goal != nil {
			goal = *r.goal
		}
		exec(t, e, `INSERT INTO projects VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.id, name, "sub-"+r.main, r.main, r.country, r.currency, goal, r.pledged, 1, r.state)
	}
}

func exec(t *testing.T, e *Engine, query string, args ...any) {
	t.Helper()
	_, err := e.db.Exec(context.Background(), query, args...)
	require.NoError(t, err)
}

func rateByKey(rates []core.SuccessRate) map[string]float64 {
	m := make(map[string]float64, len(rates))
	for _, r := range rates {
		m[r.Key] = r.Rate
	}
	return m
}
