package engine

import (
	"context"
	"testing"

	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dirtyRows() []row {
	rows := exampleRows()
	return append(rows,
		row{id: 10, name: nil, main: "A", country: "US", currency: "USD", goal: num(100), pledged: 5, state: "failed"},
		row{id: 11, name: str("no goal"), main: "A", country: "US", currency: "USD", goal: nil, pledged: 5, state: "failed"},
		row{id: 12, name: str("zero goal"), main: "B", country: "US", currency: "USD", goal: num(0), pledged: 5, state: "failed"},
		row{id: 13, name: str("negative goal"), main: "B", country: "US", currency: "USD", goal: num(-5), pledged: 5, state: "failed"},
		row{id: 14, name: str("lower"), main: "B", country: "DE", currency: "eur", goal: num(500), pledged: 700, state: "successful"},
		row{id: 15, name: str("mixed"), main: "C", country: "DE", currency: "Eur", goal: num(500), pledged: 0, state: "failed"},
	)
}

func TestClean(t *testing.T) {
	ctx := context.Background()
	e := newSeededEngine(t, dirtyRows()...)

	violations, err := e.Violations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), violations)

	report, err := e.Clean(ctx)
	require.NoError(t, err)
	assert.Equal(t, &core.CleanReport{
		DeletedMissing:     2,
		DeletedNonPositive: 2,
		NormalizedCurrency: 2,
		Remaining:          5,
	}, report)
	assert.True(t, report.Changed())

	violations, err = e.Violations(ctx)
	require.NoError(t, err)
	assert.Zero(t, violations)

	rs, err := e.Query(ctx, "SELECT DISTINCT currency FROM projects ORDER BY currency")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"EUR"}, {"USD"}}, rs.Rows)
}

func TestClean_Idempotent(t *testing.T) {
	ctx := context.Background()
	e := newSeededEngine(t, dirtyRows()...)

	_, err := e.Clean(ctx)
	require.NoError(t, err)
	before, err := e.Query(ctx, "SELECT * FROM projects ORDER BY id")
	require.NoError(t, err)

	again, err := e.Clean(ctx)
	require.NoError(t, err)
	assert.False(t, again.Changed())
	assert.Equal(t, int64(5), again.Remaining)

	after, err := e.Query(ctx, "SELECT * FROM projects ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
