package engine

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// RankWithinCategory annotates every project with its pledged rank inside its
// main category. Ties share a rank and the following rank skips ahead.
// An empty category ranks the whole table.
func (e *Engine) RankWithinCategory(ctx context.Context, category string) ([]core.RankedProject, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	var args []any
	if category != "" {
		args = append(args, category)
	}

	out := []core.RankedProject{}
	err := e.queryAll(ctx, rankSQL(e.db.Dialect(), e.table, category != ""), func(rows *core.Rows) error {
		var r core.RankedProject
		p, err := scanProject(rows, &r.Rank)
		if err != nil {
			return err
		}
		r.Project = p
		out = append(out, r)
		return nil
	}, args...)
	if err != nil {
		return nil, fmt.Errorf("rank within category: %w", err)
	}
	return out, nil
}

// CategoryRollup computes the success rate per main category through a named
// intermediate of per-category totals. Its output matches
// SuccessRateByCategory row for row.
func (e *Engine) CategoryRollup(ctx context.Context) ([]core.SuccessRate, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}
	out, err := e.successRates(ctx, rollupSQL(e.db.Dialect(), e.table))
	if err != nil {
		return nil, fmt.Errorf("category rollup: %w", err)
	}
	return out, nil
}

// VerifyRollup checks that the rollup and the direct success-rate query agree.
func VerifyRollup(direct, rollup []core.SuccessRate) error {
	if len(direct) != len(rollup) {
		return fmt.Errorf("rollup has %d categories, direct query has %d", len(rollup), len(direct))
	}
	for i := range direct {
		if direct[i] != rollup[i] {
			return fmt.Errorf("rollup mismatch at row %d: %+v != %+v", i, rollup[i], direct[i])
		}
	}
	return nil
}
