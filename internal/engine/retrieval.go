package engine

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// TopProjects returns up to limit projects of the given main category,
// largest pledged first, ties by ascending id. A negative limit is rejected
// with core.ErrInvalidLimit; a zero limit yields an empty result without
// touching the warehouse. An unknown category yields an empty result.
func (e *Engine) TopProjects(ctx context.Context, category string, limit int) ([]core.ProjectFunding, error) {
	if limit < 0 {
		return nil, fmt.Errorf("top projects: %w", core.ErrInvalidLimit)
	}
	out := []core.ProjectFunding{}
	if limit == 0 {
		return out, nil
	}
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	err := e.queryAll(ctx, topProjectsSQL(e.db.Dialect(), e.table, limit), func(rows *core.Rows) error {
		var p core.ProjectFunding
		var name *string
		if err := rows.Scan(&name, &p.Pledged); err != nil {
			return err
		}
		if name != nil {
			p.Name = *name
		}
		out = append(out, p)
		return nil
	}, category)
	if err != nil {
		return nil, fmt.Errorf("top projects: %w", err)
	}
	return out, nil
}
