package engine

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// queryAll runs query and calls scan for every row.
func (e *Engine) queryAll(ctx context.Context, query string, scan func(*core.Rows) error, args ...any) error {
	rows, err := e.db.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
	}
	return rows.Err()
}

// queryRow runs a query expected to yield exactly one row.
func (e *Engine) queryRow(ctx context.Context, query string, dest ...any) error {
	found := false
	err := e.queryAll(ctx, query, func(rows *core.Rows) error {
		if found {
			return nil
		}
		found = true
		return rows.Scan(dest...)
	})
	if err != nil {
		return err
	}
	if !found {
		return sql.ErrNoRows
	}
	return nil
}

func (e *Engine) count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := e.queryRow(ctx, countSQL(table), &n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// scanProject reads the projectColumns projection, plus any extra destinations.
func scanProject(rows *core.Rows, extra ...any) (core.Project, error) {
	var (
		p                                                   core.Project
		id, backers                                         sql.NullInt64
		name, category, mainCategory, country, currency, st sql.NullString
		goal, pledged                                       sql.NullFloat64
	)
	dest := []any{&id, &name, &category, &mainCategory, &country, &currency, &goal, &pledged, &backers, &st}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return p, err
	}
	p.ID = id.Int64
	p.Name = name.String
	p.Category = category.String
	p.MainCategory = mainCategory.String
	p.Country = country.String
	p.Currency = currency.String
	p.Goal = goal.Float64
	p.Pledged = pledged.Float64
	p.Backers = backers.Int64
	p.State = st.String
	return p, nil
}

// readResultSet drains rows into a generic result set.
func readResultSet(rows *core.Rows) (*core.ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	rs := &core.ResultSet{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, values)
	}
	return rs, rows.Err()
}

// scanDigest hashes one projectColumns row. NULL hashes apart from the empty
// string. goal and pledged are returned for the fingerprint sums.
func scanDigest(rows *core.Rows) (digest uint64, goal, pledged float64, err error) {
	values := make([]any, len(core.RequiredColumns))
	ptrs := make([]any, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return 0, 0, 0, err
	}

	h := xxhash.New()
	for i, v := range values {
		switch x := v.(type) {
		case nil:
			_, _ = h.WriteString("\x00")
		case []byte:
			_, _ = h.Write(x)
		default:
			_, _ = fmt.Fprint(h, x)
		}
		_, _ = h.WriteString("\x1f")

		f, _ := v.(float64)
		switch core.RequiredColumns[i] {
		case "goal":
			goal = f
		case "pledged":
			pledged = f
		}
	}
	return h.Sum64(), goal, pledged, nil
}
