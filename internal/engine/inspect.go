package engine

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// nullState labels a NULL state value in inspection output.
const nullState = "NULL"

// Inspect collects read-only diagnostics of the base table.
func (e *Engine) Inspect(ctx context.Context) (*core.InspectionReport, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	meta, err := e.CheckSchema(ctx)
	if err != nil {
		return nil, err
	}
	e.schemaOK = true

	report := &core.InspectionReport{
		Table:       e.table,
		RowCount:    meta.RowCount,
		ColumnCount: len(meta.Columns),
		Columns:     meta.Columns,
	}

	err = e.queryAll(ctx, statesSQL(e.table), func(rows *core.Rows) error {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return err
		}
		if s.Valid {
			report.States = append(report.States, s.String)
		} else {
			report.States = append(report.States, nullState)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	sort.Strings(report.States)

	err = e.queryAll(ctx, countryCountsSQL(e.table), func(rows *core.Rows) error {
		var c core.CountryCount
		var country sql.NullString
		if err := rows.Scan(&country, &c.Count); err != nil {
			return err
		}
		c.Country = country.String
		report.CountryCounts = append(report.CountryCounts, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count countries: %w", err)
	}

	var idNulls, nameNulls, categoryNulls int64
	if err := e.queryRow(ctx, nullCountsSQL(e.table), &idNulls, &nameNulls, &categoryNulls); err != nil {
		return nil, fmt.Errorf("failed to count nulls: %w", err)
	}
	report.NullCounts = []core.NullCount{
		{Column: "id", Nulls: idNulls},
		{Column: "name", Nulls: nameNulls},
		{Column: "category", Nulls: categoryNulls},
	}

	e.logger.Info("inspected table", "table", e.table, "rows", report.RowCount, "columns", report.ColumnCount)
	return report, nil
}
