package engine

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// Clean removes rows that break the data invariants and normalizes currency
// codes. All three statements run in one transaction.
func (e *Engine) Clean(ctx context.Context) (*core.CleanReport, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	affected, err := e.db.ExecTx(ctx, cleanStatements(e.table)...)
	if err != nil {
		return nil, fmt.Errorf("cleaning %s: %w", e.table, err)
	}

	remaining, err := e.count(ctx, e.table)
	if err != nil {
		return nil, err
	}

	report := &core.CleanReport{
		DeletedMissing:     affected[0],
		DeletedNonPositive: affected[1],
		NormalizedCurrency: affected[2],
		Remaining:          remaining,
	}

	e.logger.Info("cleaned table",
		"table", e.table,
		"deleted_missing", report.DeletedMissing,
		"deleted_non_positive", report.DeletedNonPositive,
		"normalized_currency", report.NormalizedCurrency,
		"remaining", report.Remaining)
	return report, nil
}

// Violations counts rows that a cleaning pass would delete or rewrite.
func (e *Engine) Violations(ctx context.Context) (int64, error) {
	if err := e.prepare(ctx); err != nil {
		return 0, err
	}

	var n int64
	if err := e.queryRow(ctx, violationsSQL(e.table), &n); err != nil {
		return 0, fmt.Errorf("failed to check invariants: %w", err)
	}
	return n, nil
}
