package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leapstack-labs/crowdstat/pkg/core"
	"golang.org/x/sync/errgroup"
)

// CategoryPopularity counts projects per main category, most popular first.
func (e *Engine) CategoryPopularity(ctx context.Context) ([]core.CategoryCount, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	out := []core.CategoryCount{}
	err := e.queryAll(ctx, categoryPopularitySQL(e.table), func(rows *core.Rows) error {
		var c core.CategoryCount
		var key sql.NullString
		if err := rows.Scan(&key, &c.Count); err != nil {
			return err
		}
		c.Category = key.String
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("category popularity: %w", err)
	}
	return out, nil
}

// AveragePledgedByCategory returns the mean pledged amount per main category.
func (e *Engine) AveragePledgedByCategory(ctx context.Context) ([]core.CategoryAverage, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	out := []core.CategoryAverage{}
	err := e.queryAll(ctx, avgPledgedSQL(e.db.Dialect(), e.table), func(rows *core.Rows) error {
		var c core.CategoryAverage
		var key sql.NullString
		var avg sql.NullFloat64
		if err := rows.Scan(&key, &avg); err != nil {
			return err
		}
		c.Category = key.String
		c.AvgPledged = avg.Float64
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("average pledged by category: %w", err)
	}
	return out, nil
}

// SuccessRateByCategory returns the success percentage per main category.
func (e *Engine) SuccessRateByCategory(ctx context.Context) ([]core.SuccessRate, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}
	out, err := e.successRates(ctx, successRateSQL(e.db.Dialect(), e.table, "main_category"))
	if err != nil {
		return nil, fmt.Errorf("success rate by category: %w", err)
	}
	return out, nil
}

// SuccessRateByCountry returns the success percentage per country.
func (e *Engine) SuccessRateByCountry(ctx context.Context) ([]core.SuccessRate, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}
	out, err := e.successRates(ctx, successRateSQL(e.db.Dialect(), e.table, "country"))
	if err != nil {
		return nil, fmt.Errorf("success rate by country: %w", err)
	}
	return out, nil
}

func (e *Engine) successRates(ctx context.Context, query string) ([]core.SuccessRate, error) {
	out := []core.SuccessRate{}
	err := e.queryAll(ctx, query, func(rows *core.Rows) error {
		var r core.SuccessRate
		var key sql.NullString
		if err := rows.Scan(&key, &r.Total, &r.Successful, &r.Rate); err != nil {
			return err
		}
		r.Key = key.String
		out = append(out, r)
		return nil
	})
	return out, err
}

// TopFunded returns the limit projects with the largest pledged amount.
// Ties are broken by ascending id. A zero limit uses the configured default.
func (e *Engine) TopFunded(ctx context.Context, limit int) ([]core.Project, error) {
	if limit < 0 {
		return nil, core.ErrInvalidLimit
	}
	if limit == 0 {
		limit = e.topLimit
	}
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	out := []core.Project{}
	err := e.queryAll(ctx, topFundedSQL(e.db.Dialect(), e.table, limit), func(rows *core.Rows) error {
		p, err := scanProject(rows)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("top funded: %w", err)
	}
	return out, nil
}

// LowSuccessCategories returns categories whose success rate is below the
// configured threshold, highest average pledged first.
func (e *Engine) LowSuccessCategories(ctx context.Context) ([]core.CategoryFunding, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	out := []core.CategoryFunding{}
	query := lowSuccessSQL(e.db.Dialect(), e.table, e.thresholds.LowSuccessRate)
	err := e.queryAll(ctx, query, func(rows *core.Rows) error {
		var c core.CategoryFunding
		var key sql.NullString
		var avg sql.NullFloat64
		if err := rows.Scan(&key, &avg, &c.SuccessRate); err != nil {
			return err
		}
		c.Category = key.String
		c.AvgPledged = avg.Float64
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("low success categories: %w", err)
	}
	return out, nil
}

// CategoryCountryCrossTab returns the success rate of every
// (main category, country) pair ordered by country, then rate.
func (e *Engine) CategoryCountryCrossTab(ctx context.Context) ([]core.CrossTabRow, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	out := []core.CrossTabRow{}
	err := e.queryAll(ctx, crossTabSQL(e.db.Dialect(), e.table), func(rows *core.Rows) error {
		var r core.CrossTabRow
		var category, country sql.NullString
		if err := rows.Scan(&category, &country, &r.Total, &r.SuccessRate); err != nil {
			return err
		}
		r.Category = category.String
		r.Country = country.String
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("category country cross tab: %w", err)
	}
	return out, nil
}

// Report runs every aggregation concurrently. The first failure cancels the
// rest and no partial report is returned.
func (e *Engine) Report(ctx context.Context) (*core.Report, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	report := &core.Report{GeneratedAt: time.Now().UTC()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		report.CategoryPopularity, err = e.CategoryPopularity(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.AvgPledgedByCategory, err = e.AveragePledgedByCategory(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.SuccessByCategory, err = e.SuccessRateByCategory(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.TopFunded, err = e.TopFunded(gctx, e.topLimit)
		return err
	})
	g.Go(func() (err error) {
		report.SuccessByCountry, err = e.SuccessRateByCountry(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.LowSuccessCategories, err = e.LowSuccessCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.CategoryCountry, err = e.CategoryCountryCrossTab(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Info("report generated", "categories", len(report.CategoryPopularity), "countries", len(report.SuccessByCountry))
	return report, nil
}
