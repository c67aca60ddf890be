package engine

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// BuildViews (re)defines every live view in one transaction, so a reader
// sees either all old definitions or all new ones.
func (e *Engine) BuildViews(ctx context.Context) ([]string, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	views := e.objectsByMode(core.ModeLive)
	stmts := make([]string, 0, 2*len(views))
	names := make([]string, 0, len(views))
	for _, v := range views {
		stmts = append(stmts,
			fmt.Sprintf("DROP VIEW IF EXISTS %s", v.Name),
			fmt.Sprintf("CREATE VIEW %s AS %s", v.Name, v.SQL),
		)
		names = append(names, v.Name)
	}

	if _, err := e.db.ExecTx(ctx, stmts...); err != nil {
		return nil, fmt.Errorf("failed to define views: %w", err)
	}

	e.logger.Info("views defined", "views", names)
	return names, nil
}

// ReadView returns the current rows of a live view.
func (e *Engine) ReadView(ctx context.Context, name string) (*core.ResultSet, error) {
	obj, err := e.lookup(name, core.ModeLive)
	if err != nil {
		return nil, err
	}
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	exists, err := e.db.TableExists(ctx, obj.Name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &core.MissingObjectError{Kind: "view", Name: obj.Name}
	}

	return e.readAll(ctx, fmt.Sprintf("SELECT * FROM %s", obj.Name))
}

// Query runs an arbitrary read statement and returns its rows.
func (e *Engine) Query(ctx context.Context, query string, args ...any) (*core.ResultSet, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	return e.readAll(ctx, query, args...)
}

func (e *Engine) readAll(ctx context.Context, query string, args ...any) (*core.ResultSet, error) {
	rows, err := e.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return readResultSet(rows)
}

// Describe returns the columns of a warehouse relation.
func (e *Engine) Describe(ctx context.Context, name string) (*core.TableMetadata, error) {
	if !identRe.MatchString(name) {
		return nil, fmt.Errorf("invalid relation name %q", name)
	}
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	return e.db.GetTableMetadata(ctx, name)
}
