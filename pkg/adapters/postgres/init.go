package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/crowdstat/pkg/adapter"
)

// init registers the PostgreSQL adapter.
// Import this package with a blank identifier to make "postgres" available:
//
//	import _ "github.com/leapstack-labs/crowdstat/pkg/adapters/postgres"
func init() {
	adapter.Register(adapter.Warehouse{
		Type:        "postgres",
		Description: "PostgreSQL server via pgx",
		Factory:     func(logger *slog.Logger) adapter.Adapter { return New(logger) },
	})
}
