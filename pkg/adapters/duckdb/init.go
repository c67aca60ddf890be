package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/crowdstat/pkg/adapter"
)

// init registers the DuckDB adapter.
// Import this package with a blank identifier to make "duckdb" available:
//
//	import _ "github.com/leapstack-labs/crowdstat/pkg/adapters/duckdb"
func init() {
	adapter.Register(adapter.Warehouse{
		Type:        "duckdb",
		Description: "DuckDB file or in-memory database",
		Factory:     func(logger *slog.Logger) adapter.Adapter { return New(logger) },
	})
}
