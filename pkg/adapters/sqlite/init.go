package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/crowdstat/pkg/adapter"
)

func init() {
	adapter.Register(adapter.Warehouse{
		Type:        "sqlite",
		Description: "SQLite file via modernc.org/sqlite",
		Factory:     func(logger *slog.Logger) adapter.Adapter { return New(logger) },
	})
}
