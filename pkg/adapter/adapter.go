// Package adapter provides warehouse adapter interfaces and shared plumbing
// for crowdstat's analysis engine.
//
// Concrete adapter implementations live in pkg/adapters/ subdirectories and
// register themselves from init().
package adapter

import "github.com/leapstack-labs/crowdstat/pkg/core"

// Type aliases so adapter implementations can stay within this package's vocabulary.
type (
	// Adapter is an alias for core.Adapter.
	Adapter = core.Adapter

	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.Column.
	Column = core.Column

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata

	// Rows is an alias for core.Rows.
	Rows = core.Rows
)
