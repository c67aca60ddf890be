// Package core defines the shared language of crowdstat.
//
// This package contains:
//   - Domain entities (Project, report rows, snapshot markers)
//   - Service interfaces (Adapter, Store)
//   - Configuration types (AdapterConfig, TargetConfig)
//   - Dialect descriptions used to render portable SQL
//
// pkg/core imports only the standard library.
// All other packages depend on core, not the reverse.
package core
