package core

import (
	"context"
	"database/sql"
)

// Adapter defines the interface that all warehouse adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database.
	Connect(ctx context.Context, cfg AdapterConfig) error

	// Close closes the database connection.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// ExecTx executes statements in order inside one transaction.
	// Either every statement applies or none does.
	ExecTx(ctx context.Context, stmts ...string) ([]int64, error)

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)

	// GetTableMetadata retrieves metadata for a table.
	// Returns a *MissingObjectError when the table does not exist.
	GetTableMetadata(ctx context.Context, table string) (*TableMetadata, error)

	// TableExists reports whether a table or view with the given name exists.
	TableExists(ctx context.Context, name string) (bool, error)

	// Dialect returns the SQL dialect spoken by the adapter.
	Dialect() *Dialect
}

// AdapterConfig holds configuration for connecting to a database.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	Params   map[string]any
}

// Column represents a column in a database table.
type Column struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
	Position int    `json:"position" yaml:"position"`
}

// TableMetadata holds metadata about a database table.
type TableMetadata struct {
	Schema   string
	Name     string
	Columns  []Column
	RowCount int64
}

// HasColumn reports whether the table carries a column with the given name.
func (m *TableMetadata) HasColumn(name string) bool {
	for _, c := range m.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Rows wraps sql.Rows to provide a consistent interface.
type Rows struct {
	*sql.Rows
}
