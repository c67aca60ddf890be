package core

import (
	"fmt"
	"strconv"
)

// Dialect describes the few places where warehouse SQL differs.
type Dialect struct {
	// Name is the adapter type this dialect belongs to.
	Name string

	// DefaultSchema is used when a table reference is unqualified.
	DefaultSchema string

	// FloatType is the type name used to force floating point arithmetic.
	FloatType string

	// NumberedPlaceholders selects $1, $2 over ?.
	NumberedPlaceholders bool

	// RoundViaNumeric casts to NUMERIC before ROUND and back to FloatType.
	// Postgres has no ROUND(double precision, int).
	RoundViaNumeric bool
}

// Placeholder returns the bind parameter marker for the 1-based index.
func (d *Dialect) Placeholder(index int) string {
	if d.NumberedPlaceholders {
		return "$" + strconv.Itoa(index)
	}
	return "?"
}

// Float casts expr to the dialect's floating point type.
func (d *Dialect) Float(expr string) string {
	return fmt.Sprintf("CAST(%s AS %s)", expr, d.FloatType)
}

// Round rounds expr to the given number of decimal places and yields a float.
func (d *Dialect) Round(expr string, places int) string {
	if d.RoundViaNumeric {
		return fmt.Sprintf("CAST(ROUND(CAST(%s AS NUMERIC), %d) AS %s)", expr, places, d.FloatType)
	}
	return fmt.Sprintf("ROUND(%s, %d)", d.Float(expr), places)
}

// Built-in dialects for the bundled adapters.
var (
	DuckDBDialect = &Dialect{
		Name:          "duckdb",
		DefaultSchema: "main",
		FloatType:     "DOUBLE",
	}
	PostgresDialect = &Dialect{
		Name:                 "postgres",
		DefaultSchema:        "public",
		FloatType:            "DOUBLE PRECISION",
		NumberedPlaceholders: true,
		RoundViaNumeric:      true,
	}
	SQLiteDialect = &Dialect{
		Name:          "sqlite",
		DefaultSchema: "main",
		FloatType:     "REAL",
	}
)
