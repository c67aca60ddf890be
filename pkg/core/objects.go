package core

// Mode is how a derived object is computed.
type Mode string

const (
	// ModeLive objects are views: every read re-runs the query.
	ModeLive Mode = "live"
	// ModeSnapshot objects are tables computed once and refreshed explicitly.
	ModeSnapshot Mode = "snapshot"
)

// DerivedObject is a named object built from the base table.
type DerivedObject struct {
	Name        string `json:"name" yaml:"name"`
	Mode        Mode   `json:"mode" yaml:"mode"`
	Description string `json:"description" yaml:"description"`
	SQL         string `json:"sql" yaml:"sql"`
}
