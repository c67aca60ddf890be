package core

import (
	"errors"
	"fmt"
)

// ErrInvalidLimit is returned when a row limit is negative.
var ErrInvalidLimit = errors.New("limit must be a non-negative integer")

// ErrNotConnected is returned when an adapter is used before Connect.
var ErrNotConnected = errors.New("database connection not established")

// MissingObjectError reports a table, view or column the workflow needs
// but the warehouse does not have.
type MissingObjectError struct {
	Kind  string // "table", "column" or "snapshot"
	Name  string
	Table string // owning table for columns
}

func (e *MissingObjectError) Error() string {
	if e.Kind == "column" && e.Table != "" {
		return fmt.Sprintf("missing column %q in table %q", e.Name, e.Table)
	}
	return fmt.Sprintf("missing %s %q", e.Kind, e.Name)
}

// IsMissingObject reports whether err wraps a *MissingObjectError.
func IsMissingObject(err error) bool {
	var m *MissingObjectError
	return errors.As(err, &m)
}
