package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no complaint document exists for an ID
var ErrNotFound = errors.New("complaint not found")

// ValidationError reports a schema violation that caused a save to be
// refused. The record on disk is unchanged when this is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid complaint: %s: %s", e.Field, e.Reason)
}
