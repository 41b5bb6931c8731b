package state

import (
	"errors"
	"fmt"
)

// Sentinel errors for state navigation.
var (
	// ErrConflict is returned when a path descends into a value that is not a mapping.
	ErrConflict = errors.New("structural conflict")

	// ErrMissing is returned when a node expected to exist is absent.
	ErrMissing = errors.New("missing node")
)

// ConflictError reports an attempt to address a key below a non-mapping value.
type ConflictError struct {
	// Name is the action name being navigated.
	Name string

	// Segment is the key that could not be reached.
	Segment string

	// Prefix is the dotted path of the non-mapping value, empty for the root.
	Prefix string

	// Value is the value found at Prefix.
	Value any
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	at := e.Prefix
	if at == "" {
		at = "<root>"
	}
	return fmt.Sprintf("structural conflict for %q: cannot address %q below %s (%T)", e.Name, e.Segment, at, e.Value)
}

// Is allows errors.Is to match ConflictError with ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// MissingError reports a namespace segment that is absent.
type MissingError struct {
	Name    string
	Segment string
}

// Error implements the error interface.
func (e *MissingError) Error() string {
	return fmt.Sprintf("missing node %q for %q", e.Segment, e.Name)
}

// Is allows errors.Is to match MissingError with ErrMissing.
func (e *MissingError) Is(target error) bool {
	return target == ErrMissing
}
