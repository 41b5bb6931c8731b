package store

import (
	"errors"

	"github.com/dshills/nstore/internal/state"
)

// Sentinel errors for the store.
var (
	// ErrDoesNotExist is returned when dispatching or replacing an unregistered name.
	ErrDoesNotExist = errors.New("reducer does not exist")

	// ErrAlreadyExists is returned when registering a name that is taken.
	ErrAlreadyExists = errors.New("reducer already exists")

	// ErrNotAllowed is returned when replacing the initial state after a dispatch.
	ErrNotAllowed = errors.New("operation not allowed")

	// ErrInvalidName is returned for an empty action name.
	ErrInvalidName = errors.New("invalid action name")

	// ErrNilReducer is returned when a nil reducer is registered.
	ErrNilReducer = errors.New("reducer cannot be nil")

	// ErrConflict is returned when an action addresses a key below a value
	// that is not a mapping, such as dispatching "a.b.C" against {a: 5}.
	ErrConflict = state.ErrConflict
)

// ActionError wraps an error returned by a reducer.
type ActionError struct {
	// Name is the dispatched action name.
	Name string

	// Err is the reducer's error.
	Err error
}

// Error implements the error interface.
func (e *ActionError) Error() string {
	return "reducer " + e.Name + " failed: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ActionError) Unwrap() error {
	return e.Err
}
