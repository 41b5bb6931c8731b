package store

// Action is what a reducer receives besides the current state.
type Action struct {
	// Name is the full dispatched action name.
	Name string

	// Payload is the value passed to Dispatch.
	Payload any
}

// Reducer computes the next state of the node addressed by an action's
// namespace. It should not retain state; it may return the state it was
// given after modifying it.
type Reducer interface {
	Reduce(state any, action Action) (any, error)
}

// ReducerFunc adapts a function that only needs the payload.
type ReducerFunc func(state, payload any) (any, error)

// Reduce calls f(state, action.Payload).
func (f ReducerFunc) Reduce(state any, action Action) (any, error) {
	return f(state, action.Payload)
}

// NamedReducerFunc adapts a function that also receives the action name,
// for reducers shared by several names.
type NamedReducerFunc func(state any, name string, payload any) (any, error)

// Reduce calls f(state, action.Name, action.Payload).
func (f NamedReducerFunc) Reduce(state any, action Action) (any, error) {
	return f(state, action.Name, action.Payload)
}

// Mode selects how Register treats an existing name.
type Mode int

const (
	// ModeInsert fails with ErrAlreadyExists if the name is taken.
	ModeInsert Mode = iota

	// ModeReplace fails with ErrDoesNotExist if the name is free.
	ModeReplace

	// ModeUpsert always succeeds.
	ModeUpsert
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeInsert:
		return "insert"
	case ModeReplace:
		return "replace"
	case ModeUpsert:
		return "upsert"
	default:
		return "unknown"
	}
}
