package store

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/dshills/nstore/event"
	"github.com/dshills/nstore/internal/logging"
	"github.com/dshills/nstore/internal/namespace"
	"github.com/dshills/nstore/internal/state"
	"github.com/dshills/nstore/internal/topic"
)

// Wildcard is the channel notified on every dispatch with the root state.
const Wildcard = string(topic.Wildcard)

// Store holds a state tree and the reducers that update it.
//
// A Store is not safe for concurrent use. Dispatch runs the reducer and
// every listener before it returns; listeners may dispatch other actions,
// but must not dispatch the action currently being delivered.
type Store struct {
	reducers map[string]Reducer

	root       any
	previous   any
	dispatched bool

	resolver *namespace.Resolver
	planner  *topic.Planner
	events   *event.Emitter
	logger   *slog.Logger
}

// New creates a store.
func New(opts ...Option) (*Store, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	resolver := namespace.NewResolver()
	s := &Store{
		reducers: make(map[string]Reducer, len(cfg.reducers)),
		root:     rootOrEmpty(cfg.initialState),
		resolver: resolver,
		planner:  topic.NewPlanner(resolver),
		events:   cfg.emitter,
		logger:   cfg.logger,
	}
	if s.events == nil {
		s.events = event.NewEmitter()
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}

	if err := s.RegisterAll(cfg.reducers, ModeInsert); err != nil {
		return nil, err
	}
	return s, nil
}

func rootOrEmpty(v any) any {
	if v == nil {
		return make(map[string]any)
	}
	return v
}

// Register adds a reducer under name. It fails with ErrAlreadyExists if
// the name is taken.
func (s *Store) Register(name string, r Reducer) error {
	return s.RegisterMode(name, r, ModeInsert)
}

// Replace swaps the reducer under name. It fails with ErrDoesNotExist if
// nothing is registered there.
func (s *Store) Replace(name string, r Reducer) error {
	return s.RegisterMode(name, r, ModeReplace)
}

// Upsert registers or replaces the reducer under name.
func (s *Store) Upsert(name string, r Reducer) error {
	return s.RegisterMode(name, r, ModeUpsert)
}

// RegisterMode registers r under name according to mode.
func (s *Store) RegisterMode(name string, r Reducer, mode Mode) error {
	if name == "" {
		return ErrInvalidName
	}
	if r == nil {
		return fmt.Errorf("%w: %s", ErrNilReducer, name)
	}

	_, exists := s.reducers[name]
	switch {
	case mode == ModeInsert && exists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	case mode == ModeReplace && !exists:
		return fmt.Errorf("%w: %s", ErrDoesNotExist, name)
	}

	s.reducers[name] = r
	s.logger.Debug("reducer registered", "action", name, "mode", mode.String())
	return nil
}

// RegisterAll registers every entry of reducers with the same mode, in
// name order. It stops at the first failure; entries applied before it
// stay registered.
func (s *Store) RegisterAll(reducers map[string]Reducer, mode Mode) error {
	names := make([]string, 0, len(reducers))
	for name := range reducers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.RegisterMode(name, reducers[name], mode); err != nil {
			return err
		}
	}
	return nil
}

// Deregister removes the reducer under name and reports whether one was there.
func (s *Store) Deregister(name string) bool {
	if _, exists := s.reducers[name]; !exists {
		return false
	}
	delete(s.reducers, name)
	s.logger.Debug("reducer removed", "action", name)
	return true
}

// Reducer returns the reducer registered under name.
func (s *Store) Reducer(name string) (Reducer, bool) {
	r, ok := s.reducers[name]
	return r, ok
}

// Names returns the registered action names, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.reducers))
	for name := range s.reducers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the reducer registered under name against the state
// addressed by its namespace, writes the result back and notifies every
// channel from the action itself up to the wildcard.
//
// Missing intermediate nodes are created before the reducer runs and are
// left in place if it fails. A reducer error is returned as *ActionError;
// a structural conflict is returned as the *state.ConflictError itself,
// which already names the action, and matches ErrConflict. A nil result
// for an action without namespace leaves the root unchanged.
func (s *Store) Dispatch(name string, payload any) error {
	r, ok := s.reducers[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDoesNotExist, name)
	}

	s.previous = state.Clone(s.root)
	s.dispatched = true

	p := s.resolver.Resolve(name)
	current, err := state.Prepare(p, s.root)
	if err != nil {
		return err
	}
	parent, hasParent, err := state.LocateParent(p, s.root)
	if err != nil {
		return err
	}

	next, err := r.Reduce(current, Action{Name: name, Payload: payload})
	if err != nil {
		return &ActionError{Name: name, Err: err}
	}

	strategy := resolveStrategy(current, next, hasParent)
	switch strategy {
	case MergeMapping:
		state.Merge(current.(map[string]any), next.(map[string]any))
	case ReplaceByParentKey:
		parent.Node[parent.Key] = next
	case ReplaceRoot:
		if next != nil {
			s.root = next
		}
	}
	s.logger.Debug("action dispatched", "action", name, "strategy", strategy.String())

	for _, channel := range s.planner.Plan(name) {
		s.events.Emit(channel, s.scoped(channel))
	}
	return nil
}

// scoped returns the state view delivered on channel: the node addressed
// by the channel's namespace, or the root for the wildcard.
func (s *Store) scoped(channel string) any {
	view, _ := state.Read(s.resolver.Resolve(channel), s.root)
	return view
}

// State returns the root state. Mapping nodes are live references.
func (s *Store) State() any {
	return s.root
}

// StateAt returns the node addressed by name, treating every segment of
// name as namespace: StateAt("routes") is the value under the "routes" key.
// It reports false if any segment is missing.
func (s *Store) StateAt(name string) (any, bool) {
	return state.ReadSegments(namespace.Segments(name), s.root)
}

// PreviousState returns the copy of the root taken when the most recent
// dispatch started, or nil before the first dispatch.
//
// Mappings are merged in place, so the copy is a deep one: every dispatch
// costs time and memory proportional to the size of the whole tree.
func (s *Store) PreviousState() any {
	return s.previous
}

// PreviousStateAt is StateAt against PreviousState.
func (s *Store) PreviousStateAt(name string) (any, bool) {
	if !s.dispatched {
		return nil, false
	}
	return state.ReadSegments(namespace.Segments(name), s.previous)
}

// SetInitialState replaces the root state. It fails with ErrNotAllowed
// once any action has been dispatched.
func (s *Store) SetInitialState(initial any) error {
	if s.dispatched {
		return ErrNotAllowed
	}
	s.root = rootOrEmpty(initial)
	return nil
}

// ClearCache empties the parsed-name and notification-plan caches.
func (s *Store) ClearCache() {
	s.resolver.Clear()
	s.planner.Clear()
}

// On subscribes listener to channel. Channels use the dotted form; bracket
// segments are rewritten, so "items[0]" listens on "items.0".
func (s *Store) On(channel string, listener event.Listener) (*event.Subscription, error) {
	return s.events.On(canonicalChannel(channel), listener)
}

// Once subscribes listener to channel for a single notification.
func (s *Store) Once(channel string, listener event.Listener) (*event.Subscription, error) {
	return s.events.Once(canonicalChannel(channel), listener)
}

// Off removes a subscription created by On or Once.
func (s *Store) Off(sub *event.Subscription) error {
	return s.events.Off(sub)
}

// Events returns the emitter that delivers notifications.
func (s *Store) Events() *event.Emitter {
	return s.events
}

func canonicalChannel(channel string) string {
	return namespace.Canonical(channel)
}
