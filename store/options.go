package store

import (
	"log/slog"

	"github.com/dshills/nstore/event"
)

// Option configures a Store.
type Option func(*config)

// config contains construction settings for a Store.
type config struct {
	reducers     map[string]Reducer
	initialState any
	logger       *slog.Logger
	emitter      *event.Emitter
}

// WithReducers registers reducers at construction, in ModeInsert.
func WithReducers(reducers map[string]Reducer) Option {
	return func(c *config) {
		if c.reducers == nil {
			c.reducers = make(map[string]Reducer, len(reducers))
		}
		for name, r := range reducers {
			c.reducers[name] = r
		}
	}
}

// WithInitialState sets the root state. Without it, or when initial is nil,
// the root is an empty mapping.
func WithInitialState(initial any) Option {
	return func(c *config) {
		c.initialState = initial
	}
}

// WithLogger sets the logger. Dispatches and registrations are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEmitter shares an existing emitter instead of creating one.
func WithEmitter(e *event.Emitter) Option {
	return func(c *config) {
		if e != nil {
			c.emitter = e
		}
	}
}
