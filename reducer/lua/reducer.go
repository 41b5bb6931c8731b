// Package lua runs store reducers written in Lua.
//
// A script defines a global function, "reduce" by default, called as
//
//	reduce(state, payload, name)
//
// and returning the next state. Tables with keys 1..n are exchanged as
// []any, every other table as map[string]any, and integral numbers come
// back as int64.
//
// Scripts run in a restricted state: only the base, table, string and math
// libraries are loaded, and file loading is removed from the base library.
//
// IMPORTANT: gopher-lua's LState is not goroutine-safe. A Reducer guards
// its state with a mutex, so one script is never entered concurrently.
package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/nstore/store"
)

// DefaultFunction is the global function called by Reduce.
const DefaultFunction = "reduce"

// ErrClosed is returned when calling a closed reducer.
var ErrClosed = errors.New("lua reducer is closed")

// Option configures a Reducer.
type Option func(*options)

type options struct {
	function string
	timeout  time.Duration
}

// WithFunction sets the name of the global function to call.
func WithFunction(name string) Option {
	return func(o *options) {
		if name != "" {
			o.function = name
		}
	}
}

// WithTimeout bounds each call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Reducer is a store.Reducer backed by a Lua function.
type Reducer struct {
	mu      sync.Mutex
	L       *lua.LState
	fn      *lua.LFunction
	name    string
	timeout time.Duration
	closed  bool
}

var _ store.Reducer = (*Reducer)(nil)

// New compiles code and binds the reducer function it defines.
func New(code string, opts ...Option) (*Reducer, error) {
	return build(func(L *lua.LState) error { return L.DoString(code) }, opts)
}

// Load runs the script at path and binds the reducer function it defines.
func Load(path string, opts ...Option) (*Reducer, error) {
	r, err := build(func(L *lua.LState) error { return L.DoFile(path) }, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return r, nil
}

func build(run func(*lua.LState) error, opts []Option) (*Reducer, error) {
	o := options{function: DefaultFunction}
	for _, opt := range opts {
		opt(&o)
	}

	L := newSandbox()
	if err := run(L); err != nil {
		L.Close()
		return nil, err
	}

	fn, ok := L.GetGlobal(o.function).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("function %q not defined", o.function)
	}

	return &Reducer{
		L:       L,
		fn:      fn,
		name:    o.function,
		timeout: o.timeout,
	}, nil
}

// newSandbox creates a Lua state with only safe libraries opened.
func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// Reduce calls the Lua function with the state, the payload and the
// action name, and returns its first result.
func (r *Reducer) Reduce(state any, action store.Action) (result any, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	if r.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.L.SetContext(ctx)
		defer r.L.RemoveContext()
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("lua panic in %s: %v", r.name, p)
		}
	}()

	if err := r.L.CallByParam(lua.P{
		Fn:      r.fn,
		NRet:    1,
		Protect: true,
	}, toLua(r.L, state), toLua(r.L, action.Payload), lua.LString(action.Name)); err != nil {
		return nil, err
	}

	ret := r.L.Get(-1)
	r.L.Pop(1)
	return toGo(ret), nil
}

// Close releases the Lua state. It is safe to call more than once.
func (r *Reducer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.L.Close()
}
