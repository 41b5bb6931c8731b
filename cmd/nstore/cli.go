package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/nstore/loader"
	luareducer "github.com/dshills/nstore/reducer/lua"
	"github.com/dshills/nstore/store"
)

// ErrInvalidArgument is returned for malformed command line arguments.
var ErrInvalidArgument = errors.New("invalid argument")

// assignment is a "key=value" command line argument.
type assignment struct {
	Key   string
	Value string
}

// parseAssignment splits arg on its first '='.
func parseAssignment(arg string) (assignment, error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return assignment{}, fmt.Errorf("%w: %q is not key=value", ErrInvalidArgument, arg)
	}
	return assignment{Key: key, Value: value}, nil
}

// assignments collects repeated -set flags.
type assignments []assignment

func (a *assignments) String() string {
	parts := make([]string, len(*a))
	for i, as := range *a {
		parts[i] = as.Key + "=" + as.Value
	}
	return strings.Join(parts, ",")
}

func (a *assignments) Set(arg string) error {
	as, err := parseAssignment(arg)
	if err != nil {
		return err
	}
	*a = append(*a, as)
	return nil
}

// parsePayload decodes raw as JSON. Anything that is not valid JSON is
// taken as a plain string, and an empty argument means no payload.
func parsePayload(raw string) any {
	if raw == "" {
		return nil
	}
	if !gjson.Valid(raw) {
		return raw
	}
	return gjson.Parse(raw).Value()
}

// applyOverrides sets each path of overrides on a copy of initial.
// Paths use gjson syntax ("user.name", "items.0").
func applyOverrides(initial map[string]any, overrides []assignment) (map[string]any, error) {
	if len(overrides) == 0 {
		return initial, nil
	}

	doc, err := json.Marshal(initial)
	if err != nil {
		return nil, fmt.Errorf("encoding initial state: %w", err)
	}

	for _, o := range overrides {
		if gjson.Valid(o.Value) {
			doc, err = sjson.SetRawBytes(doc, o.Key, []byte(o.Value))
		} else {
			doc, err = sjson.SetBytes(doc, o.Key, o.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: -set %s: %v", ErrInvalidArgument, o.Key, err)
		}
	}

	result, ok := gjson.ParseBytes(doc).Value().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: overrides did not produce a table", ErrInvalidArgument)
	}
	return result, nil
}

// render encodes v as indented JSON, filtered through a gjson query when
// one is given.
func render(v any, query string) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding state: %w", err)
	}
	if query == "" {
		return string(out), nil
	}
	res := gjson.GetBytes(out, query)
	if !res.Exists() {
		return "", fmt.Errorf("query %q matched nothing", query)
	}
	return res.Raw, nil
}

// buildStore creates a store from a manifest: the Lua reducers it lists
// and its state table with overrides applied. The returned function
// closes the reducers.
func buildStore(m *loader.Manifest, overrides []assignment, timeout time.Duration, logger *slog.Logger) (*store.Store, func(), error) {
	var reducers []*luareducer.Reducer
	closeAll := func() {
		for _, r := range reducers {
			r.Close()
		}
	}

	initial, err := applyOverrides(m.State, overrides)
	if err != nil {
		return nil, closeAll, err
	}

	s, err := store.New(
		store.WithInitialState(initial),
		store.WithLogger(logger),
	)
	if err != nil {
		return nil, closeAll, err
	}

	for _, entry := range m.Reducers {
		r, err := luareducer.Load(entry.Script,
			luareducer.WithFunction(entry.Function),
			luareducer.WithTimeout(timeout),
		)
		if err != nil {
			return nil, closeAll, fmt.Errorf("reducer %s: %w", entry.Action, err)
		}
		reducers = append(reducers, r)
		if err := s.Register(entry.Action, r); err != nil {
			return nil, closeAll, err
		}
	}
	return s, closeAll, nil
}

// dispatchAll dispatches each "name=payload" argument in order.
func dispatchAll(s *store.Store, args []string) error {
	for _, arg := range args {
		name, raw, _ := strings.Cut(arg, "=")
		if name == "" {
			return fmt.Errorf("%w: %q has no action name", ErrInvalidArgument, arg)
		}
		if err := s.Dispatch(name, parsePayload(raw)); err != nil {
			return err
		}
	}
	return nil
}

// printer writes rendered state to w.
type printer struct {
	w     io.Writer
	query string
}

func (p printer) print(v any) error {
	out, err := render(v, p.query)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.w, out)
	return err
}
