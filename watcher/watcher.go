// Package watcher turns edits of a state file into store dispatches.
//
// A Watcher observes one file. Whenever it is written, created or renamed
// into place, the file is reloaded and the configured action is dispatched
// with the loaded document as payload. Bursts of events are coalesced by a
// short debounce.
//
// Run executes in the caller's goroutine and dispatches from it, so a
// store that is only touched from that goroutine needs no locking.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/nstore/internal/logging"
	"github.com/dshills/nstore/loader"
)

// DefaultDebounce is how long the watcher waits for more events before reloading.
const DefaultDebounce = 50 * time.Millisecond

// ErrPathNotExist is returned when the watched file does not exist.
var ErrPathNotExist = errors.New("path does not exist")

// Dispatcher receives the reloaded document. *store.Store implements it.
type Dispatcher interface {
	Dispatch(name string, payload any) error
}

// LoadFunc reads the watched file into a dispatch payload.
type LoadFunc func(path string) (any, error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLoadFunc replaces the default loader, which decodes the whole file
// as TOML or YAML.
func WithLoadFunc(fn LoadFunc) Option {
	return func(w *Watcher) {
		if fn != nil {
			w.load = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithErrorHandler is called for load, dispatch and watch errors.
// Run keeps going after reporting them.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher dispatches an action every time a file changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	action   string
	target   Dispatcher
	load     LoadFunc
	debounce time.Duration
	logger   *slog.Logger
	onError  func(error)
}

// New watches path and dispatches action on target after each change.
func New(path, action string, target Dispatcher, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotExist, absPath)
		}
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		action:   action,
		target:   target,
		load:     loadFile,
		debounce: DefaultDebounce,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, err
	}
	w.fsw = fsw
	return w, nil
}

func loadFile(path string) (any, error) {
	doc, err := loader.New(path).Load()
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotExist, path)
	}
	return doc, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run processes file events until ctx is done or the watcher is closed.
// It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.report(fmt.Errorf("watching %s: %w", w.path, err))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// reload loads the file and dispatches it.
func (w *Watcher) reload() {
	payload, err := w.load(w.path)
	if err != nil {
		w.report(fmt.Errorf("reloading %s: %w", w.path, err))
		return
	}
	if err := w.target.Dispatch(w.action, payload); err != nil {
		w.report(fmt.Errorf("dispatching %s: %w", w.action, err))
		return
	}
	w.logger.Debug("file change dispatched", "path", w.path, "action", w.action)
}

func (w *Watcher) report(err error) {
	w.logger.Warn("watcher error", "error", err)
	if w.onError != nil {
		w.onError(err)
	}
}

// Close stops watching. A running Run returns.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
