// Package main is the entry point for the nstore command.
//
// nstore loads a TOML manifest describing an initial state and the Lua
// reducers that handle each action, dispatches the actions given on the
// command line, and prints the resulting state as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/nstore/internal/logging"
	"github.com/dshills/nstore/loader"
	"github.com/dshills/nstore/store"
	"github.com/dshills/nstore/watcher"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	manifest  string
	overrides assignments
	query     string
	watch     string
	timeout   time.Duration
	logLevel  string
	logFormat string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, args := parseFlags()

	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(opts.logLevel),
		Format: logging.ParseFormat(opts.logFormat),
	})

	m, err := loader.LoadManifest(opts.manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	s, closeReducers, err := buildStore(m, opts.overrides, opts.timeout, logger)
	defer closeReducers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if _, err := s.On(store.Wildcard, func(any) {
		logger.Debug("state changed")
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := dispatchAll(s, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	out := printer{w: os.Stdout, query: opts.query}
	if err := out.print(s.State()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.watch == "" {
		return 0
	}
	if err := watch(s, m.Path, opts.watch, out, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// watch re-dispatches action with the manifest's [state] table every time
// the manifest changes, printing the state after each dispatch, until
// interrupted.
func watch(s *store.Store, path, action string, out printer, logger *slog.Logger) error {
	w, err := watcher.New(path, action, s,
		watcher.WithLogger(logger),
		watcher.WithLoadFunc(func(p string) (any, error) {
			m, err := loader.LoadManifest(p)
			if err != nil {
				return nil, err
			}
			return m.State, nil
		}),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	sub, err := s.On(store.Wildcard, func(st any) {
		if err := out.print(st); err != nil {
			logger.Warn("printing state", "error", err)
		}
	})
	if err != nil {
		return err
	}
	defer s.Off(sub)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("watching manifest", "path", w.Path(), "action", action)
	return w.Run(ctx)
}

func parseFlags() (options, []string) {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.manifest, "manifest", "nstore.toml", "Path to the manifest file")
	flag.StringVar(&opts.manifest, "m", "nstore.toml", "Path to the manifest file (shorthand)")
	flag.Var(&opts.overrides, "set", "Override an initial state value, path=value (repeatable)")
	flag.StringVar(&opts.query, "query", "", "Print only the part of the state matching this query")
	flag.StringVar(&opts.query, "q", "", "Query (shorthand)")
	flag.StringVar(&opts.watch, "watch", "", "Dispatch this action with the [state] table whenever the manifest changes")
	flag.DurationVar(&opts.timeout, "timeout", 5*time.Second, "Maximum time a reducer may run (0 disables)")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "nstore - namespaced state store\n\n")
		fmt.Fprintf(os.Stderr, "Usage: nstore [options] [action=payload...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  nstore counter.ADD counter.ADD        Dispatch twice, print the state\n")
		fmt.Fprintf(os.Stderr, "  nstore -set counter=10 counter.ADD    Start the counter at 10\n")
		fmt.Fprintf(os.Stderr, "  nstore 'user.SET={\"name\":\"ada\"}'     Dispatch with a JSON payload\n")
		fmt.Fprintf(os.Stderr, "  nstore -q user.name user.SET=ada      Print one value\n")
		fmt.Fprintf(os.Stderr, "  nstore -watch settings.LOAD           Reload [state] on every edit\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("nstore %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	return opts, flag.Args()
}
