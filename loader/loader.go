// Package loader reads initial state and reducer manifests from TOML or
// YAML files. The format is chosen by extension: .yaml and .yml are YAML,
// everything else is TOML.
//
// A manifest has two optional tables:
//
//	[state]
//	counter = 0
//
//	[state.user]
//	name = "ada"
//
//	[reducers]
//	"counter.ADD" = "scripts/counter.lua"
//
//	[reducers."user.RENAME"]
//	script = "scripts/user.lua"
//	function = "rename"
//
// Script paths are resolved relative to the manifest's directory.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ErrInvalidManifest is returned when a manifest has the wrong shape.
var ErrInvalidManifest = errors.New("invalid manifest")

// FileSystem abstracts file reads so loaders can be tested in memory.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// FileLoader loads state trees from TOML or YAML files.
type FileLoader struct {
	fs   FileSystem
	path string
}

// New creates a loader for path.
func New(path string) *FileLoader {
	return NewWithFS(DefaultFS(), path)
}

// NewWithFS creates a loader with a custom file system.
func NewWithFS(fsys FileSystem, path string) *FileLoader {
	return &FileLoader{fs: fsys, path: path}
}

// Path returns the configured path.
func (l *FileLoader) Path() string {
	return l.path
}

// Load reads the configured path.
func (l *FileLoader) Load() (map[string]any, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads path. A missing file returns nil, nil.
func (l *FileLoader) LoadFrom(path string) (map[string]any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return parse(path, data)
}

// LoadFromReader reads a TOML document from r.
func (l *FileLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}
	return parse("<reader>", data)
}

func parse(source string, data []byte) (map[string]any, error) {
	var (
		doc map[string]any
		err error
	)
	switch formatFor(source) {
	case FormatYAML:
		doc, err = decodeYAML(source, data)
	default:
		doc, err = decodeTOML(source, data)
	}
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc, nil
}

// ParseError reports a syntax error in a state file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReducerEntry binds an action name to a Lua script.
type ReducerEntry struct {
	// Action is the action name the reducer is registered under.
	Action string

	// Script is the script path, resolved against the manifest directory.
	Script string

	// Function is the Lua function to call; empty means the default.
	Function string
}

// Manifest is a parsed manifest file.
type Manifest struct {
	// Path is the manifest's own path.
	Path string

	// State is the initial state table. It is never nil.
	State map[string]any

	// Reducers are sorted by action name.
	Reducers []ReducerEntry
}

// Manifest reads the configured path as a manifest. Unlike Load, a missing
// file is an error.
func (l *FileLoader) Manifest() (*Manifest, error) {
	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", l.path, err)
	}
	doc, err := parse(l.path, data)
	if err != nil {
		return nil, err
	}
	return ParseManifest(l.path, doc)
}

// LoadManifest reads the manifest at path from the OS file system.
func LoadManifest(path string) (*Manifest, error) {
	return New(path).Manifest()
}

// ParseManifest builds a Manifest from a decoded document read from path.
func ParseManifest(path string, doc map[string]any) (*Manifest, error) {
	m := &Manifest{Path: path, State: make(map[string]any)}

	if raw, ok := doc["state"]; ok {
		st, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: [state] must be a table, got %T", ErrInvalidManifest, raw)
		}
		m.State = st
	}

	raw, ok := doc["reducers"]
	if !ok {
		return m, nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: [reducers] must be a table, got %T", ErrInvalidManifest, raw)
	}

	dir := filepath.Dir(path)
	actions := make([]string, 0, len(table))
	for action := range table {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	for _, action := range actions {
		entry := ReducerEntry{Action: action}
		switch v := table[action].(type) {
		case string:
			entry.Script = v
		case map[string]any:
			entry.Script, _ = v["script"].(string)
			entry.Function, _ = v["function"].(string)
		default:
			return nil, fmt.Errorf("%w: reducer %q must be a script path or table, got %T", ErrInvalidManifest, action, v)
		}
		if entry.Script == "" {
			return nil, fmt.Errorf("%w: reducer %q has no script", ErrInvalidManifest, action)
		}
		if !filepath.IsAbs(entry.Script) {
			entry.Script = filepath.Join(dir, entry.Script)
		}
		m.Reducers = append(m.Reducers, entry)
	}
	return m, nil
}
