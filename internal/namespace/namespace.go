// Package namespace parses dotted action names into a namespace and an
// action type.
//
// An action name such as "user.bookmarks.ADD" is split on '.', '[' and ']'.
// The last segment is the action type ("ADD"); the preceding segments form
// the namespace ("user", "bookmarks"). Bracket notation is accepted so that
// "items[0].SET" addresses the same path as "items.0.SET".
package namespace

import (
	"strings"
	"sync"
)

// Separator joins segments in the canonical form of a name.
const Separator = "."

// Path is the parsed form of an action name.
//
// Paths returned by a Resolver are shared with its cache; callers must not
// modify the Namespace slice.
type Path struct {
	// Name is the literal name the path was resolved from.
	Name string

	// Namespace holds every segment except the last.
	// It is nil when the name has a single segment (or none).
	Namespace []string

	// Type is the last segment.
	Type string
}

// Nested reports whether the path addresses a nested node.
func (p Path) Nested() bool {
	return p.Namespace != nil
}

// Canonical returns the dotted form of the full path.
func (p Path) Canonical() string {
	if p.Namespace == nil {
		return p.Type
	}
	return Join(p.Namespace) + Separator + p.Type
}

// Parse resolves a name without consulting any cache.
func Parse(name string) Path {
	segments := Segments(name)
	switch len(segments) {
	case 0:
		return Path{Name: name}
	case 1:
		return Path{Name: name, Type: segments[0]}
	}
	last := len(segments) - 1
	return Path{
		Name:      name,
		Namespace: segments[:last:last],
		Type:      segments[last],
	}
}

// Segments splits a name on '.', '[' and ']', dropping empty segments.
func Segments(name string) []string {
	if name == "" {
		return nil
	}
	return strings.FieldsFunc(name, isDelimiter)
}

// Join builds the canonical dotted name from segments.
func Join(segments []string) string {
	return strings.Join(segments, Separator)
}

// Canonical rewrites a name into its dotted form.
//
// Example: "items[0].SET" -> "items.0.SET"
func Canonical(name string) string {
	return Join(Segments(name))
}

func isDelimiter(r rune) bool {
	return r == '.' || r == '[' || r == ']'
}

// Resolver memoizes Parse per literal name.
// The cache grows with the number of distinct names and is emptied by Clear.
type Resolver struct {
	mu    sync.RWMutex
	cache map[string]Path
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string]Path)}
}

// Resolve returns the parsed path for name, parsing it on first use.
func (r *Resolver) Resolve(name string) Path {
	r.mu.RLock()
	p, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return p
	}

	p = Parse(name)

	r.mu.Lock()
	r.cache[name] = p
	r.mu.Unlock()
	return p
}

// Clear empties the cache.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = make(map[string]Path)
}

// Len returns the number of cached names.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.cache)
}
