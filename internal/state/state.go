// Package state navigates and mutates nested state trees addressed by a
// resolved namespace path.
//
// A state tree is built from map[string]any mapping nodes; any other value
// (including []any) is treated as a leaf. All navigation returns references
// into the live tree, never copies.
package state

import (
	"github.com/dshills/nstore/internal/namespace"
)

// Wildcard is the channel name that always addresses the root.
const Wildcard = "*"

// Parent addresses the node holding the last namespace segment.
type Parent struct {
	// Node is the mapping that contains Key.
	Node map[string]any

	// Key is the last namespace segment.
	Key string
}

// Read walks the namespace of p from root without modifying anything.
// It returns false if any segment is missing or a non-mapping value sits
// in the way. A stored nil is a found value.
// Paths without nesting, and the wildcard, address root itself.
func Read(p namespace.Path, root any) (any, bool) {
	if !p.Nested() || p.Name == Wildcard {
		return root, true
	}
	return walk(p.Namespace, root)
}

// ReadSegments walks segments from root, treating every segment as
// namespace.
func ReadSegments(segments []string, root any) (any, bool) {
	return walk(segments, root)
}

func walk(segments []string, root any) (any, bool) {
	current := root
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		val, exists := m[seg]
		if !exists {
			return nil, false
		}
		current = val
	}
	return current, true
}

// Prepare walks the namespace of p from root, creating an empty mapping
// for every missing segment, and returns the node at the end of the
// namespace. Paths without nesting return root.
//
// An existing value that is not a mapping is never replaced: descending
// into it returns a *ConflictError.
func Prepare(p namespace.Path, root any) (any, error) {
	if !p.Nested() {
		return root, nil
	}

	current := root
	for i, seg := range p.Namespace {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, conflict(p, i, current)
		}
		next, exists := m[seg]
		if !exists {
			next = make(map[string]any)
			m[seg] = next
		}
		current = next
	}
	return current, nil
}

// LocateParent returns the mapping holding the last namespace segment of
// p together with that segment. It reports false when p has no nesting,
// in which case the caller owns the root directly.
//
// LocateParent does not create nodes; call Prepare first.
func LocateParent(p namespace.Path, root any) (Parent, bool, error) {
	if !p.Nested() {
		return Parent{}, false, nil
	}

	last := len(p.Namespace) - 1
	current := root
	for i := 0; i < last; i++ {
		m, ok := current.(map[string]any)
		if !ok {
			return Parent{}, false, conflict(p, i, current)
		}
		next, exists := m[p.Namespace[i]]
		if !exists {
			return Parent{}, false, &MissingError{Name: p.Name, Segment: p.Namespace[i]}
		}
		current = next
	}

	node, ok := current.(map[string]any)
	if !ok {
		return Parent{}, false, conflict(p, last, current)
	}
	return Parent{Node: node, Key: p.Namespace[last]}, true, nil
}

// IsMapping reports whether v is a mapping node.
func IsMapping(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func conflict(p namespace.Path, index int, value any) error {
	return &ConflictError{
		Name:    p.Name,
		Segment: p.Namespace[index],
		Prefix:  namespace.Join(p.Namespace[:index]),
		Value:   value,
	}
}
