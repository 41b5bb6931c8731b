package store

import "github.com/dshills/nstore/internal/state"

// MergeStrategy is how a reducer's result is written back into the tree.
type MergeStrategy int

const (
	// MergeMapping shallow-merges the result into the existing mapping,
	// keeping its identity.
	MergeMapping MergeStrategy = iota

	// ReplaceByParentKey assigns the result to the parent mapping under
	// the last namespace segment.
	ReplaceByParentKey

	// ReplaceRoot replaces the whole root state.
	ReplaceRoot
)

// String returns a human-readable strategy name.
func (m MergeStrategy) String() string {
	switch m {
	case MergeMapping:
		return "merge"
	case ReplaceByParentKey:
		return "replace-key"
	case ReplaceRoot:
		return "replace-root"
	default:
		return "unknown"
	}
}

// resolveStrategy picks the strategy from the shapes of the current
// substate, the reducer result and whether a parent exists.
func resolveStrategy(current, next any, hasParent bool) MergeStrategy {
	switch {
	case state.IsMapping(current) && state.IsMapping(next):
		return MergeMapping
	case hasParent:
		return ReplaceByParentKey
	default:
		return ReplaceRoot
	}
}
