// Package topic computes the channels notified when an action is
// dispatched.
//
// Channels are hierarchical, dot-separated names. A dispatch of
// "a.b.C" notifies, in order:
//
//	a.b.C   - the action itself
//	a.b     - each enclosing namespace, most specific first
//	a
//	*       - the wildcard channel
package topic

import (
	"strings"

	"github.com/dshills/nstore/internal/namespace"
)

// Topic is a hierarchical channel name using dot notation.
type Topic string

const (
	// Wildcard is the channel notified on every dispatch.
	Wildcard Topic = "*"

	// Separator is the character used to separate topic segments.
	Separator = namespace.Separator
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Parent returns the topic with its last segment removed.
// Returns an empty topic if there is no parent.
//
// Example: "user.bookmarks.ADD" -> "user.bookmarks"
func (t Topic) Parent() Topic {
	s := string(t)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return ""
	}
	return Topic(s[:idx])
}

// IsWildcard reports whether the topic is the wildcard channel.
func (t Topic) IsWildcard() bool {
	return t == Wildcard
}

// Bubble returns t followed by each of its ancestors, most specific first.
// The wildcard is not included.
func Bubble(t Topic) []Topic {
	if t == "" {
		return nil
	}
	result := make([]Topic, 0, strings.Count(string(t), Separator)+1)
	for ; t != ""; t = t.Parent() {
		result = append(result, t)
	}
	return result
}
