package state

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/nstore/internal/namespace"
)

func TestRead(t *testing.T) {
	root := map[string]any{
		"user": map[string]any{
			"bookmarks": map[string]any{"count": 2},
			"name":      "ada",
			"nothing":   nil,
		},
		"counter": 0,
	}

	tests := []struct {
		name     string
		action   string
		expected any
		found    bool
	}{
		{"no nesting returns root", "ADD", root, true},
		{"wildcard returns root", "*", root, true},
		{"empty returns root", "", root, true},
		{"one level", "user.ADD", root["user"], true},
		{"two levels", "user.bookmarks.ADD", map[string]any{"count": 2}, true},
		{"scalar node", "counter.ADD", 0, true},
		{"stored nil is found", "user.nothing.SET", nil, true},
		{"missing segment", "user.missing.ADD", nil, false},
		{"missing root key", "routes.HOME", nil, false},
		{"below scalar", "user.name.first.SET", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Read(namespace.Parse(tt.action), root)
			if ok != tt.found {
				t.Fatalf("Read(%q) found = %v, want %v", tt.action, ok, tt.found)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read(%q) = %#v, want %#v", tt.action, got, tt.expected)
			}
		})
	}
}

func TestRead_ReturnsLiveReference(t *testing.T) {
	routes := map[string]any{"url": "/"}
	root := map[string]any{"routes": routes}

	got, ok := Read(namespace.Parse("routes.HOME"), root)
	if !ok {
		t.Fatal("Read should find routes")
	}
	got.(map[string]any)["url"] = "/login"

	if routes["url"] != "/login" {
		t.Error("Read should return a reference into the tree, not a copy")
	}
}

func TestReadSegments(t *testing.T) {
	root := map[string]any{"routes": map[string]any{"url": "/"}}

	got, ok := ReadSegments([]string{"routes"}, root)
	if !ok || !reflect.DeepEqual(got, map[string]any{"url": "/"}) {
		t.Errorf("ReadSegments(routes) = %#v, %v", got, ok)
	}

	got, ok = ReadSegments(nil, root)
	if !ok || !reflect.DeepEqual(got, root) {
		t.Errorf("ReadSegments(nil) = %#v, %v; want root", got, ok)
	}

	if _, ok := ReadSegments([]string{"routes", "url", "x"}, root); ok {
		t.Error("ReadSegments below a string should not be found")
	}
}

func TestPrepare_CreatesMissingNodes(t *testing.T) {
	root := map[string]any{}

	got, err := Prepare(namespace.Parse("user.bookmarks.ADD"), root)
	if err != nil {
		t.Fatalf("Prepare error: %v", err)
	}

	expected := map[string]any{
		"user": map[string]any{
			"bookmarks": map[string]any{},
		},
	}
	if !reflect.DeepEqual(root, expected) {
		t.Errorf("root = %#v, want %#v", root, expected)
	}

	got.(map[string]any)["n"] = 1
	bookmarks := root["user"].(map[string]any)["bookmarks"].(map[string]any)
	if bookmarks["n"] != 1 {
		t.Error("Prepare should return the node inside the tree")
	}
}

func TestPrepare_KeepsExistingNodes(t *testing.T) {
	user := map[string]any{"name": "ada"}
	root := map[string]any{"user": user, "counter": 4}

	got, err := Prepare(namespace.Parse("user.RENAME"), root)
	if err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	if !reflect.DeepEqual(got, user) {
		t.Errorf("Prepare = %#v, want %#v", got, user)
	}

	got, err = Prepare(namespace.Parse("counter.ADD"), root)
	if err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	if got != 4 {
		t.Errorf("Prepare(counter.ADD) = %#v, want 4", got)
	}
	if root["counter"] != 4 {
		t.Error("Prepare must not overwrite a scalar leaf")
	}
}

func TestPrepare_NoNestingReturnsRoot(t *testing.T) {
	got, err := Prepare(namespace.Parse("ADD"), 12)
	if err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	if got != 12 {
		t.Errorf("Prepare = %#v, want 12", got)
	}
}

func TestPrepare_Conflict(t *testing.T) {
	tests := []struct {
		name    string
		root    any
		action  string
		segment string
		prefix  string
	}{
		{"scalar intermediate", map[string]any{"a": 5}, "a.b.C", "b", "a"},
		{"scalar root", 0, "a.B", "a", ""},
		{"slice intermediate", map[string]any{"a": []any{1}}, "a.b.C", "b", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Prepare(namespace.Parse(tt.action), tt.root)
			if !errors.Is(err, ErrConflict) {
				t.Fatalf("Prepare error = %v, want ErrConflict", err)
			}
			var ce *ConflictError
			if !errors.As(err, &ce) {
				t.Fatalf("error should be *ConflictError, got %T", err)
			}
			if ce.Segment != tt.segment || ce.Prefix != tt.prefix {
				t.Errorf("conflict at %q below %q, want %q below %q", ce.Segment, ce.Prefix, tt.segment, tt.prefix)
			}
		})
	}
}

func TestPrepare_ConflictLeavesValueUntouched(t *testing.T) {
	root := map[string]any{"a": map[string]any{"b": "leaf"}}

	if _, err := Prepare(namespace.Parse("a.b.c.D"), root); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if root["a"].(map[string]any)["b"] != "leaf" {
		t.Error("conflicting value must be left untouched")
	}
}

func TestLocateParent(t *testing.T) {
	root := map[string]any{}
	p := namespace.Parse("user.bookmarks.ADD")
	if _, err := Prepare(p, root); err != nil {
		t.Fatalf("Prepare error: %v", err)
	}

	parent, ok, err := LocateParent(p, root)
	if err != nil || !ok {
		t.Fatalf("LocateParent = %v, %v", ok, err)
	}
	if parent.Key != "bookmarks" {
		t.Errorf("Key = %q, want bookmarks", parent.Key)
	}
	parent.Node[parent.Key] = 7
	if root["user"].(map[string]any)["bookmarks"] != 7 {
		t.Error("parent node should be the live user mapping")
	}
}

func TestLocateParent_SingleLevel(t *testing.T) {
	root := map[string]any{"counter": 0}

	parent, ok, err := LocateParent(namespace.Parse("counter.ADD"), root)
	if err != nil || !ok {
		t.Fatalf("LocateParent = %v, %v", ok, err)
	}
	if parent.Key != "counter" {
		t.Errorf("Key = %q, want counter", parent.Key)
	}
	if !reflect.DeepEqual(parent.Node, root) {
		t.Error("parent of a first-level namespace should be the root")
	}
}

func TestLocateParent_NoNesting(t *testing.T) {
	parent, ok, err := LocateParent(namespace.Parse("ADD"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Errorf("LocateParent should report no parent, got %#v", parent)
	}
}

func TestLocateParent_Errors(t *testing.T) {
	_, _, err := LocateParent(namespace.Parse("a.b.C"), map[string]any{})
	if !errors.Is(err, ErrMissing) {
		t.Errorf("missing intermediate: got %v, want ErrMissing", err)
	}

	_, _, err = LocateParent(namespace.Parse("a.b.C"), map[string]any{"a": 1})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("scalar intermediate: got %v, want ErrConflict", err)
	}

	_, _, err = LocateParent(namespace.Parse("a.B"), "root")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("scalar root: got %v, want ErrConflict", err)
	}
}

func TestIsMapping(t *testing.T) {
	if !IsMapping(map[string]any{}) {
		t.Error("map should be a mapping")
	}
	for _, v := range []any{nil, 1, "s", []any{}, map[string]int{}} {
		if IsMapping(v) {
			t.Errorf("IsMapping(%#v) = true", v)
		}
	}
}
