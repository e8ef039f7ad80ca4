package ambient

import (
	"context"
	"testing"
)

func TestLookup_ChildWinsOverParent(t *testing.T) {
	ctx := context.Background()
	ctx = Scope(ctx, map[string]any{"timeout": 10})
	ctx = Scope(ctx, map[string]any{"timeout": 20})

	v, ok := Current(ctx).Lookup("timeout")
	if !ok || v != 20 {
		t.Fatalf("expected child binding 20, got %v (ok=%v)", v, ok)
	}
}

func TestLookup_FallsThroughToAncestor(t *testing.T) {
	ctx := context.Background()
	ctx = Scope(ctx, map[string]any{"region": "us-east"})
	ctx = Scope(ctx, map[string]any{"timeout": 5})

	v, ok := Current(ctx).Lookup("region")
	if !ok || v != "us-east" {
		t.Fatalf("expected ancestor binding us-east, got %v (ok=%v)", v, ok)
	}
}

func TestLookup_Missing(t *testing.T) {
	ctx := context.Background()
	if _, ok := Current(ctx).Lookup("nope"); ok {
		t.Fatalf("expected no binding on an empty root frame")
	}
}

func TestRootFrame_CannotBePopped(t *testing.T) {
	ctx := context.Background()
	if !Current(ctx).IsRoot() {
		t.Fatalf("a context with no Scope calls should report the root frame")
	}
}

func TestScope_SiblingBranchesDoNotLeak(t *testing.T) {
	base := Scope(context.Background(), map[string]any{"shared": 1})

	left := Scope(base, map[string]any{"side": "left"})
	right := Scope(base, map[string]any{"side": "right"})

	lv, _ := Current(left).Lookup("side")
	rv, _ := Current(right).Lookup("side")
	if lv != "left" || rv != "right" {
		t.Fatalf("sibling scopes leaked into each other: left=%v right=%v", lv, rv)
	}

	ls, _ := Current(left).Lookup("shared")
	rs, _ := Current(right).Lookup("shared")
	if ls != 1 || rs != 1 {
		t.Fatalf("sibling scopes should both still see the shared ancestor binding")
	}
}
