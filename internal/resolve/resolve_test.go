package resolve

import (
	"context"
	"testing"

	"github.com/galvinograd/purple-titanium/internal/ambient"
	"github.com/galvinograd/purple-titanium/internal/pterrors"
)

func frame(ctx context.Context) *ambient.Frame { return ambient.Current(ctx) }

func TestBind_PlainPassesThrough(t *testing.T) {
	bound, err := Bind(frame(context.Background()), "t", []Raw{
		{Name: "x", Explicit: true, Value: 5},
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if bound[0].Resolved != 5 || !bound[0].Contributes {
		t.Fatalf("unexpected bound param: %+v", bound[0])
	}
}

func TestBind_InjectableResolvesFromContext(t *testing.T) {
	ctx := ambient.Scope(context.Background(), map[string]any{"timeout": 30})
	bound, err := Bind(frame(ctx), "t", []Raw{
		{Name: "timeout", Flags: FlagInjectable, InjectableName: "timeout"},
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if bound[0].Resolved != 30 {
		t.Fatalf("expected 30, got %v", bound[0].Resolved)
	}
}

func TestBind_InjectableFallsBackToDefault(t *testing.T) {
	bound, err := Bind(frame(context.Background()), "t", []Raw{
		{Name: "timeout", Flags: FlagInjectable, InjectableName: "timeout", HasDefault: true, Default: 15},
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if bound[0].Resolved != 15 {
		t.Fatalf("expected default 15, got %v", bound[0].Resolved)
	}
}

func TestBind_MissingInjectableWithoutDefault(t *testing.T) {
	_, err := Bind(frame(context.Background()), "t", []Raw{
		{Name: "timeout", Flags: FlagInjectable, InjectableName: "timeout"},
	})
	if err == nil {
		t.Fatalf("expected MissingInjectableError")
	}
	var target *pterrors.MissingInjectableError
	if !asMissing(err, &target) {
		t.Fatalf("expected MissingInjectableError, got %v", err)
	}
}

func asMissing(err error, target **pterrors.MissingInjectableError) bool {
	if e, ok := err.(*pterrors.MissingInjectableError); ok {
		*target = e
		return true
	}
	return false
}

func TestBind_IgnoredDoesNotContribute(t *testing.T) {
	bound, err := Bind(frame(context.Background()), "t", []Raw{
		{Name: "trace_id", Explicit: true, Value: "abc", Flags: FlagIgnored},
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if bound[0].Contributes {
		t.Fatalf("ignored parameter should not contribute to the signature")
	}
}

func TestBind_IgnoredAndInjectableCanCombine(t *testing.T) {
	ctx := ambient.Scope(context.Background(), map[string]any{"run_id": "r1"})
	bound, err := Bind(frame(ctx), "t", []Raw{
		{Name: "run_id", Flags: FlagInjectable | FlagIgnored, InjectableName: "run_id"},
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if bound[0].Resolved != "r1" {
		t.Fatalf("expected run_id r1, got %v", bound[0].Resolved)
	}
	if bound[0].Contributes {
		t.Fatalf("dual-classified parameter should still not contribute")
	}
}
