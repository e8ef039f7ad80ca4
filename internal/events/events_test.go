package events

import (
	"errors"
	"testing"
)

type recordingObserver struct {
	id   string
	seen *[]Kind
}

func (r recordingObserver) ID() string { return r.id }
func (r recordingObserver) Notify(e Event) error {
	*r.seen = append(*r.seen, e.Kind)
	return nil
}

func TestPublish_DeterministicObserverOrder(t *testing.T) {
	b := New(nil)
	var order []string
	b.Register(Func{IDValue: "zzz", Fn: func(Event) error { order = append(order, "zzz"); return nil }})
	b.Register(Func{IDValue: "aaa", Fn: func(Event) error { order = append(order, "aaa"); return nil }})

	b.Publish(Event{Kind: TaskStarted, Task: "t"})

	if len(order) != 2 || order[0] != "aaa" || order[1] != "zzz" {
		t.Fatalf("expected ID-sorted dispatch order, got %v", order)
	}
}

func TestPublish_ObserverPanicDoesNotStopDispatch(t *testing.T) {
	b := New(nil)
	var seen []Kind
	b.Register(Func{IDValue: "a-panics", Fn: func(Event) error { panic("boom") }})
	b.Register(recordingObserver{id: "b-records", seen: &seen})

	b.Publish(Event{Kind: TaskCompleted, Task: "t"})

	if len(seen) != 1 {
		t.Fatalf("expected the second observer to still run, seen=%v", seen)
	}
	if errs := b.Errors(); len(errs) != 1 {
		t.Fatalf("expected one recorded error from the panic, got %v", errs)
	}
}

func TestPublish_ObserverErrorIsRecordedNotPropagated(t *testing.T) {
	b := New(nil)
	b.Register(Func{IDValue: "x", Fn: func(Event) error { return errors.New("observer failed") }})

	b.Publish(Event{Kind: CacheHit, Task: "t"})

	if errs := b.Errors(); len(errs) != 1 {
		t.Fatalf("expected one recorded error, got %v", errs)
	}
}
