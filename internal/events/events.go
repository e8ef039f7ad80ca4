// Package events implements Purple Titanium's Event Bus: synchronous
// delivery of task lifecycle events to registered observers, in
// deterministic order, with observer panics recovered and observer errors
// logged but never propagated to the scheduler.
package events

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Kind identifies a lifecycle event.
type Kind string

const (
	TaskStarted   Kind = "task_started"
	TaskCompleted Kind = "task_completed"
	TaskFailed    Kind = "task_failed"
	CacheHit      Kind = "cache_hit"
	CacheMiss     Kind = "cache_miss"
)

// Event carries everything an observer needs about one occurrence.
type Event struct {
	Kind      Kind
	Task      string
	Signature string
	Err       error
}

// Observer reacts to events. An Observer that panics or returns an error
// never affects the run it is observing.
type Observer interface {
	ID() string
	Notify(Event) error
}

// Bus dispatches events to every registered Observer in ID order.
type Bus struct {
	log *zap.Logger

	mu        sync.Mutex
	observers []Observer
	errs      []error
}

// New returns a Bus that logs observer failures via log. A nil log falls
// back to zap.NewNop().
func New(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{log: log}
}

// Register adds an observer. Observers dispatch in ID-sorted order,
// recomputed on each Publish so registration order never matters.
func (b *Bus) Register(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// Errors returns a snapshot of every error recorded from observers so far.
func (b *Bus) Errors() []error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]error, len(b.errs))
	copy(out, b.errs)
	return out
}

func (b *Bus) recordError(err error) {
	b.mu.Lock()
	b.errs = append(b.errs, err)
	b.mu.Unlock()
}

// Publish delivers ev to every registered observer, synchronously, in
// ID-sorted order. A panicking or error-returning observer is isolated:
// its failure is logged and recorded, and dispatch continues to the next
// observer.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	obs := make([]Observer, len(b.observers))
	copy(obs, b.observers)
	b.mu.Unlock()

	sort.Slice(obs, func(i, j int) bool { return obs[i].ID() < obs[j].ID() })

	for _, o := range obs {
		b.dispatchOne(o, ev)
	}
}

func (b *Bus) dispatchOne(o Observer, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("observer %s panicked handling %s: %v", o.ID(), ev.Kind, r)
			b.log.Warn("event observer panic", zap.String("observer", o.ID()), zap.String("event", string(ev.Kind)), zap.Any("recover", r))
			b.recordError(err)
		}
	}()
	if err := o.Notify(ev); err != nil {
		wrapped := fmt.Errorf("observer %s handling %s: %w", o.ID(), ev.Kind, err)
		b.log.Warn("event observer error", zap.String("observer", o.ID()), zap.String("event", string(ev.Kind)), zap.Error(err))
		b.recordError(wrapped)
	}
}

// Func adapts a plain function into an Observer with a fixed ID, the
// common case for a scheduler registering an ad-hoc trace/log sink.
type Func struct {
	IDValue string
	Fn      func(Event) error
}

func (f Func) ID() string          { return f.IDValue }
func (f Func) Notify(e Event) error { return f.Fn(e) }

var _ Observer = Func{}
