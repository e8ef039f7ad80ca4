// Package scheduler implements Purple Titanium's Scheduler/Executor:
// topological discovery and execution of a task graph (serial or
// parallel), in-memory run-scoped memoization layered over a Persistence
// Store for cross-run memoization, DependencyFailed/TaskFailed
// propagation, optional fail-fast, and signature-level mutual exclusion
// for concurrent execution.
package scheduler

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/galvinograd/purple-titanium/internal/events"
	"github.com/galvinograd/purple-titanium/internal/phash"
	"github.com/galvinograd/purple-titanium/internal/pterrors"
	"github.com/galvinograd/purple-titanium/internal/signature"
	"github.com/galvinograd/purple-titanium/internal/store"
	"github.com/galvinograd/purple-titanium/internal/task"
)

// Result is one node's outcome within a run.
type Result struct {
	NodeID    task.NodeID
	Value     any
	Err       error
	FromCache bool // true if satisfied from the in-memory or persisted cache
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithStore enables cross-run persistence against backend.
func WithStore(backend store.Store) Option {
	return func(s *Scheduler) { s.store = backend }
}

// WithLogger attaches structured logging. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithEventBus attaches an events.Bus lifecycle observers are registered
// on. Defaults to a fresh bus with no observers.
func WithEventBus(bus *events.Bus) Option {
	return func(s *Scheduler) { s.bus = bus }
}

// WithFailFast stops scheduling new tasks as soon as one fails, instead
// of the default behavior of still running every branch unaffected by
// the failure.
func WithFailFast(enabled bool) Option {
	return func(s *Scheduler) { s.failFast = enabled }
}

// WithConcurrency sets the worker pool size for RunParallel. Run (serial)
// ignores this setting.
func WithConcurrency(n int) Option {
	return func(s *Scheduler) { s.concurrency = n }
}

// Scheduler executes task graphs built by the titanium package.
type Scheduler struct {
	store       store.Store
	log         *zap.Logger
	bus         *events.Bus
	failFast    bool
	concurrency int

	mu   sync.Mutex
	memo map[phash.Sum]Result
	sf   singleflight.Group
}

// New constructs a Scheduler. With no options it runs purely in-memory:
// no cross-run persistence, no observers, fail-fast disabled, serial-only.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		log:         zap.NewNop(),
		bus:         events.New(nil),
		concurrency: 1,
		memo:        map[phash.Sum]Result{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run executes every node in targets' transitive closure, serially, in
// topological order, and returns one Result per requested target (not per
// node in the closure — dependencies run but are only surfaced here if
// also requested).
func (s *Scheduler) Run(ctx context.Context, targets ...task.Output) ([]Result, error) {
	return s.run(ctx, targets, 1)
}

// RunParallel is Run but dispatches ready nodes up to the Scheduler's
// configured concurrency, using a signature-keyed singleflight.Group so
// two nodes that happen to share a signature never execute concurrently.
func (s *Scheduler) RunParallel(ctx context.Context, targets ...task.Output) ([]Result, error) {
	conc := s.concurrency
	if conc < 1 {
		conc = 1
	}
	return s.run(ctx, targets, conc)
}

// RunAsync runs targets in the background and returns a channel receiving
// the result batch once, the idiomatic Go stand-in for the spec's
// "future" return mode.
func (s *Scheduler) RunAsync(ctx context.Context, targets ...task.Output) <-chan AsyncResult {
	out := make(chan AsyncResult, 1)
	go func() {
		defer close(out)
		results, err := s.RunParallel(ctx, targets...)
		out <- AsyncResult{Results: results, Err: err}
	}()
	return out
}

// AsyncResult is what RunAsync delivers on its channel.
type AsyncResult struct {
	Results []Result
	Err     error
}

func (s *Scheduler) run(ctx context.Context, targets []task.Output, concurrency int) ([]Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(targets) == 0 {
		return nil, nil
	}
	g := targets[0].Graph()

	ids := make([]task.NodeID, len(targets))
	for i, t := range targets {
		ids[i] = t.NodeID()
	}
	order, err := task.Closure(g, ids)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	s.log.Info("run started", zap.String("run_id", runID), zap.Int("nodes", len(order)))

	nodeResults := make(map[task.NodeID]Result, len(order))
	var failed bool

	if concurrency <= 1 {
		for _, id := range order {
			if failed && s.failFast {
				nodeResults[id] = Result{NodeID: id, Err: &pterrors.CancelledError{Task: g.Node(id).Name}}
				continue
			}
			r := s.execute(ctx, g, id, nodeResults)
			nodeResults[id] = r
			if r.Err != nil {
				failed = true
			}
		}
	} else {
		if err := s.runParallelClosure(ctx, g, order, concurrency, nodeResults, &failed); err != nil {
			return nil, err
		}
	}

	s.log.Info("run finished", zap.String("run_id", runID), zap.Bool("failed", failed))

	out := make([]Result, len(targets))
	for i, t := range targets {
		out[i] = nodeResults[t.NodeID()]
	}
	return out, nil
}

// runParallelClosure dispatches order in topologically-staged waves: a
// node only starts once every dependency in its own wave or earlier has
// resolved, matching the teacher's depth-staged dispatch discipline
// generalized to a flat closure instead of precomputed depth buckets.
func (s *Scheduler) runParallelClosure(ctx context.Context, g *task.Graph, order []task.NodeID, concurrency int, nodeResults map[task.NodeID]Result, failed *bool) error {
	var mu sync.Mutex
	remaining := map[task.NodeID]bool{}
	for _, id := range order {
		remaining[id] = true
	}

	for len(remaining) > 0 {
		var wave []task.NodeID
		mu.Lock()
		for _, id := range order {
			if !remaining[id] {
				continue
			}
			ready := true
			for _, dep := range g.Node(id).DependsOn {
				if remaining[dep] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, id)
			}
		}
		mu.Unlock()

		if len(wave) == 0 {
			return pterrors.ErrCycleDetected
		}

		grp, gctx := errgroup.WithContext(ctx)
		grp.SetLimit(concurrency)
		for _, id := range wave {
			id := id
			grp.Go(func() error {
				mu.Lock()
				ff := *failed
				mu.Unlock()
				var r Result
				if ff && s.failFast {
					r = Result{NodeID: id, Err: &pterrors.CancelledError{Task: g.Node(id).Name}}
				} else {
					mu.Lock()
					snapshot := make(map[task.NodeID]Result, len(nodeResults))
					for k, v := range nodeResults {
						snapshot[k] = v
					}
					mu.Unlock()
					r = s.execute(gctx, g, id, snapshot)
				}
				mu.Lock()
				nodeResults[id] = r
				delete(remaining, id)
				if r.Err != nil {
					*failed = true
				}
				mu.Unlock()
				return nil
			})
		}
		_ = grp.Wait()
	}
	return nil
}
