package titanium

import (
	"context"
	"fmt"
	"sync"

	"github.com/galvinograd/purple-titanium/internal/ambient"
	"github.com/galvinograd/purple-titanium/internal/events"
	"github.com/galvinograd/purple-titanium/internal/pterrors"
	"github.com/galvinograd/purple-titanium/internal/resolve"
	"github.com/galvinograd/purple-titanium/internal/signature"
	"github.com/galvinograd/purple-titanium/internal/task"
)

// Engine owns one task Graph. Replaces the teacher's global singleton
// registry: every Declare call takes an explicit Engine rather than
// reaching for package-level state, so two graphs never interfere even
// within the same process.
type Engine struct {
	graph *task.Graph
	mu    sync.Mutex
	bus   *events.Bus
}

// New returns an empty Engine.
func New() *Engine {
	return &Engine{graph: task.NewGraph(), bus: events.New(nil)}
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// Default returns a process-wide Engine, created lazily on first use. Most
// programs declare every task against one graph and never need more than
// this; New remains available for tests and multi-graph use.
func Default() *Engine {
	defaultEngineOnce.Do(func() { defaultEngine = New() })
	return defaultEngine
}

// Graph exposes the underlying arena, e.g. for passing to a Scheduler.
func (e *Engine) Graph() *task.Graph { return e.graph }

// Events returns the Engine's event bus, for registering observers before
// running a Scheduler built WithEventBus(e.Events()).
func (e *Engine) Events() *events.Bus { return e.bus }

// declare is the untyped core every DeclareN wraps: it binds params
// against ctx's active frame, scans the bound values for upstream
// dependencies, computes the signature, and appends the node to the
// graph. makeBody receives the bound parameters (each Bound.Resolved is
// either a direct value or a dependency reference to resolve at
// execution time) and returns the erased task.Run closing over them.
func declare(ctx context.Context, e *Engine, name string, version int, params []rawParam, makeBody func([]resolve.Bound) task.Run) (task.Output, error) {
	frame := ambient.Current(ctx)

	raws := make([]resolve.Raw, len(params))
	for i, p := range params {
		raws[i] = p.raw
	}

	bound, err := resolve.Bind(frame, name, raws)
	if err != nil {
		return task.Output{}, err
	}

	deps := map[task.NodeID]bool{}
	var dependsOn []task.NodeID
	for _, b := range bound {
		for _, id := range task.ScanDependencies(b.Resolved) {
			if !deps[id] {
				deps[id] = true
				dependsOn = append(dependsOn, id)
			}
		}
	}

	sig, err := signature.Compute(name, version, bound)
	if err != nil {
		return task.Output{}, fmt.Errorf("declare %s: %w", name, err)
	}

	n := &task.Node{
		Name:         name,
		Version:      version,
		Params:       bound,
		Signature:    sig,
		SignatureHex: signature.Hex(sig),
		DependsOn:    dependsOn,
	}

	body := makeBody(bound)

	e.mu.Lock()
	out := e.graph.Add(n, body)
	e.mu.Unlock()
	return out, nil
}

// rawParam erases a Param[T]'s type parameter so DeclareN can collect a
// plain slice of them before binding.
type rawParam struct {
	raw resolve.Raw
}

func erase[T any](p Param[T]) rawParam {
	return rawParam{raw: p.raw()}
}

// resolveParam recovers a bound parameter's concrete value of type T. If
// the bound value is a dependency reference (an Output, or a value
// embedding one), it is resolved through r to the dependency's produced
// value; otherwise the bound value is used directly.
func resolveParam[T any](taskName string, bound resolve.Bound, r task.Resolver) (T, error) {
	var zero T
	v := bound.Resolved

	if ref, ok := v.(task.DependencyRef); ok {
		_, id := ref.Ref()
		dv, err := r.Value(id)
		if err != nil {
			return zero, err
		}
		v = dv
	}

	tv, ok := v.(T)
	if !ok {
		return zero, &pterrors.BindError{
			Task:  taskName,
			Param: bound.Name,
			Msg:   fmt.Sprintf("cannot use %T as %T", v, zero),
		}
	}
	return tv, nil
}
