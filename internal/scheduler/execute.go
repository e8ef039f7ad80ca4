package scheduler

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/galvinograd/purple-titanium/internal/events"
	"github.com/galvinograd/purple-titanium/internal/pterrors"
	"github.com/galvinograd/purple-titanium/internal/signature"
	"github.com/galvinograd/purple-titanium/internal/task"
)

// execute resolves node id to a Result: a dependency failure propagates
// as DependencyFailedError without invoking the body at all; otherwise
// the in-memory memo, then the persistence store, then the body itself
// are consulted in that order. The store lookup and the body run inside a
// signature-keyed singleflight so concurrent callers for the same
// signature collapse onto one execution.
func (s *Scheduler) execute(ctx context.Context, g *task.Graph, id task.NodeID, priorResults map[task.NodeID]Result) Result {
	node := g.Node(id)

	if err := ctx.Err(); err != nil {
		return Result{NodeID: id, Err: &pterrors.CancelledError{Task: node.Name}}
	}

	for _, dep := range node.DependsOn {
		if pr, ok := priorResults[dep]; ok && pr.Err != nil {
			depSig := signature.Hex(g.Node(dep).Signature)
			return Result{NodeID: id, Err: &pterrors.DependencyFailedError{Task: node.Name, DependencySignature: depSig, Err: pr.Err}}
		}
	}

	sigHex := node.SignatureHex

	s.mu.Lock()
	if cached, ok := s.memo[node.Signature]; ok {
		s.mu.Unlock()
		s.publish(events.CacheHit, node.Name, sigHex, nil)
		cached.FromCache = true
		return cached
	}
	s.mu.Unlock()

	resolver := priorResultResolver(priorResults)

	v, err, _ := s.sf.Do(sigHex, func() (any, error) {
		return s.executeUncached(ctx, node, sigHex, resolver)
	})

	var r Result
	if err != nil {
		r = Result{NodeID: id, Err: err}
	} else {
		res := v.(Result)
		res.NodeID = id
		r = res
	}

	s.mu.Lock()
	s.memo[node.Signature] = r
	s.mu.Unlock()
	return r
}

// priorResultResolver implements task.Resolver over a completed-node
// result map, the only kind of resolver a body ever needs since the
// scheduler never invokes a body until every dependency has resolved.
type priorResultResolver map[task.NodeID]Result

func (r priorResultResolver) Value(id task.NodeID) (any, error) {
	res, ok := r[id]
	if !ok {
		return nil, &pterrors.StorageError{Op: "resolve dependency value", Err: pterrors.ErrDependencyFailed}
	}
	return res.Value, res.Err
}

func (s *Scheduler) executeUncached(ctx context.Context, node *task.Node, sigHex string, resolver task.Resolver) (any, error) {
	if s.store != nil {
		if entry, err := s.store.Load(ctx, sigHex); err == nil {
			v, derr := deserialize(entry)
			if derr == nil {
				s.publish(events.CacheHit, node.Name, sigHex, nil)
				return Result{FromCache: true, Value: v}, nil
			}
			// deserialize failure on an entry that otherwise passed
			// integrity validation is treated the same as corruption:
			// invalidate and fall through to recompute.
			_ = s.store.Invalidate(ctx, sigHex)
		} else if errors.Is(err, pterrors.ErrCacheCorruption) {
			_ = s.store.Invalidate(ctx, sigHex)
		}
	}

	s.publish(events.CacheMiss, node.Name, sigHex, nil)
	s.publish(events.TaskStarted, node.Name, sigHex, nil)

	value, err := node.Body()(resolver)
	if err != nil {
		wrapped := &pterrors.TaskFailedError{Task: node.Name, Signature: sigHex, Err: err}
		s.publish(events.TaskFailed, node.Name, sigHex, wrapped)
		return Result{Value: nil, Err: wrapped}, nil
	}

	if s.store != nil {
		if entry, serr := serialize(node.Name, value); serr == nil {
			if serr := s.store.Save(ctx, sigHex, entry); serr != nil {
				s.log.Warn("failed to persist task result", zap.String("task", node.Name), zap.String("signature", sigHex), zap.Error(serr))
			}
		}
	}

	s.publish(events.TaskCompleted, node.Name, sigHex, nil)
	return Result{Value: value}, nil
}

func (s *Scheduler) publish(kind events.Kind, taskName, sigHex string, err error) {
	s.bus.Publish(events.Event{Kind: kind, Task: taskName, Signature: sigHex, Err: err})
}
