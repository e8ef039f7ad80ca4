package titanium

import (
	"context"

	"github.com/galvinograd/purple-titanium/internal/resolve"
	"github.com/galvinograd/purple-titanium/internal/task"
)

// Declare0 declares a zero-argument task.
func Declare0[R any](ctx context.Context, e *Engine, name string, version int, body func() (R, error)) (Output[R], error) {
	out, err := declare(ctx, e, name, version, nil, func([]resolve.Bound) task.Run {
		return func(task.Resolver) (any, error) { return body() }
	})
	if err != nil {
		return Output[R]{}, err
	}
	return wrap[R](out), nil
}

// Declare1 declares a task taking one classified parameter.
func Declare1[A, R any](ctx context.Context, e *Engine, name string, version int, a Param[A], body func(A) (R, error)) (Output[R], error) {
	out, err := declare(ctx, e, name, version, []rawParam{erase(a)}, func(bound []resolve.Bound) task.Run {
		return func(r task.Resolver) (any, error) {
			av, err := resolveParam[A](name, bound[0], r)
			if err != nil {
				return nil, err
			}
			return body(av)
		}
	})
	if err != nil {
		return Output[R]{}, err
	}
	return wrap[R](out), nil
}

// Declare2 declares a task taking two classified parameters.
func Declare2[A, B, R any](ctx context.Context, e *Engine, name string, version int, a Param[A], b Param[B], body func(A, B) (R, error)) (Output[R], error) {
	out, err := declare(ctx, e, name, version, []rawParam{erase(a), erase(b)}, func(bound []resolve.Bound) task.Run {
		return func(r task.Resolver) (any, error) {
			av, err := resolveParam[A](name, bound[0], r)
			if err != nil {
				return nil, err
			}
			bv, err := resolveParam[B](name, bound[1], r)
			if err != nil {
				return nil, err
			}
			return body(av, bv)
		}
	})
	if err != nil {
		return Output[R]{}, err
	}
	return wrap[R](out), nil
}

// Declare3 declares a task taking three classified parameters.
func Declare3[A, B, C, R any](ctx context.Context, e *Engine, name string, version int, a Param[A], b Param[B], c Param[C], body func(A, B, C) (R, error)) (Output[R], error) {
	out, err := declare(ctx, e, name, version, []rawParam{erase(a), erase(b), erase(c)}, func(bound []resolve.Bound) task.Run {
		return func(r task.Resolver) (any, error) {
			av, err := resolveParam[A](name, bound[0], r)
			if err != nil {
				return nil, err
			}
			bv, err := resolveParam[B](name, bound[1], r)
			if err != nil {
				return nil, err
			}
			cv, err := resolveParam[C](name, bound[2], r)
			if err != nil {
				return nil, err
			}
			return body(av, bv, cv)
		}
	})
	if err != nil {
		return Output[R]{}, err
	}
	return wrap[R](out), nil
}

// Declare4 declares a task taking four classified parameters.
func Declare4[A, B, C, D, R any](ctx context.Context, e *Engine, name string, version int, a Param[A], b Param[B], c Param[C], d Param[D], body func(A, B, C, D) (R, error)) (Output[R], error) {
	out, err := declare(ctx, e, name, version, []rawParam{erase(a), erase(b), erase(c), erase(d)}, func(bound []resolve.Bound) task.Run {
		return func(r task.Resolver) (any, error) {
			av, err := resolveParam[A](name, bound[0], r)
			if err != nil {
				return nil, err
			}
			bv, err := resolveParam[B](name, bound[1], r)
			if err != nil {
				return nil, err
			}
			cv, err := resolveParam[C](name, bound[2], r)
			if err != nil {
				return nil, err
			}
			dv, err := resolveParam[D](name, bound[3], r)
			if err != nil {
				return nil, err
			}
			return body(av, bv, cv, dv)
		}
	})
	if err != nil {
		return Output[R]{}, err
	}
	return wrap[R](out), nil
}
