package titanium

import "github.com/galvinograd/purple-titanium/internal/task"

// Output[T] is the typed handle returned by a DeclareN call: a task.Output
// with its produced type attached at the Go level. It embeds task.Output
// so HashHandle and Ref promote automatically, meaning an Output[T] can be
// bound as a Param's value exactly like a raw task.Output: it is both a
// phash.Handle (contributes its node's signature) and a task.DependencyRef
// (resolvable to the dependency's produced value at execution time).
type Output[T any] struct {
	task.Output
}

func wrap[T any](o task.Output) Output[T] {
	return Output[T]{Output: o}
}
