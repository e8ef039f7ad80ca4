// Package pterrors defines Purple Titanium's error taxonomy.
//
// Every kind matches a package-level sentinel, either via Unwrap() or,
// for kinds that unwrap to their underlying cause, via an Is method, so
// callers can use errors.Is/errors.As instead of string matching, and every kind
// carries the structured detail needed to act on the failure (which
// parameter, which signature, which underlying cause).
package pterrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinels for errors.Is() checks across package boundaries.
var (
	ErrBind             = errors.New("bind error")
	ErrMissingInjectable = errors.New("missing injectable")
	ErrUnhashableValue  = errors.New("unhashable value")
	ErrCycleDetected    = errors.New("cycle detected")
	ErrTaskFailed       = errors.New("task failed")
	ErrDependencyFailed = errors.New("dependency failed")
	ErrCacheCorruption  = errors.New("cache corruption")
	ErrStorage          = errors.New("storage error")
	ErrCancelled        = errors.New("cancelled")
)

// BindError reports a failure to bind a constructor argument to its
// declared parameter classification.
type BindError struct {
	Task  string
	Param string
	Msg   string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("%s: task %q, param %q: %s", ErrBind, e.Task, e.Param, e.Msg)
}

func (e *BindError) Unwrap() error { return ErrBind }

// MissingInjectableError reports an injectable parameter with no bound
// value anywhere in the active context frame chain and no default.
type MissingInjectableError struct {
	Task  string
	Param string
	Name  string
}

func (e *MissingInjectableError) Error() string {
	return fmt.Sprintf("%s: task %q, param %q: no binding for %q in scope", ErrMissingInjectable, e.Task, e.Param, e.Name)
}

func (e *MissingInjectableError) Unwrap() error { return ErrMissingInjectable }

// UnhashableValueError reports a value the Value Hasher has no tag for.
type UnhashableValueError struct {
	Task  string
	Param string
	Type  string
}

func (e *UnhashableValueError) Error() string {
	return fmt.Sprintf("%s: task %q, param %q: type %s has no hash tag", ErrUnhashableValue, e.Task, e.Param, e.Type)
}

func (e *UnhashableValueError) Unwrap() error { return ErrUnhashableValue }

// CycleDetectedError reports a structurally-unreachable cycle caught
// defensively by the scheduler.
type CycleDetectedError struct {
	Cycle []string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("%s: %v", ErrCycleDetected, e.Cycle)
}

func (e *CycleDetectedError) Unwrap() error { return ErrCycleDetected }

// TaskFailedError reports a task body returning an error directly.
type TaskFailedError struct {
	Task      string
	Signature string
	Err       error
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("%s: task %q (%s): %v", ErrTaskFailed, e.Task, e.Signature, e.Err)
}

func (e *TaskFailedError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTaskFailed) succeed in addition to errors.As.
func (e *TaskFailedError) Is(target error) bool { return target == ErrTaskFailed }

// DependencyFailedError reports failure propagated from an upstream task.
type DependencyFailedError struct {
	Task               string
	DependencySignature string
	Err                error
}

func (e *DependencyFailedError) Error() string {
	return fmt.Sprintf("%s: task %q: dependency %s failed: %v", ErrDependencyFailed, e.Task, e.DependencySignature, e.Err)
}

func (e *DependencyFailedError) Unwrap() error { return e.Err }

func (e *DependencyFailedError) Is(target error) bool { return target == ErrDependencyFailed }

// CacheCorruptionError reports a persisted entry that failed integrity
// validation on load; callers should invalidate and recompute.
type CacheCorruptionError struct {
	Signature string
	Reason    string
}

func (e *CacheCorruptionError) Error() string {
	return fmt.Sprintf("%s: signature %s: %s", ErrCacheCorruption, e.Signature, e.Reason)
}

func (e *CacheCorruptionError) Unwrap() error { return ErrCacheCorruption }

// StorageError wraps an I/O failure from the persistence backend.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// WrapStorage attaches a stack trace at the store boundary.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: errors.Wrap(err, op)}
}

// CancelledError reports a context cancellation observed mid-run.
type CancelledError struct {
	Task string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("%s: task %q", ErrCancelled, e.Task)
}

func (e *CancelledError) Unwrap() error { return ErrCancelled }
