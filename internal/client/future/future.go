// Package future provides a fires-once result holder and the executors used
// to deliver completion callbacks.
package future

import (
	"context"
	"sync"
)

// Future is the eventual result of an asynchronous operation. It is resolved
// at most once; later Resolve calls are ignored.
type Future[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns an already completed Future.
func Resolved[T any](v T, err error) *Future[T] {
	f := New[T]()
	f.Resolve(v, err)
	return f
}

// Resolve stores the result and wakes all waiters. It reports whether this
// call was the one that resolved f.
func (f *Future[T]) Resolve(v T, err error) bool {
	resolved := false
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until f is resolved or ctx is done. Cancelling ctx only stops
// the wait; it does not cancel the underlying operation.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the result without blocking; ok is false while pending.
func (f *Future[T]) Result() (v T, err error, ok bool) {
	select {
	case <-f.done:
		return f.val, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}
