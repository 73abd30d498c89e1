// Package inflight coalesces concurrent calls that share a key.
//
// Unlike golang.org/x/sync/singleflight, waiters are reference counted: a
// caller whose context ends detaches from the call, and when the last waiter
// leaves the call's own context is cancelled. A call abandoned this way is
// never joined by later callers; they wait for it to wind down and start a
// fresh one, so at most one call per key is ever running.
package inflight

import (
	"context"
	"fmt"
	"sync"
)

type call[T any] struct {
	done      chan struct{}
	val       T
	err       error
	waiters   int
	abandoned bool
	cancel    context.CancelFunc
}

// Group is a table of in-flight calls. The zero value is ready to use.
type Group[T any] struct {
	mu    sync.Mutex
	calls map[string]*call[T]
}

// Do runs fn for key unless a call for key is already in flight, in which
// case the caller waits for that call's result. shared reports whether the
// result came from a call started by another caller.
//
// fn receives a context that keeps ctx's values but is cancelled only when
// every waiter has detached.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(ctx context.Context) (T, error)) (v T, err error, shared bool) {
	for {
		g.mu.Lock()
		if g.calls == nil {
			g.calls = make(map[string]*call[T])
		}

		if c, ok := g.calls[key]; ok {
			if c.abandoned {
				g.mu.Unlock()
				select {
				case <-c.done:
					continue
				case <-ctx.Done():
					var zero T
					return zero, ctx.Err(), false
				}
			}
			c.waiters++
			g.mu.Unlock()
			v, err := g.wait(ctx, c)
			return v, err, true
		}

		callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c := &call[T]{done: make(chan struct{}), waiters: 1, cancel: cancel}
		g.calls[key] = c
		g.mu.Unlock()

		go g.run(callCtx, key, c, fn)

		v, err := g.wait(ctx, c)
		return v, err, false
	}
}

// Waiters returns the number of callers attached to the call for key.
func (g *Group[T]) Waiters(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.calls[key]; ok {
		return c.waiters
	}
	return 0
}

// Len returns the number of keys with a call in flight.
func (g *Group[T]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *Group[T]) run(ctx context.Context, key string, c *call[T], fn func(ctx context.Context) (T, error)) {
	defer func() {
		if p := recover(); p != nil {
			var zero T
			c.val, c.err = zero, fmt.Errorf("inflight: call %q panicked: %v", key, p)
		}

		g.mu.Lock()
		if g.calls[key] == c {
			delete(g.calls, key)
		}
		g.mu.Unlock()

		c.cancel()
		close(c.done)
	}()

	c.val, c.err = fn(ctx)
}

func (g *Group[T]) wait(ctx context.Context, c *call[T]) (T, error) {
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	select {
	case <-c.done:
		return c.val, c.err
	default:
	}

	c.waiters--
	if c.waiters == 0 {
		c.abandoned = true
		c.cancel()
	}

	var zero T
	return zero, ctx.Err()
}
