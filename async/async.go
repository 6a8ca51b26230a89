// Package async runs a single access-layer call in the background and hands back a handle
// carrying that call's own loading state and outcome.
package async

import (
	"context"
	"sync"
)

// Result is the outcome of one call: Data is meaningful only when Err is nil.
type Result[T any] struct {
	Data T
	Err  error
}

// Call is a cancellable in-flight call.
type Call[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	result Result[T]
}

// Go starts fn on its own goroutine with a context derived from ctx.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Call[T] {
	callCtx, cancel := context.WithCancel(ctx)
	c := &Call[T]{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer c.cancel()
		data, err := fn(callCtx)
		c.result = Result[T]{Data: data, Err: err}
		close(c.done)
	}()
	return c
}

// Cancel aborts the call. The result then carries the context error, unless fn had
// already returned.
func (c *Call[T]) Cancel() {
	c.once.Do(c.cancel)
}

// Done is closed once the result is available.
func (c *Call[T]) Done() <-chan struct{} { return c.done }

// Pending reports whether the call is still running.
func (c *Call[T]) Pending() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the call completes or ctx ends. Abandoning the wait does not cancel
// the call.
func (c *Call[T]) Wait(ctx context.Context) Result[T] {
	select {
	case <-c.done:
		return c.result
	case <-ctx.Done():
		return Result[T]{Err: ctx.Err()}
	}
}
