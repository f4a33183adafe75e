package tintbar

import (
	"context"
	"sync"
)

// AsyncResult is a single-use result cell: a cancellable future whose value
// may be awaited exactly once. The second await attempt fails with
// ErrResultConsumed instead of being silently allowed, because continuation
// chains built on the same result would otherwise race for it.
//
// At most one result may be in flight per semantic purpose; the owner awaits
// it once and caches the value for dependents.
type AsyncResult[T any] struct {
	mu       sync.Mutex
	consumed bool
	ch       chan T
}

// NewAsyncResult creates an uncompleted result cell.
func NewAsyncResult[T any]() *AsyncResult[T] {
	return &AsyncResult[T]{ch: make(chan T, 1)}
}

// CompletedResult creates a result cell that already holds value.
func CompletedResult[T any](value T) *AsyncResult[T] {
	r := NewAsyncResult[T]()
	r.Complete(value)
	return r
}

// Complete supplies the value. Completing twice is a programming error and
// panics, mirroring a double channel send.
func (r *AsyncResult[T]) Complete(value T) {
	select {
	case r.ch <- value:
	default:
		panic("tintbar: AsyncResult completed twice")
	}
}

// Await consumes the result, blocking until the value is supplied or ctx is
// done. The consumed flag is taken up front, so a concurrent or subsequent
// second await fails with ErrResultConsumed even while the first is still
// blocked.
func (r *AsyncResult[T]) Await(ctx context.Context) (T, error) {
	var zero T

	r.mu.Lock()
	if r.consumed {
		r.mu.Unlock()
		return zero, ErrResultConsumed
	}
	r.consumed = true
	r.mu.Unlock()

	select {
	case value := <-r.ch:
		return value, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
