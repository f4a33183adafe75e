// Package dispatch provides per-thread serialized callable queues and a
// process-wide bridge for resuming work on a designated thread.
//
// Each Queue preserves FIFO order for enqueued callables relative to each
// other, interleaved with whatever native processing the owning loop does
// between pumps. Cross-thread communication in the application goes
// exclusively through this package.
package dispatch

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Static errors for the dispatch package
var (
	ErrQueueShutDown = errors.New("dispatch queue is shut down")
	ErrNilCallable   = errors.New("callable cannot be nil")
	ErrUnknownThread = errors.New("no queue registered for thread")
	ErrNoMainThread  = errors.New("no main thread designated")
)

// ThreadID uniquely identifies a managed thread and its queue.
type ThreadID string

// NewThreadID returns a fresh thread identifier.
func NewThreadID() ThreadID {
	return ThreadID(uuid.NewString())
}

// Queue is a serialized FIFO callable queue owned by a single thread.
//
// A queue can be pumped two ways:
//   - Run() blocks and executes callables until the queue is shut down.
//     This is the mode used by UI threads.
//   - Ready() + RunPending() let an external loop (the main event loop)
//     interleave callable execution with its own message processing.
//
// Enqueue never blocks the caller.
type Queue struct {
	id ThreadID

	mu       sync.Mutex
	tasks    []func()
	draining bool
	stopped  bool

	ready chan struct{}
	done  chan struct{}
}

// NewQueue creates an unstarted queue for the given thread.
func NewQueue(id ThreadID) *Queue {
	return &Queue{
		id:    id,
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// ID returns the identifier of the thread owning this queue.
func (q *Queue) ID() ThreadID {
	return q.id
}

// Enqueue schedules fn for execution on the owning thread and returns
// immediately. Callables execute in enqueue order. Once shutdown of the
// queue has begun, Enqueue fails with ErrQueueShutDown.
func (q *Queue) Enqueue(fn func()) error {
	if fn == nil {
		return ErrNilCallable
	}

	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return ErrQueueShutDown
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	q.signal()
	return nil
}

// signal wakes the pump without blocking; a single pending wakeup is enough
// because the pump drains everything it finds.
func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready returns a channel that receives a wakeup whenever the queue may have
// pending callables. Used by externally pumped queues.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Done returns a channel closed once the queue is fully drained and disabled.
// After it closes, no further callable will execute.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// RunPending executes queued callables until the queue is momentarily empty.
// It returns false once the queue has been drained after shutdown, meaning
// the pump must not be called again.
func (q *Queue) RunPending() bool {
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			if q.draining && !q.stopped {
				q.stopped = true
				close(q.done)
			}
			stopped := q.stopped
			q.mu.Unlock()
			return !stopped
		}
		fn := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		fn()
	}
}

// Run pumps the queue on the calling goroutine until shutdown completes.
// The calling goroutine becomes the queue's owning thread.
func (q *Queue) Run() {
	for {
		if !q.RunPending() {
			return
		}
		<-q.ready
	}
}

// ShutdownAsync drains and disables the queue. The drain marker is itself
// dispatched, so the disable point is reached on the owning thread:
// callables enqueued before the marker executes still run, later ones are
// rejected. The returned channel closes once no further callable will
// execute. Shutdown is final; there is no re-enable.
func (q *Queue) ShutdownAsync() <-chan struct{} {
	err := q.Enqueue(func() {
		q.mu.Lock()
		q.draining = true
		q.mu.Unlock()
		q.signal()
	})
	if err != nil {
		// Shutdown already in progress; the existing done channel stands.
		return q.done
	}
	return q.done
}
