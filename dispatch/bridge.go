package dispatch

import (
	"fmt"
	"sync"
)

// Bridge is the process-wide registry of dispatch queues, keyed by thread.
// It lets background work resume execution on a designated thread: the main
// thread or a specific UI thread.
type Bridge struct {
	mu     sync.RWMutex
	queues map[ThreadID]*Queue
	main   ThreadID
}

// NewBridge creates an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{
		queues: make(map[ThreadID]*Queue),
	}
}

// NewQueue creates a queue under a fresh thread id and registers it.
func (b *Bridge) NewQueue() *Queue {
	q := NewQueue(NewThreadID())

	b.mu.Lock()
	b.queues[q.ID()] = q
	b.mu.Unlock()

	return q
}

// DesignateMain marks the given thread as the process main thread.
// The queue must already be registered.
func (b *Bridge) DesignateMain(id ThreadID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.queues[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownThread, id)
	}
	b.main = id
	return nil
}

// Main returns the designated main thread id.
func (b *Bridge) Main() ThreadID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.main
}

// Lookup returns the queue registered for the given thread.
func (b *Bridge) Lookup(id ThreadID) (*Queue, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.queues[id]
	return q, ok
}

// Remove unregisters the queue for the given thread. The queue itself is
// left to finish whatever shutdown it has in flight.
func (b *Bridge) Remove(id ThreadID) {
	b.mu.Lock()
	delete(b.queues, id)
	b.mu.Unlock()
}

// Dispatch enqueues fn for execution on the given thread and returns without
// blocking. Execution order on a thread follows enqueue order; no ordering
// holds across threads.
func (b *Bridge) Dispatch(id ThreadID, fn func()) error {
	q, ok := b.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownThread, id)
	}
	return q.Enqueue(fn)
}

// DispatchToMain enqueues fn for execution on the designated main thread.
func (b *Bridge) DispatchToMain(fn func()) error {
	b.mu.RLock()
	main := b.main
	q := b.queues[main]
	b.mu.RUnlock()

	if main == "" || q == nil {
		return ErrNoMainThread
	}
	return q.Enqueue(fn)
}

// ShutdownQueueAsync drains and disables the queue owned by the given
// thread. The disable point is reached by switching context onto that
// thread, so callers may invoke this from anywhere. The returned channel
// closes once the queue guarantees no further callable will execute.
func (b *Bridge) ShutdownQueueAsync(id ThreadID) (<-chan struct{}, error) {
	q, ok := b.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownThread, id)
	}
	return q.ShutdownAsync(), nil
}
