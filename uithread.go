package tintbar

import (
	"sync"

	"github.com/tintbar/tintbar/dispatch"
)

// UIThread is a worker thread running its own single-threaded dispatch loop
// and owning at most one top-level window.
//
// A UIThread may be safely inspected or mutated only from itself, or under
// its lock for the brief handshake that asks it to take a close query. The
// lock never protects long operations; real work is dispatched onto the
// thread's queue.
type UIThread struct {
	id    dispatch.ThreadID
	queue *dispatch.Queue

	mu     sync.Mutex
	window *Window
}

func newUIThread(queue *dispatch.Queue) *UIThread {
	return &UIThread{id: queue.ID(), queue: queue}
}

// ID returns the thread's stable identifier.
func (t *UIThread) ID() dispatch.ThreadID {
	return t.id
}

// Dispatch enqueues fn for execution on this thread.
func (t *UIThread) Dispatch(fn func()) error {
	return t.queue.Enqueue(fn)
}

// CurrentWindow returns the thread's window under the thread lock. The
// returned reference may be stale by the time the caller acts on it; acting
// means dispatching onto the thread, which re-checks.
func (t *UIThread) CurrentWindow() *Window {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.window
}

func (t *UIThread) setWindow(w *Window) {
	t.mu.Lock()
	t.window = w
	t.mu.Unlock()
}

// clearWindowIfCurrent drops the association only if w is still current.
func (t *UIThread) clearWindowIfCurrent(w *Window) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.window != w {
		return false
	}
	t.window = nil
	return true
}
