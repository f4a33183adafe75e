package tintbar

import (
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/tintbar/tintbar/dispatch"
)

// HostManager owns the collection of UI-hosting worker threads. It creates
// windows of a requested semantic kind on a (possibly new) thread, routes
// raw input to hosted windows for pre-translation, and enumerates live
// threads for the shutdown poll.
type HostManager struct {
	bridge *dispatch.Bridge
	logger Logger

	// foreground is the OS shim that raises a window. Failures inside it
	// are its own business; the core treats the call as advisory.
	foreground func(WindowHandle)

	// notify reports hosting events to the application's observers.
	notify func(eventType string, data any)

	mu        sync.Mutex
	threads   map[dispatch.ThreadID]*UIThread
	reserved  map[dispatch.ThreadID]bool
	factories map[WindowKind]PageFactory

	nextHandle atomic.Uint64
}

// NewHostManager creates a host manager dispatching through bridge.
func NewHostManager(bridge *dispatch.Bridge, logger Logger) *HostManager {
	return &HostManager{
		bridge:     bridge,
		logger:     logger,
		foreground: func(WindowHandle) {},
		notify:     func(string, any) {},
		threads:    make(map[dispatch.ThreadID]*UIThread),
		reserved:   make(map[dispatch.ThreadID]bool),
		factories:  make(map[WindowKind]PageFactory),
	}
}

// RegisterPageFactory installs the content builder for a window kind.
func (h *HostManager) RegisterPageFactory(kind WindowKind, factory PageFactory) {
	h.mu.Lock()
	h.factories[kind] = factory
	h.mu.Unlock()
}

// SetForegrounder installs the OS shim used to raise windows.
func (h *HostManager) SetForegrounder(fn func(WindowHandle)) {
	if fn != nil {
		h.foreground = fn
	}
}

// SetNotify installs the event sink for hosting events.
func (h *HostManager) SetNotify(fn func(eventType string, data any)) {
	if fn != nil {
		h.notify = fn
	}
}

// CreateWindow selects or spawns a UI thread, constructs a window of the
// requested kind on that thread, invokes configure(content, handle) there
// once construction completes, and returns immediately on the caller's
// thread. Construction failure is logged at critical severity and not
// retried; retrying is the caller's decision.
func (h *HostManager) CreateWindow(kind WindowKind, position StartupPosition, configure func(Page, WindowHandle)) error {
	if configure == nil {
		return ErrConfigureCallback
	}

	h.mu.Lock()
	factory, ok := h.factories[kind]
	if !ok {
		h.mu.Unlock()
		h.logger.Error("No content factory for window kind", criticalArgs("kind", string(kind))...)
		return fmt.Errorf("%w: %s", ErrNoPageFactory, kind)
	}
	thread := h.selectThreadLocked()
	h.mu.Unlock()

	err := thread.Dispatch(func() {
		page, err := factory()
		if err != nil {
			h.logger.Error("Failed to construct window content", criticalArgs("kind", string(kind), "error", err)...)
			h.releaseReservation(thread)
			return
		}

		w := &Window{
			handle:   WindowHandle(h.nextHandle.Add(1)),
			kind:     kind,
			position: position,
			page:     page,
			thread:   thread,
			host:     h,
		}
		thread.setWindow(w)
		h.releaseReservation(thread)

		h.notify(EventTypeWindowCreated, map[string]any{
			"kind":   string(kind),
			"handle": uint64(w.handle),
			"thread": string(thread.ID()),
		})

		configure(page, w.handle)
	})
	if err != nil {
		h.releaseReservation(thread)
		return err
	}
	return nil
}

// selectThreadLocked picks a live thread with no window and no pending
// construction, or spawns a fresh one. Caller holds h.mu.
func (h *HostManager) selectThreadLocked() *UIThread {
	for id, t := range h.threads {
		if !h.reserved[id] && t.CurrentWindow() == nil {
			h.reserved[id] = true
			return t
		}
	}

	queue := h.bridge.NewQueue()
	t := newUIThread(queue)
	h.threads[t.ID()] = t
	h.reserved[t.ID()] = true
	go queue.Run()

	h.logger.Debug("UI thread started", "thread", t.ID())
	h.notify(EventTypeThreadStarted, map[string]any{"thread": string(t.ID())})
	return t
}

// releaseReservation clears the pending-construction mark and tears the
// thread down if it ended up without a window.
func (h *HostManager) releaseReservation(t *UIThread) {
	h.mu.Lock()
	delete(h.reserved, t.ID())
	h.mu.Unlock()

	if t.CurrentWindow() == nil {
		h.stopThread(t)
	}
}

// windowClosed runs on the owning thread after a window closes. The thread
// is destroyed unless a reuse is pending.
func (h *HostManager) windowClosed(w *Window) {
	if !w.thread.clearWindowIfCurrent(w) {
		return
	}

	h.notify(EventTypeWindowClosed, map[string]any{
		"kind":   string(w.kind),
		"handle": uint64(w.handle),
	})

	h.mu.Lock()
	reusePending := h.reserved[w.thread.ID()]
	h.mu.Unlock()
	if !reusePending {
		h.stopThread(w.thread)
	}
}

func (h *HostManager) stopThread(t *UIThread) {
	h.mu.Lock()
	if _, live := h.threads[t.ID()]; !live {
		h.mu.Unlock()
		return
	}
	delete(h.threads, t.ID())
	h.mu.Unlock()

	h.bridge.Remove(t.ID())
	t.queue.ShutdownAsync()

	h.logger.Debug("UI thread stopped", "thread", t.ID())
	h.notify(EventTypeThreadStopped, map[string]any{"thread": string(t.ID())})
}

// CloseWindow dispatches a close request to the window with the given
// handle on its owning thread.
func (h *HostManager) CloseWindow(handle WindowHandle) error {
	for t := range h.Threads() {
		w := t.CurrentWindow()
		if w == nil || w.handle != handle {
			continue
		}
		return t.Dispatch(func() { w.TryClose() })
	}
	return fmt.Errorf("%w: %d", ErrWindowNotFound, handle)
}

// Threads produces a snapshot-consistent sequence of live UI threads for
// enumeration. The sequence is finite and reflects state at call time.
func (h *HostManager) Threads() iter.Seq[*UIThread] {
	h.mu.Lock()
	snapshot := make([]*UIThread, 0, len(h.threads))
	for _, t := range h.threads {
		snapshot = append(snapshot, t)
	}
	h.mu.Unlock()

	return func(yield func(*UIThread) bool) {
		for _, t := range snapshot {
			if !yield(t) {
				return
			}
		}
	}
}

// PreTranslateMessage offers a raw input message to every hosted window
// whose content filters messages, and reports whether one consumed it.
func (h *HostManager) PreTranslateMessage(msg Message) bool {
	for t := range h.Threads() {
		w := t.CurrentWindow()
		if w == nil {
			continue
		}
		if filter, ok := w.Page().(MessageFilter); ok && filter.PreTranslateMessage(msg) {
			return true
		}
	}
	return false
}
