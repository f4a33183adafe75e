package tintbar

// WindowHandle is an opaque OS window handle. Zero means no window.
type WindowHandle uint64

// WindowKind is the semantic kind of a hosted top-level window.
type WindowKind string

// WindowKindWelcome hosts the first-run welcome page.
const WindowKindWelcome WindowKind = "welcome"

// StartupPosition selects the initial placement of a new window. It only
// affects initial placement and is never revisited.
type StartupPosition int

const (
	// PositionDefault lets the system place the window.
	PositionDefault StartupPosition = iota

	// PositionCenter centers the window on the primary display.
	PositionCenter

	// PositionInheritOwner places the window over its owner.
	PositionInheritOwner
)

// Page is the content hosted by a window. Page construction and layout are
// external collaborators; the core only routes their lifecycle.
type Page interface {
	Kind() WindowKind
}

// CloseVetoer is implemented by page content that may refuse a close query
// during the shutdown poll.
type CloseVetoer interface {
	CanClose() bool
}

// ClosedNotifier is implemented by page content that wants to know when its
// window actually closed.
type ClosedNotifier interface {
	WindowClosed()
}

// MessageFilter is implemented by page content that consumes raw input
// messages ahead of the generic translate+dispatch path.
type MessageFilter interface {
	PreTranslateMessage(msg Message) bool
}

// PageFactory builds the content for a window kind. Factories run on the
// hosting UI thread.
type PageFactory func() (Page, error)

// Window is a top-level window owned by exactly one UI thread.
type Window struct {
	handle   WindowHandle
	kind     WindowKind
	position StartupPosition
	page     Page
	thread   *UIThread
	host     *HostManager
}

// Handle returns the opaque OS handle.
func (w *Window) Handle() WindowHandle {
	return w.handle
}

// Kind returns the window's semantic kind.
func (w *Window) Kind() WindowKind {
	return w.kind
}

// Page returns the hosted content.
func (w *Window) Page() Page {
	return w.page
}

// Thread returns the owning UI thread.
func (w *Window) Thread() *UIThread {
	return w.thread
}

// TryClose asks the window whether it can close and, if the content agrees,
// closes it. Must run on the owning thread; callers elsewhere dispatch the
// query through the thread's queue.
func (w *Window) TryClose() bool {
	if vetoer, ok := w.page.(CloseVetoer); ok && !vetoer.CanClose() {
		return false
	}

	if notifier, ok := w.page.(ClosedNotifier); ok {
		notifier.WindowClosed()
	}
	w.host.windowClosed(w)
	return true
}

// BringToForeground brings the window to the user's attention. Advisory:
// the underlying OS call may silently fail and is only logged.
func (w *Window) BringToForeground() {
	w.host.foreground(w.handle)
}
