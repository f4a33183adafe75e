package tintbar

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tintbar/tintbar/dispatch"
)

// WakeReason reports why a wait on the main loop returned.
type WakeReason int

const (
	// WakeMessages means queued input messages are available for draining.
	WakeMessages WakeReason = iota

	// WakeIOCompletion means an asynchronous I/O completion callback (a
	// callable dispatched to the main thread) is ready to run.
	WakeIOCompletion
)

// Waiter blocks until the main loop has something to do. The default
// implementation multiplexes the message queue and the main dispatch queue;
// it exists as an interface because the underlying OS wait can fail, and
// that branch must be representable.
type Waiter interface {
	// Wait blocks with an unbounded timeout until messages or a dispatched
	// callable become ready.
	Wait() (WakeReason, error)
}

// queueWaiter is the production Waiter over the two in-process queues.
type queueWaiter struct {
	msgs  *MessageQueue
	queue *dispatch.Queue
}

func (w *queueWaiter) Wait() (WakeReason, error) {
	select {
	case <-w.msgs.Available():
		return WakeMessages, nil
	case <-w.queue.Ready():
		return WakeIOCompletion, nil
	}
}

// MainLoop is the single blocking message pump on the process's primary
// thread. Each iteration waits for either a queued input message or a
// dispatched callable, drains whichever became ready, and loops. The loop
// terminates only when it drains the quit sentinel, whose payload becomes
// the process exit code.
type MainLoop struct {
	msgs   *MessageQueue
	queue  *dispatch.Queue
	waiter Waiter
	logger Logger

	// preTranslate offers a raw message to hosted windows before the
	// generic translate+dispatch path.
	preTranslate func(Message) bool

	// dispatchMsg is the generic translate+dispatch path for messages no
	// window consumed.
	dispatchMsg func(Message)
}

// NewMainLoop creates a loop over the given message queue and main-thread
// dispatch queue.
func NewMainLoop(msgs *MessageQueue, queue *dispatch.Queue, logger Logger) *MainLoop {
	l := &MainLoop{
		msgs:         msgs,
		queue:        queue,
		logger:       logger,
		preTranslate: func(Message) bool { return false },
	}
	l.waiter = &queueWaiter{msgs: msgs, queue: queue}
	l.dispatchMsg = func(msg Message) {
		logger.Debug("Message not consumed by any window", "kind", msg.Kind, "param", msg.Param)
	}
	return l
}

// SetPreTranslate installs the pre-translation hook consulted for every
// drained input message.
func (l *MainLoop) SetPreTranslate(fn func(Message) bool) {
	if fn != nil {
		l.preTranslate = fn
	}
}

// SetDispatch installs the generic dispatch path for unconsumed messages.
func (l *MainLoop) SetDispatch(fn func(Message)) {
	if fn != nil {
		l.dispatchMsg = fn
	}
}

// SetWaiter replaces the wait primitive.
func (l *MainLoop) SetWaiter(w Waiter) {
	if w != nil {
		l.waiter = w
	}
}

// Run pumps until the quit sentinel is drained and returns its payload as
// the process exit code. The calling goroutine is the main thread for the
// lifetime of the loop.
//
// A failed wait is reported at critical severity but does not terminate the
// loop: the next wait is retried after an exponential backoff, reset on the
// first successful wake.
func (l *MainLoop) Run() int {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0

	for {
		reason, err := l.waiter.Wait()
		if err != nil {
			l.logger.Error("Failed to enter alertable wait state", criticalArgs("error", err)...)
			time.Sleep(bo.NextBackOff())
			continue
		}
		bo.Reset()

		switch reason {
		case WakeMessages:
			for _, msg := range l.msgs.Drain() {
				if msg.Kind == MsgQuit {
					return msg.Param
				}
				if !l.preTranslate(msg) {
					l.dispatchMsg(msg)
				}
			}

		case WakeIOCompletion:
			l.queue.RunPending()

		default:
			l.logger.Error("Message wait returned an unexpected value", criticalArgs("reason", int(reason))...)
		}
	}
}
