package tintbar

import (
	"sync"
)

// MessageKind discriminates queued OS messages.
type MessageKind int

const (
	// MsgNone is the zero message.
	MsgNone MessageKind = iota

	// MsgQuit is the quit sentinel. Its Param carries the process exit
	// code; the main loop returns it immediately and terminates.
	MsgQuit

	// MsgKeyDown is a keyboard input message.
	MsgKeyDown

	// MsgCommand is a menu or accelerator command message.
	MsgCommand

	// MsgUser is the first value available for application-defined
	// messages.
	MsgUser
)

// Message is a raw queued input message.
type Message struct {
	Kind  MessageKind
	Param int
}

// MessageQueue is the process message queue drained by the main event loop.
// Posting never blocks.
type MessageQueue struct {
	mu   sync.Mutex
	msgs []Message

	available chan struct{}
}

// NewMessageQueue creates an empty message queue.
func NewMessageQueue() *MessageQueue {
	return &MessageQueue{available: make(chan struct{}, 1)}
}

// Post appends a message to the queue and wakes the loop.
func (q *MessageQueue) Post(msg Message) {
	q.mu.Lock()
	q.msgs = append(q.msgs, msg)
	q.mu.Unlock()

	select {
	case q.available <- struct{}{}:
	default:
	}
}

// PostQuit posts the terminal quit sentinel carrying the exit code.
func (q *MessageQueue) PostQuit(exitCode int) {
	q.Post(Message{Kind: MsgQuit, Param: exitCode})
}

// Drain removes and returns every pending message, in posting order.
func (q *MessageQueue) Drain() []Message {
	q.mu.Lock()
	msgs := q.msgs
	q.msgs = nil
	q.mu.Unlock()
	return msgs
}

// Available returns the wakeup channel signaled whenever messages may be
// pending.
func (q *MessageQueue) Available() <-chan struct{} {
	return q.available
}
