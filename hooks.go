package tintbar

import (
	"slices"
	"sync"
)

// handlerSet is a revocable set of event handlers. Subscribing returns a
// revoker; a revoked handler is guaranteed not to fire afterwards, even if
// the event that would have triggered it is already on its way, because
// revocation takes the same lock firing does.
type handlerSet struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func()
}

// subscribe registers fn and returns its revoker. The revoker is idempotent.
func (s *handlerSet) subscribe(fn func()) (revoke func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handlers == nil {
		s.handlers = make(map[int]func())
	}
	id := s.next
	s.next++
	s.handlers[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

// fire invokes every currently subscribed handler, in subscription order.
func (s *handlerSet) fire() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.handlers))
	for id := range s.handlers {
		ids = append(ids, id)
	}
	// map order is random; restore subscription order
	slices.Sort(ids)
	handlers := make([]func(), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, s.handlers[id])
	}
	s.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}
