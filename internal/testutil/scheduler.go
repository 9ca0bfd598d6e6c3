package testutil

import (
	"sync"
	"time"
)

// ManualScheduler queues delayed calls until the test fires them.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*scheduledCall
}

type scheduledCall struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// NewManualScheduler returns an empty scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc queues fn. The returned function cancels it if it has not fired.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	call := &scheduledCall{delay: d, fn: fn}
	s.mu.Lock()
	s.pending = append(s.pending, call)
	s.mu.Unlock()
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if call.fired || call.cancelled {
			return false
		}
		call.cancelled = true
		return true
	}
}

// Pending returns the number of queued calls that were neither fired nor
// cancelled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, call := range s.pending {
		if !call.fired && !call.cancelled {
			count++
		}
	}
	return count
}

// LastDelay returns the delay of the most recently queued call.
func (s *ManualScheduler) LastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return 0
	}
	return s.pending[len(s.pending)-1].delay
}

// FireAll runs every live queued call in order and returns how many ran.
func (s *ManualScheduler) FireAll() int {
	s.mu.Lock()
	calls := make([]*scheduledCall, 0, len(s.pending))
	for _, call := range s.pending {
		if !call.fired && !call.cancelled {
			call.fired = true
			calls = append(calls, call)
		}
	}
	s.pending = nil
	s.mu.Unlock()
	for _, call := range calls {
		call.fn()
	}
	return len(calls)
}

// FireIgnoringCancel runs every queued call, including cancelled ones. It
// simulates a timer that fired just before it was stopped.
func (s *ManualScheduler) FireIgnoringCancel() int {
	s.mu.Lock()
	calls := append([]*scheduledCall(nil), s.pending...)
	for _, call := range calls {
		call.fired = true
	}
	s.pending = nil
	s.mu.Unlock()
	for _, call := range calls {
		call.fn()
	}
	return len(calls)
}
