package database

import (
	"sync"

	"github.com/viant/firebridge/sdk"
)

// subscription owns exactly one vendor registration, delivery and cancellation are serialised by mu
type subscription struct {
	mu           sync.Mutex
	handle       string
	kind         sdk.EventKind
	once         bool
	cancelled    bool
	registration sdk.Registration
}

// begin marks the delivery of a notification, it returns false once the subscription was cancelled
func (s *subscription) begin() bool {
	if s.cancelled {
		return false
	}
	if s.once {
		s.cancelled = true
	}
	return true
}

// cancel marks subscription cancelled and returns its registration, nil when it was already detached
func (s *subscription) cancel() sdk.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
	return s.detach()
}

func (s *subscription) detach() sdk.Registration {
	ret := s.registration
	s.registration = nil
	return ret
}
