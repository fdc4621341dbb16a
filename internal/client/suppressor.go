package client

import (
	"sync"
	"time"
)

// suppressor marks a window after applying a remote command during which
// locally observed player events are treated as echoes and not re-sent.
type suppressor struct {
	mu       sync.Mutex
	deadline time.Time
}

func (s *suppressor) Hold(window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(window)
	if deadline.After(s.deadline) {
		s.deadline = deadline
	}
}

func (s *suppressor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return time.Now().Before(s.deadline)
}
