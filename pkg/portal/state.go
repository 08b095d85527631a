package portal

import (
	"sync"

	"github.com/tendant/portfolio-gate/pkg/domain"
)

// SessionState mirrors the provider's current session for one page. Only
// the Observer writes it.
type SessionState struct {
	mu      sync.RWMutex
	session *domain.Session
}

// NewSessionState returns a signed-out state.
func NewSessionState() *SessionState {
	return &SessionState{}
}

// Current returns a copy of the mirrored session, nil when signed out.
func (s *SessionState) Current() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Clone()
}

func (s *SessionState) set(session *domain.Session) {
	s.mu.Lock()
	s.session = session.Clone()
	s.mu.Unlock()
}
