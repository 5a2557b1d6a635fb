package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated login.
type Session struct {
	Token        string
	Username     string
	BackendToken string
	ExpiresAt    time.Time
}

// Sessions is an in-memory session registry guarded by a RWMutex.
type Sessions struct {
	mu          sync.RWMutex
	byToken     map[string]Session
	ttl         time.Duration
	rememberTTL time.Duration
	clock       func() time.Time
}

// SessionsOption configures Sessions.
type SessionsOption func(*Sessions)

// WithSessionClock overrides the time source, primarily for tests.
func WithSessionClock(clock func() time.Time) SessionsOption {
	return func(s *Sessions) {
		s.clock = clock
	}
}

// NewSessions creates a registry. Sessions live for ttl, or rememberTTL when
// the user asked to be remembered.
func NewSessions(ttl, rememberTTL time.Duration, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		byToken:     make(map[string]Session),
		ttl:         ttl,
		rememberTTL: rememberTTL,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a session for username and drops any sessions that have
// already expired.
func (s *Sessions) Issue(username, backendToken string, remember bool) Session {
	ttl := s.ttl
	if remember && s.rememberTTL > ttl {
		ttl = s.rememberTTL
	}
	now := s.clock()
	session := Session{
		Token:        uuid.NewString(),
		Username:     username,
		BackendToken: backendToken,
		ExpiresAt:    now.Add(ttl),
	}

	s.mu.Lock()
	s.pruneLocked(now)
	s.byToken[session.Token] = session
	s.mu.Unlock()
	return session
}

func (s *Sessions) pruneLocked(now time.Time) {
	for token, session := range s.byToken {
		if !now.Before(session.ExpiresAt) {
			delete(s.byToken, token)
		}
	}
}

// Lookup returns the live session for token. Expired sessions are removed.
func (s *Sessions) Lookup(token string) (Session, bool) {
	s.mu.RLock()
	session, ok := s.byToken[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if !s.clock().Before(session.ExpiresAt) {
		s.Revoke(token)
		return Session{}, false
	}
	return session, true
}

// Revoke ends a session.
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
}
