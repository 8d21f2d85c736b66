package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/identity/app"
	"github.com/dwikikusuma/storefront/internal/identity/domain"
)

// SessionStore is an in-process SessionStore for tests and single-node dev
// runs. Expired entries are dropped lazily on read.
type SessionStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]entry
}

type entry struct {
	sess     domain.Session
	deadline time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now, sessions: make(map[string]entry)}
}

func (s *SessionStore) Save(_ context.Context, sess domain.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{sess: sess}
	if ttl > 0 {
		e.deadline = s.now().Add(ttl)
	}
	s.sessions[sess.Token] = e
	return nil
}

func (s *SessionStore) Get(_ context.Context, token string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return domain.Session{}, app.ErrSessionNotFound
	}
	if !e.deadline.IsZero() && !s.now().Before(e.deadline) {
		delete(s.sessions, token)
		return domain.Session{}, app.ErrSessionNotFound
	}
	return e.sess, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
