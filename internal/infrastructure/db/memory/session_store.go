// Package memory implements an in-process session store for development and testing.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/univexams/exam-portal/internal/core/domain"
	"github.com/univexams/exam-portal/internal/core/ports"
)

// SessionStore keeps sessions in a mutex-guarded map. Records idle for longer
// than ttl are dropped lazily.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	ttl      time.Duration
	now      func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates an empty store. A ttl <= 0 keeps records until deleted.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, sess *domain.Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *SessionStore) Update(_ context.Context, sess *domain.Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[sess.ID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.staleLocked(cur) {
		delete(s.sessions, sess.ID)
		return domain.ErrSessionNotFound
	}
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.staleLocked(sess) {
		delete(s.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions, stale ones included.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) staleLocked(sess domain.Session) bool {
	return s.ttl > 0 && s.now().Sub(sess.LastActivity) > s.ttl
}

func (s *SessionStore) sweepLocked() {
	for id, sess := range s.sessions {
		if s.staleLocked(sess) {
			delete(s.sessions, id)
		}
	}
}
