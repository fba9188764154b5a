// Package memory provides the in-process session record store used when no
// Redis is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/cdforge/internal/domain/structure"
	"github.com/turtacn/cdforge/pkg/errors"
)

type entry struct {
	session   structure.Session
	expiresAt time.Time
}

// SessionStore is a mutex-guarded map with per-record expiry.  Expired
// records are dropped lazily on access.
type SessionStore struct {
	mu      sync.RWMutex
	records map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

var _ structure.SessionRepository = (*SessionStore)(nil)

// NewSessionStore returns a store whose records live for ttl (0 = forever).
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{records: make(map[string]entry), ttl: ttl, now: time.Now}
}

// Save stores a copy of sess.
func (s *SessionStore) Save(_ context.Context, sess *structure.Session) error {
	if sess == nil || sess.ID == "" {
		return errors.InvalidParam("session id is required")
	}
	e := entry{session: *sess}
	e.session.Artifacts = append([]string(nil), sess.Artifacts...)
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.records[sess.ID] = e
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the record.
func (s *SessionStore) Get(_ context.Context, id string) (*structure.Session, error) {
	s.mu.RLock()
	e, ok := s.records[id]
	s.mu.RUnlock()
	if !ok || s.expired(e) {
		if ok {
			s.mu.Lock()
			delete(s.records, id)
			s.mu.Unlock()
		}
		return nil, errors.New(errors.CodeSessionNotFound, "session not found").WithDetail(id)
	}
	out := e.session
	out.Artifacts = append([]string(nil), e.session.Artifacts...)
	return &out, nil
}

// Delete removes the record.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.records[id]
	if !ok || s.expired(e) {
		delete(s.records, id)
		return errors.New(errors.CodeSessionNotFound, "session not found").WithDetail(id)
	}
	delete(s.records, id)
	return nil
}

// Ping always succeeds.
func (s *SessionStore) Ping(context.Context) error { return nil }

// Len reports the number of live records.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.records {
		if !s.expired(e) {
			n++
		}
	}
	return n
}

func (s *SessionStore) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

//Personal.AI order the ending
