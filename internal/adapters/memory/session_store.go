package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/samirrijal/jelajah/internal/core/domain"
)

// SessionStore implements ports.SessionStore with an in-process TTL cache.
// Every read refreshes the session's expiry.
type SessionStore struct {
	items *cache.Cache
	ttl   time.Duration
}

// NewSessionStore creates a store whose idle sessions expire after ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionStore{
		items: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// Get returns the session and extends its lifetime.
func (s *SessionStore) Get(id string) (*domain.RouteSession, bool) {
	v, ok := s.items.Get(id)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*domain.RouteSession)
	if !ok {
		return nil, false
	}
	s.items.Set(id, sess, cache.DefaultExpiration)
	return sess, true
}

// Put stores the session.
func (s *SessionStore) Put(session *domain.RouteSession) {
	s.items.Set(session.ID, session, cache.DefaultExpiration)
}

// Delete removes the session.
func (s *SessionStore) Delete(id string) {
	s.items.Delete(id)
}

// Count returns the number of sessions, including expired ones not yet evicted.
func (s *SessionStore) Count() int {
	return s.items.ItemCount()
}
