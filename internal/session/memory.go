package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryStore is the in-memory Store backing for single-instance deployments.
// Expired entries are reclaimed lazily on access; an optional sweeper keeps
// the map bounded when users abandon sessions.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	timeout  time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an in-memory session store with the given timeout.
func NewMemoryStore(timeout time.Duration) *MemoryStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		now:      time.Now,
	}
}

// Create inserts or replaces the session for sess.UserID.
func (s *MemoryStore) Create(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.ExpiresAt = s.now().Add(s.timeout)
	s.sessions[sess.UserID] = sess
	return nil
}

// Get returns the session for userID, or nil if none exists.
func (s *MemoryStore) Get(_ context.Context, userID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

// Update rewrites an existing session, keeping its expiry.
func (s *MemoryStore) Update(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[sess.UserID]; ok {
		sess.ExpiresAt = existing.ExpiresAt
	}
	cp := *sess
	s.sessions[sess.UserID] = &cp
	return nil
}

// IsExpired reports true if no session exists or its expiry has passed.
func (s *MemoryStore) IsExpired(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return true, nil
	}
	return sess.Expired(s.now()), nil
}

// Delete removes the session for userID.
func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	return nil
}

// Sweep removes all expired sessions and returns how many were evicted.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for userID, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, userID)
			evicted++
		}
	}
	return evicted
}

// StartSweeper runs Sweep on the given interval until the context is
// canceled. Correctness does not depend on it; it only bounds memory when
// many users abandon sessions.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Debug("swept expired review sessions", slog.Int("evicted", n))
			}
		}
	}
}
