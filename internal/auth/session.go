package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
)

// SessionStore issues and resolves opaque session tokens. It is an interface
// so deployments can swap the in-memory store for a shared one without
// touching the core.
type SessionStore interface {
	Create(ctx context.Context, ownerID int64) (token string, err error)
	Resolve(ctx context.Context, token string) (ownerID int64, err error)
	Destroy(ctx context.Context, token string)
}

type memorySession struct {
	ownerID   int64
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory with a TTL. Expired
// entries are dropped lazily on resolve and swept by Purge.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Create(ctx context.Context, ownerID int64) (string, error) {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memorySession{
		ownerID:   ownerID,
		expiresAt: s.now().Add(s.ttl),
	}
	return token, nil
}

func (s *MemorySessionStore) Resolve(ctx context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return 0, core.ErrInvalidCredentials
	}
	if s.now().After(sess.expiresAt) {
		delete(s.sessions, token)
		return 0, core.ErrInvalidCredentials
	}
	return sess.ownerID, nil
}

func (s *MemorySessionStore) Destroy(ctx context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Purge removes all expired sessions and returns how many were dropped.
func (s *MemorySessionStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}
