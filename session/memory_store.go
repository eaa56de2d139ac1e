package session

import (
	"context"
	"sync"

	"github.com/SaiNageswarS/booking-agent/booking"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]booking.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]booking.Session{}}
}

func (s *MemoryStore) Load(_ context.Context, id string) (booking.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[id]; ok {
		return sess.Clone(), nil
	}
	return booking.NewSession(id), nil
}

func (s *MemoryStore) Save(_ context.Context, sess booking.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions[sess.ID].Version != sess.Version-1 {
		return ErrVersionConflict
	}
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
