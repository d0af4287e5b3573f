package usecase

import (
	"errors"
	"sync"
	"time"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
)

// ErrSessionNotFound is returned when a session ID is unknown or already
// cleaned up.
var ErrSessionNotFound = errors.New("streaming session not found")

// SessionStore is an in-memory registry of active streaming sessions.
// Generator goroutines re-resolve their session through the store before
// every mutation, so deleting a session here is what makes late completions
// harmless no-ops.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*entities.StreamingSession
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*entities.StreamingSession),
	}
}

// Put registers a session under its ID, replacing any previous session with
// the same ID.
func (s *SessionStore) Put(session *entities.StreamingSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

// Get returns the session for the given ID.
func (s *SessionStore) Get(id string) (*entities.StreamingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes a session. Subsequent Get calls fail, which is how in-flight
// generation results for the session are discarded.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports how many sessions are registered.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Expire removes every session created before the cutoff and returns the
// removed IDs.
func (s *SessionStore) Expire(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	for id, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}
