// Package memory provides an in-memory session repository. It backs tests
// and the fallback when the SQLite store cannot be opened.
package memory

import (
	"sort"
	"sync"

	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/ports"
)

// SessionRepository implements ports.SessionRepository with a map.
// Sessions are lost when the process exits.
//
// Thread-safe: All operations protected by sync.RWMutex.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	closed   bool
}

// NewSessionRepository creates an empty in-memory repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

// Save stores a session, replacing any session with the same ID.
func (r *SessionRepository) Save(session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return domain.NewRepositoryError("save", "session", "repository closed", nil)
	}
	if session == nil || session.ID == "" {
		return domain.NewRepositoryError("save", "session", "session has no ID", nil)
	}

	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

// Load retrieves a session by ID.
func (r *SessionRepository) Load(id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	copied := *session
	return &copied, nil
}

// List returns all sessions, newest first.
func (r *SessionRepository) List() ([]*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		copied := *s
		sessions = append(sessions, &copied)
	}

	sort.Slice(sessions, func(a, b int) bool {
		return sessions[a].CreatedAt.After(sessions[b].CreatedAt)
	})

	return sessions, nil
}

// Delete removes a session by ID; deleting a missing session is a no-op.
func (r *SessionRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// Close marks the repository closed.
func (r *SessionRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	return nil
}

// Verify that SessionRepository implements the SessionRepository interface
var _ ports.SessionRepository = (*SessionRepository)(nil)
