// Package ports defines repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping
// persistence mechanisms.
package ports

import (
	"github.com/soundprobe/soundprobe/internal/domain"
)

// SessionRepository handles the persistence of analysis sessions.
// Implementations can use SQLite, files, or in-memory storage.
//
// Thread-safety: Implementations must be thread-safe.
type SessionRepository interface {
	// Save persists a session. If a session with the same ID exists,
	// it is replaced.
	//
	// Returns an error if saving fails.
	Save(session *domain.Session) error

	// Load retrieves a session by ID, including its full analysis.
	// If the session doesn't exist, returns (nil, domain.ErrSessionNotFound).
	Load(id string) (*domain.Session, error)

	// List returns all saved sessions ordered newest first, without their
	// analysis payloads (Analysis carries only the summary fields).
	List() ([]*domain.Session, error)

	// Delete removes a session by ID.
	// If the session doesn't exist, this is a no-op (no error).
	Delete(id string) error

	// Close releases the underlying storage.
	Close() error
}
