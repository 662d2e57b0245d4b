// Package sqlite provides a SQLite-backed session repository.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/ports"
)

const repoType = "session"

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
    id          TEXT PRIMARY KEY,
    created_at  DATETIME NOT NULL,
    file_path   TEXT NOT NULL,
    title       TEXT NOT NULL,
    artist      TEXT,
    album       TEXT,
    file_format TEXT,
    recorded    INTEGER NOT NULL DEFAULT 0,
    duration_s  REAL NOT NULL,
    sample_rate INTEGER NOT NULL,
    summary     TEXT NOT NULL,
    analysis    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
`

// SessionRepository is the SQLite implementation of the SessionRepository
// interface. The full analysis payload is stored as a JSON column; the
// summary is duplicated into its own column so listing stays cheap.
//
// Thread-safety: database/sql pools connections, so methods are safe to
// call concurrently.
type SessionRepository struct {
	logger *slog.Logger
	db     *sql.DB
}

// NewSessionRepository opens (or creates) the database at dataSourceName
// and ensures the schema exists.
func NewSessionRepository(logger *slog.Logger, dataSourceName string) (*SessionRepository, error) {
	dbPath := dataSourceName
	if idx := strings.Index(dataSourceName, "?"); idx != -1 {
		dbPath = dataSourceName[:idx]
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, domain.NewRepositoryError("open", repoType, "failed to create database directory", err)
		}
	}

	// Wait rather than fail on a locked database
	if !strings.Contains(dataSourceName, "_busy_timeout") {
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&_busy_timeout=5000"
		} else {
			dataSourceName += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, domain.NewRepositoryError("open", repoType, "failed to open database", err)
	}

	if _, err := db.Exec(createSessionsTable); err != nil {
		_ = db.Close()
		return nil, domain.NewRepositoryError("open", repoType, "failed to create schema", err)
	}

	logger.Debug("session repository opened", slog.String("path", dbPath))

	return &SessionRepository{logger: logger, db: db}, nil
}

// Save persists a session, replacing any session with the same ID.
func (r *SessionRepository) Save(session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.NewRepositoryError("save", repoType, "session has no ID", nil)
	}
	if session.Analysis == nil {
		return domain.NewRepositoryError("save", repoType, "session has no analysis", domain.ErrNoAnalysis)
	}

	summaryJSON, err := json.Marshal(session.Analysis.Summary)
	if err != nil {
		return domain.NewRepositoryError("save", repoType, "failed to marshal summary", err)
	}
	analysisJSON, err := json.Marshal(session.Analysis)
	if err != nil {
		return domain.NewRepositoryError("save", repoType, "failed to marshal analysis", err)
	}

	_, err = r.db.Exec(`
		INSERT OR REPLACE INTO sessions (
			id, created_at, file_path, title, artist, album,
			file_format, recorded, duration_s, sample_rate, summary, analysis
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.CreatedAt,
		session.Clip.FilePath,
		session.Clip.Title,
		session.Clip.Artist,
		session.Clip.Album,
		session.Clip.FileFormat,
		boolToInt(session.Clip.Recorded),
		session.Analysis.DurationSeconds,
		session.Analysis.SampleRateHz,
		string(summaryJSON),
		string(analysisJSON),
	)
	if err != nil {
		return domain.NewRepositoryError("save", repoType, "failed to store session", err)
	}

	r.logger.Debug("session saved", slog.String("id", session.ID))
	return nil
}

// Load retrieves a session by ID, including its full analysis.
func (r *SessionRepository) Load(id string) (*domain.Session, error) {
	row := r.db.QueryRow(`
		SELECT id, created_at, file_path, title, artist, album,
		       file_format, recorded, analysis
		FROM sessions WHERE id = ?`, id)

	var (
		session      domain.Session
		recorded     int
		analysisJSON string
	)
	err := row.Scan(
		&session.ID,
		&session.CreatedAt,
		&session.Clip.FilePath,
		&session.Clip.Title,
		&session.Clip.Artist,
		&session.Clip.Album,
		&session.Clip.FileFormat,
		&recorded,
		&analysisJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, domain.NewRepositoryError("load", repoType, "failed to read session", err)
	}

	session.Clip.Recorded = recorded == 1

	var analysis domain.AnalysisResult
	if err := json.Unmarshal([]byte(analysisJSON), &analysis); err != nil {
		return nil, domain.NewRepositoryError("load", repoType, "failed to unmarshal analysis", err)
	}
	session.Analysis = &analysis

	return &session, nil
}

// List returns all sessions newest first. The analysis carries only the
// provenance and summary fields, not the full payload.
func (r *SessionRepository) List() ([]*domain.Session, error) {
	rows, err := r.db.Query(`
		SELECT id, created_at, file_path, title, artist, album,
		       file_format, recorded, duration_s, sample_rate, summary
		FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, domain.NewRepositoryError("list", repoType, "failed to query sessions", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		var (
			session     domain.Session
			recorded    int
			summaryJSON string
			analysis    domain.AnalysisResult
		)
		err := rows.Scan(
			&session.ID,
			&session.CreatedAt,
			&session.Clip.FilePath,
			&session.Clip.Title,
			&session.Clip.Artist,
			&session.Clip.Album,
			&session.Clip.FileFormat,
			&recorded,
			&analysis.DurationSeconds,
			&analysis.SampleRateHz,
			&summaryJSON,
		)
		if err != nil {
			return nil, domain.NewRepositoryError("list", repoType, "failed to scan session", err)
		}

		session.Clip.Recorded = recorded == 1
		if err := json.Unmarshal([]byte(summaryJSON), &analysis.Summary); err != nil {
			return nil, domain.NewRepositoryError("list", repoType, "failed to unmarshal summary", err)
		}
		session.Analysis = &analysis

		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRepositoryError("list", repoType, "failed to iterate sessions", err)
	}

	return sessions, nil
}

// Delete removes a session by ID. Deleting a missing session is a no-op.
func (r *SessionRepository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return domain.NewRepositoryError("delete", repoType, "failed to delete session", err)
	}
	return nil
}

// Close releases the database.
func (r *SessionRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Verify that SessionRepository implements the SessionRepository interface
var _ ports.SessionRepository = (*SessionRepository)(nil)
