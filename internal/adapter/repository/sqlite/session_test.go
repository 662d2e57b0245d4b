package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *SessionRepository {
	t.Helper()

	repo, err := NewSessionRepository(logger.NewTestLogger(), filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, repo.Close())
	})
	return repo
}

func sampleSession(id string, createdAt time.Time) *domain.Session {
	return &domain.Session{
		ID: id,
		Clip: domain.ClipInfo{
			FilePath:   "/audio/clip.wav",
			Title:      "Clip",
			Artist:     "Artist",
			FileFormat: "wav",
		},
		Analysis: &domain.AnalysisResult{
			DurationSeconds: 12.5,
			SampleRateHz:    44100,
			Events: []domain.AcousticEvent{
				{Time: 3.2, Frequency: 440, Amplitude: 0.8, Label: "Voice/Mid Range", Confidence: 0.8, Decibels: -1.9},
			},
			Spectrum: []domain.SpectrumSample{{Frequency: 100, Magnitude: 0.4}},
			Energy:   []float64{0.1, 0.8, 0.3},
			Summary: domain.AnalysisSummary{
				AverageRMS:        0.21,
				DominantFrequency: 440,
				MaxDecibels:       -1.9,
				DetectedEvents:    1,
			},
		},
		CreatedAt: createdAt,
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	session := sampleSession("s1", time.Now().UTC())

	require.NoError(t, repo.Save(session))

	loaded, err := repo.Load("s1")
	require.NoError(t, err)

	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, session.Clip, loaded.Clip)
	require.NotNil(t, loaded.Analysis)
	assert.Equal(t, session.Analysis.DurationSeconds, loaded.Analysis.DurationSeconds)
	assert.Equal(t, session.Analysis.Events, loaded.Analysis.Events)
	assert.Equal(t, session.Analysis.Summary, loaded.Analysis.Summary)
}

func TestLoadMissingSession(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Load("nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSaveReplacesExistingSession(t *testing.T) {
	repo := newTestRepository(t)

	session := sampleSession("s1", time.Now().UTC())
	require.NoError(t, repo.Save(session))

	session.Clip.Title = "Renamed"
	require.NoError(t, repo.Save(session))

	loaded, err := repo.Load("s1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Clip.Title)

	sessions, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestListNewestFirstWithSummariesOnly(t *testing.T) {
	repo := newTestRepository(t)

	older := sampleSession("old", time.Now().UTC().Add(-time.Hour))
	newer := sampleSession("new", time.Now().UTC())
	require.NoError(t, repo.Save(older))
	require.NoError(t, repo.Save(newer))

	sessions, err := repo.List()
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "old", sessions[1].ID)

	// Listing carries the summary but not the heavy payloads
	for _, s := range sessions {
		require.NotNil(t, s.Analysis)
		assert.Equal(t, 12.5, s.Analysis.DurationSeconds)
		assert.Equal(t, 1, s.Analysis.Summary.DetectedEvents)
		assert.Empty(t, s.Analysis.Events)
		assert.Empty(t, s.Analysis.Energy)
	}
}

func TestDeleteSession(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Save(sampleSession("s1", time.Now().UTC())))
	require.NoError(t, repo.Delete("s1"))

	_, err := repo.Load("s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Deleting a missing session is a no-op
	assert.NoError(t, repo.Delete("s1"))
}

func TestSaveRejectsIncompleteSessions(t *testing.T) {
	repo := newTestRepository(t)

	assert.Error(t, repo.Save(nil))
	assert.Error(t, repo.Save(&domain.Session{ID: ""}))
	assert.Error(t, repo.Save(&domain.Session{ID: "s1"}))
}
