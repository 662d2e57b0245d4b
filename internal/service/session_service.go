// Package service provides the business logic of the SoundProbe application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/ports"
)

// SessionService orchestrates the analysis workflow: loading clips,
// recording from the microphone, running the analyzer and persisting
// sessions. It is the only writer of the current session.
//
// All operations are thread-safe via sync.RWMutex.
type SessionService struct {
	// Dependencies (injected)
	logger   *slog.Logger
	clock    ports.PlaybackClock
	decoder  ports.ClipDecoder
	analyzer ports.Analyzer
	recorder ports.Recorder
	repo     ports.SessionRepository
	bus      ports.EventBus

	// State
	current *domain.Session
	mu      sync.RWMutex
}

// NewSessionService creates a session service.
func NewSessionService(
	logger *slog.Logger,
	clock ports.PlaybackClock,
	decoder ports.ClipDecoder,
	analyzer ports.Analyzer,
	recorder ports.Recorder,
	repo ports.SessionRepository,
	bus ports.EventBus,
) *SessionService {
	logger.Debug("session service initialized")

	return &SessionService{
		logger:   logger,
		clock:    clock,
		decoder:  decoder,
		analyzer: analyzer,
		recorder: recorder,
		repo:     repo,
		bus:      bus,
	}
}

// LoadClip loads, decodes and analyzes an audio file, replacing the
// current session. The previous clip's playback resources are released
// before the new ones are acquired; on any failure the clock is left
// without a loaded clip.
func (s *SessionService) LoadClip(ctx context.Context, filePath string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("loading clip", slog.String("file_path", filePath))

	s.releaseClip()

	clip := readClipInfo(filePath)

	samples, sampleRate, err := s.decoder.Decode(filePath)
	if err != nil {
		s.bus.Publish(domain.NewAnalysisFailedEvent(clip, err))
		return nil, domain.NewServiceError("SessionService", "LoadClip", "failed to decode clip", err)
	}

	duration, err := s.clock.Load(filePath)
	if err != nil {
		s.bus.Publish(domain.NewAnalysisFailedEvent(clip, err))
		return nil, domain.NewServiceError("SessionService", "LoadClip", "failed to prepare playback", err)
	}

	s.bus.Publish(domain.NewClipLoadedEvent(clip, duration))

	session, err := s.analyzeLocked(ctx, clip, samples, sampleRate)
	if err != nil {
		// Analysis failed: do not leave a clip loaded that has no session
		s.releaseClip()
		return nil, err
	}

	return session, nil
}

// StartCapture begins recording from the microphone. If the device refuses
// the preferred settings it retries exactly once with reduced settings;
// a second refusal is terminal.
func (s *SessionService) StartCapture() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorder.IsRecording() {
		return domain.ErrCaptureInProgress
	}

	preferred := ports.DefaultCaptureSettings()
	granted, err := s.recorder.Start(preferred)
	if err == nil {
		s.bus.Publish(domain.NewCaptureStartedEvent(granted.SampleRate, granted.Channels, false))
		return nil
	}

	s.logger.Warn("capture refused preferred settings, retrying reduced",
		slog.Int("sample_rate", preferred.SampleRate),
		slog.Any("error", err))

	reduced := ports.ReducedCaptureSettings()
	granted, err = s.recorder.Start(reduced)
	if err != nil {
		s.bus.Publish(domain.NewCaptureFailedEvent(true, err))
		return domain.NewCaptureError("start", true, "capture unavailable at reduced settings", err)
	}

	s.bus.Publish(domain.NewCaptureStartedEvent(granted.SampleRate, granted.Channels, true))
	return nil
}

// StopCapture ends the recording, loads it for playback and analyzes it.
// The recording never touches disk.
func (s *SessionService) StopCapture(ctx context.Context) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	samples, sampleRate, err := s.recorder.Stop()
	if err != nil {
		return nil, domain.NewServiceError("SessionService", "StopCapture", "failed to stop capture", err)
	}

	duration := time.Duration(float64(len(samples)) / float64(sampleRate) * float64(time.Second))
	s.bus.Publish(domain.NewCaptureStoppedEvent(duration))

	if len(samples) == 0 {
		return nil, domain.NewServiceError("SessionService", "StopCapture", "capture produced no audio", domain.ErrNoAnalysis)
	}

	s.releaseClip()

	clip := domain.ClipInfo{
		Title:    fmt.Sprintf("Recording %s", time.Now().Format("2006-01-02 15:04:05")),
		Recorded: true,
	}

	clipDuration, err := s.clock.LoadPCM(samples, sampleRate)
	if err != nil {
		return nil, domain.NewServiceError("SessionService", "StopCapture", "failed to prepare playback", err)
	}
	s.bus.Publish(domain.NewClipLoadedEvent(clip, clipDuration))

	session, err := s.analyzeLocked(ctx, clip, samples, sampleRate)
	if err != nil {
		s.releaseClip()
		return nil, err
	}

	return session, nil
}

// analyzeLocked runs the analyzer and installs the resulting session.
// Caller must hold the write lock.
func (s *SessionService) analyzeLocked(ctx context.Context, clip domain.ClipInfo, samples []float64, sampleRate int) (*domain.Session, error) {
	analysis, err := s.analyzer.Analyze(ctx, samples, sampleRate)
	if err != nil {
		s.bus.Publish(domain.NewAnalysisFailedEvent(clip, err))
		return nil, domain.NewServiceError("SessionService", "Analyze", "analysis failed", err)
	}

	session := &domain.Session{
		ID:        fmt.Sprintf("session-%d", time.Now().UnixNano()),
		Clip:      clip,
		Analysis:  analysis,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Save(session); err != nil {
		// Persistence failure does not invalidate the in-memory session
		s.logger.Warn("failed to persist session", slog.Any("error", err))
	} else {
		s.bus.Publish(domain.NewSessionSavedEvent(session.ID))
	}

	s.current = session
	s.bus.Publish(domain.NewAnalysisReadyEvent(*session))

	s.logger.Info("session ready",
		slog.String("id", session.ID),
		slog.String("title", clip.Title),
		slog.Int("events", len(analysis.Events)))

	return session, nil
}

// CurrentSession returns the active session, nil when none is loaded.
func (s *SessionService) CurrentSession() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Sessions lists the persisted sessions, newest first.
func (s *SessionService) Sessions() ([]*domain.Session, error) {
	return s.repo.List()
}

// RestoreSession loads a persisted session and, for file-backed clips,
// reloads the clip into the playback clock.
func (s *SessionService) RestoreSession(id string) (*domain.Session, error) {
	session, err := s.repo.Load(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseClip()

	if !session.Clip.Recorded && session.Clip.FilePath != "" {
		duration, err := s.clock.Load(session.Clip.FilePath)
		if err != nil {
			// The file may have moved since the session was saved; the
			// analysis is still viewable without playback.
			s.logger.Warn("failed to reload clip for restored session",
				slog.String("file_path", session.Clip.FilePath),
				slog.Any("error", err))
		} else {
			s.bus.Publish(domain.NewClipLoadedEvent(session.Clip, duration))
		}
	}

	s.current = session
	s.bus.Publish(domain.NewAnalysisReadyEvent(*session))

	return session, nil
}

// DeleteSession removes a persisted session. The current in-memory session
// is untouched.
func (s *SessionService) DeleteSession(id string) error {
	return s.repo.Delete(id)
}

// Play starts or resumes playback of the current clip.
func (s *SessionService) Play() error {
	s.mu.RLock()
	session := s.current
	s.mu.RUnlock()

	if session == nil {
		return domain.ErrNoClipLoaded
	}

	if err := s.clock.Play(); err != nil {
		return err
	}

	s.bus.Publish(domain.NewPlaybackStartedEvent(session.Clip))
	return nil
}

// Pause pauses playback, preserving the position.
func (s *SessionService) Pause() error {
	if err := s.clock.Pause(); err != nil {
		return err
	}

	position := time.Duration(s.clock.State().CurrentTime * float64(time.Second))
	s.bus.Publish(domain.NewPlaybackPausedEvent(position))
	return nil
}

// StopPlayback halts playback and releases the clip; the session and its
// analysis stay loaded.
func (s *SessionService) StopPlayback() error {
	if err := s.clock.Stop(); err != nil {
		return err
	}

	s.bus.Publish(domain.NewPlaybackStoppedEvent())
	return nil
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (s *SessionService) SetVolume(volume float64) error {
	return s.clock.SetVolume(volume)
}

// Shutdown discards any running capture and releases playback resources.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorder.IsRecording() {
		if _, _, err := s.recorder.Stop(); err != nil {
			s.logger.Warn("failed to stop capture during shutdown", slog.Any("error", err))
		}
	}

	s.releaseClip()

	s.logger.Debug("session service shut down")
}

// releaseClip unloads the clock's clip. Callers must hold the write lock.
func (s *SessionService) releaseClip() {
	if err := s.clock.Stop(); err != nil && !errors.Is(err, domain.ErrNoClipLoaded) {
		s.logger.Warn("failed to release clip", slog.Any("error", err))
	}
}

// readClipInfo extracts display metadata from the file's tags, falling
// back to the file name.
func readClipInfo(filePath string) domain.ClipInfo {
	base := filepath.Base(filePath)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")

	clip := domain.ClipInfo{
		FilePath:   filePath,
		Title:      strings.TrimSuffix(base, filepath.Ext(base)),
		FileFormat: ext,
	}

	f, err := os.Open(filePath)
	if err != nil {
		return clip
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return clip
	}

	if t := meta.Title(); t != "" {
		clip.Title = t
	}
	clip.Artist = meta.Artist()
	clip.Album = meta.Album()

	return clip
}
