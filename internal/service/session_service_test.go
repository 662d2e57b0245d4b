package service

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/soundprobe/soundprobe/internal/adapter/capture/mock"
	clockmock "github.com/soundprobe/soundprobe/internal/adapter/clock/mock"
	"github.com/soundprobe/soundprobe/internal/adapter/eventbus"
	"github.com/soundprobe/soundprobe/internal/adapter/repository/memory"
	"github.com/soundprobe/soundprobe/internal/analysis"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/logger"
	"github.com/soundprobe/soundprobe/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture bundles the service with its mock collaborators.
type fixture struct {
	service  *SessionService
	clock    *clockmock.Clock
	decoder  *clockmock.Decoder
	recorder *mock.Recorder
	repo     *memory.SessionRepository
	bus      *eventbus.SyncEventBus

	mu     sync.Mutex
	events []domain.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.NewTestLogger()
	f := &fixture{
		clock:    clockmock.NewClock(),
		decoder:  clockmock.NewDecoder(),
		recorder: mock.NewRecorder(),
		repo:     memory.NewSessionRepository(),
		bus:      eventbus.NewSyncEventBus(),
	}
	f.bus.SetLogger(log)
	f.clock.SetLogger(log)

	f.bus.SubscribeAll(func(event domain.Event) {
		f.mu.Lock()
		f.events = append(f.events, event)
		f.mu.Unlock()
	})

	f.decoder.SetResult(burst(8000), 8000)

	f.service = NewSessionService(log, f.clock, f.decoder, analysis.New(log), f.recorder, f.repo, f.bus)

	t.Cleanup(func() {
		require.NoError(t, f.bus.Close())
	})

	return f
}

// eventTypes returns the types of all captured events, in publish order.
func (f *fixture) eventTypes() []domain.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()

	types := make([]domain.EventType, len(f.events))
	for i, e := range f.events {
		types[i] = e.Type()
	}
	return types
}

func (f *fixture) hasEvent(eventType domain.EventType) bool {
	for _, et := range f.eventTypes() {
		if et == eventType {
			return true
		}
	}
	return false
}

// burst is two seconds of near-silence with a loud mid-band tone so the
// analyzer finds at least one event.
func burst(sampleRate int) []float64 {
	samples := make([]float64, 2*sampleRate)
	for i := range samples {
		ts := float64(i) / float64(sampleRate)
		amp := 0.01
		if ts >= 0.9 && ts <= 1.1 {
			amp = 0.9
		}
		samples[i] = amp * math.Sin(2*math.Pi*440*ts)
	}
	return samples
}

// tempClip writes an empty placeholder file; the mock decoder never reads it.
func tempClip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o600))
	return path
}

func TestLoadClipCreatesSession(t *testing.T) {
	f := newFixture(t)
	path := tempClip(t)

	session, err := f.service.LoadClip(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, path, session.Clip.FilePath)
	assert.Equal(t, "clip", session.Clip.Title)
	assert.Equal(t, "wav", session.Clip.FileFormat)
	assert.False(t, session.Clip.Recorded)
	require.NotNil(t, session.Analysis)
	assert.NotEmpty(t, session.Analysis.Events)

	assert.Same(t, session, f.service.CurrentSession())

	// Session was persisted
	saved, err := f.repo.Load(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, saved.ID)

	assert.True(t, f.hasEvent(domain.EventClipLoaded))
	assert.True(t, f.hasEvent(domain.EventSessionSaved))
	assert.True(t, f.hasEvent(domain.EventAnalysisReady))
}

func TestLoadClipDecodeFailurePublishesAnalysisFailed(t *testing.T) {
	f := newFixture(t)
	f.decoder.SetFailDecode(true)

	_, err := f.service.LoadClip(context.Background(), tempClip(t))
	require.Error(t, err)

	var svcErr *domain.ServiceError
	assert.ErrorAs(t, err, &svcErr)

	assert.True(t, f.hasEvent(domain.EventAnalysisFailed))
	assert.False(t, f.hasEvent(domain.EventAnalysisReady))
	assert.Nil(t, f.service.CurrentSession())
}

func TestLoadClipClockFailureReleasesResources(t *testing.T) {
	f := newFixture(t)
	f.clock.SetFailLoad(true)

	_, err := f.service.LoadClip(context.Background(), tempClip(t))
	require.Error(t, err)

	assert.True(t, f.hasEvent(domain.EventAnalysisFailed))
	assert.Equal(t, domain.StatusStopped, f.clock.State().Status)
}

func TestLoadClipAnalysisFailureUnloadsClip(t *testing.T) {
	f := newFixture(t)
	f.decoder.SetResult(nil, 8000) // empty input makes the analyzer fail

	_, err := f.service.LoadClip(context.Background(), tempClip(t))
	require.Error(t, err)

	assert.True(t, f.hasEvent(domain.EventAnalysisFailed))
	// The clip must not stay loaded without a session
	assert.Error(t, f.clock.Play())
}

func TestStartCaptureUsesPreferredSettings(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.StartCapture())

	calls := f.recorder.StartCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, ports.DefaultCaptureSettings(), calls[0])
	assert.True(t, f.hasEvent(domain.EventCaptureStarted))
}

func TestStartCaptureFallsBackToReducedSettingsOnce(t *testing.T) {
	f := newFixture(t)
	f.recorder.SetFailStarts(1)

	require.NoError(t, f.service.StartCapture())

	calls := f.recorder.StartCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, ports.DefaultCaptureSettings(), calls[0])
	assert.Equal(t, ports.ReducedCaptureSettings(), calls[1])
}

func TestStartCaptureTerminalAfterSecondRefusal(t *testing.T) {
	f := newFixture(t)
	f.recorder.SetFailStarts(2)

	err := f.service.StartCapture()
	require.Error(t, err)

	var captureErr *domain.CaptureError
	require.ErrorAs(t, err, &captureErr)
	assert.True(t, captureErr.Fallback)

	// Exactly one retry, no more
	assert.Len(t, f.recorder.StartCalls(), 2)

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if failed, ok := e.(domain.CaptureFailedEvent); ok {
			assert.True(t, failed.Terminal)
			return
		}
	}
	t.Fatal("expected a CaptureFailedEvent")
}

func TestStartCaptureWhileRecording(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.StartCapture())
	assert.ErrorIs(t, f.service.StartCapture(), domain.ErrCaptureInProgress)
}

func TestStopCaptureAnalyzesRecording(t *testing.T) {
	f := newFixture(t)
	f.recorder.SetSamples(burst(16000))

	require.NoError(t, f.service.StartCapture())

	session, err := f.service.StopCapture(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.True(t, session.Clip.Recorded)
	assert.Empty(t, session.Clip.FilePath)
	assert.NotEmpty(t, session.Analysis.Events)

	assert.True(t, f.hasEvent(domain.EventCaptureStopped))
	assert.True(t, f.hasEvent(domain.EventAnalysisReady))

	// The recording is loaded for playback
	assert.NoError(t, f.clock.Play())
}

func TestStopCaptureWithNoAudio(t *testing.T) {
	f := newFixture(t)
	f.recorder.SetSamples(nil)

	require.NoError(t, f.service.StartCapture())

	_, err := f.service.StopCapture(context.Background())
	require.Error(t, err)
	assert.True(t, f.hasEvent(domain.EventCaptureStopped))
}

func TestRestoreSession(t *testing.T) {
	f := newFixture(t)
	path := tempClip(t)

	created, err := f.service.LoadClip(context.Background(), path)
	require.NoError(t, err)

	// Forget the in-memory state, then restore from the repository
	require.NoError(t, f.service.StopPlayback())

	restored, err := f.service.RestoreSession(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, restored.ID)
	assert.Equal(t, created.ID, f.service.CurrentSession().ID)

	_, err = f.service.RestoreSession("missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestPlaybackControlFlow(t *testing.T) {
	f := newFixture(t)
	f.clock.SetLoadDuration(10 * time.Second)

	_, err := f.service.LoadClip(context.Background(), tempClip(t))
	require.NoError(t, err)

	require.NoError(t, f.service.Play())
	assert.Equal(t, domain.StatusPlaying, f.clock.State().Status)
	assert.True(t, f.hasEvent(domain.EventPlaybackStarted))

	require.NoError(t, f.service.Pause())
	assert.Equal(t, domain.StatusPaused, f.clock.State().Status)
	assert.True(t, f.hasEvent(domain.EventPlaybackPaused))

	require.NoError(t, f.service.StopPlayback())
	assert.Equal(t, domain.StatusStopped, f.clock.State().Status)
	assert.True(t, f.hasEvent(domain.EventPlaybackStopped))
}

func TestPlayWithoutSession(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.service.Play(), domain.ErrNoClipLoaded)
}

func TestShutdownDiscardsRunningCapture(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.StartCapture())
	f.service.Shutdown()

	assert.False(t, f.recorder.IsRecording())
	assert.Equal(t, domain.StatusStopped, f.clock.State().Status)
}
