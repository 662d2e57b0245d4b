package fyne

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	capturemock "github.com/soundprobe/soundprobe/internal/adapter/capture/mock"
	clockmock "github.com/soundprobe/soundprobe/internal/adapter/clock/mock"
	"github.com/soundprobe/soundprobe/internal/adapter/eventbus"
	"github.com/soundprobe/soundprobe/internal/adapter/repository/memory"
	"github.com/soundprobe/soundprobe/internal/analysis"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/engine"
	"github.com/soundprobe/soundprobe/internal/logger"
	"github.com/soundprobe/soundprobe/internal/service"
)

// windowFixture wires a MainWindow to a presenter backed by mock adapters.
type windowFixture struct {
	window *MainWindow
	repo   *memory.SessionRepository
}

func newWindowFixture(t *testing.T) *windowFixture {
	t.Helper()

	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus()
	bus.SetLogger(log)

	clock := clockmock.NewClock()
	repo := memory.NewSessionRepository()
	svc := service.NewSessionService(log, clock, clockmock.NewDecoder(),
		analysis.New(log), capturemock.NewRecorder(), repo, bus)
	controller := engine.NewController(log, clock, bus)

	window := NewMainWindow(test.NewApp(), controller)
	presenter := NewPresenter(log, svc, controller, clock, bus, window)
	window.SetPresenter(presenter)

	t.Cleanup(func() {
		presenter.Shutdown()
		svc.Shutdown()
		_ = bus.Close()
	})

	return &windowFixture{window: window, repo: repo}
}

func savedSession(t *testing.T, repo *memory.SessionRepository, id string) *domain.Session {
	t.Helper()

	session := &domain.Session{
		ID: id,
		Clip: domain.ClipInfo{
			Title:    id,
			Recorded: true,
		},
		Analysis: &domain.AnalysisResult{
			DurationSeconds: 1,
			SampleRateHz:    8000,
		},
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Save(session))
	return session
}

func TestDeleteButtonRemovesSelectedSession(t *testing.T) {
	f := newWindowFixture(t)
	savedSession(t, f.repo, "session-a")
	savedSession(t, f.repo, "session-b")

	f.window.presenter.refreshSessions()
	require.Len(t, f.window.sessions, 2)

	f.window.sessionList.Select(0)
	f.window.mu.RLock()
	selected := f.window.selectedSession
	f.window.mu.RUnlock()
	require.NotEmpty(t, selected)

	test.Tap(f.window.deleteButton)

	_, err := f.repo.Load(selected)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	f.window.mu.RLock()
	defer f.window.mu.RUnlock()
	assert.Len(t, f.window.sessions, 1, "list should refresh after deletion")
	assert.Empty(t, f.window.selectedSession, "selection should clear after deletion")
}

func TestDeleteButtonWithoutSelectionIsNoOp(t *testing.T) {
	f := newWindowFixture(t)
	savedSession(t, f.repo, "session-a")
	f.window.presenter.refreshSessions()

	test.Tap(f.window.deleteButton)

	sessions, err := f.repo.List()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
