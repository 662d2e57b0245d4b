// Package fyne provides the Fyne UI adapter.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/engine"
	"github.com/soundprobe/soundprobe/internal/ports"
	"github.com/soundprobe/soundprobe/internal/service"
)

// loadTimeout bounds decode plus analysis for a single clip.
const loadTimeout = 2 * time.Minute

// UIView defines the interface for UI updates.
// The actual UI implementation (MainWindow) must implement this interface.
type UIView interface {
	// RenderFrame pushes one snapshot to every visualization surface.
	RenderFrame(frame engine.Frame)

	// Playback state updates
	SetPlayState(playing bool)
	SetRecordState(recording bool)
	SetVolume(volume float64)

	// Clip and analysis updates
	SetClipInfo(title, detail string)
	SetSummary(summary domain.AnalysisSummary)
	ClearSummary()

	// Progress updates
	SetCurrentTime(seconds float64)
	SetTotalTime(seconds float64)
	SetProgress(position, duration float64)

	// Session list updates
	SetSessions(sessions []*domain.Session)

	// Notifications
	ShowNotification(title, message string)
}

// Presenter coordinates between the session service, the interaction
// controller and the UI (MVP architecture).
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to UI updates
// - Translate UI commands to service method calls
// - Drive the frame scheduler that refreshes the surfaces
//
// Thread-safety: All operations are thread-safe via sync.RWMutex.
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	sessionService *service.SessionService

	// Visualization
	controller *engine.Controller
	scheduler  *engine.Scheduler
	clock      ports.PlaybackClock

	// Event bus for subscriptions
	eventBus ports.EventBus

	// UI view
	view UIView

	// Presentation state
	analysis  *domain.AnalysisResult
	recording bool

	// Concurrency control
	mu           sync.RWMutex
	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter. The presenter owns the frame
// scheduler; Start must be called once the Fyne app is running.
func NewPresenter(
	logger *slog.Logger,
	sessionService *service.SessionService,
	controller *engine.Controller,
	clock ports.PlaybackClock,
	eventBus ports.EventBus,
	view UIView,
) *Presenter {
	p := &Presenter{
		logger:         logger,
		sessionService: sessionService,
		controller:     controller,
		clock:          clock,
		eventBus:       eventBus,
		view:           view,
	}

	p.scheduler = engine.NewScheduler(logger, engine.DefaultFrameInterval, p.renderFrame)

	// Subscribe to events
	p.subscribeToEvents()

	return p
}

// Start begins periodic frame delivery and fills the session list.
func (p *Presenter) Start() {
	if err := p.scheduler.Start(); err != nil {
		p.logger.Error("failed to start frame scheduler", slog.Any("error", err))
	}

	p.refreshSessions()
	p.view.SetVolume(p.clock.State().Volume)
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Clip and analysis events
		domain.EventClipLoaded:     p.onClipLoaded,
		domain.EventAnalysisReady:  p.onAnalysisReady,
		domain.EventAnalysisFailed: p.onAnalysisFailed,
		domain.EventSessionSaved:   p.onSessionSaved,

		// Playback events
		domain.EventPlaybackStarted:  p.onPlaybackStarted,
		domain.EventPlaybackPaused:   p.onPlaybackPaused,
		domain.EventPlaybackStopped:  p.onPlaybackStopped,
		domain.EventPlaybackProgress: p.onPlaybackProgress,

		// View events
		domain.EventViewChanged:   p.onViewChanged,
		domain.EventEventSelected: p.onEventSelected,

		// Capture events
		domain.EventCaptureStarted: p.onCaptureStarted,
		domain.EventCaptureStopped: p.onCaptureStopped,
		domain.EventCaptureFailed:  p.onCaptureFailed,
	}

	for eventType, handler := range subscriptions {
		p.eventBus.Subscribe(eventType, handler)
	}
}

// renderFrame is the scheduler callback. It snapshots the analysis,
// playback state and view parameters so every surface draws from the
// same data within one tick.
func (p *Presenter) renderFrame() {
	p.mu.RLock()
	analysis := p.analysis
	p.mu.RUnlock()

	frame := engine.Frame{
		Analysis:   analysis,
		Playback:   p.clock.State(),
		View:       p.controller.View(),
		SweepAngle: engine.SweepAngle(time.Now()),
	}

	p.view.RenderFrame(frame)
}

// Event handlers

func (p *Presenter) onClipLoaded(event domain.Event) {
	e, ok := event.(domain.ClipLoadedEvent)
	if !ok {
		return
	}

	detail := e.Clip.Artist
	if e.Clip.Recorded {
		detail = "microphone recording"
	}

	p.view.SetClipInfo(e.Clip.Title, detail)
	p.view.SetTotalTime(e.Duration.Seconds())
	p.view.SetCurrentTime(0)
}

func (p *Presenter) onAnalysisReady(event domain.Event) {
	e, ok := event.(domain.AnalysisReadyEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	p.analysis = e.Session.Analysis
	p.mu.Unlock()

	p.controller.SetAnalysis(e.Session.Analysis)
	p.view.SetSummary(e.Session.Analysis.Summary)

	// The surfaces should not wait for the next tick to show the result
	p.scheduler.RequestFrame()
}

func (p *Presenter) onAnalysisFailed(event domain.Event) {
	e, ok := event.(domain.AnalysisFailedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	p.analysis = nil
	p.mu.Unlock()

	p.controller.SetAnalysis(nil)
	p.view.ClearSummary()
	p.view.ShowNotification("Analysis Failed",
		fmt.Sprintf("Could not analyze %s: %v", e.Clip.Title, e.Error))
	p.scheduler.RequestFrame()
}

func (p *Presenter) onSessionSaved(event domain.Event) {
	p.refreshSessions()
}

func (p *Presenter) onPlaybackStarted(event domain.Event) {
	p.view.SetPlayState(true)
}

func (p *Presenter) onPlaybackPaused(event domain.Event) {
	p.view.SetPlayState(false)
}

func (p *Presenter) onPlaybackStopped(event domain.Event) {
	p.view.SetPlayState(false)
	p.view.SetCurrentTime(0)
	p.view.SetProgress(0, 1)
}

func (p *Presenter) onPlaybackProgress(event domain.Event) {
	e, ok := event.(domain.PlaybackProgressEvent)
	if !ok {
		return
	}

	p.view.SetCurrentTime(e.Position.Seconds())
	p.view.SetProgress(e.Position.Seconds(), e.Duration.Seconds())
}

func (p *Presenter) onViewChanged(event domain.Event) {
	// Redraw immediately so slider moves feel responsive
	p.scheduler.RequestFrame()
}

func (p *Presenter) onEventSelected(event domain.Event) {
	e, ok := event.(domain.EventSelectedEvent)
	if !ok {
		return
	}

	p.view.ShowNotification("Event Selected",
		fmt.Sprintf("%s at %.1fs (%.0f Hz)", e.Event.Label, e.Event.Time, e.Event.Frequency))
}

func (p *Presenter) onCaptureStarted(event domain.Event) {
	e, ok := event.(domain.CaptureStartedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	p.recording = true
	p.mu.Unlock()

	p.view.SetRecordState(true)

	if e.Fallback {
		p.view.ShowNotification("Recording",
			fmt.Sprintf("Device refused preferred settings, recording at %d Hz", e.SampleRate))
	}
}

func (p *Presenter) onCaptureStopped(event domain.Event) {
	p.mu.Lock()
	p.recording = false
	p.mu.Unlock()

	p.view.SetRecordState(false)
}

func (p *Presenter) onCaptureFailed(event domain.Event) {
	e, ok := event.(domain.CaptureFailedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	p.recording = false
	p.mu.Unlock()

	p.view.SetRecordState(false)
	p.view.ShowNotification("Recording Failed",
		fmt.Sprintf("Microphone unavailable: %v", e.Error))
}

func (p *Presenter) refreshSessions() {
	sessions, err := p.sessionService.Sessions()
	if err != nil {
		p.logger.Warn("failed to list sessions", slog.Any("error", err))
		return
	}
	p.view.SetSessions(sessions)
}

// UI Command handlers (called by UI)

// OnFileOpened loads and analyzes the selected audio file. Decoding and
// analysis run off the UI goroutine.
func (p *Presenter) OnFileOpened(filePath string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		if _, err := p.sessionService.LoadClip(ctx, filePath); err != nil {
			p.logger.Error("failed to load clip",
				slog.String("file_path", filePath),
				slog.Any("error", err))
		}
	}()
}

// OnPlayClicked toggles between playing and paused.
func (p *Presenter) OnPlayClicked() {
	var err error
	if p.clock.State().Status == domain.StatusPlaying {
		err = p.sessionService.Pause()
	} else {
		err = p.sessionService.Play()
	}

	if err != nil {
		p.logger.Error("play/pause failed", slog.Any("error", err))
		p.view.ShowNotification("Playback Error",
			fmt.Sprintf("Failed to start playback: %v", err))
	}
}

// OnStopClicked handles the stop button click.
func (p *Presenter) OnStopClicked() {
	if err := p.sessionService.StopPlayback(); err != nil {
		p.logger.Error("stop failed", slog.Any("error", err))
	}
}

// OnRecordClicked starts the microphone capture, or stops and analyzes
// it when a capture is already running.
func (p *Presenter) OnRecordClicked() {
	p.mu.RLock()
	recording := p.recording
	p.mu.RUnlock()

	if !recording {
		if err := p.sessionService.StartCapture(); err != nil {
			p.logger.Error("failed to start capture", slog.Any("error", err))
		}
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		if _, err := p.sessionService.StopCapture(ctx); err != nil {
			p.logger.Error("failed to analyze recording", slog.Any("error", err))
		}
	}()
}

// OnSeekRequested handles seek requests from the progress slider.
func (p *Presenter) OnSeekRequested(seconds float64) {
	position := time.Duration(seconds * float64(time.Second))
	if err := p.clock.Seek(position); err != nil {
		p.logger.Error("seek failed", slog.Any("error", err))
	}
}

// OnVolumeChanged handles volume slider changes (slider range 0 to 1).
func (p *Presenter) OnVolumeChanged(volume float64) {
	if err := p.sessionService.SetVolume(volume); err != nil {
		p.logger.Error("volume change failed", slog.Any("error", err))
	}
}

// OnZoomChanged handles zoom slider changes.
func (p *Presenter) OnZoomChanged(zoom float64) {
	p.controller.SetZoom(zoom)
}

// OnSensitivityChanged handles sensitivity slider changes.
func (p *Presenter) OnSensitivityChanged(sensitivity float64) {
	p.controller.SetSensitivity(sensitivity)
}

// OnLabelsToggled handles the label visibility checkbox.
func (p *Presenter) OnLabelsToggled(show bool) {
	p.controller.SetShowLabels(show)
}

// OnSessionSelected restores a previously saved session.
func (p *Presenter) OnSessionSelected(id string) {
	if _, err := p.sessionService.RestoreSession(id); err != nil {
		p.logger.Error("failed to restore session",
			slog.String("id", id),
			slog.Any("error", err))
		p.view.ShowNotification("Session Error",
			fmt.Sprintf("Failed to restore session: %v", err))
	}
}

// OnSessionDeleted removes a saved session and refreshes the list.
func (p *Presenter) OnSessionDeleted(id string) {
	if err := p.sessionService.DeleteSession(id); err != nil {
		p.logger.Error("failed to delete session",
			slog.String("id", id),
			slog.Any("error", err))
		return
	}
	p.refreshSessions()
}

// Shutdown stops frame delivery. It's safe to call multiple times.
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.scheduler.Close()
	})
}
