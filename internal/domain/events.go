// Package domain defines events for the event-driven architecture.
// Events enable loose coupling between services, the engine and the UI.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Session events
	EventClipLoaded     EventType = "clip.loaded"
	EventAnalysisReady  EventType = "analysis.ready"
	EventAnalysisFailed EventType = "analysis.failed"
	EventSessionSaved   EventType = "session.saved"

	// Playback events
	EventPlaybackStarted  EventType = "playback.started"
	EventPlaybackPaused   EventType = "playback.paused"
	EventPlaybackStopped  EventType = "playback.stopped"
	EventPlaybackProgress EventType = "playback.progress"
	EventVolumeChanged    EventType = "volume.changed"

	// Engine events
	EventViewChanged   EventType = "view.changed"
	EventEventSelected EventType = "event.selected"

	// Capture events
	EventCaptureStarted EventType = "capture.started"
	EventCaptureStopped EventType = "capture.stopped"
	EventCaptureFailed  EventType = "capture.failed"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// ClipLoadedEvent is published when a clip is decoded and ready for playback.
type ClipLoadedEvent struct {
	baseEvent
	Clip     ClipInfo
	Duration time.Duration
}

// Type returns the event type.
func (e ClipLoadedEvent) Type() EventType {
	return EventClipLoaded
}

// NewClipLoadedEvent creates a new ClipLoadedEvent.
func NewClipLoadedEvent(clip ClipInfo, duration time.Duration) ClipLoadedEvent {
	return ClipLoadedEvent{
		baseEvent: newBaseEvent(),
		Clip:      clip,
		Duration:  duration,
	}
}

// AnalysisReadyEvent is published when the analysis of a clip completes.
// The carried session replaces any previous one wholesale.
type AnalysisReadyEvent struct {
	baseEvent
	Session Session
}

// Type returns the event type.
func (e AnalysisReadyEvent) Type() EventType {
	return EventAnalysisReady
}

// NewAnalysisReadyEvent creates a new AnalysisReadyEvent.
func NewAnalysisReadyEvent(session Session) AnalysisReadyEvent {
	return AnalysisReadyEvent{
		baseEvent: newBaseEvent(),
		Session:   session,
	}
}

// AnalysisFailedEvent is published when a clip cannot be analyzed.
type AnalysisFailedEvent struct {
	baseEvent
	Clip  ClipInfo
	Error error
}

// Type returns the event type.
func (e AnalysisFailedEvent) Type() EventType {
	return EventAnalysisFailed
}

// NewAnalysisFailedEvent creates a new AnalysisFailedEvent.
func NewAnalysisFailedEvent(clip ClipInfo, err error) AnalysisFailedEvent {
	return AnalysisFailedEvent{
		baseEvent: newBaseEvent(),
		Clip:      clip,
		Error:     err,
	}
}

// SessionSavedEvent is published when a session is persisted.
type SessionSavedEvent struct {
	baseEvent
	SessionID string
}

// Type returns the event type.
func (e SessionSavedEvent) Type() EventType {
	return EventSessionSaved
}

// NewSessionSavedEvent creates a new SessionSavedEvent.
func NewSessionSavedEvent(id string) SessionSavedEvent {
	return SessionSavedEvent{
		baseEvent: newBaseEvent(),
		SessionID: id,
	}
}

// PlaybackStartedEvent is published when playback starts or resumes.
type PlaybackStartedEvent struct {
	baseEvent
	Clip ClipInfo
}

// Type returns the event type.
func (e PlaybackStartedEvent) Type() EventType {
	return EventPlaybackStarted
}

// NewPlaybackStartedEvent creates a new PlaybackStartedEvent.
func NewPlaybackStartedEvent(clip ClipInfo) PlaybackStartedEvent {
	return PlaybackStartedEvent{
		baseEvent: newBaseEvent(),
		Clip:      clip,
	}
}

// PlaybackPausedEvent is published when playback is paused.
type PlaybackPausedEvent struct {
	baseEvent
	Position time.Duration
}

// Type returns the event type.
func (e PlaybackPausedEvent) Type() EventType {
	return EventPlaybackPaused
}

// NewPlaybackPausedEvent creates a new PlaybackPausedEvent.
func NewPlaybackPausedEvent(position time.Duration) PlaybackPausedEvent {
	return PlaybackPausedEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
	}
}

// PlaybackStoppedEvent is published when playback stops and the clip unloads.
type PlaybackStoppedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e PlaybackStoppedEvent) Type() EventType {
	return EventPlaybackStopped
}

// NewPlaybackStoppedEvent creates a new PlaybackStoppedEvent.
func NewPlaybackStoppedEvent() PlaybackStoppedEvent {
	return PlaybackStoppedEvent{baseEvent: newBaseEvent()}
}

// PlaybackProgressEvent is published periodically during playback and
// after every seek.
type PlaybackProgressEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e PlaybackProgressEvent) Type() EventType {
	return EventPlaybackProgress
}

// NewPlaybackProgressEvent creates a new PlaybackProgressEvent.
func NewPlaybackProgressEvent(position, duration time.Duration) PlaybackProgressEvent {
	return PlaybackProgressEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
		Duration:  duration,
	}
}

// VolumeChangedEvent is published when the playback volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// ViewChangedEvent is published when a view parameter changes through the
// interaction controller. Surfaces redraw on the next scheduled frame.
type ViewChangedEvent struct {
	baseEvent
	View ViewParameters
}

// Type returns the event type.
func (e ViewChangedEvent) Type() EventType {
	return EventViewChanged
}

// NewViewChangedEvent creates a new ViewChangedEvent.
func NewViewChangedEvent(view ViewParameters) ViewChangedEvent {
	return ViewChangedEvent{
		baseEvent: newBaseEvent(),
		View:      view,
	}
}

// EventSelectedEvent is published when a click selects the nearest
// acoustic event, for a detail panel to display.
type EventSelectedEvent struct {
	baseEvent
	Surface  SurfaceID
	Event    AcousticEvent
	Distance float64
}

// Type returns the event type.
func (e EventSelectedEvent) Type() EventType {
	return EventEventSelected
}

// NewEventSelectedEvent creates a new EventSelectedEvent.
func NewEventSelectedEvent(surface SurfaceID, event AcousticEvent, distance float64) EventSelectedEvent {
	return EventSelectedEvent{
		baseEvent: newBaseEvent(),
		Surface:   surface,
		Event:     event,
		Distance:  distance,
	}
}

// CaptureStartedEvent is published when microphone capture begins.
// Fallback reports whether the reduced-settings retry was needed.
type CaptureStartedEvent struct {
	baseEvent
	SampleRate int
	Channels   int
	Fallback   bool
}

// Type returns the event type.
func (e CaptureStartedEvent) Type() EventType {
	return EventCaptureStarted
}

// NewCaptureStartedEvent creates a new CaptureStartedEvent.
func NewCaptureStartedEvent(sampleRate, channels int, fallback bool) CaptureStartedEvent {
	return CaptureStartedEvent{
		baseEvent:  newBaseEvent(),
		SampleRate: sampleRate,
		Channels:   channels,
		Fallback:   fallback,
	}
}

// CaptureStoppedEvent is published when capture ends and samples are handed
// to the analysis collaborator.
type CaptureStoppedEvent struct {
	baseEvent
	Duration time.Duration
}

// Type returns the event type.
func (e CaptureStoppedEvent) Type() EventType {
	return EventCaptureStopped
}

// NewCaptureStoppedEvent creates a new CaptureStoppedEvent.
func NewCaptureStoppedEvent(duration time.Duration) CaptureStoppedEvent {
	return CaptureStoppedEvent{
		baseEvent: newBaseEvent(),
		Duration:  duration,
	}
}

// CaptureFailedEvent is published when capture cannot be acquired.
// Terminal reports that the reduced-settings fallback also failed and the
// user-facing status should show a terminal message.
type CaptureFailedEvent struct {
	baseEvent
	Terminal bool
	Error    error
}

// Type returns the event type.
func (e CaptureFailedEvent) Type() EventType {
	return EventCaptureFailed
}

// NewCaptureFailedEvent creates a new CaptureFailedEvent.
func NewCaptureFailedEvent(terminal bool, err error) CaptureFailedEvent {
	return CaptureFailedEvent{
		baseEvent: newBaseEvent(),
		Terminal:  terminal,
		Error:     err,
	}
}
