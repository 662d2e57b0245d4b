// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the SoundProbe workbench.
package domain

import (
	"time"
)

// MaxFrequencyHz is the upper frequency bound used by all coordinate
// mappings and render surfaces. Frequencies above this clamp to the
// boundary instead of overflowing the plot.
const MaxFrequencyHz = 22050.0

// AcousticEvent represents a single detected sound occurrence in a clip.
// Events are produced by the analysis collaborator and consumed read-only
// by the visualization engine.
type AcousticEvent struct {
	// Time is the event position within the clip, in seconds (0..duration)
	Time float64

	// Frequency is the dominant frequency of the event in Hz (>= 0)
	Frequency float64

	// Amplitude is the normalized event energy (0..1)
	Amplitude float64

	// Label is a free-form category tag (e.g. "Voice/Mid Range")
	Label string

	// Confidence is the classification confidence (0..1)
	Confidence float64

	// Decibels is the event level relative to full scale
	Decibels float64
}

// SpectrumSample is one frequency/magnitude pair of the aggregate spectrum.
// A sample set is ordered ascending by frequency with no duplicates.
type SpectrumSample struct {
	// Frequency in Hz
	Frequency float64

	// Magnitude normalized to 0..1
	Magnitude float64
}

// AnalysisSummary holds scalar statistics about an analyzed clip.
type AnalysisSummary struct {
	// AverageRMS is the mean root-mean-square energy of the clip
	AverageRMS float64

	// DominantFrequency is the mean spectral centroid in Hz
	DominantFrequency float64

	// MaxDecibels is the peak level relative to full scale
	MaxDecibels float64

	// DetectedEvents is the total number of events found (before capping)
	DetectedEvents int
}

// AnalysisResult is the aggregate analysis of one audio clip.
// It is created once per clip by the analysis collaborator and treated as
// immutable for the lifetime of a visualization session; loading new audio
// replaces it wholesale.
type AnalysisResult struct {
	// DurationSeconds is the clip length (> 0 for a valid result)
	DurationSeconds float64

	// SampleRateHz is the clip sample rate (> 0 for a valid result)
	SampleRateHz int

	// Events are the detected acoustic events, loudest first
	Events []AcousticEvent

	// Spectrum is the aggregate frequency spectrum, ascending by frequency
	Spectrum []SpectrumSample

	// Spectrogram is the STFT magnitude grid: Spectrogram[frame][bin],
	// values normalized to 0..1, frames evenly spaced across the clip
	Spectrogram [][]float64

	// Energy is the per-frame energy envelope normalized to 0..1,
	// evenly spaced across the clip
	Energy []float64

	// Summary holds scalar clip statistics
	Summary AnalysisSummary
}

// IsEmpty reports whether the result carries no drawable data.
// Surfaces render a neutral placeholder for empty results.
func (r *AnalysisResult) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.DurationSeconds <= 0 ||
		(len(r.Events) == 0 && len(r.Spectrum) == 0 && len(r.Spectrogram) == 0 && len(r.Energy) == 0)
}

// Validate checks the shape of the result: a positive duration and sample
// rate, and coordinates within bounds. Provenance is not validated.
func (r *AnalysisResult) Validate() error {
	if r == nil {
		return ErrNoAnalysis
	}
	if r.DurationSeconds <= 0 {
		return NewValidationError("durationSeconds", r.DurationSeconds, "must be positive")
	}
	if r.SampleRateHz <= 0 {
		return NewValidationError("sampleRateHz", r.SampleRateHz, "must be positive")
	}
	for _, ev := range r.Events {
		if ev.Time < 0 || ev.Time > r.DurationSeconds {
			return NewValidationError("events.time", ev.Time, "outside clip duration")
		}
		if ev.Frequency < 0 {
			return NewValidationError("events.frequency", ev.Frequency, "must be non-negative")
		}
	}
	prev := -1.0
	for _, s := range r.Spectrum {
		if s.Frequency <= prev {
			return NewValidationError("spectrum.frequency", s.Frequency, "must be strictly ascending")
		}
		prev = s.Frequency
	}
	return nil
}

// ClipInfo describes the audio clip behind a session.
type ClipInfo struct {
	// FilePath is the absolute path to the audio file ("" for recordings)
	FilePath string

	// Title is the clip title (from tags or filename)
	Title string

	// Artist is the performing artist, if tagged
	Artist string

	// Album is the album name, if tagged
	Album string

	// FileFormat is the file extension (wav, mp3, flac)
	FileFormat string

	// Recorded indicates a microphone capture rather than a loaded file
	Recorded bool
}

// Session couples a clip with its analysis. Sessions can be persisted
// and restored through a SessionRepository.
type Session struct {
	// ID is a unique identifier for the session
	ID string

	// Clip describes the source audio
	Clip ClipInfo

	// Analysis is the immutable analysis of the clip
	Analysis *AnalysisResult

	// CreatedAt is when the session was analyzed
	CreatedAt time.Time
}

// PlaybackStatus represents the current playback state of the clock.
type PlaybackStatus int

const (
	// StatusStopped indicates no clip is playing
	StatusStopped PlaybackStatus = iota

	// StatusPlaying indicates playback is active
	StatusPlaying

	// StatusPaused indicates playback is paused
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlaybackState is a read-only snapshot of the playback clock.
// Surfaces read one snapshot per frame; only the clock adapter writes it.
type PlaybackState struct {
	// CurrentTime is the playback position in seconds
	CurrentTime float64

	// Duration is the clip length in seconds (0 if nothing is loaded)
	Duration float64

	// Status is the current playback status
	Status PlaybackStatus

	// Volume is the playback volume (0.0 to 1.0)
	Volume float64
}

// IsPlaying reports whether playback is currently active.
func (s PlaybackState) IsPlaying() bool {
	return s.Status == StatusPlaying
}

// HasPosition reports whether the snapshot carries a valid cursor position.
func (s PlaybackState) HasPosition() bool {
	return s.Duration > 0 && s.CurrentTime >= 0 && s.CurrentTime <= s.Duration
}

// SurfaceID identifies one render surface for interaction routing.
type SurfaceID string

// The four render surfaces of the workbench.
const (
	SurfaceSonar       SurfaceID = "sonar"
	SurfaceSpectrum    SurfaceID = "spectrum"
	SurfaceSpectrogram SurfaceID = "spectrogram"
	SurfaceTimeline    SurfaceID = "timeline"
)
