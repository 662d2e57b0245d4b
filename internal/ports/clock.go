// Package ports defines interfaces for dependency inversion.
// These interfaces allow the core engine to remain independent of external frameworks.
package ports

import (
	"time"

	"github.com/soundprobe/soundprobe/internal/domain"
)

// PlaybackClock wraps a media playback backend and is the authoritative
// source of the current playback position. Render surfaces never talk to
// the backend directly; they read PlaybackState snapshots produced here.
//
// Implementations must be thread-safe as they may be called from the UI
// thread and the frame scheduler concurrently.
type PlaybackClock interface {
	// Load prepares an audio clip for playback, replacing any clip that is
	// currently loaded. The previous clip's resources are released before
	// the new ones are acquired.
	//
	// filePath: Absolute path to the audio file.
	//
	// Returns the clip duration, or an error if decoding fails.
	Load(filePath string) (time.Duration, error)

	// LoadPCM prepares raw PCM samples (mono, normalized -1..1) for
	// playback. Used for microphone recordings that never touch disk.
	LoadPCM(samples []float64, sampleRate int) (time.Duration, error)

	// Play starts or resumes playback of the loaded clip.
	Play() error

	// Pause pauses playback, preserving the position.
	Pause() error

	// Stop halts playback and releases the loaded clip.
	Stop() error

	// Seek moves the playback position. The position must be within
	// [0, Duration]; out-of-range positions return domain.ErrInvalidPosition.
	Seek(position time.Duration) error

	// SetVolume sets the playback volume (0.0 to 1.0).
	SetVolume(volume float64) error

	// State returns a snapshot of the current playback state. The snapshot
	// is consistent: position, duration and status are read together.
	State() domain.PlaybackState

	// Close releases the audio backend. The clock is unusable afterwards.
	Close() error
}
