// Package mock provides a mock implementation of the PlaybackClock interface.
// This is used for testing the engine and services without a real audio
// backend, and for running the application headless.
package mock

import (
	"log/slog"
	"sync"
	"time"

	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/ports"
)

// Clock is a mock implementation of the PlaybackClock interface.
// It simulates playback in memory without producing audio.
//
// Thread-safety: This implementation is thread-safe.
type Clock struct {
	logger *slog.Logger

	mu       sync.RWMutex
	loaded   bool
	duration time.Duration
	position time.Duration
	status   domain.PlaybackStatus
	volume   float64

	// lastSeek records the last accepted seek target for assertions
	lastSeek time.Duration
	seeks    int

	// Behavior configuration (for testing error scenarios)
	failLoad     bool
	failSeek     bool
	loadDuration time.Duration
}

// NewClock creates a new mock playback clock.
func NewClock() *Clock {
	return &Clock{
		volume:       1.0,
		loadDuration: 3 * time.Minute,
	}
}

// SetLogger sets the logger for this clock.
func (c *Clock) SetLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

// SetFailLoad configures the mock to fail loading clips (for testing).
func (c *Clock) SetFailLoad(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failLoad = fail
}

// SetFailSeek configures the mock to fail seeks (for testing).
func (c *Clock) SetFailSeek(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failSeek = fail
}

// SetLoadDuration configures the duration reported for loaded clips.
func (c *Clock) SetLoadDuration(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadDuration = d
}

// LastSeek returns the last accepted seek target and the number of
// accepted seeks.
func (c *Clock) LastSeek() (time.Duration, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSeek, c.seeks
}

// Advance moves the simulated position forward, clamping at the duration.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position += d
	if c.position > c.duration {
		c.position = c.duration
	}
}

// Load simulates decoding a clip.
func (c *Clock) Load(filePath string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failLoad {
		return 0, domain.NewClockError("load", filePath, "mock configured to fail", nil)
	}

	c.loaded = true
	c.duration = c.loadDuration
	c.position = 0
	c.status = domain.StatusStopped
	return c.duration, nil
}

// LoadPCM simulates loading raw samples; the duration is derived from the
// sample count.
func (c *Clock) LoadPCM(samples []float64, sampleRate int) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failLoad {
		return 0, domain.NewClockError("load_pcm", "", "mock configured to fail", nil)
	}
	if sampleRate <= 0 {
		return 0, domain.NewClockError("load_pcm", "", "invalid sample rate", nil)
	}

	c.loaded = true
	c.duration = time.Duration(float64(len(samples)) / float64(sampleRate) * float64(time.Second))
	c.position = 0
	c.status = domain.StatusStopped
	return c.duration, nil
}

// Play starts or resumes simulated playback.
func (c *Clock) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return domain.ErrNoClipLoaded
	}
	c.status = domain.StatusPlaying
	return nil
}

// Pause pauses simulated playback.
func (c *Clock) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return domain.ErrNoClipLoaded
	}
	c.status = domain.StatusPaused
	return nil
}

// Stop halts playback and unloads the clip.
func (c *Clock) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loaded = false
	c.duration = 0
	c.position = 0
	c.status = domain.StatusStopped
	return nil
}

// Seek moves the simulated position, validating bounds.
func (c *Clock) Seek(position time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return domain.ErrNoClipLoaded
	}
	if c.failSeek {
		return domain.NewClockError("seek", "", "mock configured to fail", nil)
	}
	if position < 0 || position > c.duration {
		return domain.ErrInvalidPosition
	}

	c.position = position
	c.lastSeek = position
	c.seeks++
	return nil
}

// SetVolume sets the simulated volume.
func (c *Clock) SetVolume(volume float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}
	c.volume = volume
	return nil
}

// State returns a consistent snapshot of the simulated playback state.
func (c *Clock) State() domain.PlaybackState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return domain.PlaybackState{
		CurrentTime: c.position.Seconds(),
		Duration:    c.duration.Seconds(),
		Status:      c.status,
		Volume:      c.volume,
	}
}

// Close releases nothing; the mock holds no resources.
func (c *Clock) Close() error {
	return c.Stop()
}

// Verify that Clock implements the PlaybackClock interface
var _ ports.PlaybackClock = (*Clock)(nil)
