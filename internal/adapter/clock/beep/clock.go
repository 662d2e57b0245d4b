// Package beep provides a playback clock backed by the beep audio library.
package beep

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/ports"
)

const (
	// speakerRate is the fixed mixer rate; clips at other rates are resampled.
	speakerRate = beep.SampleRate(44100)

	// progressInterval is how often progress events are published while playing.
	progressInterval = 200 * time.Millisecond

	resampleQuality = 4
)

// Clock is the beep implementation of the PlaybackClock interface.
// It owns the speaker mixer and the currently loaded clip, and publishes
// playback progress on the event bus.
//
// Thread-safety: all operations are guarded by a mutex. The speaker lock is
// only ever taken while holding the clock mutex, never the other way around.
type Clock struct {
	logger *slog.Logger
	bus    ports.EventBus

	mu       sync.Mutex
	seeker   beep.StreamSeeker
	closer   func() error
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	duration time.Duration
	status   domain.PlaybackStatus
	level    float64

	stop   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// New creates a playback clock and initializes the speaker mixer.
func New(logger *slog.Logger, bus ports.EventBus) (*Clock, error) {
	if err := speaker.Init(speakerRate, speakerRate.N(100*time.Millisecond)); err != nil {
		return nil, domain.NewClockError("init", "", "failed to initialize speaker", err)
	}

	c := &Clock{
		logger: logger,
		bus:    bus,
		status: domain.StatusStopped,
		level:  1.0,
		stop:   make(chan struct{}),
	}

	c.wg.Add(1)
	go c.progressRoutine()

	return c, nil
}

// Load prepares an audio file for playback, replacing any loaded clip.
func (c *Clock) Load(filePath string) (time.Duration, error) {
	if _, err := os.Stat(filePath); err != nil {
		return 0, domain.NewClockError("load", filePath, "file not accessible", domain.ErrFileNotFound)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return 0, domain.NewClockError("load", filePath, "failed to open file", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return 0, domain.NewClockError("load", filePath, "unknown file extension", domain.ErrUnsupportedFormat)
	}
	if err != nil {
		_ = f.Close()
		return 0, domain.NewClockError("load", filePath, "failed to decode audio", err)
	}

	duration := format.SampleRate.D(streamer.Len())

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		_ = streamer.Close()
		_ = f.Close()
		return 0, domain.NewClockError("load", filePath, "clock is closed", domain.ErrNotInitialized)
	}

	c.releaseLocked()
	c.install(streamer, format, duration, func() error {
		serr := streamer.Close()
		ferr := f.Close()
		if serr != nil {
			return serr
		}
		return ferr
	})

	c.logger.Info("clip loaded",
		slog.String("path", filePath),
		slog.Duration("duration", duration),
		slog.Int("sample_rate", int(format.SampleRate)))

	return duration, nil
}

// LoadPCM prepares raw mono PCM samples for playback. Used for microphone
// recordings that never touch disk.
func (c *Clock) LoadPCM(samples []float64, sampleRate int) (time.Duration, error) {
	if len(samples) == 0 {
		return 0, domain.NewClockError("load_pcm", "", "no samples", domain.ErrNoClipLoaded)
	}
	if sampleRate <= 0 {
		return 0, domain.NewClockError("load_pcm", "", "invalid sample rate", domain.ErrUnsupportedFormat)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 1,
		Precision:   2,
	}
	streamer := newPCMStreamer(samples)
	duration := format.SampleRate.D(streamer.Len())

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, domain.NewClockError("load_pcm", "", "clock is closed", domain.ErrNotInitialized)
	}

	c.releaseLocked()
	c.install(streamer, format, duration, nil)

	c.logger.Info("recording loaded",
		slog.Duration("duration", duration),
		slog.Int("sample_rate", sampleRate))

	return duration, nil
}

// install wires a decoded streamer into the control chain.
// Caller must hold the clock mutex.
func (c *Clock) install(streamer beep.StreamSeeker, format beep.Format, duration time.Duration, closer func() error) {
	c.seeker = streamer
	c.format = format
	c.closer = closer
	c.duration = duration
	c.status = domain.StatusStopped

	c.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}

	var chain beep.Streamer = c.ctrl
	if format.SampleRate != speakerRate {
		chain = beep.Resample(resampleQuality, format.SampleRate, speakerRate, chain)
	}

	c.volume = &effects.Volume{Streamer: chain, Base: 2}
	c.applyLevelLocked()

	speaker.Play(c.volume)
}

// Play starts or resumes playback.
func (c *Clock) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctrl == nil {
		return domain.ErrNoClipLoaded
	}

	speaker.Lock()
	// Restart from the top when the clip ran to the end
	if c.seeker.Position() >= c.seeker.Len() {
		_ = c.seeker.Seek(0)
	}
	c.ctrl.Paused = false
	speaker.Unlock()

	c.status = domain.StatusPlaying
	return nil
}

// Pause pauses playback, preserving the position.
func (c *Clock) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctrl == nil {
		return domain.ErrNoClipLoaded
	}

	speaker.Lock()
	c.ctrl.Paused = true
	speaker.Unlock()

	c.status = domain.StatusPaused
	return nil
}

// Stop halts playback and releases the loaded clip.
func (c *Clock) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctrl == nil {
		return domain.ErrNoClipLoaded
	}

	c.releaseLocked()
	return nil
}

// Seek moves the playback position within [0, duration].
func (c *Clock) Seek(position time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seeker == nil {
		return domain.ErrNoClipLoaded
	}
	if position < 0 || position > c.duration {
		return domain.ErrInvalidPosition
	}

	speaker.Lock()
	err := c.seeker.Seek(c.format.SampleRate.N(position))
	speaker.Unlock()
	if err != nil {
		return domain.NewClockError("seek", "", "failed to seek", err)
	}

	c.publish(domain.NewPlaybackProgressEvent(position, c.duration))
	return nil
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (c *Clock) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.level = volume
	c.applyLevelLocked()

	c.publish(domain.NewVolumeChangedEvent(volume))
	return nil
}

// applyLevelLocked maps the linear 0..1 level onto beep's exponential
// volume control. Caller must hold the clock mutex.
func (c *Clock) applyLevelLocked() {
	if c.volume == nil {
		return
	}
	speaker.Lock()
	if c.level <= 0 {
		c.volume.Silent = true
	} else {
		c.volume.Silent = false
		c.volume.Volume = math.Log2(c.level)
	}
	speaker.Unlock()
}

// State returns a consistent snapshot of the playback state.
func (c *Clock) State() domain.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Clock) stateLocked() domain.PlaybackState {
	state := domain.PlaybackState{
		Status: c.status,
		Volume: c.level,
	}
	if c.seeker == nil {
		return state
	}

	speaker.Lock()
	pos := c.seeker.Position()
	ended := pos >= c.seeker.Len()
	speaker.Unlock()

	state.CurrentTime = c.format.SampleRate.D(pos).Seconds()
	state.Duration = c.duration.Seconds()

	// A clip that ran to the end reads as stopped at the final position
	if ended && c.status == domain.StatusPlaying {
		c.status = domain.StatusStopped
		state.Status = domain.StatusStopped
	}
	return state
}

// Close tears down the speaker and the progress routine.
func (c *Clock) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.releaseLocked()
	close(c.stop)
	c.mu.Unlock()

	c.wg.Wait()
	speaker.Close()
	return nil
}

// releaseLocked unloads the current clip and clears the mixer.
// Caller must hold the clock mutex.
func (c *Clock) releaseLocked() {
	if c.ctrl == nil {
		return
	}

	speaker.Clear()

	if c.closer != nil {
		if err := c.closer(); err != nil {
			c.logger.Warn("failed to release clip resources", slog.Any("error", err))
		}
	}

	c.seeker = nil
	c.closer = nil
	c.ctrl = nil
	c.volume = nil
	c.duration = 0
	c.status = domain.StatusStopped
}

// progressRoutine publishes periodic progress while a clip is playing.
func (c *Clock) progressRoutine() {
	defer c.wg.Done()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.seeker == nil {
				c.mu.Unlock()
				continue
			}
			state := c.stateLocked()
			speaker.Lock()
			position := c.format.SampleRate.D(c.seeker.Position())
			speaker.Unlock()
			duration := c.duration
			c.mu.Unlock()

			if state.Status == domain.StatusPlaying {
				c.publish(domain.NewPlaybackProgressEvent(position, duration))
			}
		}
	}
}

func (c *Clock) publish(event domain.Event) {
	if c.bus != nil {
		c.bus.Publish(event)
	}
}

// Verify that Clock implements the PlaybackClock interface
var _ ports.PlaybackClock = (*Clock)(nil)
