// Package malgo provides a microphone capture adapter backed by the
// miniaudio bindings.
package malgo

import (
	"encoding/binary"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/ports"
)

// Recorder captures microphone audio into an in-memory buffer.
// Captured samples are mixed down to normalized mono float64 so they can be
// handed straight to the analysis collaborator.
//
// Thread-safety: the device data callback and the public methods are
// synchronized with a mutex.
type Recorder struct {
	logger *slog.Logger

	mu        sync.Mutex
	ctx       *malgo.AllocatedContext
	device    *malgo.Device
	settings  ports.CaptureSettings
	samples   []float64
	recording bool
}

// NewRecorder creates a microphone recorder.
func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// Start opens the default capture device with the requested settings.
// It returns the settings actually granted; callers retry with reduced
// settings when the device refuses the preferred ones.
func (r *Recorder) Start(settings ports.CaptureSettings) (ports.CaptureSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return ports.CaptureSettings{}, domain.ErrCaptureInProgress
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		r.logger.Debug("miniaudio", slog.String("message", message))
	})
	if err != nil {
		return ports.CaptureSettings{}, domain.NewCaptureError("open", false, "failed to initialize audio context", err)
	}

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.Capture.Format = malgo.FormatS16
	config.Capture.Channels = uint32(settings.Channels)
	config.SampleRate = uint32(settings.SampleRate)
	config.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			r.appendFrames(input, int(frameCount), settings.Channels)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, config, callbacks)
	if err != nil {
		r.teardownContext(ctx)
		return ports.CaptureSettings{}, domain.NewCaptureError("open", false, "failed to open capture device", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		r.teardownContext(ctx)
		return ports.CaptureSettings{}, domain.NewCaptureError("start", false, "failed to start capture device", err)
	}

	r.ctx = ctx
	r.device = device
	r.settings = settings
	r.samples = nil
	r.recording = true

	r.logger.Info("capture started",
		slog.Int("sample_rate", settings.SampleRate),
		slog.Int("channels", settings.Channels))

	return settings, nil
}

// appendFrames converts interleaved 16-bit PCM to mono float64.
func (r *Recorder) appendFrames(input []byte, frameCount, channels int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return
	}

	for f := 0; f < frameCount; f++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			offset := (f*channels + ch) * 2
			if offset+1 >= len(input) {
				return
			}
			raw := int16(binary.LittleEndian.Uint16(input[offset:]))
			sum += float64(raw) / 32768.0
		}
		r.samples = append(r.samples, sum/float64(channels))
	}
}

// Stop ends the capture and returns the recorded mono samples.
func (r *Recorder) Stop() ([]float64, int, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil, 0, domain.NewCaptureError("stop", false, "no capture in progress", domain.ErrCaptureUnavailable)
	}

	device := r.device
	ctx := r.ctx
	r.recording = false
	r.device = nil
	r.ctx = nil
	r.mu.Unlock()

	// Release outside the lock; the data callback takes the same mutex
	if err := device.Stop(); err != nil {
		r.logger.Warn("failed to stop capture device", slog.Any("error", err))
	}
	device.Uninit()
	r.teardownContext(ctx)

	r.mu.Lock()
	samples := r.samples
	rate := r.settings.SampleRate
	r.samples = nil
	r.mu.Unlock()

	r.logger.Info("capture stopped", slog.Int("samples", len(samples)))

	return samples, rate, nil
}

// IsRecording reports whether a capture is in progress.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

func (r *Recorder) teardownContext(ctx *malgo.AllocatedContext) {
	if ctx == nil {
		return
	}
	if err := ctx.Uninit(); err != nil {
		r.logger.Warn("failed to release audio context", slog.Any("error", err))
	}
	ctx.Free()
}

// Verify that Recorder implements the Recorder interface
var _ ports.Recorder = (*Recorder)(nil)
