// Package ports defines the Recorder interface for microphone capture.
package ports

// CaptureSettings describes the requested capture configuration.
type CaptureSettings struct {
	// SampleRate in Hz (e.g. 44100)
	SampleRate int

	// Channels is the number of input channels (1 or 2)
	Channels int
}

// DefaultCaptureSettings returns the preferred capture configuration.
func DefaultCaptureSettings() CaptureSettings {
	return CaptureSettings{SampleRate: 44100, Channels: 2}
}

// ReducedCaptureSettings returns the minimal configuration used for the
// one-shot fallback when the preferred settings cannot be acquired.
func ReducedCaptureSettings() CaptureSettings {
	return CaptureSettings{SampleRate: 16000, Channels: 1}
}

// Recorder acquires a microphone capture stream and accumulates PCM samples.
//
// Acquisition follows a scoped acquire/use/release pattern: Start acquires
// the device, Stop releases it and returns the captured samples. The device
// is released on every exit path, including acquisition errors; a Recorder
// that failed to start holds no resources.
//
// Thread-safety: Implementations must be thread-safe. The Start/Stop pair
// is typically driven from the UI thread while the device callback runs on
// an audio thread.
type Recorder interface {
	// Start acquires the capture device with the given settings and begins
	// accumulating samples.
	//
	// Returns the settings actually granted (which may differ from the
	// request), or an error if the device cannot be acquired. Callers
	// handle the reduced-settings retry policy; Start itself attempts
	// exactly one configuration.
	Start(settings CaptureSettings) (CaptureSettings, error)

	// Stop ends the capture, releases the device and returns the
	// accumulated samples downmixed to mono (normalized -1..1) together
	// with the sample rate they were captured at.
	//
	// Stop on a recorder that is not running returns a CaptureError.
	Stop() (samples []float64, sampleRate int, err error)

	// IsRecording reports whether a capture is in progress.
	IsRecording() bool
}
