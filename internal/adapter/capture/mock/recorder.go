// Package mock provides a mock implementation of the Recorder interface.
// This is used for testing the capture flow without a real microphone.
package mock

import (
	"sync"

	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/ports"
)

// Recorder is a mock implementation of the Recorder interface.
// It simulates microphone capture in memory.
//
// Thread-safety: This implementation is thread-safe.
type Recorder struct {
	mu        sync.Mutex
	recording bool
	settings  ports.CaptureSettings

	// Canned capture result
	samples []float64

	// Behavior configuration (for testing error scenarios)
	failStarts int
	startCalls []ports.CaptureSettings
}

// NewRecorder creates a new mock recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SetSamples configures the samples Stop will return.
func (m *Recorder) SetSamples(samples []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = samples
}

// SetFailStarts configures the mock to fail the next n Start calls
// (for testing the reduced-settings fallback).
func (m *Recorder) SetFailStarts(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStarts = n
}

// StartCalls returns the settings of every Start attempt, in order.
func (m *Recorder) StartCalls() []ports.CaptureSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]ports.CaptureSettings, len(m.startCalls))
	copy(calls, m.startCalls)
	return calls
}

// Start begins a simulated capture with the requested settings.
func (m *Recorder) Start(settings ports.CaptureSettings) (ports.CaptureSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.startCalls = append(m.startCalls, settings)

	if m.failStarts > 0 {
		m.failStarts--
		return ports.CaptureSettings{}, domain.NewCaptureError("open", false, "mock device refused", domain.ErrCaptureUnavailable)
	}

	if m.recording {
		return ports.CaptureSettings{}, domain.ErrCaptureInProgress
	}

	m.recording = true
	m.settings = settings
	return settings, nil
}

// Stop ends the simulated capture and returns the canned samples.
func (m *Recorder) Stop() ([]float64, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.recording {
		return nil, 0, domain.NewCaptureError("stop", false, "no capture in progress", domain.ErrCaptureUnavailable)
	}

	m.recording = false
	return m.samples, m.settings.SampleRate, nil
}

// IsRecording reports whether a simulated capture is in progress.
func (m *Recorder) IsRecording() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recording
}

// Verify that Recorder implements the Recorder interface
var _ ports.Recorder = (*Recorder)(nil)
