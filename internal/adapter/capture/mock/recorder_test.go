package mock

import (
	"testing"

	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderLifecycle(t *testing.T) {
	r := NewRecorder()
	r.SetSamples([]float64{0.1, 0.2})

	assert.False(t, r.IsRecording())

	granted, err := r.Start(ports.DefaultCaptureSettings())
	require.NoError(t, err)
	assert.Equal(t, ports.DefaultCaptureSettings(), granted)
	assert.True(t, r.IsRecording())

	samples, rate, err := r.Stop()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, samples)
	assert.Equal(t, ports.DefaultCaptureSettings().SampleRate, rate)
	assert.False(t, r.IsRecording())
}

func TestRecorderRejectsConcurrentStart(t *testing.T) {
	r := NewRecorder()

	_, err := r.Start(ports.DefaultCaptureSettings())
	require.NoError(t, err)

	_, err = r.Start(ports.DefaultCaptureSettings())
	assert.ErrorIs(t, err, domain.ErrCaptureInProgress)
}

func TestRecorderFailStartsCountsDown(t *testing.T) {
	r := NewRecorder()
	r.SetFailStarts(1)

	_, err := r.Start(ports.DefaultCaptureSettings())
	require.Error(t, err)

	var captureErr *domain.CaptureError
	require.ErrorAs(t, err, &captureErr)

	granted, err := r.Start(ports.ReducedCaptureSettings())
	require.NoError(t, err)
	assert.Equal(t, ports.ReducedCaptureSettings(), granted)

	calls := r.StartCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, ports.DefaultCaptureSettings(), calls[0])
	assert.Equal(t, ports.ReducedCaptureSettings(), calls[1])
}

func TestRecorderStopWithoutStart(t *testing.T) {
	r := NewRecorder()

	_, _, err := r.Stop()
	assert.Error(t, err)
}
