package engine

import (
	"testing"
	"time"

	clockmock "github.com/soundprobe/soundprobe/internal/adapter/clock/mock"
	"github.com/soundprobe/soundprobe/internal/adapter/eventbus"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T) (*Controller, *clockmock.Clock, *eventbus.SyncEventBus) {
	t.Helper()

	clock := clockmock.NewClock()
	bus := eventbus.NewSyncEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	ctrl := NewController(logger.NewTestLogger(), clock, bus)
	return ctrl, clock, bus
}

// tenSecondAnalysis builds an analysis with one event at 5s / 1000Hz.
func tenSecondAnalysis() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		DurationSeconds: 10,
		SampleRateHz:    44100,
		Events: []domain.AcousticEvent{
			{Time: 5, Frequency: 1000, Amplitude: 0.8, Label: "Voice/Mid Range", Confidence: 0.9},
		},
	}
}

func TestController_SettersClamp(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	cases := []struct {
		zoom, wantZoom float64
		sens, wantSens float64
	}{
		{zoom: 0.1, wantZoom: domain.ZoomMin, sens: 5, wantSens: domain.SensitivityMin},
		{zoom: 99, wantZoom: domain.ZoomMax, sens: 500, wantSens: domain.SensitivityMax},
		{zoom: 1.5, wantZoom: 1.5, sens: 42, wantSens: 42},
		{zoom: -3, wantZoom: domain.ZoomMin, sens: -1, wantSens: domain.SensitivityMin},
	}

	for _, tc := range cases {
		ctrl.SetZoom(tc.zoom)
		ctrl.SetSensitivity(tc.sens)

		view := ctrl.View()
		assert.Equal(t, tc.wantZoom, view.Zoom)
		assert.Equal(t, tc.wantSens, view.Sensitivity)
		assert.GreaterOrEqual(t, view.Zoom, domain.ZoomMin)
		assert.LessOrEqual(t, view.Zoom, domain.ZoomMax)
		assert.GreaterOrEqual(t, view.Sensitivity, domain.SensitivityMin)
		assert.LessOrEqual(t, view.Sensitivity, domain.SensitivityMax)
	}
}

func TestController_SetterPublishesViewChanged(t *testing.T) {
	ctrl, _, bus := newTestController(t)

	var events []domain.ViewChangedEvent
	bus.Subscribe(domain.EventViewChanged, func(e domain.Event) {
		events = append(events, e.(domain.ViewChangedEvent))
	})

	ctrl.SetZoom(2.0)
	ctrl.SetShowLabels(false)

	require.Len(t, events, 2)
	assert.Equal(t, 2.0, events[0].View.Zoom)
	assert.False(t, events[1].View.ShowLabels)
}

func TestController_ClickSeeksAndSelectsExactEvent(t *testing.T) {
	ctrl, clock, bus := newTestController(t)

	_, err := clock.Load("/clips/test.wav")
	require.NoError(t, err)
	clock.SetLoadDuration(10 * time.Second)
	_, err = clock.Load("/clips/test.wav")
	require.NoError(t, err)

	analysis := tenSecondAnalysis()
	ctrl.SetAnalysis(analysis)

	var selected *domain.EventSelectedEvent
	bus.Subscribe(domain.EventEventSelected, func(e domain.Event) {
		ev := e.(domain.EventSelectedEvent)
		selected = &ev
	})

	// Spectrogram pixel for time=5.0s, frequency=1000Hz on a 1000x441 canvas
	const width, height = 1000, 441
	px := (5.0 / 10.0) * width
	py := float64(height) - (1000.0/domain.MaxFrequencyHz)*float64(height)

	ctrl.Click(domain.SurfaceSpectrogram, px, py, width, height)

	// Seek landed on the clicked time
	lastSeek, seeks := clock.LastSeek()
	require.Equal(t, 1, seeks)
	assert.InDelta(t, 5.0, lastSeek.Seconds(), 1e-6)

	// The event at that exact coordinate is selected with distance ~0
	require.NotNil(t, selected)
	assert.Equal(t, "Voice/Mid Range", selected.Event.Label)
	assert.InDelta(t, 0, selected.Distance, 1e-6)
}

func TestController_ClickOutsideSonarCircleIsNoOp(t *testing.T) {
	ctrl, clock, bus := newTestController(t)

	clock.SetLoadDuration(10 * time.Second)
	_, err := clock.Load("/clips/test.wav")
	require.NoError(t, err)
	ctrl.SetAnalysis(tenSecondAnalysis())

	var selections int
	bus.Subscribe(domain.EventEventSelected, func(e domain.Event) { selections++ })

	// A corner pixel is outside the sonar plot radius
	ctrl.Click(domain.SurfaceSonar, 0, 0, 400, 400)

	_, seeks := clock.LastSeek()
	assert.Zero(t, seeks, "out-of-bounds click must not seek")
	assert.Zero(t, selections, "out-of-bounds click must not select")
}

func TestController_ClickWithoutAnalysisIsNoOp(t *testing.T) {
	ctrl, clock, _ := newTestController(t)

	ctrl.Click(domain.SurfaceSpectrogram, 100, 100, 640, 480)

	_, seeks := clock.LastSeek()
	assert.Zero(t, seeks)
}

func TestController_SpectrumClickDoesNotSeek(t *testing.T) {
	ctrl, clock, _ := newTestController(t)

	clock.SetLoadDuration(10 * time.Second)
	_, err := clock.Load("/clips/test.wav")
	require.NoError(t, err)
	ctrl.SetAnalysis(tenSecondAnalysis())

	// The spectrum panel has no time axis
	ctrl.Click(domain.SurfaceSpectrum, 320, 100, 640, 200)

	_, seeks := clock.LastSeek()
	assert.Zero(t, seeks)
}

func TestController_TimelineClickMatchesByTime(t *testing.T) {
	ctrl, clock, bus := newTestController(t)

	clock.SetLoadDuration(10 * time.Second)
	_, err := clock.Load("/clips/test.wav")
	require.NoError(t, err)

	analysis := &domain.AnalysisResult{
		DurationSeconds: 10,
		SampleRateHz:    44100,
		Events: []domain.AcousticEvent{
			{Time: 2, Frequency: 15000, Amplitude: 0.4, Label: "High Frequency/Noise"},
			{Time: 8, Frequency: 100, Amplitude: 0.9, Label: "Low Frequency/Bass"},
		},
	}
	ctrl.SetAnalysis(analysis)

	var selected *domain.EventSelectedEvent
	bus.Subscribe(domain.EventEventSelected, func(e domain.Event) {
		ev := e.(domain.EventSelectedEvent)
		selected = &ev
	})

	// Click at t of about 2.5s; the high-frequency event is closer in time even
	// though its frequency is far away.
	ctrl.Click(domain.SurfaceTimeline, 250, 50, 1000, 100)

	require.NotNil(t, selected)
	assert.Equal(t, "High Frequency/Noise", selected.Event.Label)
}

func TestController_HoverTracksDomainCoordinate(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctrl.SetAnalysis(tenSecondAnalysis())

	ctrl.PointerMove(domain.SurfaceSpectrogram, 500, 0, 1000, 441)

	view := ctrl.View()
	require.NotNil(t, view.Hovered)
	assert.Equal(t, domain.SurfaceSpectrogram, view.Hovered.Surface)
	assert.InDelta(t, 5.0, view.Hovered.Time, 1e-6)
	assert.InDelta(t, domain.MaxFrequencyHz, view.Hovered.Frequency, 1e-6)

	ctrl.PointerOut(domain.SurfaceSpectrogram)
	assert.Nil(t, ctrl.View().Hovered)
}

func TestController_ViewSnapshotDoesNotAliasHover(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctrl.SetAnalysis(tenSecondAnalysis())

	ctrl.PointerMove(domain.SurfaceTimeline, 100, 10, 1000, 100)

	snap := ctrl.View()
	require.NotNil(t, snap.Hovered)
	snap.Hovered.Time = -1

	fresh := ctrl.View()
	require.NotNil(t, fresh.Hovered)
	assert.NotEqual(t, -1.0, fresh.Hovered.Time, "mutating a snapshot must not leak into the shared state")
}
