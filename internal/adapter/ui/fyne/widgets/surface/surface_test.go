package surface

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingInteractor captures forwarded pointer events.
type recordingInteractor struct {
	moves  []domain.SurfaceID
	outs   []domain.SurfaceID
	clicks []domain.SurfaceID
	lastX  float64
	lastY  float64
	lastW  int
	lastH  int
}

func (r *recordingInteractor) PointerMove(surface domain.SurfaceID, px, py float64, width, height int) {
	r.moves = append(r.moves, surface)
	r.lastX, r.lastY, r.lastW, r.lastH = px, py, width, height
}

func (r *recordingInteractor) PointerOut(surface domain.SurfaceID) {
	r.outs = append(r.outs, surface)
}

func (r *recordingInteractor) Click(surface domain.SurfaceID, px, py float64, width, height int) {
	r.clicks = append(r.clicks, surface)
	r.lastX, r.lastY, r.lastW, r.lastH = px, py, width, height
}

func testFrame() engine.Frame {
	return engine.Frame{
		Analysis: &domain.AnalysisResult{
			DurationSeconds: 10,
			SampleRateHz:    44100,
			Events: []domain.AcousticEvent{
				{Time: 2.5, Frequency: 440, Amplitude: 0.9, Label: "Voice/Mid Range", Confidence: 0.9, Decibels: -0.9},
				{Time: 7.0, Frequency: 5000, Amplitude: 0.4, Label: "High Frequency/Noise", Confidence: 0.4, Decibels: -8},
			},
			Spectrum: []domain.SpectrumSample{
				{Frequency: 100, Magnitude: 0.3},
				{Frequency: 500, Magnitude: 0.9},
				{Frequency: 2000, Magnitude: 0.6},
				{Frequency: 8000, Magnitude: 0.1},
			},
			Spectrogram: [][]float64{
				{0.1, 0.5, 0.9},
				{0.2, 0.6, 0.3},
				{0.8, 0.1, 0.4},
			},
			Energy: []float64{0.1, 0.9, 0.4, 0.2},
		},
		View: domain.DefaultViewParameters(),
	}
}

// setFrame stores a frame without triggering a canvas refresh, which needs
// a running app.
func setFrame(s *BaseSurface, frame engine.Frame) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
}

type renderable interface {
	engine.Surface
	base() *BaseSurface
	drawImage(w, h int) image.Image
}

func (v *Sonar) base() *BaseSurface       { return &v.BaseSurface }
func (v *Spectrum) base() *BaseSurface    { return &v.BaseSurface }
func (v *Spectrogram) base() *BaseSurface { return &v.BaseSurface }
func (v *Timeline) base() *BaseSurface    { return &v.BaseSurface }

func (v *Sonar) drawImage(w, h int) image.Image       { return v.render(w, h) }
func (v *Spectrum) drawImage(w, h int) image.Image    { return v.render(w, h) }
func (v *Spectrogram) drawImage(w, h int) image.Image { return v.render(w, h) }
func (v *Timeline) drawImage(w, h int) image.Image    { return v.render(w, h) }

func allSurfaces() []renderable {
	return []renderable{
		NewSonar(nil),
		NewSpectrum(nil),
		NewSpectrogram(nil),
		NewTimeline(nil),
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	for _, s := range allSurfaces() {
		setFrame(s.base(), testFrame())

		first := s.drawImage(320, 200).(*image.RGBA)
		second := s.drawImage(320, 200).(*image.RGBA)

		assert.Equal(t, first.Pix, second.Pix,
			"surface %s must produce identical pixels for identical frames", s.ID())
	}
}

func TestRenderEmptyFrameShowsPlaceholder(t *testing.T) {
	for _, s := range allSurfaces() {
		img := s.drawImage(320, 200).(*image.RGBA)

		require.Equal(t, image.Rect(0, 0, 320, 200), img.Bounds())

		// The placeholder text leaves some non-background pixels
		diff := 0
		for i := 0; i < len(img.Pix); i += 4 {
			if img.Pix[i] != colorBackground.R || img.Pix[i+1] != colorBackground.G {
				diff++
			}
		}
		assert.Greater(t, diff, 0, "surface %s should draw a placeholder", s.ID())
	}
}

func TestRenderDegenerateSizes(t *testing.T) {
	for _, s := range allSurfaces() {
		setFrame(s.base(), testFrame())

		assert.NotPanics(t, func() {
			s.drawImage(0, 0)
			s.drawImage(1, 1)
			s.drawImage(2, 500)
		}, "surface %s must tolerate degenerate canvas sizes", s.ID())
	}
}

func TestRenderStableAtParameterBounds(t *testing.T) {
	v := NewSpectrum(nil)

	for _, zoom := range []float64{domain.ZoomMin, domain.ZoomMax} {
		for _, sens := range []float64{domain.SensitivityMin, domain.SensitivityMax} {
			frame := testFrame()
			frame.View.Zoom = zoom
			frame.View.Sensitivity = sens
			setFrame(&v.BaseSurface, frame)

			assert.NotPanics(t, func() { v.render(320, 200) })
		}
	}
}

// countColorPixels counts pixels matching the given color exactly.
func countColorPixels(img *image.RGBA, c color.RGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == c.R && img.Pix[i+1] == c.G && img.Pix[i+2] == c.B {
			n++
		}
	}
	return n
}

func countHighlightPixels(img *image.RGBA) int {
	return countColorPixels(img, colorHighlight)
}

func TestSpectrumSensitivityRaisesHighlights(t *testing.T) {
	v := NewSpectrum(nil)

	low := testFrame()
	low.View.Sensitivity = domain.SensitivityMin
	setFrame(&v.BaseSurface, low)
	lowCount := countHighlightPixels(v.render(320, 200).(*image.RGBA))

	high := testFrame()
	high.View.Sensitivity = domain.SensitivityMax
	setFrame(&v.BaseSurface, high)
	highCount := countHighlightPixels(v.render(320, 200).(*image.RGBA))

	assert.Greater(t, highCount, lowCount,
		"raising sensitivity should highlight more bars")
}

func TestPointerEventsForwardToInteractor(t *testing.T) {
	rec := &recordingInteractor{}
	v := NewSpectrogram(rec)
	v.Resize(fyne.NewSize(200, 100))

	move := &desktop.MouseEvent{}
	move.Position = fyne.NewPos(50, 25)
	v.MouseIn(move)
	v.MouseMoved(move)
	v.MouseOut()

	tap := &fyne.PointEvent{Position: fyne.NewPos(80, 40)}
	v.Tapped(tap)

	assert.Equal(t, []domain.SurfaceID{domain.SurfaceSpectrogram, domain.SurfaceSpectrogram}, rec.moves)
	assert.Equal(t, []domain.SurfaceID{domain.SurfaceSpectrogram}, rec.outs)
	assert.Equal(t, []domain.SurfaceID{domain.SurfaceSpectrogram}, rec.clicks)
	assert.Equal(t, 80.0, rec.lastX)
	assert.Equal(t, 40.0, rec.lastY)
	assert.Equal(t, 200, rec.lastW)
	assert.Equal(t, 100, rec.lastH)
}

func TestNilInteractorIsSafe(t *testing.T) {
	v := NewTimeline(nil)

	assert.NotPanics(t, func() {
		v.Tapped(&fyne.PointEvent{})
		v.MouseOut()
	})
}

func TestRenderDrawsPlaybackCursor(t *testing.T) {
	for _, s := range []renderable{NewSonar(nil), NewSpectrogram(nil), NewTimeline(nil)} {
		frame := testFrame()
		setFrame(s.base(), frame)
		without := countColorPixels(s.drawImage(320, 200).(*image.RGBA), colorCursor)

		frame.Playback = domain.PlaybackState{
			CurrentTime: 5,
			Duration:    10,
			Status:      domain.StatusPlaying,
		}
		setFrame(s.base(), frame)
		with := countColorPixels(s.drawImage(320, 200).(*image.RGBA), colorCursor)

		assert.Greater(t, with, without,
			"surface %s should draw a cursor at the playback position", s.ID())
	}
}

func TestTimelineLabelsIncludeConfidence(t *testing.T) {
	v := NewTimeline(nil)

	frame := testFrame()
	frame.View.ShowLabels = true
	setFrame(&v.BaseSurface, frame)
	first := v.render(320, 200).(*image.RGBA)

	changed := testFrame()
	changed.View.ShowLabels = true
	changed.Analysis.Events[0].Confidence = 0.1
	setFrame(&v.BaseSurface, changed)
	second := v.render(320, 200).(*image.RGBA)

	assert.NotEqual(t, first.Pix, second.Pix,
		"peak labels should change when only the event confidence changes")
}

func TestSpectrogramToleratesEmptyRows(t *testing.T) {
	v := NewSpectrogram(nil)

	frame := testFrame()
	frame.Analysis.Spectrogram = [][]float64{{}, {}, {}}
	setFrame(&v.BaseSurface, frame)

	assert.NotPanics(t, func() { v.render(320, 200) })
}
