package surface

import (
	"image"
	"math"

	"fyne.io/fyne/v2/canvas"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/engine"
	"github.com/soundprobe/soundprobe/internal/render"
)

// Sonar displays acoustic events on a radar-style polar plot: the angle is
// the event's position in the clip (clockwise from 12 o'clock), the radius
// its frequency. A wall-clock sweep line keeps scanning even while paused.
type Sonar struct {
	BaseSurface

	draw drawing
}

// NewSonar creates the sonar surface.
func NewSonar(interactor Interactor) *Sonar {
	v := &Sonar{}
	v.init(domain.SurfaceSonar, interactor)
	v.Raster = canvas.NewRaster(v.render)
	v.ExtendBaseWidget(v)
	return v
}

// render draws the sonar for the stored frame.
func (v *Sonar) render(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	v.draw.fillBackground(img, colorBackground)

	if w == 0 || h == 0 {
		return img
	}

	frame := v.Frame()

	centerX := float64(w) / 2
	centerY := float64(h) / 2
	maxRadius := math.Min(centerX, centerY) * engine.SonarRadiusRatio

	// Range rings and crosshair
	for _, f := range []float64{0.25, 0.5, 0.75, 1.0} {
		v.draw.circle(img, int(centerX), int(centerY), maxRadius*f, colorGrid)
	}
	v.draw.thickLine(img, centerX-maxRadius, centerY, centerX+maxRadius, centerY, 1, colorGrid)
	v.draw.thickLine(img, centerX, centerY-maxRadius, centerX, centerY+maxRadius, 1, colorGrid)

	analysis := frame.Analysis
	if analysis.IsEmpty() {
		text := "no clip loaded"
		drawText(img, w/2-textWidth(text)/2, h/2, text, colorText)
		return img
	}

	m := render.NewMapper(analysis.DurationSeconds)
	threshold := frame.View.HighlightThreshold()

	// Sweep line
	sweepX := centerX + math.Cos(frame.SweepAngle)*maxRadius
	sweepY := centerY + math.Sin(frame.SweepAngle)*maxRadius
	v.draw.thickLine(img, centerX, centerY, sweepX, sweepY, 2, colorSweep)

	// Events as heat-colored blips
	for _, ev := range analysis.Events {
		angle := m.TimeToAngle(ev.Time)
		radius := m.FrequencyToRadius(ev.Frequency, maxRadius)
		px := centerX + math.Cos(angle)*radius
		py := centerY + math.Sin(angle)*radius

		blip := (3 + 5*ev.Amplitude) * frame.View.Zoom
		v.draw.filledCircle(img, int(px), int(py), blip, v.draw.heatColor(ev.Amplitude))

		if ev.Amplitude >= threshold {
			v.draw.circle(img, int(px), int(py), blip+3, colorHighlight)
		}

		if frame.View.ShowLabels {
			drawText(img, int(px)+int(blip)+4, int(py)+4, ev.Label, colorText)
		}
	}

	// Playback cursor along the time ring
	if frame.Playback.HasPosition() {
		angle := m.TimeToAngle(frame.Playback.CurrentTime)
		curX := centerX + math.Cos(angle)*maxRadius
		curY := centerY + math.Sin(angle)*maxRadius
		v.draw.thickLine(img, centerX, centerY, curX, curY, 1, colorCursor)
	}

	// Hover marker, recomputed from the domain coordinate so it lands
	// correctly at any raster resolution
	if hov := frame.View.Hovered; hov != nil && hov.Surface == domain.SurfaceSonar {
		angle := m.TimeToAngle(hov.Time)
		radius := m.FrequencyToRadius(hov.Frequency, maxRadius)
		hx := centerX + math.Cos(angle)*radius
		hy := centerY + math.Sin(angle)*radius
		v.draw.circle(img, int(hx), int(hy), 6, colorHover)
	}

	return img
}

// Verify interface implementation at compile time.
var _ engine.Surface = (*Sonar)(nil)
