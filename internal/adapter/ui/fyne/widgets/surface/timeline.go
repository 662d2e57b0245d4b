package surface

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2/canvas"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/engine"
	"github.com/soundprobe/soundprobe/internal/render"
)

// Timeline displays the clip's energy envelope with peak glyphs at the
// detected events. Its x axis is clip time; clicking seeks the playback
// clock and selects the nearest event by time.
type Timeline struct {
	BaseSurface

	draw drawing
}

// NewTimeline creates the timeline surface.
func NewTimeline(interactor Interactor) *Timeline {
	v := &Timeline{}
	v.init(domain.SurfaceTimeline, interactor)
	v.Raster = canvas.NewRaster(v.render)
	v.ExtendBaseWidget(v)
	return v
}

// render draws the envelope and peak glyphs for the stored frame.
func (v *Timeline) render(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	v.draw.fillBackground(img, colorBackground)

	if w == 0 || h == 0 {
		return img
	}

	frame := v.Frame()
	analysis := frame.Analysis
	if analysis.IsEmpty() || len(analysis.Energy) == 0 {
		text := "no clip loaded"
		drawText(img, w/2-textWidth(text)/2, h/2, text, colorText)
		return img
	}

	energy := analysis.Energy
	threshold := frame.View.HighlightThreshold()
	m := render.NewMapper(analysis.DurationSeconds)

	// Filled energy area
	for x := 0; x < w; x++ {
		i := x * len(energy) / w
		level := energy[i] * frame.View.Zoom
		if level > 1 {
			level = 1
		}
		top := h - 1 - int(level*float64(h-1))
		for y := top; y < h; y++ {
			img.SetRGBA(x, y, v.draw.heatColor(energy[i]*0.6))
		}
	}

	// Peak glyphs at detected events
	for _, ev := range analysis.Events {
		x := m.TimeToX(ev.Time, w)
		level := ev.Amplitude * frame.View.Zoom
		if level > 1 {
			level = 1
		}
		y := float64(h-1) - level*float64(h-1)

		col := bandColor(ev.Frequency)
		v.draw.filledCircle(img, int(x), int(y), 4, col)
		if ev.Amplitude >= threshold {
			v.draw.circle(img, int(x), int(y), 7, colorHighlight)
		}

		if frame.View.ShowLabels {
			label := fmt.Sprintf("%s %.1fs %.0f%%", ev.Label, ev.Time, ev.Confidence*100)
			lx := int(x) + 8
			// Flip label boxes to the left in the right half so they
			// never run off the panel
			if x > float64(w)/2 {
				lx = int(x) - 8 - textWidth(label) - 6
			}
			drawLabelBox(img, lx, int(y)-textHeight(), label, colorText)
		}
	}

	// Playback cursor
	if frame.Playback.HasPosition() {
		x := m.TimeToX(frame.Playback.CurrentTime, w)
		v.draw.thickLine(img, x, 0, x, float64(h-1), 2, colorCursor)
	}

	// Hover line
	if hov := frame.View.Hovered; hov != nil && hov.Surface == domain.SurfaceTimeline {
		x := m.TimeToX(hov.Time, w)
		v.draw.thickLine(img, x, 0, x, float64(h-1), 1, colorHover)
	}

	return img
}

// Verify interface implementation at compile time.
var _ engine.Surface = (*Timeline)(nil)
