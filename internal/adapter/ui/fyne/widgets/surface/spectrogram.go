package surface

import (
	"image"

	"fyne.io/fyne/v2/canvas"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/engine"
	"github.com/soundprobe/soundprobe/internal/render"
)

// Spectrogram displays the time-frequency heat grid: x is clip time, y is
// frequency with low frequencies at the bottom. A vertical cursor tracks
// the playback position.
type Spectrogram struct {
	BaseSurface

	draw drawing
}

// NewSpectrogram creates the spectrogram surface.
func NewSpectrogram(interactor Interactor) *Spectrogram {
	v := &Spectrogram{}
	v.init(domain.SurfaceSpectrogram, interactor)
	v.Raster = canvas.NewRaster(v.render)
	v.ExtendBaseWidget(v)
	return v
}

// render draws the heat grid for the stored frame.
func (v *Spectrogram) render(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	v.draw.fillBackground(img, colorBackground)

	if w == 0 || h == 0 {
		return img
	}

	frame := v.Frame()
	analysis := frame.Analysis
	// A restored session may carry a grid of empty rows; treat it as empty
	if analysis.IsEmpty() || len(analysis.Spectrogram) == 0 || len(analysis.Spectrogram[0]) == 0 {
		text := "no clip loaded"
		drawText(img, w/2-textWidth(text)/2, h/2, text, colorText)
		return img
	}

	grid := analysis.Spectrogram
	frames := len(grid)
	bins := len(grid[0])
	threshold := frame.View.HighlightThreshold()

	// The sensitivity threshold brightens hot cells instead of capping them
	for x := 0; x < w; x++ {
		f := x * frames / w
		row := grid[f]
		for y := 0; y < h; y++ {
			// Low frequencies at the bottom
			b := (h - 1 - y) * bins / h
			val := row[b] * frame.View.Zoom
			col := v.draw.heatColor(val)
			if row[b] >= threshold {
				col = v.draw.heatColor(1)
			}
			img.SetRGBA(x, y, col)
		}
	}

	m := render.NewMapper(analysis.DurationSeconds)

	// Event markers
	for _, ev := range analysis.Events {
		x := m.TimeToX(ev.Time, w)
		y := m.FrequencyToY(ev.Frequency, h)
		v.draw.circle(img, int(x), int(y), 4, colorHighlight)
		if frame.View.ShowLabels {
			drawText(img, int(x)+7, int(y)+4, ev.Label, colorText)
		}
	}

	// Playback cursor
	if frame.Playback.HasPosition() {
		x := m.TimeToX(frame.Playback.CurrentTime, w)
		v.draw.thickLine(img, x, 0, x, float64(h-1), 2, colorCursor)
	}

	// Hover crosshair
	if hov := frame.View.Hovered; hov != nil && hov.Surface == domain.SurfaceSpectrogram {
		x := m.TimeToX(hov.Time, w)
		y := m.FrequencyToY(hov.Frequency, h)
		v.draw.thickLine(img, x, 0, x, float64(h-1), 1, colorHover)
		v.draw.thickLine(img, 0, y, float64(w-1), y, 1, colorHover)
	}

	return img
}

// Verify interface implementation at compile time.
var _ engine.Surface = (*Spectrogram)(nil)
