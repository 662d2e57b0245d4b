package surface

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2/canvas"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/engine"
)

const (
	spectrumBarGap   = 1
	spectrumLabelNth = 10
)

// Spectrum displays the aggregate frequency spectrum of the analyzed clip
// as vertical bars colored by frequency band. Bars above the sensitivity
// threshold are capped with a highlight. Its x axis is frequency, so
// clicks select events without seeking.
type Spectrum struct {
	BaseSurface

	draw drawing
}

// NewSpectrum creates the spectrum surface.
func NewSpectrum(interactor Interactor) *Spectrum {
	v := &Spectrum{}
	v.init(domain.SurfaceSpectrum, interactor)
	v.Raster = canvas.NewRaster(v.render)
	v.ExtendBaseWidget(v)
	return v
}

// render draws the spectrum bars for the stored frame.
func (v *Spectrum) render(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	v.draw.fillBackground(img, colorBackground)

	if w == 0 || h == 0 {
		return img
	}

	frame := v.Frame()
	analysis := frame.Analysis
	if analysis.IsEmpty() || len(analysis.Spectrum) == 0 {
		text := "no clip loaded"
		drawText(img, w/2-textWidth(text)/2, h/2, text, colorText)
		return img
	}

	samples := analysis.Spectrum
	threshold := frame.View.HighlightThreshold()

	barWidth := w / len(samples)
	if barWidth < 1 {
		barWidth = 1
	}

	for i, s := range samples {
		x := i * barWidth
		if x >= w {
			break
		}

		barH := int(s.Magnitude * frame.View.Zoom * float64(h-1))
		if barH > h-1 {
			barH = h - 1
		}

		col := bandColor(s.Frequency)
		v.draw.fillRect(img, x, h-barH, barWidth-spectrumBarGap, barH, col)

		if s.Magnitude >= threshold {
			v.draw.fillRect(img, x, h-barH-3, barWidth-spectrumBarGap, 2, colorHighlight)
		}

		if frame.View.ShowLabels && i%spectrumLabelNth == 0 {
			drawText(img, x, h-4, freqLabel(s.Frequency), colorText)
		}
	}

	// Hover marker at the hovered frequency
	if hov := frame.View.Hovered; hov != nil && hov.Surface == domain.SurfaceSpectrum {
		x := hov.Frequency / domain.MaxFrequencyHz * float64(w)
		v.draw.thickLine(img, x, 0, x, float64(h-1), 1, colorHover)
	}

	return img
}

// freqLabel formats a frequency axis label.
func freqLabel(freq float64) string {
	if freq >= 1000 {
		return fmt.Sprintf("%.1fk", freq/1000)
	}
	return fmt.Sprintf("%.0f", freq)
}

// Verify interface implementation at compile time.
var _ engine.Surface = (*Spectrum)(nil)
