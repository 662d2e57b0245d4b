// Package render provides pure coordinate mapping between the time/frequency
// domain and canvas pixels. All render surfaces and the interaction
// controller share these mappings so that click-to-seek and hover tooltips
// stay consistent with what is drawn.
package render

import (
	"math"

	"github.com/soundprobe/soundprobe/internal/domain"
)

// Mapper converts between domain coordinates (seconds, Hz) and pixel
// coordinates for a canvas of a given size. It is stateless beyond the two
// bounds; construct one per frame from the current analysis.
type Mapper struct {
	// DurationSeconds is the clip length. Zero means no valid mapping
	// exists and surfaces must render a placeholder instead of dividing.
	DurationSeconds float64

	// MaxFrequencyHz is the upper frequency bound of the plot.
	MaxFrequencyHz float64
}

// NewMapper builds a mapper for the given clip duration, using the default
// frequency bound.
func NewMapper(durationSeconds float64) Mapper {
	return Mapper{
		DurationSeconds: durationSeconds,
		MaxFrequencyHz:  domain.MaxFrequencyHz,
	}
}

// Valid reports whether the mapper has a usable time axis.
func (m Mapper) Valid() bool {
	return m.DurationSeconds > 0 && m.MaxFrequencyHz > 0
}

// TimeToX maps a time in seconds to a pixel column on a canvas of the
// given width.
func (m Mapper) TimeToX(t float64, width int) float64 {
	if !m.Valid() || width <= 0 {
		return 0
	}
	return (t / m.DurationSeconds) * float64(width)
}

// XToTime is the exact inverse of TimeToX up to floating-point rounding.
func (m Mapper) XToTime(x float64, width int) float64 {
	if !m.Valid() || width <= 0 {
		return 0
	}
	return (x / float64(width)) * m.DurationSeconds
}

// FrequencyToY maps a frequency in Hz to a pixel row, with 0 Hz at the
// bottom of the canvas. Frequencies above the bound clamp to the top edge.
func (m Mapper) FrequencyToY(freq float64, height int) float64 {
	if !m.Valid() || height <= 0 {
		return 0
	}
	if freq < 0 {
		freq = 0
	}
	if freq > m.MaxFrequencyHz {
		freq = m.MaxFrequencyHz
	}
	return float64(height) - (freq/m.MaxFrequencyHz)*float64(height)
}

// YToFrequency is the inverse of FrequencyToY for in-range frequencies.
func (m Mapper) YToFrequency(y float64, height int) float64 {
	if !m.Valid() || height <= 0 {
		return 0
	}
	f := (float64(height) - y) / float64(height) * m.MaxFrequencyHz
	if f < 0 {
		f = 0
	}
	if f > m.MaxFrequencyHz {
		f = m.MaxFrequencyHz
	}
	return f
}

// FrequencyToRadius maps a frequency to a radial distance for the sonar
// layout. Frequencies above the bound clamp to the outer ring.
func (m Mapper) FrequencyToRadius(freq, maxRadius float64) float64 {
	if m.MaxFrequencyHz <= 0 || maxRadius <= 0 {
		return 0
	}
	if freq < 0 {
		freq = 0
	}
	r := (freq / m.MaxFrequencyHz) * maxRadius
	return math.Min(r, maxRadius)
}

// TimeToAngle maps a time to an angle in radians for the sonar layout,
// measured clockwise from 12 o'clock over the full clip.
func (m Mapper) TimeToAngle(t float64) float64 {
	if !m.Valid() {
		return 0
	}
	return (t/m.DurationSeconds)*2*math.Pi - math.Pi/2
}

// PolarPoint is the polar form of a pixel relative to the sonar center.
type PolarPoint struct {
	// Time is the angular position converted back to seconds
	Time float64

	// Frequency is the radial position converted back to Hz
	Frequency float64

	// Radius is the raw pixel distance from the center
	Radius float64
}

// PixelToPolar converts a canvas-local pixel to the sonar's polar domain.
// The second return value is false when the pixel lies outside the plot
// circle; callers must treat such clicks as no-ops.
func (m Mapper) PixelToPolar(px, py, centerX, centerY, maxRadius float64) (PolarPoint, bool) {
	if !m.Valid() || maxRadius <= 0 {
		return PolarPoint{}, false
	}

	dx := px - centerX
	dy := py - centerY
	radius := math.Hypot(dx, dy)
	if radius > maxRadius {
		return PolarPoint{}, false
	}

	// Angle clockwise from 12 o'clock, normalized to [0, 2pi).
	angle := math.Atan2(dy, dx) + math.Pi/2
	if angle < 0 {
		angle += 2 * math.Pi
	}

	return PolarPoint{
		Time:      (angle / (2 * math.Pi)) * m.DurationSeconds,
		Frequency: (radius / maxRadius) * m.MaxFrequencyHz,
		Radius:    radius,
	}, true
}

// EventDistance is the combined metric used to pick the nearest acoustic
// event to a clicked domain coordinate: |dTime| + |dFrequency|/100.
func EventDistance(ev domain.AcousticEvent, t, freq float64) float64 {
	return math.Abs(ev.Time-t) + math.Abs(ev.Frequency-freq)/100.0
}

// NearestEvent returns the index of the event minimizing EventDistance to
// the given coordinate, and that distance. Ties keep the first event in
// iteration order. Returns -1 for an empty slice.
func NearestEvent(events []domain.AcousticEvent, t, freq float64) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, ev := range events {
		if d := EventDistance(ev, t, freq); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}
