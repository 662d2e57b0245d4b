package surface

import (
	"image"
	"image/color"
	"math"
)

// Panel palette shared by all surfaces.
var (
	colorBackground = color.RGBA{R: 10, G: 14, B: 22, A: 255}
	colorGrid       = color.RGBA{R: 40, G: 52, B: 70, A: 255}
	colorCursor     = color.RGBA{R: 255, G: 80, B: 80, A: 255}
	colorSweep      = color.RGBA{R: 60, G: 220, B: 130, A: 255}
	colorHover      = color.RGBA{R: 200, G: 200, B: 220, A: 255}
	colorHighlight  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorText       = color.RGBA{R: 210, G: 215, B: 225, A: 255}
	colorLabelBox   = color.RGBA{R: 24, G: 32, B: 46, A: 255}
)

// Band colors match the event classification bands.
var (
	colorBandLow  = color.RGBA{R: 80, G: 140, B: 255, A: 255}
	colorBandMid  = color.RGBA{R: 80, G: 220, B: 120, A: 255}
	colorBandHigh = color.RGBA{R: 250, G: 200, B: 60, A: 255}
	colorBandTop  = color.RGBA{R: 240, G: 90, B: 90, A: 255}
)

// bandColor returns the display color for a frequency band.
func bandColor(freq float64) color.RGBA {
	switch {
	case freq < 300:
		return colorBandLow
	case freq < 1000:
		return colorBandMid
	case freq < 4000:
		return colorBandHigh
	default:
		return colorBandTop
	}
}

// drawing provides common raster drawing operations for the surfaces.
type drawing struct{}

// fillBackground fills the image with a solid color.
func (drawing) fillBackground(img *image.RGBA, col color.RGBA) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

// setPixel writes a pixel with bounds checking.
func (drawing) setPixel(img *image.RGBA, x, y int, col color.RGBA) {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		img.SetRGBA(x, y, col)
	}
}

// thickLine draws a line with the specified thickness.
func (d drawing) thickLine(img *image.RGBA, x1, y1, x2, y2 float64, thickness int, col color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}

	perpX := -dy / length
	perpY := dx / length
	steps := int(length) + 1

	for t := -thickness / 2; t <= thickness/2; t++ {
		offX := float64(t) * perpX
		offY := float64(t) * perpY
		for i := 0; i <= steps; i++ {
			progress := float64(i) / float64(steps)
			d.setPixel(img, int(x1+dx*progress+offX), int(y1+dy*progress+offY), col)
		}
	}
}

// circle draws a circle outline.
func (d drawing) circle(img *image.RGBA, cx, cy int, radius float64, col color.RGBA) {
	steps := int(2 * math.Pi * radius)
	if steps < 36 {
		steps = 36
	}
	for i := 0; i < steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		d.setPixel(img, int(float64(cx)+math.Cos(angle)*radius), int(float64(cy)+math.Sin(angle)*radius), col)
	}
}

// filledCircle draws a filled circle.
func (d drawing) filledCircle(img *image.RGBA, cx, cy int, radius float64, col color.RGBA) {
	r := int(radius)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				d.setPixel(img, cx+dx, cy+dy, col)
			}
		}
	}
}

// fillRect fills an axis-aligned rectangle.
func (d drawing) fillRect(img *image.RGBA, x, y, w, h int, col color.RGBA) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			d.setPixel(img, xx, yy, col)
		}
	}
}

// heatColor maps a normalized 0..1 intensity onto a cold-to-hot gradient
// (deep blue through cyan and yellow to red).
func (drawing) heatColor(intensity float64) color.RGBA {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}

	// Hue runs from 0.66 (blue) down to 0 (red)
	r, g, b := hslToRGB(0.66*(1-intensity), 1.0, 0.15+0.35*intensity)
	return color.RGBA{
		R: uint8(r * 255),
		G: uint8(g * 255),
		B: uint8(b * 255),
		A: 255,
	}
}

// hslToRGB converts HSL to RGB (h, s, l in 0-1 range).
func hslToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return hueToRGB(p, q, h+1.0/3.0), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3.0)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 0.5 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
