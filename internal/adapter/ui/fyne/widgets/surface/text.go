package surface

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// labelFace is the bitmap font used for in-raster annotations.
var labelFace = basicfont.Face7x13

// drawText renders a string with its baseline at (x, y).
func drawText(img *image.RGBA, x, y int, text string, col color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: labelFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// textWidth measures a string in pixels.
func textWidth(text string) int {
	return font.MeasureString(labelFace, text).Ceil()
}

// textHeight is the line height of the label font.
func textHeight() int {
	return labelFace.Metrics().Height.Ceil()
}

// drawLabelBox renders text on a filled background box anchored at the
// top-left corner (x, y).
func drawLabelBox(img *image.RGBA, x, y int, text string, col color.RGBA) {
	var d drawing
	w := textWidth(text) + 6
	h := textHeight() + 4

	d.fillRect(img, x, y, w, h, colorLabelBox)
	drawText(img, x+3, y+h-4, text, col)
}
