// Package domain defines the shared view parameters consumed by all
// render surfaces.
package domain

// Bounds for user-adjustable view parameters. Setters clamp to these
// ranges rather than returning errors.
const (
	ZoomMin = 0.5
	ZoomMax = 3.0

	SensitivityMin = 10.0
	SensitivityMax = 100.0
)

// DefaultZoom and DefaultSensitivity are the initial view parameter values.
const (
	DefaultZoom        = 1.0
	DefaultSensitivity = 50.0
)

// HoverPoint records the surface and pixel position currently under the
// pointer, plus the domain coordinate it maps to.
type HoverPoint struct {
	// Surface is the render surface being hovered
	Surface SurfaceID

	// PixelX and PixelY are canvas-local pixel coordinates
	PixelX float64
	PixelY float64

	// Time is the hovered position in seconds (negative if not applicable)
	Time float64

	// Frequency is the hovered frequency in Hz (negative if not applicable)
	Frequency float64
}

// ViewParameters are the user-adjustable display settings shared across
// all render surfaces. A single instance is owned by the interaction
// controller; surfaces receive read-only snapshots so that every panel
// observes the same values within one frame.
type ViewParameters struct {
	// Zoom scales bar heights and magnitudes (ZoomMin..ZoomMax)
	Zoom float64

	// Sensitivity maps to the color/highlight threshold (SensitivityMin..SensitivityMax)
	Sensitivity float64

	// ShowLabels toggles textual annotations on the surfaces
	ShowLabels bool

	// Hovered is the current pointer position, nil when the pointer
	// is outside every surface
	Hovered *HoverPoint
}

// DefaultViewParameters returns the initial view settings.
func DefaultViewParameters() ViewParameters {
	return ViewParameters{
		Zoom:        DefaultZoom,
		Sensitivity: DefaultSensitivity,
		ShowLabels:  true,
	}
}

// HighlightThreshold derives the normalized magnitude above which a value
// is considered "hot" for the current sensitivity. Higher sensitivity
// lowers the threshold, so more bars and cells cross it.
func (v ViewParameters) HighlightThreshold() float64 {
	s := v.Sensitivity
	if s < SensitivityMin {
		s = SensitivityMin
	}
	if s > SensitivityMax {
		s = SensitivityMax
	}
	// SensitivityMin maps to 0.95, SensitivityMax to 0.05.
	frac := (s - SensitivityMin) / (SensitivityMax - SensitivityMin)
	return 0.95 - 0.9*frac
}
