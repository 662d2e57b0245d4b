// Package engine contains the playback-synchronized visualization engine:
// the frame snapshot model, the interaction controller that owns the shared
// view parameters, and the frame scheduler that drives redraw cadence.
package engine

import (
	"math"
	"time"

	"github.com/soundprobe/soundprobe/internal/domain"
)

// sweepPeriod is the wall-clock period of the sonar scanning line. The
// sweep is deliberately independent of playback so the sonar keeps
// animating while paused.
const sweepPeriod = 4 * time.Second

// Frame is the immutable per-tick snapshot handed to every render surface.
// All four surfaces observe the same analysis, playback state and view
// parameters within one frame, which keeps the panels visually consistent.
type Frame struct {
	// Analysis is the current session's analysis (nil before the first load)
	Analysis *domain.AnalysisResult

	// Playback is the clock snapshot taken at the start of the frame
	Playback domain.PlaybackState

	// View is the view-parameter snapshot taken at the start of the frame
	View domain.ViewParameters

	// SweepAngle is the wall-clock sonar sweep position in radians,
	// measured clockwise from 12 o'clock
	SweepAngle float64
}

// Surface is one independently drawn visualization panel. Implementations
// must treat the frame as read-only and redraw idempotently: two calls with
// identical frames and canvas sizes produce identical pixels.
type Surface interface {
	// ID identifies the surface for interaction routing.
	ID() domain.SurfaceID

	// SetFrame stores the snapshot to draw and refreshes the canvas.
	SetFrame(frame Frame)
}

// SweepAngle computes the sonar sweep angle for a wall-clock instant,
// clockwise from 12 o'clock.
func SweepAngle(now time.Time) float64 {
	elapsed := now.UnixNano() % int64(sweepPeriod)
	return (float64(elapsed)/float64(sweepPeriod))*2*math.Pi - math.Pi/2
}
