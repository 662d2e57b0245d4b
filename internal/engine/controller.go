package engine

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/ports"
	"github.com/soundprobe/soundprobe/internal/render"
)

// SonarRadiusRatio is the fraction of the half min-dimension used as the
// sonar plot radius. The controller and the sonar surface must agree on it
// so click coordinates invert exactly.
const SonarRadiusRatio = 0.9

// Controller is the interaction controller: it owns the single shared
// ViewParameters instance, translates pointer events on each surface into
// domain semantics, and issues seek requests to the playback clock.
//
// It is the only legitimate mutator of ViewParameters; surfaces receive
// read-only snapshots through frames.
//
// Thread-safety: all methods are safe for concurrent use.
type Controller struct {
	logger *slog.Logger
	clock  ports.PlaybackClock
	bus    ports.EventBus

	mu       sync.RWMutex
	view     domain.ViewParameters
	analysis *domain.AnalysisResult
}

// NewController creates an interaction controller with default view
// parameters.
func NewController(logger *slog.Logger, clock ports.PlaybackClock, bus ports.EventBus) *Controller {
	return &Controller{
		logger: logger,
		clock:  clock,
		bus:    bus,
		view:   domain.DefaultViewParameters(),
	}
}

// SetAnalysis replaces the analysis the controller resolves clicks against.
// Passing nil clears it (e.g. when a new clip starts loading).
func (c *Controller) SetAnalysis(analysis *domain.AnalysisResult) {
	c.mu.Lock()
	c.analysis = analysis
	c.view.Hovered = nil
	c.mu.Unlock()
}

// View returns a snapshot of the current view parameters. The hovered
// point is copied so callers cannot alias the shared instance.
func (c *Controller) View() domain.ViewParameters {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// snapshotLocked copies the view parameters; caller must hold at least a
// read lock.
func (c *Controller) snapshotLocked() domain.ViewParameters {
	snap := c.view
	if c.view.Hovered != nil {
		hovered := *c.view.Hovered
		snap.Hovered = &hovered
	}
	return snap
}

// SetZoom sets the zoom factor, clamping to [ZoomMin, ZoomMax].
func (c *Controller) SetZoom(zoom float64) {
	c.setParam(func(v *domain.ViewParameters) {
		v.Zoom = clamp(zoom, domain.ZoomMin, domain.ZoomMax)
	})
}

// SetSensitivity sets the sensitivity, clamping to [SensitivityMin, SensitivityMax].
func (c *Controller) SetSensitivity(sensitivity float64) {
	c.setParam(func(v *domain.ViewParameters) {
		v.Sensitivity = clamp(sensitivity, domain.SensitivityMin, domain.SensitivityMax)
	})
}

// SetShowLabels toggles textual annotations on all surfaces.
func (c *Controller) SetShowLabels(show bool) {
	c.setParam(func(v *domain.ViewParameters) {
		v.ShowLabels = show
	})
}

// setParam applies a mutation under lock and publishes the new snapshot.
func (c *Controller) setParam(mutate func(*domain.ViewParameters)) {
	c.mu.Lock()
	mutate(&c.view)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.bus.Publish(domain.NewViewChangedEvent(snap))
}

// PointerMove handles a pointer-move event on a surface. The hovered point
// and its domain coordinate are recorded in the shared view parameters for
// tooltip display and hover highlighting on the next frame.
func (c *Controller) PointerMove(surface domain.SurfaceID, px, py float64, width, height int) {
	t, freq, ok := c.pixelToDomain(surface, px, py, width, height)

	c.mu.Lock()
	if !ok {
		c.view.Hovered = nil
	} else {
		c.view.Hovered = &domain.HoverPoint{
			Surface:   surface,
			PixelX:    px,
			PixelY:    py,
			Time:      t,
			Frequency: freq,
		}
	}
	c.mu.Unlock()
}

// PointerOut clears the hovered point when the pointer leaves a surface.
func (c *Controller) PointerOut(surface domain.SurfaceID) {
	c.mu.Lock()
	if c.view.Hovered != nil && c.view.Hovered.Surface == surface {
		c.view.Hovered = nil
	}
	c.mu.Unlock()
}

// Click handles a click on a surface: it seeks the playback clock to the
// clicked time (where the surface has a time axis) and selects the nearest
// acoustic event for the detail panel. Clicks outside the valid plot
// bounds (e.g. outside the sonar circle) are silently ignored.
func (c *Controller) Click(surface domain.SurfaceID, px, py float64, width, height int) {
	t, freq, ok := c.pixelToDomain(surface, px, py, width, height)
	if !ok {
		return
	}

	c.mu.RLock()
	analysis := c.analysis
	c.mu.RUnlock()

	if surface != domain.SurfaceSpectrum {
		if err := c.clock.Seek(secondsToDuration(t)); err != nil {
			c.logger.Debug("seek from click rejected",
				slog.String("surface", string(surface)),
				slog.Float64("time", t),
				slog.Any("error", err))
		}
	}

	if analysis == nil || len(analysis.Events) == 0 {
		return
	}

	idx, dist := c.nearestEvent(surface, analysis.Events, t, freq)
	if idx < 0 {
		return
	}

	c.bus.Publish(domain.NewEventSelectedEvent(surface, analysis.Events[idx], dist))
}

// nearestEvent resolves the nearest event for a click. The timeline has no
// frequency axis, so it matches on time alone; every other surface uses
// the combined time/frequency metric.
func (c *Controller) nearestEvent(surface domain.SurfaceID, events []domain.AcousticEvent, t, freq float64) (int, float64) {
	if surface != domain.SurfaceTimeline {
		return render.NearestEvent(events, t, freq)
	}

	best := -1
	bestDist := math.Inf(1)
	for i, ev := range events {
		if d := math.Abs(ev.Time - t); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// pixelToDomain converts a canvas-local pixel to (time, frequency) for the
// given surface. ok is false when the pixel carries no valid domain
// coordinate (no analysis loaded, or outside the plot bounds).
func (c *Controller) pixelToDomain(surface domain.SurfaceID, px, py float64, width, height int) (t, freq float64, ok bool) {
	c.mu.RLock()
	analysis := c.analysis
	c.mu.RUnlock()

	if analysis == nil || analysis.DurationSeconds <= 0 || width <= 0 || height <= 0 {
		return 0, 0, false
	}

	m := render.NewMapper(analysis.DurationSeconds)

	switch surface {
	case domain.SurfaceSonar:
		centerX := float64(width) / 2
		centerY := float64(height) / 2
		maxRadius := math.Min(centerX, centerY) * SonarRadiusRatio
		p, inside := m.PixelToPolar(px, py, centerX, centerY, maxRadius)
		if !inside {
			return 0, 0, false
		}
		return p.Time, p.Frequency, true

	case domain.SurfaceSpectrogram:
		return m.XToTime(px, width), m.YToFrequency(py, height), true

	case domain.SurfaceTimeline:
		return m.XToTime(px, width), 0, true

	case domain.SurfaceSpectrum:
		// The spectrum panel's x axis is frequency, not time.
		freq = (px / float64(width)) * m.MaxFrequencyHz
		return 0, freq, true

	default:
		return 0, 0, false
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
