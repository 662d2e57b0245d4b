// Package surface provides the four playback-synchronized render surfaces:
// sonar, spectrum, spectrogram and timeline. Each surface draws one frame
// snapshot and forwards pointer events to the interaction controller.
package surface

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/engine"
)

// Interactor translates pointer events on a surface into domain actions.
// The engine's interaction controller implements it.
type Interactor interface {
	PointerMove(surface domain.SurfaceID, px, py float64, width, height int)
	PointerOut(surface domain.SurfaceID)
	Click(surface domain.SurfaceID, px, py float64, width, height int)
}

// BaseSurface provides common functionality for all render surfaces.
// It is designed to be embedded in concrete surface implementations.
//
// Rendering is idempotent: the raster generator reads only the stored
// frame snapshot, so two renders with the same frame and size produce
// identical pixels.
type BaseSurface struct {
	widget.BaseWidget

	Raster *canvas.Raster

	id         domain.SurfaceID
	interactor Interactor

	mu    sync.RWMutex
	frame engine.Frame
}

func (s *BaseSurface) init(id domain.SurfaceID, interactor Interactor) {
	s.id = id
	s.interactor = interactor
}

// ID identifies the surface for interaction routing.
func (s *BaseSurface) ID() domain.SurfaceID {
	return s.id
}

// SetFrame stores the snapshot to draw and refreshes the canvas.
func (s *BaseSurface) SetFrame(frame engine.Frame) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()

	s.Raster.Refresh()
}

// Frame returns the stored frame snapshot.
func (s *BaseSurface) Frame() engine.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// CreateRenderer implements fyne.Widget.
func (s *BaseSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.Raster)
}

// MinSize returns the minimum size of the surface.
func (s *BaseSurface) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

// Tapped forwards a click to the interaction controller.
func (s *BaseSurface) Tapped(e *fyne.PointEvent) {
	if s.interactor == nil {
		return
	}
	size := s.Size()
	s.interactor.Click(s.id, float64(e.Position.X), float64(e.Position.Y), int(size.Width), int(size.Height))
}

// MouseIn forwards pointer entry to the interaction controller.
func (s *BaseSurface) MouseIn(e *desktop.MouseEvent) {
	s.forwardMove(e)
}

// MouseMoved forwards pointer movement to the interaction controller.
func (s *BaseSurface) MouseMoved(e *desktop.MouseEvent) {
	s.forwardMove(e)
}

// MouseOut clears the hovered point.
func (s *BaseSurface) MouseOut() {
	if s.interactor == nil {
		return
	}
	s.interactor.PointerOut(s.id)
}

func (s *BaseSurface) forwardMove(e *desktop.MouseEvent) {
	if s.interactor == nil {
		return
	}
	size := s.Size()
	s.interactor.PointerMove(s.id, float64(e.Position.X), float64(e.Position.Y), int(size.Width), int(size.Height))
}

// Verify interaction interfaces at compile time.
var (
	_ fyne.Tappable     = (*BaseSurface)(nil)
	_ desktop.Hoverable = (*BaseSurface)(nil)
)
