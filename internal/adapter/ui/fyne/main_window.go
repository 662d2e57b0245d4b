package fyne

import (
	"fmt"
	"math"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/soundprobe/soundprobe/internal/adapter/ui/fyne/widgets/surface"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/engine"
)

const (
	appName = "SoundProbe"

	windowWidth  = 1280
	windowHeight = 860
)

// MainWindow is the main UI window implementing the UIView interface.
// It handles all UI rendering and user interactions.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// Widget mutations arriving from service goroutines are marshalled onto
// the UI thread with fyne.Do.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window

	// Visualization surfaces
	sonar       *surface.Sonar
	spectrum    *surface.Spectrum
	spectrogram *surface.Spectrogram
	timeline    *surface.Timeline

	// UI components
	playButton        *widget.Button
	stopButton        *widget.Button
	recordButton      *widget.Button
	volumeSlider      *widget.Slider
	zoomSlider        *widget.Slider
	sensitivitySlider *widget.Slider
	labelsCheck       *widget.Check
	clipInfo          *widget.Label
	summaryInfo       *widget.Label
	currentTime       *widget.Label
	endTime           *widget.Label
	progressSlider    *widget.Slider
	sessionList       *widget.List
	deleteButton      *widget.Button

	// State
	mu              sync.RWMutex
	sessions        []*domain.Session
	selectedSession string

	// Lifecycle management
	closeOnce sync.Once

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates the main window. The interactor receives pointer
// events from all four visualization surfaces.
func NewMainWindow(app fyneapp.App, interactor surface.Interactor) *MainWindow {
	w := &MainWindow{
		app:         app,
		sonar:       surface.NewSonar(interactor),
		spectrum:    surface.NewSpectrum(interactor),
		spectrogram: surface.NewSpectrogram(interactor),
		timeline:    surface.NewTimeline(interactor),
	}

	w.window = app.NewWindow(appName)

	// Build UI
	w.buildUI()

	w.window.Resize(fyneapp.Size{
		Width:  windowWidth,
		Height: windowHeight,
	})

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	// Control buttons
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.stopButton = widget.NewButtonWithIcon("", theme.MediaStopIcon(), nil)
	w.recordButton = widget.NewButtonWithIcon("Record", theme.MediaRecordIcon(), nil)

	// Clip and summary labels
	w.clipInfo = widget.NewLabel("No clip loaded")
	w.clipInfo.Truncation = fyneapp.TextTruncateClip
	w.clipInfo.TextStyle = fyneapp.TextStyle{Bold: true}
	w.summaryInfo = widget.NewLabel("")
	w.summaryInfo.Truncation = fyneapp.TextTruncateClip

	// Volume slider
	w.volumeSlider = widget.NewSlider(0, 1)
	w.volumeSlider.Step = 0.05
	w.volumeSlider.Value = 1
	volumeHolder := container.NewBorder(nil, nil, widget.NewIcon(theme.VolumeUpIcon()), nil, w.volumeSlider)

	// View parameter controls
	w.zoomSlider = widget.NewSlider(domain.ZoomMin, domain.ZoomMax)
	w.zoomSlider.Step = 0.1
	w.zoomSlider.Value = domain.DefaultZoom
	w.sensitivitySlider = widget.NewSlider(domain.SensitivityMin, domain.SensitivityMax)
	w.sensitivitySlider.Value = domain.DefaultSensitivity
	w.labelsCheck = widget.NewCheck("Labels", nil)
	w.labelsCheck.Checked = true

	viewControls := container.NewGridWithColumns(3,
		container.NewBorder(nil, nil, widget.NewLabel("Zoom"), nil, w.zoomSlider),
		container.NewBorder(nil, nil, widget.NewLabel("Sensitivity"), nil, w.sensitivitySlider),
		w.labelsCheck,
	)

	// Progress row
	w.progressSlider = widget.NewSlider(0, 100)
	w.currentTime = widget.NewLabel("00:00")
	w.endTime = widget.NewLabel("00:00")
	sliderHolder := container.NewBorder(nil, nil, w.currentTime, w.endTime, w.progressSlider)

	buttonsHBox := container.NewHBox(w.playButton, w.stopButton, w.recordButton)
	infoHolder := container.NewVBox(w.clipInfo, w.summaryInfo)
	buttonsHolder := container.NewBorder(nil, nil, buttonsHBox, volumeHolder, infoHolder)

	// Session list sidebar
	w.sessionList = widget.NewList(
		func() int {
			w.mu.RLock()
			defer w.mu.RUnlock()
			return len(w.sessions)
		},
		func() fyneapp.CanvasObject {
			return widget.NewLabel("session")
		},
		func(id widget.ListItemID, item fyneapp.CanvasObject) {
			w.mu.RLock()
			defer w.mu.RUnlock()
			if id < 0 || id >= len(w.sessions) {
				return
			}
			s := w.sessions[id]
			label := item.(*widget.Label)
			label.Truncation = fyneapp.TextTruncateClip
			label.SetText(fmt.Sprintf("%s (%s)", s.Clip.Title, s.CreatedAt.Format("Jan 2 15:04")))
		},
	)
	w.deleteButton = widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), nil)
	sidebar := container.NewBorder(widget.NewLabel("Sessions"), w.deleteButton, nil, nil, w.sessionList)

	// Four surfaces in a two-by-two grid
	surfaces := container.NewGridWithColumns(2,
		w.sonar, w.spectrum,
		w.spectrogram, w.timeline,
	)

	controls := container.NewVBox(buttonsHolder, viewControls, sliderHolder)
	split := container.NewHSplit(sidebar, surfaces)
	split.SetOffset(0.2)
	w.window.SetContent(container.NewPadded(container.NewBorder(nil, controls, nil, nil, split)))

	// Menu
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.playButton.OnTapped = func() {
		w.presenter.OnPlayClicked()
	}

	w.stopButton.OnTapped = func() {
		w.presenter.OnStopClicked()
	}

	w.recordButton.OnTapped = func() {
		w.presenter.OnRecordClicked()
	}

	w.volumeSlider.OnChanged = func(value float64) {
		w.presenter.OnVolumeChanged(value)
	}

	w.zoomSlider.OnChanged = func(value float64) {
		w.presenter.OnZoomChanged(value)
	}

	w.sensitivitySlider.OnChanged = func(value float64) {
		w.presenter.OnSensitivityChanged(value)
	}

	w.labelsCheck.OnChanged = func(checked bool) {
		w.presenter.OnLabelsToggled(checked)
	}

	// OnChangeEnded only fires for user drags, not programmatic updates
	w.progressSlider.OnChangeEnded = func(value float64) {
		w.presenter.OnSeekRequested(value)
	}

	w.sessionList.OnSelected = func(id widget.ListItemID) {
		w.mu.Lock()
		var sessionID string
		if id >= 0 && id < len(w.sessions) {
			sessionID = w.sessions[id].ID
		}
		w.selectedSession = sessionID
		w.mu.Unlock()

		if sessionID != "" {
			w.presenter.OnSessionSelected(sessionID)
		}
	}

	w.sessionList.OnUnselected = func(id widget.ListItemID) {
		w.mu.Lock()
		w.selectedSession = ""
		w.mu.Unlock()
	}

	w.deleteButton.OnTapped = func() {
		w.mu.RLock()
		sessionID := w.selectedSession
		w.mu.RUnlock()

		if sessionID != "" {
			w.presenter.OnSessionDeleted(sessionID)
			w.sessionList.UnselectAll()
		}
	}
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	openClip := fyneapp.NewMenuItem("Open Clip", func() {
		w.handleOpenClip()
	})

	exitMenu := fyneapp.NewMenuItem("Exit", func() {
		w.window.Close()
	})

	fileMenu := fyneapp.NewMenu("File", openClip, fyneapp.NewMenuItemSeparator(), exitMenu)
	return []*fyneapp.Menu{fileMenu}
}

// handleOpenClip handles the "Open Clip" menu action.
func (w *MainWindow) handleOpenClip() {
	if w.presenter == nil {
		return
	}

	dialog := NewFileDialog(w.window, func(filePath string) {
		w.presenter.OnFileOpened(filePath)
	}, w.presenter.logger)
	dialog.Show()
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// Close closes the window. It's safe to call multiple times.
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// UIView interface implementation

// RenderFrame pushes one snapshot to all four surfaces on the UI thread.
func (w *MainWindow) RenderFrame(frame engine.Frame) {
	fyneapp.Do(func() {
		w.sonar.SetFrame(frame)
		w.spectrum.SetFrame(frame)
		w.spectrogram.SetFrame(frame)
		w.timeline.SetFrame(frame)
	})
}

// SetPlayState updates the play/pause button state.
func (w *MainWindow) SetPlayState(playing bool) {
	fyneapp.Do(func() {
		if playing {
			w.playButton.SetIcon(theme.MediaPauseIcon())
		} else {
			w.playButton.SetIcon(theme.MediaPlayIcon())
		}
	})
}

// SetRecordState updates the record button state.
func (w *MainWindow) SetRecordState(recording bool) {
	fyneapp.Do(func() {
		if recording {
			w.recordButton.SetText("Stop Recording")
			w.recordButton.SetIcon(theme.MediaStopIcon())
		} else {
			w.recordButton.SetText("Record")
			w.recordButton.SetIcon(theme.MediaRecordIcon())
		}
	})
}

// SetVolume updates the volume slider.
func (w *MainWindow) SetVolume(volume float64) {
	fyneapp.Do(func() {
		w.volumeSlider.Value = volume
		w.volumeSlider.Refresh()
	})
}

// SetClipInfo updates the displayed clip information.
func (w *MainWindow) SetClipInfo(title, detail string) {
	text := title
	if detail != "" {
		text = fmt.Sprintf("%s (%s)", title, detail)
	}
	if text == "" {
		text = "No clip loaded"
	}

	fyneapp.Do(func() {
		w.clipInfo.SetText(text)
	})
}

// SetSummary updates the analysis summary line.
func (w *MainWindow) SetSummary(summary domain.AnalysisSummary) {
	text := fmt.Sprintf("%d events, dominant %.0f Hz, RMS %.3f, peak %.1f dB",
		summary.DetectedEvents,
		summary.DominantFrequency,
		summary.AverageRMS,
		summary.MaxDecibels)

	fyneapp.Do(func() {
		w.summaryInfo.SetText(text)
	})
}

// ClearSummary empties the analysis summary line.
func (w *MainWindow) ClearSummary() {
	fyneapp.Do(func() {
		w.summaryInfo.SetText("")
	})
}

// SetCurrentTime updates the current playback time display.
func (w *MainWindow) SetCurrentTime(seconds float64) {
	text := formatTime(seconds)
	fyneapp.Do(func() {
		w.currentTime.SetText(text)
	})
}

// SetTotalTime updates the total clip duration display.
func (w *MainWindow) SetTotalTime(seconds float64) {
	text := formatTime(seconds)
	fyneapp.Do(func() {
		w.progressSlider.Max = seconds
		w.endTime.SetText(text)
	})
}

// SetProgress updates the progress slider position.
func (w *MainWindow) SetProgress(position, duration float64) {
	if duration <= 0 {
		return
	}
	fyneapp.Do(func() {
		w.progressSlider.Value = position
		w.progressSlider.Refresh()
	})
}

// SetSessions replaces the session list contents.
func (w *MainWindow) SetSessions(sessions []*domain.Session) {
	w.mu.Lock()
	w.sessions = sessions
	w.mu.Unlock()

	fyneapp.Do(func() {
		w.sessionList.Refresh()
	})
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

func formatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	return fmt.Sprintf("%.2d:%.2d", int(seconds/60), int(math.Mod(seconds, 60)))
}

// Verify UIView implementation
var _ UIView = (*MainWindow)(nil)
