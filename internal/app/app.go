// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	malgocapture "github.com/soundprobe/soundprobe/internal/adapter/capture/malgo"
	capturemock "github.com/soundprobe/soundprobe/internal/adapter/capture/mock"
	beepclock "github.com/soundprobe/soundprobe/internal/adapter/clock/beep"
	clockmock "github.com/soundprobe/soundprobe/internal/adapter/clock/mock"
	"github.com/soundprobe/soundprobe/internal/adapter/eventbus"
	"github.com/soundprobe/soundprobe/internal/adapter/repository/memory"
	"github.com/soundprobe/soundprobe/internal/adapter/repository/sqlite"
	fyneui "github.com/soundprobe/soundprobe/internal/adapter/ui/fyne"
	"github.com/soundprobe/soundprobe/internal/analysis"
	"github.com/soundprobe/soundprobe/internal/engine"
	"github.com/soundprobe/soundprobe/internal/logger"
	"github.com/soundprobe/soundprobe/internal/ports"
	"github.com/soundprobe/soundprobe/internal/service"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus ports.EventBus
	clock    ports.PlaybackClock
	recorder ports.Recorder
	repo     ports.SessionRepository

	// Services
	sessionService *service.SessionService

	// Visualization
	controller *engine.Controller

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// DatabasePath is the sqlite session store location. Empty selects
	// a per-user default; the in-memory store is used if sqlite fails.
	DatabasePath string

	// UseMockClock replaces the speaker-backed playback clock with an
	// in-memory one (for testing and machines without audio output)
	UseMockClock bool

	// UseMockCapture replaces the microphone with a silent in-memory
	// recorder (for testing and machines without audio input)
	UseMockCapture bool

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:    "com.soundprobe.app",
		LogLevel: loggerCfg.Level,
	}
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	app := &Application{}

	// Step 1: Create Fyne application
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	// Step 2: Create logger
	loggerCfg := logger.Config{
		Level:  config.LogLevel,
		Format: "text",
	}
	app.logger = logger.NewLogger(loggerCfg)
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 3: Create an event bus
	syncBus := eventbus.NewSyncEventBus()
	syncBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	app.eventBus = syncBus

	// Step 4: Create the playback clock
	if config.UseMockClock {
		mockClock := clockmock.NewClock()
		mockClock.SetLogger(app.logger.With(slog.String("adapter", "clock-mock")))
		app.clock = mockClock
	} else {
		clock, err := beepclock.New(
			app.logger.With(slog.String("adapter", "clock")),
			app.eventBus,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize playback clock: %w", err)
		}
		app.clock = clock
	}

	// Step 5: Create the capture recorder
	if config.UseMockCapture {
		app.recorder = capturemock.NewRecorder()
	} else {
		app.recorder = malgocapture.NewRecorder(app.logger.With(slog.String("adapter", "capture")))
	}

	// Step 6: Create the session repository (sqlite, in-memory fallback)
	app.repo = newSessionRepository(app.logger, config.DatabasePath)

	// Step 7: Create the session service
	app.sessionService = service.NewSessionService(
		app.logger.With(slog.String("service", "session")),
		app.clock,
		beepclock.NewDecoder(),
		analysis.New(app.logger.With(slog.String("component", "analyzer"))),
		app.recorder,
		app.repo,
		app.eventBus,
	)

	// Step 8: Create the interaction controller
	app.controller = engine.NewController(
		app.logger.With(slog.String("component", "controller")),
		app.clock,
		app.eventBus,
	)

	// Step 9: Create UI
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, app.controller)

	// Step 10: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.sessionService,
		app.controller,
		app.clock,
		app.eventBus,
		app.mainWindow,
	)

	// Connect presenter to the main window
	app.mainWindow.SetPresenter(app.presenter)

	return app, nil
}

// newSessionRepository opens the sqlite store, falling back to the
// in-memory store when the database cannot be opened. Analysis still
// works without persistence, so the fallback is non-fatal.
func newSessionRepository(log *slog.Logger, path string) ports.SessionRepository {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			log.Warn("failed to resolve user config dir, sessions will not persist",
				slog.Any("error", err))
			return memory.NewSessionRepository()
		}
		path = filepath.Join(configDir, "soundprobe", "sessions.db")
	}

	repo, err := sqlite.NewSessionRepository(log.With(slog.String("repository", "sqlite")), path)
	if err != nil {
		log.Warn("failed to open session database, sessions will not persist",
			slog.String("path", path),
			slog.Any("error", err))
		return memory.NewSessionRepository()
	}

	return repo
}

// Run starts the application.
// This is called from main.go after the application is created.
func (a *Application) Run() {
	a.logger.Info("SoundProbe started")

	a.presenter.Start()

	// Show and run UI (blocks until the window is closed)
	a.mainWindow.ShowAndRun()
}

// Shutdown gracefully shuts down the application.
// This should be called via deferring in main.go.
func (a *Application) Shutdown() {
	a.logger.Info("shutting down application")

	// Stop frame delivery before tearing down what the frames read
	if a.presenter != nil {
		a.presenter.Shutdown()
	}

	if a.sessionService != nil {
		a.sessionService.Shutdown()
	}

	if a.clock != nil {
		if err := a.clock.Close(); err != nil {
			a.logger.Warn("failed to close playback clock", slog.Any("error", err))
		}
	}

	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.logger.Warn("failed to close session repository", slog.Any("error", err))
		}
	}

	if a.eventBus != nil {
		if err := a.eventBus.Close(); err != nil {
			a.logger.Warn("failed to close event bus", slog.Any("error", err))
		}
	}

	a.logger.Info("application shutdown complete")
}
