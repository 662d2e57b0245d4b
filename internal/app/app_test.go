package app

import (
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	config := DefaultConfig()
	config.UseMockClock = true
	config.UseMockCapture = true
	config.DatabasePath = filepath.Join(t.TempDir(), "sessions.db")
	config.TestFyneApp = test.NewApp()
	return config
}

func TestNewApplication(t *testing.T) {
	app, err := NewApplication(testConfig(t))
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.NotNil(t, app.sessionService)
	assert.NotNil(t, app.controller)
	assert.NotNil(t, app.eventBus)
	assert.NotNil(t, app.clock)
	assert.NotNil(t, app.recorder)
	assert.NotNil(t, app.repo)
	assert.NotNil(t, app.presenter)
	assert.NotNil(t, app.mainWindow)

	app.Shutdown()
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "com.soundprobe.app", config.AppID)
	assert.Empty(t, config.DatabasePath)
	assert.False(t, config.UseMockClock)
	assert.False(t, config.UseMockCapture)
}

func TestApplicationLifecycle(t *testing.T) {
	app, err := NewApplication(testConfig(t))
	require.NoError(t, err)

	// Run would normally block, but we're not calling it in test

	app.Shutdown()

	// Shutdown again should not panic
	app.Shutdown()
}

func TestApplicationFallsBackToMemoryRepository(t *testing.T) {
	config := testConfig(t)
	// A directory path cannot be opened as a database file
	config.DatabasePath = t.TempDir()

	app, err := NewApplication(config)
	require.NoError(t, err)
	defer app.Shutdown()

	assert.NotNil(t, app.repo)
}
