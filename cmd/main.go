// Package main is the production entry point for SoundProbe.
//
// SoundProbe is a desktop audio analysis workbench:
// - Load or record a clip, run event detection and spectral analysis
// - Four synchronized visualization surfaces (sonar, spectrum, spectrogram, timeline)
// - Event-driven communication (no callbacks)
// - Dependency injection for testability
// - MVP pattern for UI decoupling
//
// Build:
//
//	go build -o build/soundprobe ./cmd
//
// Run:
//
//	./build/soundprobe
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/soundprobe/soundprobe/internal/app"
)

func main() {
	// Optional .env for SOUNDPROBE_LOG_LEVEL and SOUNDPROBE_DB_PATH
	_ = godotenv.Load()

	config := app.DefaultConfig()
	config.DatabasePath = os.Getenv("SOUNDPROBE_DB_PATH")

	// Create the application with dependency injection
	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer application.Shutdown()

	// Run application (blocks until the window is closed)
	application.Run()
}
