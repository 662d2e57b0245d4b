// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrNoAnalysis is returned when an operation requires an analysis result and none is loaded.
	ErrNoAnalysis = errors.New("no analysis loaded")

	// ErrNoClipLoaded is returned when playback is attempted with no clip loaded.
	ErrNoClipLoaded = errors.New("no clip loaded")

	// ErrInvalidPosition is returned when seeking to a position outside the clip.
	ErrInvalidPosition = errors.New("invalid playback position")

	// ErrInvalidVolume is returned when the volume is out of valid range (0.0-1.0).
	ErrInvalidVolume = errors.New("invalid volume: must be between 0.0 and 1.0")

	// ErrUnsupportedFormat is returned when an audio file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFileNotFound is returned when a file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrSessionNotFound is returned when a requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCaptureInProgress is returned when capture is started while already recording.
	ErrCaptureInProgress = errors.New("capture already in progress")

	// ErrCaptureUnavailable is returned when no capture device can be
	// acquired even after the reduced-settings fallback.
	ErrCaptureUnavailable = errors.New("capture device unavailable")

	// ErrNotInitialized is returned when an operation is attempted on an uninitialized component.
	ErrNotInitialized = errors.New("component not initialized")

	// ErrSchedulerClosed is returned when a torn-down scheduler is restarted.
	ErrSchedulerClosed = errors.New("scheduler already closed")
)

// ClockError represents an error from the playback clock adapter.
// This wraps the underlying audio library errors with additional context.
type ClockError struct {
	Op      string // Operation that failed (e.g., "load", "play", "seek")
	Path    string // Clip path (if applicable)
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *ClockError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("playback clock %s failed for '%s': %s", e.Op, e.Path, e.Message)
	}
	return fmt.Sprintf("playback clock %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ClockError) Unwrap() error {
	return e.Err
}

// NewClockError creates a new ClockError.
func NewClockError(op, path, message string, err error) *ClockError {
	return &ClockError{
		Op:      op,
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// CaptureError represents an error from the microphone capture adapter.
// Fallback reports whether the failure happened after the reduced-settings retry.
type CaptureError struct {
	Op       string // Operation that failed (e.g., "open", "start")
	Fallback bool   // True if the reduced-settings retry also failed
	Message  string // Error message
	Err      error  // Underlying error
}

// Error implements the error interface.
func (e *CaptureError) Error() string {
	if e.Fallback {
		return fmt.Sprintf("capture %s failed after fallback: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("capture %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *CaptureError) Unwrap() error {
	return e.Err
}

// NewCaptureError creates a new CaptureError.
func NewCaptureError(op string, fallback bool, message string, err error) *CaptureError {
	return &CaptureError{
		Op:       op,
		Fallback: fallback,
		Message:  message,
		Err:      err,
	}
}

// RepositoryError represents an error from a repository.
// This wraps persistence layer errors with additional context.
type RepositoryError struct {
	Op      string // Operation that failed (e.g., "save", "load", "delete")
	Type    string // Repository type (e.g., "session")
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s.%s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, repoType, message string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Type:    repoType,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string      // Field that failed validation
	Value   interface{} // Value that failed validation
	Message string      // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "SessionService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
