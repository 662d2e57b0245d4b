// Package ports defines the Analyzer interface for the analysis collaborator.
package ports

import (
	"context"

	"github.com/soundprobe/soundprobe/internal/domain"
)

// Analyzer produces an AnalysisResult from decoded PCM samples.
//
// The visualization engine treats the result as an opaque, immutable input;
// it only checks the shape (positive duration, ordered spectrum) before
// rendering proceeds. This keeps the engine independent of how the analysis
// is computed.
type Analyzer interface {
	// Analyze processes mono PCM samples (normalized -1..1) recorded or
	// decoded at the given sample rate.
	//
	// The context cancels long-running analyses when the user loads a new
	// clip before the previous analysis finishes.
	//
	// Returns a fully populated result, or an error if the input is empty
	// or the context is cancelled.
	Analyze(ctx context.Context, samples []float64, sampleRate int) (*domain.AnalysisResult, error)
}
