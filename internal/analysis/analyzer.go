// Package analysis produces AnalysisResult values from decoded PCM audio.
// It is the collaborator behind the visualization engine: frame-energy event
// detection, an aggregate frequency spectrum and an STFT spectrogram grid.
package analysis

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/ports"
)

const (
	// frameLength and hopLength drive the energy envelope and the STFT.
	frameLength = 1024
	hopLength   = 512

	// fftSize is the STFT window size.
	fftSize = 2048

	// peakHeight is the normalized energy a frame must reach to count as
	// a sound event; peakDistance is the minimum separation in frames.
	peakHeight   = 0.2
	peakDistance = 5

	// maxEvents caps the reported events, loudest first.
	maxEvents = 10

	// spectrumPoints is the size of the downsampled aggregate spectrum.
	spectrumPoints = 100

	// maxGridFrames and maxGridBins bound the spectrogram grid so render
	// surfaces never iterate unbounded data.
	maxGridFrames = 256
	maxGridBins   = 128

	// dbFloor is the dynamic range of the spectrogram in dB below peak.
	dbFloor = 80.0
)

// Analyzer computes acoustic analyses on a single goroutine.
// It is stateless; one instance can serve the whole application.
type Analyzer struct {
	logger *slog.Logger
}

// New creates an analyzer.
func New(logger *slog.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// Analyze processes mono PCM samples into a full AnalysisResult.
// The context is checked between processing stages so loading a new clip
// can abandon a long-running analysis.
func (a *Analyzer) Analyze(ctx context.Context, samples []float64, sampleRate int) (*domain.AnalysisResult, error) {
	if len(samples) == 0 {
		return nil, domain.NewValidationError("samples", len(samples), "no audio to analyze")
	}
	if sampleRate <= 0 {
		return nil, domain.NewValidationError("sampleRate", sampleRate, "must be positive")
	}

	duration := float64(len(samples)) / float64(sampleRate)

	a.logger.Debug("analysis started",
		slog.Int("samples", len(samples)),
		slog.Int("sample_rate", sampleRate),
		slog.Float64("duration_s", duration))

	energy := energyEnvelope(samples)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grid, centroids := a.stft(samples, sampleRate)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	peaks := findPeaks(energy, peakHeight, peakDistance)
	events := buildEvents(peaks, energy, centroids, sampleRate, duration)

	spectrum := aggregateSpectrum(grid.raw, sampleRate)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &domain.AnalysisResult{
		DurationSeconds: duration,
		SampleRateHz:    sampleRate,
		Events:          events,
		Spectrum:        spectrum,
		Spectrogram:     grid.normalized,
		Energy:          energy,
		Summary: domain.AnalysisSummary{
			AverageRMS:        averageRMS(samples),
			DominantFrequency: mean(centroids),
			MaxDecibels:       peakDecibels(samples),
			DetectedEvents:    len(peaks),
		},
	}

	a.logger.Debug("analysis complete",
		slog.Int("events", len(result.Events)),
		slog.Int("spectrum_points", len(result.Spectrum)),
		slog.Int("grid_frames", len(result.Spectrogram)))

	return result, nil
}

// energyEnvelope computes the normalized per-frame energy of the signal.
func energyEnvelope(samples []float64) []float64 {
	var energy []float64
	for start := 0; start < len(samples); start += hopLength {
		end := start + frameLength
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for _, s := range samples[start:end] {
			sum += s * s
		}
		energy = append(energy, sum)
	}

	var peak float64
	for _, e := range energy {
		if e > peak {
			peak = e
		}
	}
	if peak > 0 {
		for i := range energy {
			energy[i] /= peak
		}
	}
	return energy
}

// findPeaks locates local maxima above height with a minimum separation,
// preferring the tallest peak inside each exclusion window.
func findPeaks(series []float64, height float64, distance int) []int {
	var candidates []int
	for i := 1; i < len(series)-1; i++ {
		if series[i] >= height && series[i] >= series[i-1] && series[i] > series[i+1] {
			candidates = append(candidates, i)
		}
	}
	// Single-frame series can still carry one peak
	if len(series) == 1 && series[0] >= height {
		candidates = append(candidates, 0)
	}

	// Tallest first, then suppress neighbors within the distance window
	sort.SliceStable(candidates, func(a, b int) bool {
		return series[candidates[a]] > series[candidates[b]]
	})

	var accepted []int
	for _, c := range candidates {
		ok := true
		for _, a := range accepted {
			if abs(c-a) < distance {
				ok = false
				break
			}
		}
		if ok {
			accepted = append(accepted, c)
		}
	}

	sort.Ints(accepted)
	return accepted
}

// spectrogramGrid carries both the raw magnitudes (for the aggregate
// spectrum) and the dB-normalized grid handed to the render surfaces.
type spectrogramGrid struct {
	raw        [][]float64
	normalized [][]float64
}

// stft computes the short-time Fourier transform grid and the per-frame
// spectral centroid used for event classification.
func (a *Analyzer) stft(samples []float64, sampleRate int) (spectrogramGrid, []float64) {
	win := window.Hann(fftSize)
	bins := fftSize / 2
	binHz := float64(sampleRate) / float64(fftSize)

	var raw [][]float64
	var centroids []float64

	frame := make([]float64, fftSize)
	for start := 0; start < len(samples); start += hopLength {
		for i := 0; i < fftSize; i++ {
			if start+i < len(samples) {
				frame[i] = samples[start+i] * win[i]
			} else {
				frame[i] = 0
			}
		}

		spectrum := fft.FFTReal(frame)
		mags := make([]float64, bins)
		var num, den float64
		for b := 0; b < bins; b++ {
			m := cmplxAbs(spectrum[b])
			mags[b] = m
			num += float64(b) * binHz * m
			den += m
		}
		raw = append(raw, mags)

		if den > 0 {
			centroids = append(centroids, num/den)
		} else {
			centroids = append(centroids, 0)
		}
	}

	return spectrogramGrid{
		raw:        raw,
		normalized: normalizeGrid(raw),
	}, centroids
}

// normalizeGrid converts raw magnitudes to a 0..1 grid on a dB scale
// relative to the overall peak, downsampled to the grid bounds.
func normalizeGrid(raw [][]float64) [][]float64 {
	if len(raw) == 0 {
		return nil
	}

	var peak float64
	for _, row := range raw {
		for _, m := range row {
			if m > peak {
				peak = m
			}
		}
	}
	if peak <= 0 {
		peak = 1
	}

	frames := len(raw)
	bins := len(raw[0])
	outFrames := min(frames, maxGridFrames)
	outBins := min(bins, maxGridBins)

	grid := make([][]float64, outFrames)
	for i := range grid {
		src := raw[i*frames/outFrames]
		row := make([]float64, outBins)
		for j := range row {
			m := src[j*bins/outBins]
			db := -dbFloor
			if m > 0 {
				db = 20 * math.Log10(m/peak)
			}
			if db < -dbFloor {
				db = -dbFloor
			}
			row[j] = (db + dbFloor) / dbFloor
		}
		grid[i] = row
	}
	return grid
}

// aggregateSpectrum averages STFT magnitudes per bin and downsamples to a
// fixed number of ascending-frequency points normalized to 0..1.
func aggregateSpectrum(raw [][]float64, sampleRate int) []domain.SpectrumSample {
	if len(raw) == 0 {
		return nil
	}

	bins := len(raw[0])
	avg := make([]float64, bins)
	for _, row := range raw {
		for b, m := range row {
			avg[b] += m
		}
	}
	var peak float64
	for b := range avg {
		avg[b] /= float64(len(raw))
		if avg[b] > peak {
			peak = avg[b]
		}
	}
	if peak <= 0 {
		peak = 1
	}

	binHz := float64(sampleRate) / float64(fftSize)
	points := min(bins, spectrumPoints)

	samples := make([]domain.SpectrumSample, 0, points)
	for i := 0; i < points; i++ {
		b := i * bins / points
		samples = append(samples, domain.SpectrumSample{
			Frequency: float64(b) * binHz,
			Magnitude: avg[b] / peak,
		})
	}
	return samples
}

// buildEvents converts energy peaks into classified acoustic events,
// loudest first, capped at maxEvents.
func buildEvents(peaks []int, energy, centroids []float64, sampleRate int, duration float64) []domain.AcousticEvent {
	events := make([]domain.AcousticEvent, 0, len(peaks))
	for _, p := range peaks {
		t := float64(p) * hopLength / float64(sampleRate)
		if t > duration {
			t = duration
		}

		freq := 0.0
		if len(centroids) > 0 {
			freq = centroids[min(p, len(centroids)-1)]
		}

		amp := energy[p]
		db := math.Inf(-1)
		if amp > 0 {
			db = 20 * math.Log10(amp)
		}

		events = append(events, domain.AcousticEvent{
			Time:       t,
			Frequency:  freq,
			Amplitude:  amp,
			Label:      classify(freq),
			Confidence: clamp01(amp),
			Decibels:   db,
		})
	}

	sort.SliceStable(events, func(a, b int) bool {
		return events[a].Amplitude > events[b].Amplitude
	})
	if len(events) > maxEvents {
		events = events[:maxEvents]
	}
	return events
}

// classify tags an event by its dominant-frequency band.
func classify(freq float64) string {
	switch {
	case freq < 300:
		return "Low Frequency/Bass"
	case freq < 1000:
		return "Voice/Mid Range"
	case freq < 4000:
		return "High Voice/Instruments"
	default:
		return "High Frequency/Noise"
	}
}

func averageRMS(samples []float64) float64 {
	var total float64
	var frames int
	for start := 0; start < len(samples); start += hopLength {
		end := start + frameLength
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for _, s := range samples[start:end] {
			sum += s * s
		}
		total += math.Sqrt(sum / float64(end-start))
		frames++
	}
	if frames == 0 {
		return 0
	}
	return total / float64(frames)
}

func peakDecibels(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(peak)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Verify that Analyzer implements the Analyzer port
var _ ports.Analyzer = (*Analyzer)(nil)
