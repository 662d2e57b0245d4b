package mock

import (
	"sync"

	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/ports"
)

// Decoder is a mock implementation of the ClipDecoder interface.
// It returns canned samples for any path.
//
// Thread-safety: This implementation is thread-safe.
type Decoder struct {
	mu         sync.Mutex
	samples    []float64
	sampleRate int
	failDecode bool
	paths      []string
}

// NewDecoder creates a mock decoder returning one second of silence at
// 44.1 kHz by default.
func NewDecoder() *Decoder {
	return &Decoder{
		samples:    make([]float64, 44100),
		sampleRate: 44100,
	}
}

// SetResult configures the samples Decode will return.
func (m *Decoder) SetResult(samples []float64, sampleRate int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = samples
	m.sampleRate = sampleRate
}

// SetFailDecode configures the mock to fail decoding (for testing).
func (m *Decoder) SetFailDecode(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDecode = fail
}

// Paths returns every path passed to Decode, in order.
func (m *Decoder) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, len(m.paths))
	copy(paths, m.paths)
	return paths
}

// Decode returns the canned samples.
func (m *Decoder) Decode(filePath string) ([]float64, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.paths = append(m.paths, filePath)

	if m.failDecode {
		return nil, 0, domain.NewClockError("decode", filePath, "mock decode failure", domain.ErrUnsupportedFormat)
	}
	return m.samples, m.sampleRate, nil
}

// Verify that Decoder implements the ClipDecoder interface
var _ ports.ClipDecoder = (*Decoder)(nil)
