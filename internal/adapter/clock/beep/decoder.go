package beep

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
	"github.com/soundprobe/soundprobe/internal/domain"
	"github.com/soundprobe/soundprobe/internal/ports"
)

// decodeChunk is the streaming read size in frames.
const decodeChunk = 4096

// Decoder reads whole audio files into mono sample buffers for analysis.
// It shares the playback clock's format support (wav, mp3, flac).
type Decoder struct{}

// NewDecoder creates a clip decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode reads the file and returns normalized mono samples and the
// source sample rate.
func (d *Decoder) Decode(filePath string) ([]float64, int, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, 0, domain.NewClockError("decode", filePath, "file not accessible", domain.ErrFileNotFound)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, 0, domain.NewClockError("decode", filePath, "failed to open file", err)
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		return nil, 0, domain.NewClockError("decode", filePath, "unknown file extension", domain.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, 0, domain.NewClockError("decode", filePath, "failed to decode audio", err)
	}
	defer streamer.Close()

	var samples []float64
	buf := make([][2]float64, decodeChunk)
	for {
		n, ok := streamer.Stream(buf)
		for i := 0; i < n; i++ {
			samples = append(samples, (buf[i][0]+buf[i][1])/2)
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, 0, domain.NewClockError("decode", filePath, "failed to read samples", err)
	}

	return samples, int(format.SampleRate), nil
}

// Verify that Decoder implements the ClipDecoder interface
var _ ports.ClipDecoder = (*Decoder)(nil)
