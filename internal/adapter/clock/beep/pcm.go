package beep

import "github.com/soundprobe/soundprobe/internal/domain"

// pcmStreamer plays a mono sample buffer held in memory. It backs playback
// of microphone recordings, which are analyzed and played without ever
// being written to disk.
type pcmStreamer struct {
	samples []float64
	pos     int
}

func newPCMStreamer(samples []float64) *pcmStreamer {
	return &pcmStreamer{samples: samples}
}

// Stream copies the mono buffer into both output channels.
func (p *pcmStreamer) Stream(out [][2]float64) (int, bool) {
	if p.pos >= len(p.samples) {
		return 0, false
	}

	n := 0
	for i := range out {
		if p.pos >= len(p.samples) {
			break
		}
		s := p.samples[p.pos]
		out[i][0] = s
		out[i][1] = s
		p.pos++
		n++
	}
	return n, true
}

// Err always returns nil; an in-memory buffer cannot fail.
func (p *pcmStreamer) Err() error {
	return nil
}

// Len returns the total number of samples.
func (p *pcmStreamer) Len() int {
	return len(p.samples)
}

// Position returns the current sample offset.
func (p *pcmStreamer) Position() int {
	return p.pos
}

// Seek moves to the given sample offset.
func (p *pcmStreamer) Seek(pos int) error {
	if pos < 0 || pos > len(p.samples) {
		return domain.ErrInvalidPosition
	}
	p.pos = pos
	return nil
}
