package ports

// ClipDecoder decodes an audio file into normalized mono samples for
// analysis. Playback decoding is the PlaybackClock's concern; this port
// exists so the analysis pipeline can read the whole clip up front.
type ClipDecoder interface {
	// Decode reads the file and returns mono samples in -1..1 and the
	// source sample rate.
	Decode(filePath string) ([]float64, int, error)
}
