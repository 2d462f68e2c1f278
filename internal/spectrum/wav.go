package spectrum

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// Sample format constants
const (
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0
)

var (
	// ErrInvalidWAV indicates the file is not a readable PCM WAV file.
	ErrInvalidWAV = errors.New("invalid WAV file")

	// ErrNoSamples indicates the recording holds no audio frames.
	ErrNoSamples = errors.New("recording has no samples")
)

// Clip is a decoded recording with per-channel samples normalized to [-1, 1].
type Clip struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float64
}

// Frames returns the number of samples per channel.
func (c *Clip) Frames() int {
	if len(c.Channels) == 0 {
		return 0
	}
	return len(c.Channels[0])
}

// ReadWAV decodes the WAV file at path.
func ReadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	format := buf.Format
	if format == nil || format.NumChannels < 1 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing format chunk: %s", ErrInvalidWAV, path)
	}

	bitDepth := int(decoder.BitDepth)
	maxVal, ok := maxValue(bitDepth)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported bit depth %d: %s", ErrInvalidWAV, bitDepth, path)
	}
	channels := deinterleave(buf.Data, format.NumChannels, 1.0/maxVal)
	if len(channels[0]) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSamples, path)
	}

	return &Clip{
		SampleRate: format.SampleRate,
		BitDepth:   bitDepth,
		Channels:   channels,
	}, nil
}

// deinterleave splits interleaved integer PCM into normalized channels.
func deinterleave(data []int, numChannels int, invMaxVal float64) [][]float64 {
	frames := len(data) / numChannels
	out := make([][]float64, numChannels)
	for ch := range numChannels {
		out[ch] = make([]float64, frames)
	}
	for i := range frames {
		base := i * numChannels
		for ch := range numChannels {
			out[ch][i] = float64(data[base+ch]) * invMaxVal
		}
	}
	return out
}

// maxValue returns the maximum sample value for the given bit depth.
func maxValue(bitDepth int) (float64, bool) {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16, true
	case bitsPerSample24:
		return maxInt24, true
	case bitsPerSample32:
		return maxInt32, true
	default:
		return 0, false
	}
}
