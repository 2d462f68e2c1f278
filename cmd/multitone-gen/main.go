// Command multitone-gen writes a multitone WAV test file.
//
// Usage:
//
//	multitone-gen -rate 48000 -tones 32 out.wav
//	multitone-gen -rate 96000 -tones 64 -high 40000 -fft 1048576 out.wav
//
// Tones are spaced logarithmically between -low and -high. With -fft set,
// each tone is moved to the nearest bin center of that FFT size so the
// designated-bin check of multitone-check sees no leakage.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	multitone "github.com/tphakala/go-multitone-check"
)

const (
	// CLI defaults
	defaultRate     = 48000
	defaultBits     = 24
	defaultChannels = 2
	defaultTones    = 32
	defaultLowHz    = 20.0
	defaultHighHz   = 20000.0
	defaultDuration = 5 * time.Second
	headroom        = 0.9 // Peak of the summed tones at equal phase
	minRequiredArgs = 1

	// WAV format constants
	pcmFormat       = 1
	chunkFrames     = 65536
	maxInt16        = 32767.0
	maxInt24        = 8388607.0
	bitsPerSample16 = 16
	bitsPerSample24 = 24

	dbScale = 20.0
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rate := flag.Int("rate", defaultRate, "Sample rate in Hz")
	bits := flag.Int("bits", defaultBits, "Bit depth: 16 or 24")
	channels := flag.Int("channels", defaultChannels, "Number of channels")
	tones := flag.Int("tones", defaultTones, "Number of tones")
	low := flag.Float64("low", defaultLowHz, "Lowest tone in Hz")
	high := flag.Float64("high", defaultHighHz, "Highest tone in Hz")
	duration := flag.Duration("duration", defaultDuration, "Length of the file")
	fftSize := flag.Int("fft", 0, "Snap tones to bin centers of this FFT size (0 disables)")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] output.wav\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}

	plan, err := planTones(*tones, *low, *high, float64(*rate), *fftSize)
	if err != nil {
		return err
	}

	frames := int(duration.Seconds() * float64(*rate))
	if err := writeMultitone(args[0], plan, *rate, *bits, *channels, frames); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", args[0])
	fmt.Printf("  %d Hz, %d-bit, %d channels, %.2fs\n", *rate, *bits, *channels, duration.Seconds())
	fmt.Printf("  %d tones %.1f-%.1f Hz at %.2f dBFS each\n",
		len(plan), plan[0].freq, plan[len(plan)-1].freq, dbScale*math.Log10(plan[0].peak))
	return nil
}

type tone struct {
	freq float64
	peak float64
}

// planTones spaces n tones logarithmically over [low, high]. Every tone gets
// the same level so the sum stays below full scale.
func planTones(n int, low, high, rate float64, fftSize int) ([]tone, error) {
	if n < 1 {
		return nil, errors.New("need at least one tone")
	}
	if low <= 0 || high <= low {
		return nil, fmt.Errorf("invalid tone range %.1f-%.1f Hz", low, high)
	}
	if high >= rate/2 {
		return nil, fmt.Errorf("highest tone %.1f Hz is not below Nyquist (%.1f Hz)", high, rate/2)
	}

	peak := headroom / float64(n)
	out := make([]tone, n)
	ratio := 1.0
	if n > 1 {
		ratio = math.Pow(high/low, 1/float64(n-1))
	}
	f := low
	for i := range out {
		freq := f
		if fftSize > 0 {
			binHz := multitone.BinWidth(rate, fftSize)
			freq = float64(multitone.BinIndex(freq, binHz)) * binHz
		}
		out[i] = tone{freq: freq, peak: peak}
		f *= ratio
	}
	return out, nil
}

// writeMultitone renders the tones into every channel of a PCM WAV file.
func writeMultitone(path string, plan []tone, rate, bits, channels, frames int) (err error) {
	var maxVal float64
	switch bits {
	case bitsPerSample16:
		maxVal = maxInt16
	case bitsPerSample24:
		maxVal = maxInt24
	default:
		return fmt.Errorf("unsupported bit depth %d", bits)
	}
	if channels < 1 {
		return fmt.Errorf("channels must be at least 1")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	enc := wav.NewEncoder(f, rate, bits, channels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		SourceBitDepth: bits,
		Data:           make([]int, chunkFrames*channels),
	}

	omegas := make([]float64, len(plan))
	for i, t := range plan {
		omegas[i] = 2 * math.Pi * t.freq / float64(rate)
	}

	for start := 0; start < frames; start += chunkFrames {
		n := min(chunkFrames, frames-start)
		buf.Data = buf.Data[:n*channels]
		for i := range n {
			idx := float64(start + i)
			var v float64
			for k, t := range plan {
				v += t.peak * math.Sin(omegas[k]*idx)
			}
			s := int(math.Round(v * maxVal))
			for ch := range channels {
				buf.Data[i*channels+ch] = s
			}
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("failed to write audio data: %w", err)
		}
	}

	return enc.Close()
}
