// Package spectrum turns multitone recordings into frequency/amplitude series.
//
// It reproduces the FFT view an audio analyzer exports: one windowed
// real FFT per channel, amplitudes in dBFS where a full-scale sine reads
// 0 dBFS. The resulting series feed the same peak selection as CSV exports.
package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/window"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"

	multitone "github.com/tphakala/go-multitone-check"
)

// Spectrum constants.
const (
	// Amplitudes below this floor are clamped (silence, exact zeros).
	floorDBFS = -300.0

	// dB conversion for amplitude ratios.
	dbScale = 20.0

	// A real FFT of size N has N/2 + 1 unique bins.
	hermitianDivisor = 2

	// Single-sided spectrum folds the negative frequencies into the positive ones.
	singleSidedGain = 2.0

	// Shortest frame a window can be generated for.
	minFrame = 2
)

// Window selects the analysis window.
type Window string

const (
	WindowHann     Window = "hann"
	WindowFlatTop  Window = "flattop"
	WindowBlackman Window = "blackman"
	WindowRect     Window = "rect"
)

// ErrInvalidOptions indicates unusable analysis options.
var ErrInvalidOptions = errors.New("invalid spectrum options")

// Options controls the analysis.
type Options struct {
	// FFTSize is the transform length. Frames shorter than this are zero padded.
	FFTSize int

	// Window is the analysis window; empty means Hann.
	Window Window

	// Offset is the first frame analyzed, in samples.
	Offset int
}

func (o *Options) validate() error {
	if o.FFTSize < 2 {
		return fmt.Errorf("%w: FFT size must be at least 2, got %d", ErrInvalidOptions, o.FFTSize)
	}
	if o.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", ErrInvalidOptions)
	}
	if _, err := windowFunc(o.Window); err != nil {
		return err
	}
	return nil
}

func windowFunc(w Window) (func(int) []float64, error) {
	switch w {
	case "", WindowHann:
		return window.Hann, nil
	case WindowFlatTop:
		return window.FlatTop, nil
	case WindowBlackman:
		return window.Blackman, nil
	case WindowRect:
		return window.Rectangular, nil
	default:
		return nil, fmt.Errorf("%w: unknown window %q", ErrInvalidOptions, w)
	}
}

// Analyzer computes magnitude spectra for one FFT size. It reuses its FFT
// plan and is not safe for concurrent use.
type Analyzer struct {
	opts Options
	fft  *fourier.FFT
	win  func(int) []float64

	frame  []float64
	coeffs []complex128
}

// NewAnalyzer creates an analyzer for opts.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	win, _ := windowFunc(opts.Window)
	return &Analyzer{
		opts:   opts,
		fft:    fourier.NewFFT(opts.FFTSize),
		win:    win,
		frame:  make([]float64, opts.FFTSize),
		coeffs: make([]complex128, opts.FFTSize/hermitianDivisor+1),
	}, nil
}

// Series computes the single-sided dBFS spectrum of samples taken at
// sampleRate. Bin k is reported at k*sampleRate/FFTSize Hz.
func (a *Analyzer) Series(samples []float64, sampleRate float64) (multitone.Series, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive", ErrInvalidOptions)
	}
	if a.opts.Offset >= len(samples) {
		return nil, fmt.Errorf("%w: offset %d beyond %d samples", ErrNoSamples, a.opts.Offset, len(samples))
	}

	n := min(a.opts.FFTSize, len(samples)-a.opts.Offset)
	if n < minFrame {
		return nil, fmt.Errorf("%w: need at least %d samples, got %d", ErrNoSamples, minFrame, n)
	}
	clear(a.frame)
	copy(a.frame, samples[a.opts.Offset:a.opts.Offset+n])

	coeffs := a.win(n)
	for i := range n {
		a.frame[i] *= coeffs[i]
	}
	gain := f64.Sum(coeffs)
	if gain == 0 {
		return nil, fmt.Errorf("%w: window has zero gain", ErrInvalidOptions)
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)

	mags := make([]float64, len(a.coeffs))
	for k, c := range a.coeffs {
		mags[k] = cmplx.Abs(c)
	}
	// Coherent gain correction: a sine of peak amplitude A reads A.
	f64.Scale(mags, mags, singleSidedGain/gain)
	// DC and Nyquist have no mirrored bin.
	mags[0] /= singleSidedGain
	if a.opts.FFTSize%2 == 0 {
		mags[len(mags)-1] /= singleSidedGain
	}

	binHz := multitone.BinWidth(sampleRate, a.opts.FFTSize)
	freqs := make([]float64, len(mags))
	amps := make([]float64, len(mags))
	for k, m := range mags {
		freqs[k] = float64(k) * binHz
		amps[k] = toDBFS(m)
	}

	return multitone.SeriesFromFloats(freqs, amps), nil
}

// Clip computes one series per channel of clip.
func (a *Analyzer) Clip(clip *Clip) ([]multitone.Series, error) {
	out := make([]multitone.Series, len(clip.Channels))
	for ch, samples := range clip.Channels {
		s, err := a.Series(samples, float64(clip.SampleRate))
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch+1, err)
		}
		out[ch] = s
	}
	return out, nil
}

// AnalyzeFile decodes the WAV file at path and returns one series per channel.
func AnalyzeFile(path string, opts Options) (*Clip, []multitone.Series, error) {
	a, err := NewAnalyzer(opts)
	if err != nil {
		return nil, nil, err
	}
	clip, err := ReadWAV(path)
	if err != nil {
		return nil, nil, err
	}
	series, err := a.Clip(clip)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, series, nil
}

func toDBFS(mag float64) float64 {
	if mag <= 0 {
		return floorDBFS
	}
	return max(dbScale*math.Log10(mag), floorDBFS)
}
