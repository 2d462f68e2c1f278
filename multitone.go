package multitone

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sample is one point of an exported spectrum: a frequency in Hz and an
// amplitude in dBFS.
type Sample struct {
	Freq      float64
	Amplitude float64
}

// finite reports whether both fields are finite numbers.
func (s Sample) finite() bool {
	return !math.IsNaN(s.Freq) && !math.IsInf(s.Freq, 0) &&
		!math.IsNaN(s.Amplitude) && !math.IsInf(s.Amplitude, 0)
}

// Series is a frequency/amplitude series for one channel.
// Series built with SeriesFromStrings or SeriesFromFloats only hold finite samples.
type Series []Sample

// PeakSet is the spacing-constrained, amplitude-ranked selection produced by
// SelectPeaks. Members are ordered by rank (strongest first).
type PeakSet []Sample

// Frequencies returns the peak frequencies in set order.
func (p PeakSet) Frequencies() []float64 {
	out := make([]float64, len(p))
	for i, s := range p {
		out[i] = s.Freq
	}
	return out
}

// Amplitudes returns the peak amplitudes in set order.
func (p PeakSet) Amplitudes() []float64 {
	out := make([]float64, len(p))
	for i, s := range p {
		out[i] = s.Amplitude
	}
	return out
}

// Band is an inclusive frequency range in Hz.
type Band struct {
	Low  float64 `koanf:"low" json:"low"`
	High float64 `koanf:"high" json:"high"`
}

// Contains reports whether f lies within the band, bounds included.
func (b Band) Contains(f float64) bool {
	return f >= b.Low && f <= b.High
}

// Validate checks that the band is well formed.
func (b Band) Validate() error {
	if math.IsNaN(b.Low) || math.IsNaN(b.High) || math.IsInf(b.Low, 0) || math.IsInf(b.High, 0) {
		return fmt.Errorf("%w: band bounds must be finite", ErrInvalidArgument)
	}
	if b.Low >= b.High {
		return fmt.Errorf("%w: band low %.3f must be below high %.3f", ErrInvalidArgument, b.Low, b.High)
	}
	return nil
}

func (b Band) String() string {
	return fmt.Sprintf("[%g, %g] Hz", b.Low, b.High)
}

// Common errors returned by the checker.
var (
	// ErrInvalidArgument indicates a malformed parameter (spacing, cap, band,
	// bin width, tolerance). It is reported before any computation starts.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIndexOutOfRange indicates the designated peak index does not exist in
	// the selected peak set. The band, spacing or cap could not produce the
	// expected number of peaks.
	ErrIndexOutOfRange = errors.New("designated peak index out of range")

	// ErrShortPeakSet indicates fewer peaks than the configured cap were found
	// while the configuration requires a full set.
	ErrShortPeakSet = errors.New("peak set shorter than cap")

	// ErrMissingColumns indicates the input table has no column pair for a channel.
	ErrMissingColumns = errors.New("missing channel columns")
)

// SeriesFromStrings builds a series from raw frequency and amplitude cells.
// Cells that do not parse as finite numbers drop their row. When the columns
// differ in length the extra cells are ignored.
func SeriesFromStrings(freqs, amps []string) Series {
	n := min(len(freqs), len(amps))
	out := make(Series, 0, n)
	for i := range n {
		f, ok := parseCell(freqs[i])
		if !ok {
			continue
		}
		a, ok := parseCell(amps[i])
		if !ok {
			continue
		}
		out = append(out, Sample{Freq: f, Amplitude: a})
	}
	return out
}

// SeriesFromFloats builds a series from parallel frequency and amplitude
// slices, dropping rows holding NaN or Inf.
func SeriesFromFloats(freqs, amps []float64) Series {
	n := min(len(freqs), len(amps))
	out := make(Series, 0, n)
	for i := range n {
		s := Sample{Freq: freqs[i], Amplitude: amps[i]}
		if s.finite() {
			out = append(out, s)
		}
	}
	return out
}

// parseCell coerces one CSV cell to a finite float.
func parseCell(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
