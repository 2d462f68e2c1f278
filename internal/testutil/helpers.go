// Package testutil provides reusable test helpers for the multitone checker.
package testutil

import (
	"math"
	"os"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	multitone "github.com/tphakala/go-multitone-check"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	DBTolerance      = 0.01
)

// WAV fixture constants
const (
	pcmFormat = 1 // WAVE_FORMAT_PCM
	maxInt16  = 32767.0
	maxInt24  = 8388607.0
)

// Tone is one component of a synthetic multitone signal.
type Tone struct {
	Freq float64 // Hz
	Peak float64 // linear peak amplitude, 1.0 = full scale
}

// DBFS returns the tone level in dBFS.
func (t Tone) DBFS() float64 {
	return 20 * math.Log10(t.Peak)
}

// Multitone generates n samples of the sum of tones at sampleRate.
func Multitone(tones []Tone, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for _, tone := range tones {
		w := 2 * math.Pi * tone.Freq / sampleRate
		for i := range n {
			out[i] += tone.Peak * math.Sin(w*float64(i))
		}
	}
	return out
}

// CombSeries builds an exported-spectrum style series: bins points spaced
// binHz apart at floorDBFS, with each tone's level written into its nearest bin.
func CombSeries(tones []Tone, binHz, floorDBFS float64, bins int) multitone.Series {
	s := make(multitone.Series, bins)
	for k := range s {
		s[k] = multitone.Sample{Freq: float64(k) * binHz, Amplitude: floorDBFS}
	}
	for _, tone := range tones {
		k := int(math.Round(tone.Freq / binHz))
		if k >= 0 && k < bins {
			s[k].Amplitude = tone.DBFS()
		}
	}
	return s
}

// WriteWAV writes channels as an integer PCM WAV file at path.
func WriteWAV(t *testing.T, path string, sampleRate, bitDepth int, channels [][]float64) {
	t.Helper()
	require.NotEmpty(t, channels)

	maxVal := maxInt16
	if bitDepth == 24 {
		maxVal = maxInt24
	}

	frames := len(channels[0])
	data := make([]int, frames*len(channels))
	for i := range frames {
		for ch := range channels {
			v := math.Max(-1, math.Min(1, channels[ch][i]))
			data[i*len(channels)+ch] = int(math.Round(v * maxVal))
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, len(channels), pcmFormat)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: len(channels), SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

// AssertMinSpacing verifies that every pair of peaks is at least spacing Hz apart.
func AssertMinSpacing(t *testing.T, peaks multitone.PeakSet, spacing float64) bool {
	t.Helper()
	for i := range peaks {
		for j := i + 1; j < len(peaks); j++ {
			d := math.Abs(peaks[i].Freq - peaks[j].Freq)
			if d < spacing {
				return assert.Fail(t, "peaks too close",
					"peaks %d (%.3f Hz) and %d (%.3f Hz) are %.3f Hz apart, want >= %.3f",
					i, peaks[i].Freq, j, peaks[j].Freq, d, spacing)
			}
		}
	}
	return true
}

// AssertRankedByAmplitude verifies that peaks are ordered strongest first.
func AssertRankedByAmplitude(t *testing.T, peaks multitone.PeakSet) bool {
	t.Helper()
	for i := 1; i < len(peaks); i++ {
		if peaks[i].Amplitude > peaks[i-1].Amplitude {
			return assert.Fail(t, "peaks not ranked",
				"peak %d (%.3f dBFS) is stronger than peak %d (%.3f dBFS)",
				i, peaks[i].Amplitude, i-1, peaks[i-1].Amplitude)
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}
