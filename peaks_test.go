package multitone

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var band48k = Band{Low: band48kLow, High: band48kHigh}

func TestSelectPeaks_DropsCloseNeighbour(t *testing.T) {
	series := Series{{100, -10}, {120, -5}, {1000, -20}}

	peaks, err := SelectPeaks(series, band48k, 50, 2)
	require.NoError(t, err)
	assert.Equal(t, PeakSet{{120, -5}, {1000, -20}}, peaks)
}

func TestSelectPeaks_BandBoundsInclusive(t *testing.T) {
	series := Series{{15, -3}, {22300, -4}, {14.999, 0}, {22300.001, 0}}

	peaks, err := SelectPeaks(series, band48k, 50, 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{15, 22300}, peaks.Frequencies())
}

func TestSelectPeaks_ExactSpacingAccepted(t *testing.T) {
	series := Series{{1000, -1}, {1050, -2}, {1049.9, -1.5}}

	peaks, err := SelectPeaks(series, band48k, 50, 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 1050}, peaks.Frequencies())
}

func TestSelectPeaks_StopsAtCap(t *testing.T) {
	series := make(Series, 0, 100)
	for i := range 100 {
		series = append(series, Sample{Freq: 100 + float64(i)*100, Amplitude: -float64(i)})
	}

	peaks, err := SelectPeaks(series, band48k, 50, 32)
	require.NoError(t, err)
	require.Len(t, peaks, 32)
	assert.Equal(t, 100.0, peaks[0].Freq)
	assert.Equal(t, 3200.0, peaks[31].Freq)
}

func TestSelectPeaks_EmptyWhenNothingInBand(t *testing.T) {
	series := Series{{5, -1}, {30000, -2}}

	peaks, err := SelectPeaks(series, band48k, 50, 32)
	require.NoError(t, err)
	assert.Empty(t, peaks)

	peaks, err = SelectPeaks(nil, band48k, 50, 32)
	require.NoError(t, err)
	assert.Empty(t, peaks)
}

func TestSelectPeaks_SkipsNonFinite(t *testing.T) {
	series := Series{{1000, math.NaN()}, {math.Inf(1), 0}, {2000, -3}}

	peaks, err := SelectPeaks(series, band48k, 50, 32)
	require.NoError(t, err)
	assert.Equal(t, PeakSet{{2000, -3}}, peaks)
}

func TestSelectPeaks_TieBreakByFrequency(t *testing.T) {
	a := Series{{3000, -6}, {1000, -6}, {1020, -6}, {2000, -6}}
	b := slices.Clone(a)
	slices.Reverse(b)

	pa, err := SelectPeaks(a, band48k, 50, 10)
	require.NoError(t, err)
	pb, err := SelectPeaks(b, band48k, 50, 10)
	require.NoError(t, err)

	assert.Equal(t, []float64{1000, 2000, 3000}, pa.Frequencies())
	assert.Equal(t, pa, pb, "row order must not change the selection")
}

func TestSelectPeaks_InvalidArguments(t *testing.T) {
	series := Series{{1000, -1}}

	tests := []struct {
		name    string
		band    Band
		spacing float64
		limit   int
	}{
		{"zero spacing", band48k, 0, 10},
		{"negative spacing", band48k, -5, 10},
		{"NaN spacing", band48k, math.NaN(), 10},
		{"zero cap", band48k, 50, 0},
		{"negative cap", band48k, 50, -1},
		{"inverted band", Band{Low: 1000, High: 10}, 50, 10},
		{"empty band", Band{Low: 1000, High: 1000}, 50, 10},
		{"NaN band", Band{Low: math.NaN(), High: 1000}, 50, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SelectPeaks(series, tt.band, tt.spacing, tt.limit)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestSelectPeaks_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for trial := range 50 {
		n := 50 + rng.IntN(500)
		series := make(Series, n)
		for i := range series {
			series[i] = Sample{
				Freq:      rng.Float64() * 24000,
				Amplitude: -rng.Float64() * 120,
			}
		}
		spacing := 10 + rng.Float64()*200
		limit := 1 + rng.IntN(64)

		peaks, err := SelectPeaks(series, band48k, spacing, limit)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(peaks), limit, "trial %d", trial)
		for _, p := range peaks {
			assert.True(t, band48k.Contains(p.Freq), "trial %d: %v outside band", trial, p)
			assert.Contains(t, series, p)
		}
		for i := range peaks {
			for j := i + 1; j < len(peaks); j++ {
				assert.GreaterOrEqual(t, math.Abs(peaks[i].Freq-peaks[j].Freq), spacing, "trial %d", trial)
			}
		}
		for i := 1; i < len(peaks); i++ {
			assert.GreaterOrEqual(t, peaks[i-1].Amplitude, peaks[i].Amplitude, "trial %d", trial)
		}

		again, err := SelectPeaks(Series(peaks), band48k, spacing, limit)
		require.NoError(t, err)
		assert.Equal(t, peaks, again, "trial %d: selection is not idempotent", trial)
	}
}

func TestSelectPeaks_DoesNotModifyInput(t *testing.T) {
	series := Series{{3000, -9}, {1000, -1}, {2000, -5}}
	orig := slices.Clone(series)

	_, err := SelectPeaks(series, band48k, 50, 2)
	require.NoError(t, err)
	assert.Equal(t, orig, series)
}

func TestPeakSetAccessors(t *testing.T) {
	p := PeakSet{{120, -5}, {1000, -20}}
	assert.Equal(t, []float64{120, 1000}, p.Frequencies())
	assert.Equal(t, []float64{-5, -20}, p.Amplitudes())
}
