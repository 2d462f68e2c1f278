package multitone

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binWidth48k is the bin spacing of the 48 kHz profile.
const binWidth48k = sampleRate48k / defaultFFTSize

func opts48k() ValidateOptions {
	return ValidateOptions{
		SortByFrequency: true,
		DesignatedIndex: 0,
		ExpectedBins:    []int{expectedBin48kA, expectedBin48kB},
		Tolerance:       defaultBinTolerance,
		BinWidthHz:      binWidth48k,
		PassThresholdDB: defaultPassThresholdDB,
	}
}

// atBin returns a single-peak set whose frequency maps to bin.
func atBin(bin int) PeakSet {
	return PeakSet{{Freq: float64(bin) * binWidth48k, Amplitude: -20}}
}

func TestValidate_Deviation(t *testing.T) {
	peaks := PeakSet{{120, -5}, {1000, -20}}

	res, err := Validate(peaks, opts48k())
	require.NoError(t, err)
	assert.Equal(t, -5.0, res.MaxAmplitude)
	assert.Equal(t, -20.0, res.MinAmplitude)
	assert.Equal(t, 15.0, res.Deviation)
	assert.False(t, res.DeviationPass)
	assert.Equal(t, 2, res.PeakCount)
	assert.Equal(t, 2, res.StatsCount)
}

func TestValidate_ThresholdInclusive(t *testing.T) {
	tests := []struct {
		name string
		low  float64
		pass bool
	}{
		{"below", -9.5, true},
		{"at threshold", -10, true},
		{"above", -10.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peaks := PeakSet{{1000, 0}, {2000, tt.low}}
			res, err := Validate(peaks, opts48k())
			require.NoError(t, err)
			assert.Equal(t, tt.pass, res.DeviationPass)
		})
	}
}

func TestValidate_BinMatch(t *testing.T) {
	tests := []struct {
		name  string
		bin   int
		match bool
	}{
		{"near first", 121700, true},
		{"far from both", 121900, false},
		{"near second", 120800, true},
		{"exact", expectedBin48kB, true},
		{"at tolerance", expectedBin48kA + defaultBinTolerance, true},
		{"past tolerance", expectedBin48kA + defaultBinTolerance + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Validate(atBin(tt.bin), opts48k())
			require.NoError(t, err)
			assert.Equal(t, tt.bin, res.DesignatedBin)
			assert.True(t, res.BinChecked)
			assert.Equal(t, tt.match, res.BinMatch)
		})
	}
}

func TestValidate_EmptyPeakSet(t *testing.T) {
	res, err := Validate(nil, opts48k())
	require.NoError(t, err)

	assert.True(t, math.IsNaN(res.MaxAmplitude))
	assert.True(t, math.IsNaN(res.MinAmplitude))
	assert.True(t, math.IsNaN(res.Deviation))
	assert.True(t, math.IsNaN(res.DesignatedFreq))
	assert.Equal(t, -1, res.DesignatedBin)
	assert.False(t, res.DeviationPass)
	assert.False(t, res.BinMatch)
	assert.True(t, res.Absent())
	assert.False(t, res.Passed())
}

func TestValidate_IndexOutOfRange(t *testing.T) {
	opts := opts48k()
	opts.DesignatedIndex = defaultDesignatedIndex
	peaks := PeakSet{{1000, -1}, {2000, -2}, {3000, -3}}

	res, err := Validate(peaks, opts)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	// Amplitude statistics are still reported.
	assert.Equal(t, 2.0, res.Deviation)
	assert.True(t, res.DeviationPass)
	assert.Equal(t, -1, res.DesignatedBin)
	assert.False(t, res.BinMatch)
}

func TestValidate_SortByFrequency(t *testing.T) {
	// Rank order: 3000, 1000, 2000.
	peaks := PeakSet{{3000, -1}, {1000, -2}, {2000, -3}}

	opts := opts48k()
	opts.ExpectedBins = nil
	opts.DesignatedIndex = 1

	opts.SortByFrequency = true
	res, err := Validate(peaks, opts)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, res.DesignatedFreq)

	opts.SortByFrequency = false
	res, err = Validate(peaks, opts)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.DesignatedFreq)

	// The caller's set keeps its rank order.
	assert.Equal(t, 3000.0, peaks[0].Freq)
}

func TestValidate_StatsBand(t *testing.T) {
	peaks := PeakSet{{1000, -10}, {30000, -40}, {44000, -60}}
	opts := opts48k()
	opts.ExpectedBins = nil
	opts.StatsBand = &Band{Low: 20, High: 40000}

	res, err := Validate(peaks, opts)
	require.NoError(t, err)
	assert.Equal(t, 30.0, res.Deviation)
	assert.Equal(t, 2, res.StatsCount)
	assert.Equal(t, 3, res.PeakCount)
}

func TestValidate_EmptyStatsWindow(t *testing.T) {
	peaks := PeakSet{{42000, -10}, {44000, -12}}
	opts := opts48k()
	opts.ExpectedBins = nil
	opts.StatsBand = &Band{Low: 20, High: 40000}

	res, err := Validate(peaks, opts)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(res.Deviation))
	assert.False(t, res.DeviationPass)
	assert.Equal(t, 0, res.StatsCount)
	assert.Equal(t, 42000.0, res.DesignatedFreq, "designated tone is still mapped")
	assert.False(t, res.Passed())
}

func TestValidate_NoExpectedBins(t *testing.T) {
	opts := opts48k()
	opts.ExpectedBins = nil

	res, err := Validate(atBin(5000), opts)
	require.NoError(t, err)
	assert.Equal(t, 5000, res.DesignatedBin)
	assert.False(t, res.BinChecked)
	assert.False(t, res.BinMatch)
	assert.True(t, res.Passed())
}

func TestValidate_InvalidOptions(t *testing.T) {
	mutate := map[string]func(*ValidateOptions){
		"negative index":     func(o *ValidateOptions) { o.DesignatedIndex = -1 },
		"negative tolerance": func(o *ValidateOptions) { o.Tolerance = -1 },
		"zero bin width":     func(o *ValidateOptions) { o.BinWidthHz = 0 },
		"NaN bin width":      func(o *ValidateOptions) { o.BinWidthHz = math.NaN() },
		"NaN threshold":      func(o *ValidateOptions) { o.PassThresholdDB = math.NaN() },
		"bad stats band":     func(o *ValidateOptions) { o.StatsBand = &Band{Low: 10, High: 5} },
	}

	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			opts := opts48k()
			fn(&opts)
			_, err := Validate(PeakSet{{1000, -1}}, opts)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestBinIndex(t *testing.T) {
	assert.Equal(t, 0, BinIndex(0, 1))
	assert.Equal(t, 3, BinIndex(2.5, 1), "halfway rounds away from zero")
	assert.Equal(t, 2, BinIndex(2.49, 1))
	assert.Equal(t, 4, BinIndex(4.5, 1))
	assert.Equal(t, -3, BinIndex(-2.5, 1))
	assert.Equal(t, 21845, BinIndex(1000, binWidth48k))
}

func TestBinWidth(t *testing.T) {
	assert.InDelta(t, 0.0457763671875, BinWidth(48000, 1<<20), 1e-15)
	assert.InDelta(t, 0.091552734375, BinWidth(96000, 1<<20), 1e-15)
	assert.Zero(t, BinWidth(48000, 0))
}

func TestNearestBinDistance(t *testing.T) {
	dist, nearest, ok := NearestBinDistance(121900, []int{121651, 120739})
	require.True(t, ok)
	assert.Equal(t, 249, dist)
	assert.Equal(t, 121651, nearest)

	dist, nearest, ok = NearestBinDistance(120700, []int{121651, 120739})
	require.True(t, ok)
	assert.Equal(t, 39, dist)
	assert.Equal(t, 120739, nearest)

	_, _, ok = NearestBinDistance(1, nil)
	assert.False(t, ok)
}
