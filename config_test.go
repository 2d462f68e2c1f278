package multitone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProfiles(t *testing.T) {
	profiles := BuiltinProfiles()
	require.Len(t, profiles, 2)

	for name, p := range profiles {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, name, p.Name)
			require.NoError(t, p.Validate())
			assert.Equal(t, 8, p.Channels)
			assert.Equal(t, 4, p.HeaderRows)
			assert.Equal(t, LayoutColumns, p.Layout)
			assert.Equal(t, 50.0, p.MinSpacingHz)
			assert.Equal(t, 20, p.DesignatedIndex)
			assert.Equal(t, 100, p.BinTolerance)
			assert.Equal(t, 10.0, p.PassThresholdDB)
			assert.Equal(t, 1<<20, p.FFTSize)
		})
	}
}

func TestProfile48k(t *testing.T) {
	p := Profile48k()
	assert.Equal(t, Band{Low: 15, High: 22300}, p.Band)
	assert.Nil(t, p.StatsBand)
	assert.Equal(t, 32, p.Cap)
	assert.Equal(t, []int{121651, 120739}, p.ExpectedBins)
	assert.InDelta(t, 0.0457763671875, p.BinWidthHz(), 1e-15)
}

func TestProfile96k(t *testing.T) {
	p := Profile96k()
	assert.Equal(t, Band{Low: 20, High: 45000}, p.Band)
	require.NotNil(t, p.StatsBand)
	assert.Equal(t, Band{Low: 20, High: 40000}, *p.StatsBand)
	assert.Equal(t, 64, p.Cap)
	assert.Equal(t, []int{60826, 60370}, p.ExpectedBins)
}

func TestProfileConfig(t *testing.T) {
	p := Profile96k()
	cfg := p.Config()

	assert.Equal(t, p.Band, cfg.Band)
	assert.Equal(t, p.Cap, cfg.Cap)
	assert.Equal(t, p.BinTolerance, cfg.Tolerance)
	assert.Equal(t, p.BinWidthHz(), cfg.BinWidthHz)
	require.NoError(t, cfg.Validate())

	// The derived config does not alias the profile.
	cfg.ExpectedBins[0] = 1
	cfg.StatsBand.High = 1
	assert.Equal(t, 60826, p.ExpectedBins[0])
	assert.Equal(t, 40000.0, p.StatsBand.High)
}

func TestProfileValidate(t *testing.T) {
	mutate := map[string]func(*Profile){
		"zero sample rate":  func(p *Profile) { p.SampleRate = 0 },
		"zero fft size":     func(p *Profile) { p.FFTSize = 0 },
		"no channels":       func(p *Profile) { p.Channels = 0 },
		"too many channels": func(p *Profile) { p.Channels = maxChannels + 1 },
		"negative header":   func(p *Profile) { p.HeaderRows = -1 },
		"unknown layout":    func(p *Profile) { p.Layout = "diagonal" },
		"inverted band":     func(p *Profile) { p.Band = Band{Low: 100, High: 10} },
		"zero cap":          func(p *Profile) { p.Cap = 0 },
		"negative spacing":  func(p *Profile) { p.MinSpacingHz = -1 },
		"negative index":    func(p *Profile) { p.DesignatedIndex = -1 },
	}

	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			p := Profile48k()
			fn(&p)
			require.ErrorIs(t, p.Validate(), ErrInvalidArgument)
		})
	}
}

func TestSeriesFromStrings(t *testing.T) {
	freqs := []string{"100", " 120 ", "abc", "", "1000", "2000", "3000"}
	amps := []string{"-10", "-5", "-1", "-2", "NaN", "-20"}

	s := SeriesFromStrings(freqs, amps)
	assert.Equal(t, Series{{100, -10}, {120, -5}, {2000, -20}}, s)
}

func TestSeriesFromFloats(t *testing.T) {
	s := SeriesFromFloats([]float64{1, 2, 3}, []float64{-1, -2})
	assert.Equal(t, Series{{1, -1}, {2, -2}}, s)
}

func TestBand(t *testing.T) {
	b := Band{Low: 15, High: 22300}
	assert.True(t, b.Contains(15))
	assert.True(t, b.Contains(22300))
	assert.False(t, b.Contains(14.9))
	assert.Equal(t, "[15, 22300] Hz", b.String())
}
