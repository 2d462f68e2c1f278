package multitone

import (
	"fmt"
	"math"
	"slices"
)

// Config holds the per-channel analysis parameters used by Run.
type Config struct {
	// Band limits peak selection.
	Band Band

	// MinSpacingHz is the minimum distance between two selected peaks.
	MinSpacingHz float64

	// Cap is the maximum number of peaks selected per channel.
	Cap int

	// RequireFullSet reports a channel as an error when fewer than Cap peaks
	// were found.
	RequireFullSet bool

	// Validation parameters, see ValidateOptions.
	SortByFrequency bool
	DesignatedIndex int
	ExpectedBins    []int
	Tolerance       int
	BinWidthHz      float64
	PassThresholdDB float64
	StatsBand       *Band
}

// Validate checks the configuration before any channel work starts.
func (c *Config) Validate() error {
	if err := c.Band.Validate(); err != nil {
		return fmt.Errorf("selection band: %w", err)
	}
	if math.IsNaN(c.MinSpacingHz) || math.IsInf(c.MinSpacingHz, 0) || c.MinSpacingHz <= 0 {
		return fmt.Errorf("%w: minimum spacing must be positive", ErrInvalidArgument)
	}
	if c.Cap <= 0 {
		return fmt.Errorf("%w: peak cap must be positive", ErrInvalidArgument)
	}
	opts := c.validateOptions()
	return opts.Validate()
}

func (c *Config) validateOptions() ValidateOptions {
	return ValidateOptions{
		SortByFrequency: c.SortByFrequency,
		DesignatedIndex: c.DesignatedIndex,
		ExpectedBins:    c.ExpectedBins,
		Tolerance:       c.Tolerance,
		BinWidthHz:      c.BinWidthHz,
		PassThresholdDB: c.PassThresholdDB,
		StatsBand:       c.StatsBand,
	}
}

// Layout describes how channel series are arranged in the exported table.
type Layout string

const (
	// LayoutColumns stores each channel as a (frequency, amplitude) column pair.
	LayoutColumns Layout = "columns"

	// LayoutRows stores each channel as a (frequency, amplitude) row pair.
	LayoutRows Layout = "rows"
)

// Profile is the full description of one sample-rate test setup: the
// exported table shape, the FFT used by the analyzer and the pass criteria.
type Profile struct {
	Name       string  `koanf:"name" json:"name"`
	SampleRate float64 `koanf:"sample_rate" json:"sample_rate"`
	FFTSize    int     `koanf:"fft_size" json:"fft_size"`

	Channels   int    `koanf:"channels" json:"channels"`
	HeaderRows int    `koanf:"header_rows" json:"header_rows"`
	Layout     Layout `koanf:"layout" json:"layout"`

	Band           Band    `koanf:"band" json:"band"`
	StatsBand      *Band   `koanf:"stats_band" json:"stats_band,omitempty"`
	MinSpacingHz   float64 `koanf:"min_spacing_hz" json:"min_spacing_hz"`
	Cap            int     `koanf:"cap" json:"cap"`
	RequireFullSet bool    `koanf:"require_full_set" json:"require_full_set"`

	SortByFrequency bool    `koanf:"sort_by_frequency" json:"sort_by_frequency"`
	DesignatedIndex int     `koanf:"designated_index" json:"designated_index"`
	ExpectedBins    []int   `koanf:"expected_bins" json:"expected_bins"`
	BinTolerance    int     `koanf:"bin_tolerance" json:"bin_tolerance"`
	PassThresholdDB float64 `koanf:"pass_threshold_db" json:"pass_threshold_db"`
}

// Validate checks the profile fields that Config does not cover.
func (p *Profile) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: profile %q: sample rate must be positive", ErrInvalidArgument, p.Name)
	}
	if p.FFTSize <= 0 {
		return fmt.Errorf("%w: profile %q: FFT size must be positive", ErrInvalidArgument, p.Name)
	}
	if p.Channels < 1 || p.Channels > maxChannels {
		return fmt.Errorf("%w: profile %q: channels must be 1-%d", ErrInvalidArgument, p.Name, maxChannels)
	}
	if p.HeaderRows < 0 {
		return fmt.Errorf("%w: profile %q: header rows must not be negative", ErrInvalidArgument, p.Name)
	}
	switch p.Layout {
	case LayoutColumns, LayoutRows, "":
	default:
		return fmt.Errorf("%w: profile %q: unknown layout %q", ErrInvalidArgument, p.Name, p.Layout)
	}
	cfg := p.Config()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}

// BinWidthHz returns the FFT bin spacing of the profile.
func (p *Profile) BinWidthHz() float64 {
	return BinWidth(p.SampleRate, p.FFTSize)
}

// Config derives the analysis configuration from the profile.
func (p *Profile) Config() Config {
	var stats *Band
	if p.StatsBand != nil {
		b := *p.StatsBand
		stats = &b
	}
	return Config{
		Band:            p.Band,
		MinSpacingHz:    p.MinSpacingHz,
		Cap:             p.Cap,
		RequireFullSet:  p.RequireFullSet,
		SortByFrequency: p.SortByFrequency,
		DesignatedIndex: p.DesignatedIndex,
		ExpectedBins:    slices.Clone(p.ExpectedBins),
		Tolerance:       p.BinTolerance,
		BinWidthHz:      p.BinWidthHz(),
		PassThresholdDB: p.PassThresholdDB,
		StatsBand:       stats,
	}
}

// Profile48k returns the built-in profile for 48 kHz multitone captures.
func Profile48k() Profile {
	return Profile{
		Name:            Profile48kName,
		SampleRate:      sampleRate48k,
		FFTSize:         defaultFFTSize,
		Channels:        defaultChannels,
		HeaderRows:      defaultHeaderRows,
		Layout:          LayoutColumns,
		Band:            Band{Low: band48kLow, High: band48kHigh},
		MinSpacingHz:    defaultMinSpacingHz,
		Cap:             cap48k,
		SortByFrequency: true,
		DesignatedIndex: defaultDesignatedIndex,
		ExpectedBins:    []int{expectedBin48kA, expectedBin48kB},
		BinTolerance:    defaultBinTolerance,
		PassThresholdDB: defaultPassThresholdDB,
	}
}

// Profile96k returns the built-in profile for 96 kHz multitone captures.
// Statistics only cover the audible part of the selection band.
func Profile96k() Profile {
	return Profile{
		Name:            Profile96kName,
		SampleRate:      sampleRate96k,
		FFTSize:         defaultFFTSize,
		Channels:        defaultChannels,
		HeaderRows:      defaultHeaderRows,
		Layout:          LayoutColumns,
		Band:            Band{Low: band96kLow, High: band96kHigh},
		StatsBand:       &Band{Low: band96kLow, High: stats96kHigh},
		MinSpacingHz:    defaultMinSpacingHz,
		Cap:             cap96k,
		SortByFrequency: true,
		DesignatedIndex: defaultDesignatedIndex,
		ExpectedBins:    []int{expectedBin96kA, expectedBin96kB},
		BinTolerance:    defaultBinTolerance,
		PassThresholdDB: defaultPassThresholdDB,
	}
}

// BuiltinProfiles returns the built-in profiles keyed by name.
func BuiltinProfiles() map[string]Profile {
	return map[string]Profile{
		Profile48kName: Profile48k(),
		Profile96kName: Profile96k(),
	}
}
