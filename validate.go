package multitone

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// ValidateOptions configures Validate.
type ValidateOptions struct {
	// SortByFrequency reorders the peaks ascending by frequency before the
	// designated peak is picked. Otherwise the rank order from SelectPeaks is used.
	SortByFrequency bool

	// DesignatedIndex selects the peak whose frequency is mapped to an FFT bin.
	DesignatedIndex int

	// ExpectedBins lists the known-good bin positions of the designated tone.
	// An empty list disables the bin check.
	ExpectedBins []int

	// Tolerance is the inclusive bin distance accepted as a match.
	Tolerance int

	// BinWidthHz is the FFT bin spacing (sample rate / FFT size).
	BinWidthHz float64

	// PassThresholdDB is the largest deviation that still passes.
	PassThresholdDB float64

	// StatsBand, when set, restricts the amplitude statistics to peaks inside
	// it. Selection may use a wider band than the statistics.
	StatsBand *Band
}

// Validate checks that the options are usable.
func (o *ValidateOptions) Validate() error {
	if o.DesignatedIndex < 0 {
		return fmt.Errorf("%w: designated index must not be negative", ErrInvalidArgument)
	}
	if o.Tolerance < 0 {
		return fmt.Errorf("%w: bin tolerance must not be negative", ErrInvalidArgument)
	}
	if math.IsNaN(o.BinWidthHz) || math.IsInf(o.BinWidthHz, 0) || o.BinWidthHz <= 0 {
		return fmt.Errorf("%w: bin width must be positive", ErrInvalidArgument)
	}
	if math.IsNaN(o.PassThresholdDB) || math.IsInf(o.PassThresholdDB, 0) {
		return fmt.Errorf("%w: pass threshold must be finite", ErrInvalidArgument)
	}
	if o.StatsBand != nil {
		if err := o.StatsBand.Validate(); err != nil {
			return fmt.Errorf("stats band: %w", err)
		}
	}
	return nil
}

// Result holds the verdict inputs for one channel.
type Result struct {
	MaxAmplitude  float64 `json:"max_dbfs"`
	MinAmplitude  float64 `json:"min_dbfs"`
	Deviation     float64 `json:"deviation_db"`
	DeviationPass bool    `json:"deviation_pass"`

	DesignatedFreq float64 `json:"designated_hz"`
	DesignatedBin  int     `json:"designated_bin"`
	BinMatch       bool    `json:"bin_match"`
	BinChecked     bool    `json:"bin_checked"`

	// PeakCount is the size of the peak set; StatsCount the number of peaks
	// the amplitude statistics were computed over.
	PeakCount  int `json:"peak_count"`
	StatsCount int `json:"stats_count"`
}

// Absent reports whether the channel produced no peaks at all.
func (r Result) Absent() bool {
	return r.PeakCount == 0
}

// Passed reports whether the measurement met both the deviation and the bin
// criteria. An unchecked bin does not fail the channel.
func (r Result) Passed() bool {
	if !r.DeviationPass {
		return false
	}
	return !r.BinChecked || r.BinMatch
}

// Validate computes amplitude deviation over peaks and checks the designated
// peak against the expected FFT bins.
//
// An empty peak set yields NaN statistics with DeviationPass and BinMatch
// false, and no error. An empty statistics window does the same for the
// amplitude fields only. When peaks is non-empty but has no element at
// DesignatedIndex, the amplitude fields are filled and an error wrapping
// ErrIndexOutOfRange is returned.
func Validate(peaks PeakSet, opts ValidateOptions) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	nan := math.NaN()
	res := Result{
		MaxAmplitude:   nan,
		MinAmplitude:   nan,
		Deviation:      nan,
		DesignatedFreq: nan,
		DesignatedBin:  -1,
		PeakCount:      len(peaks),
	}
	if len(peaks) == 0 {
		return res, nil
	}

	ordered := slices.Clone(peaks)
	if opts.SortByFrequency {
		slices.SortStableFunc(ordered, func(a, b Sample) int {
			return cmp.Compare(a.Freq, b.Freq)
		})
	}

	amps := make([]float64, 0, len(ordered))
	for _, p := range ordered {
		if opts.StatsBand == nil || opts.StatsBand.Contains(p.Freq) {
			amps = append(amps, p.Amplitude)
		}
	}
	res.StatsCount = len(amps)
	if len(amps) > 0 {
		res.MaxAmplitude = floats.Max(amps)
		res.MinAmplitude = floats.Min(amps)
		res.Deviation = res.MaxAmplitude - res.MinAmplitude
		res.DeviationPass = res.Deviation <= opts.PassThresholdDB
	}

	if opts.DesignatedIndex >= len(ordered) {
		return res, fmt.Errorf("%w: index %d requested, peak set holds %d",
			ErrIndexOutOfRange, opts.DesignatedIndex, len(ordered))
	}

	designated := ordered[opts.DesignatedIndex]
	res.DesignatedFreq = designated.Freq
	res.DesignatedBin = BinIndex(designated.Freq, opts.BinWidthHz)

	if len(opts.ExpectedBins) > 0 {
		res.BinChecked = true
		dist, _, _ := NearestBinDistance(res.DesignatedBin, opts.ExpectedBins)
		res.BinMatch = dist <= opts.Tolerance
	}

	return res, nil
}

// BinIndex maps a frequency to the nearest FFT bin. Halfway values round
// away from zero.
func BinIndex(freq, binWidthHz float64) int {
	return int(math.Round(freq / binWidthHz))
}

// BinWidth returns the bin spacing in Hz of an FFT of fftSize points.
func BinWidth(sampleRate float64, fftSize int) float64 {
	if fftSize <= 0 {
		return 0
	}
	return sampleRate / float64(fftSize)
}

// NearestBinDistance returns the smallest |bin - e| over expected and the
// expected bin that achieved it. ok is false when expected is empty.
func NearestBinDistance(bin int, expected []int) (dist, nearest int, ok bool) {
	if len(expected) == 0 {
		return 0, 0, false
	}
	dist = math.MaxInt
	for _, e := range expected {
		d := bin - e
		if d < 0 {
			d = -d
		}
		if d < dist {
			dist, nearest = d, e
		}
	}
	return dist, nearest, true
}
