package multitone

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// SelectPeaks picks up to limit samples from series, strongest first, such
// that no two selected samples are closer than minSpacing Hz.
//
// Samples outside band (bounds inclusive) and non-finite samples are ignored.
// Candidates are ranked by amplitude descending; equal amplitudes are ranked
// by ascending frequency and then by position in series, so the result does
// not depend on row order. A candidate is accepted when it is at least
// minSpacing away from every peak accepted so far.
//
// The returned set may be shorter than limit, and is empty (with a nil error)
// when nothing falls inside the band.
func SelectPeaks(series Series, band Band, minSpacing float64, limit int) (PeakSet, error) {
	if err := band.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(minSpacing) || math.IsInf(minSpacing, 0) || minSpacing <= 0 {
		return nil, fmt.Errorf("%w: minimum spacing must be positive, got %v", ErrInvalidArgument, minSpacing)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: peak cap must be positive, got %d", ErrInvalidArgument, limit)
	}

	candidates := make([]Sample, 0, len(series))
	for _, s := range series {
		if s.finite() && band.Contains(s.Freq) {
			candidates = append(candidates, s)
		}
	}

	slices.SortStableFunc(candidates, func(a, b Sample) int {
		if c := cmp.Compare(b.Amplitude, a.Amplitude); c != 0 {
			return c
		}
		return cmp.Compare(a.Freq, b.Freq)
	})

	peaks := make(PeakSet, 0, min(limit, len(candidates)))
	for _, c := range candidates {
		if len(peaks) == limit {
			break
		}
		if spacedFrom(peaks, c.Freq, minSpacing) {
			peaks = append(peaks, c)
		}
	}

	return peaks, nil
}

// spacedFrom reports whether freq is at least spacing Hz from every peak.
func spacedFrom(peaks PeakSet, freq, spacing float64) bool {
	for _, p := range peaks {
		if math.Abs(freq-p.Freq) < spacing {
			return false
		}
	}
	return true
}
