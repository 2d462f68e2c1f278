// Package multitone validates multitone test captures exported by an audio
// analyzer.
//
// A multitone capture plays many sine tones at once and records the
// resulting spectrum. For every channel the package picks the strongest
// tones, checks that their levels stay within a flatness limit and verifies
// that one designated tone lands on a known FFT bin.
//
// # Pipeline
//
// Each channel runs through three steps:
//
//   - [SelectPeaks] filters the series to a frequency band, ranks samples by
//     amplitude and greedily accepts peaks that keep a minimum spacing from
//     every peak accepted before, up to a cap.
//   - [Validate] computes the peak-to-peak deviation of the selected
//     amplitudes and maps the designated peak to an FFT bin, comparing it
//     against the expected bins within a tolerance.
//   - [Run] applies both steps to every channel of a wide table, where
//     channel i uses columns 2i (frequency) and 2i+1 (amplitude). Channels
//     are isolated: a bad channel is reported on its own result and the run
//     continues.
//
// # Quick Start
//
//	profile := multitone.Profile48k()
//	results, err := multitone.Run(table, profile.Channels, profile.Config())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for ch, cr := range results.All() {
//	    fmt.Printf("channel %d: %s (deviation %.2f dB)\n", ch, cr.Verdict, cr.Result.Deviation)
//	}
//
// # Profiles
//
// The sample-rate specific parameters live in a [Profile]. Two are built in:
//
//   - [Profile48k]: band 15-22300 Hz, 32 peaks, expected bins 121651 and 120739.
//   - [Profile96k]: band 20-45000 Hz, 64 peaks, statistics over 20-40000 Hz,
//     expected bins 60826 and 60370.
//
// Both use 50 Hz spacing, a 10 dB deviation limit, the 21st tone in
// frequency order as the designated tone, a 1M point FFT and a bin
// tolerance of 100.
//
// # Binning
//
// A frequency maps to bin round(freq / binWidth) with halfway values rounded
// away from zero, where binWidth is sampleRate / fftSize.
//
// # Ties
//
// Samples with equal amplitude are ranked by ascending frequency, so the
// selected set does not depend on row order.
package multitone
