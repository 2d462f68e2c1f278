package multitone

// Profile names
const (
	Profile48kName = "48k"
	Profile96kName = "96k"
)

// Channel limits
const (
	defaultChannels = 8   // Channels in a standard multitone export
	maxChannels     = 256 // Maximum supported channel count
	columnsPerPair  = 2   // Frequency and amplitude column per channel
)

// Table shape
const (
	defaultHeaderRows = 4 // Header rows written by the analyzer export
)

// Sample rates
const (
	sampleRate48k = 48000.0
	sampleRate96k = 96000.0
)

// Selection parameters shared by the built-in profiles
const (
	defaultMinSpacingHz    = 50.0    // Minimum distance between selected tones
	defaultPassThresholdDB = 10.0    // Maximum peak-to-peak deviation
	defaultFFTSize         = 1 << 20 // Analyzer FFT length
	defaultDesignatedIndex = 20      // Tone whose bin is cross-checked (frequency order)
	defaultBinTolerance    = 100     // Accepted bin distance
)

// 48 kHz profile
const (
	band48kLow      = 15.0
	band48kHigh     = 22300.0
	cap48k          = 32
	expectedBin48kA = 121651
	expectedBin48kB = 120739
)

// 96 kHz profile
const (
	band96kLow      = 20.0
	band96kHigh     = 45000.0
	stats96kHigh    = 40000.0
	cap96k          = 64
	expectedBin96kA = 60826
	expectedBin96kB = 60370
)
