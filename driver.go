package multitone

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"go.uber.org/zap"
)

// Table is a wide table of exported spectrum data. Each channel occupies two
// consecutive columns: frequency then amplitude. Cells are raw strings and
// may be blank or non-numeric.
type Table interface {
	// NumColumns returns the number of columns in the table.
	NumColumns() int

	// Column returns the cells of column i, header rows excluded.
	Column(i int) []string
}

// Verdict classifies a channel outcome.
type Verdict int

const (
	// VerdictPass means deviation and bin checks passed.
	VerdictPass Verdict = iota

	// VerdictFail means the measurement was valid but a check failed.
	VerdictFail

	// VerdictNoData means the channel held no usable samples inside the band.
	VerdictNoData

	// VerdictError means the channel could not be evaluated (short peak set,
	// missing columns).
	VerdictError
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictFail:
		return "fail"
	case VerdictNoData:
		return "no-data"
	case VerdictError:
		return "error"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// ChannelResult is the outcome for one channel.
type ChannelResult struct {
	Channel int
	Peaks   PeakSet
	Result  Result
	Verdict Verdict
	Err     error
}

// ChannelResults maps channel numbers (starting at 1) to their outcome.
// Iteration follows ascending channel number.
type ChannelResults struct {
	results []ChannelResult
}

// Len returns the number of channels.
func (r *ChannelResults) Len() int {
	return len(r.results)
}

// Get returns the outcome for channel ch.
func (r *ChannelResults) Get(ch int) (ChannelResult, bool) {
	if ch < 1 || ch > len(r.results) {
		return ChannelResult{}, false
	}
	return r.results[ch-1], true
}

// Channels returns the channel numbers in order.
func (r *ChannelResults) Channels() []int {
	out := make([]int, len(r.results))
	for i := range r.results {
		out[i] = r.results[i].Channel
	}
	return out
}

// All iterates over the outcomes in channel order.
func (r *ChannelResults) All() iter.Seq2[int, ChannelResult] {
	return func(yield func(int, ChannelResult) bool) {
		for _, cr := range r.results {
			if !yield(cr.Channel, cr) {
				return
			}
		}
	}
}

// Tally counts channels per verdict.
type Tally struct {
	Pass   int `json:"pass"`
	Fail   int `json:"fail"`
	NoData int `json:"no_data"`
	Error  int `json:"error"`
}

// OK reports whether every channel passed.
func (t Tally) OK() bool {
	return t.Fail == 0 && t.NoData == 0 && t.Error == 0
}

// Tally counts the channel verdicts.
func (r *ChannelResults) Tally() Tally {
	var t Tally
	for _, cr := range r.results {
		switch cr.Verdict {
		case VerdictPass:
			t.Pass++
		case VerdictFail:
			t.Fail++
		case VerdictNoData:
			t.NoData++
		case VerdictError:
			t.Error++
		}
	}
	return t
}

// RunOption configures Run and RunSeries.
type RunOption func(*runOptions)

type runOptions struct {
	logger   *zap.Logger
	parallel bool
	observer func(ChannelResult)
}

// WithLogger logs one entry per analyzed channel.
func WithLogger(l *zap.Logger) RunOption {
	return func(o *runOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithParallel analyzes channels concurrently. Results are identical to the
// sequential run.
func WithParallel(enabled bool) RunOption {
	return func(o *runOptions) {
		o.parallel = enabled
	}
}

// WithObserver calls fn for every channel outcome, in channel order, after
// all channels are analyzed.
func WithObserver(fn func(ChannelResult)) RunOption {
	return func(o *runOptions) {
		o.observer = fn
	}
}

// channelInput is the series of one channel, or the reason it has none.
type channelInput struct {
	series Series
	err    error
}

// Run analyzes channelCount channels of t with cfg. Channel i (0-based) is
// read from columns 2i and 2i+1 and stored under channel number i+1.
//
// Invalid configuration aborts the run before any channel is analyzed.
// Problems with a single channel are recorded on that channel's result and
// do not affect the others.
func Run(t Table, channelCount int, cfg Config, opts ...RunOption) (*ChannelResults, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: table is nil", ErrInvalidArgument)
	}
	if channelCount < 1 || channelCount > maxChannels {
		return nil, fmt.Errorf("%w: channel count must be 1-%d, got %d", ErrInvalidArgument, maxChannels, channelCount)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	inputs := make([]channelInput, channelCount)
	cols := t.NumColumns()
	for ch := range channelCount {
		freqCol, ampCol := ch*columnsPerPair, ch*columnsPerPair+1
		if ampCol >= cols {
			inputs[ch].err = fmt.Errorf("%w: channel %d needs columns %d-%d, table has %d",
				ErrMissingColumns, ch+1, freqCol, ampCol, cols)
			continue
		}
		inputs[ch].series = SeriesFromStrings(t.Column(freqCol), t.Column(ampCol))
	}

	return run(inputs, cfg, opts), nil
}

// RunSeries analyzes pre-built series, one per channel, with cfg.
func RunSeries(series []Series, cfg Config, opts ...RunOption) (*ChannelResults, error) {
	if len(series) < 1 || len(series) > maxChannels {
		return nil, fmt.Errorf("%w: channel count must be 1-%d, got %d", ErrInvalidArgument, maxChannels, len(series))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	inputs := make([]channelInput, len(series))
	for i, s := range series {
		inputs[i].series = s
	}
	return run(inputs, cfg, opts), nil
}

func run(inputs []channelInput, cfg Config, opts []RunOption) *ChannelResults {
	o := runOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	results := make([]ChannelResult, len(inputs))
	if o.parallel && len(inputs) > 1 {
		var wg sync.WaitGroup
		for i := range inputs {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = analyzeChannel(idx+1, inputs[idx], &cfg)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range inputs {
			results[i] = analyzeChannel(i+1, inputs[i], &cfg)
		}
	}

	for _, cr := range results {
		logChannel(o.logger, cr)
		if o.observer != nil {
			o.observer(cr)
		}
	}

	return &ChannelResults{results: results}
}

// analyzeChannel runs peak selection and validation for one channel.
// cfg is only read.
func analyzeChannel(ch int, in channelInput, cfg *Config) ChannelResult {
	cr := ChannelResult{Channel: ch}
	if in.err != nil {
		cr.Result = absentResult()
		cr.Err = in.err
		cr.Verdict = VerdictError
		return cr
	}

	peaks, err := SelectPeaks(in.series, cfg.Band, cfg.MinSpacingHz, cfg.Cap)
	if err != nil {
		cr.Result = absentResult()
		cr.Err = err
		cr.Verdict = VerdictError
		return cr
	}
	cr.Peaks = peaks

	res, err := Validate(peaks, cfg.validateOptions())
	cr.Result = res
	if err == nil && cfg.RequireFullSet && len(peaks) > 0 && len(peaks) < cfg.Cap {
		err = fmt.Errorf("%w: found %d of %d peaks", ErrShortPeakSet, len(peaks), cfg.Cap)
	}
	cr.Err = err

	switch {
	case err != nil:
		cr.Verdict = VerdictError
	case res.Absent():
		cr.Verdict = VerdictNoData
	case res.Passed():
		cr.Verdict = VerdictPass
	default:
		cr.Verdict = VerdictFail
	}
	return cr
}

// absentResult is the result reported for a channel without peaks.
func absentResult() Result {
	res, _ := Validate(nil, ValidateOptions{BinWidthHz: 1})
	return res
}

func logChannel(l *zap.Logger, cr ChannelResult) {
	fields := []zap.Field{
		zap.Int("channel", cr.Channel),
		zap.Stringer("verdict", cr.Verdict),
		zap.Int("peaks", cr.Result.PeakCount),
	}
	if cr.Err != nil {
		l.Warn("channel not evaluated", append(fields, zap.Error(cr.Err))...)
		return
	}
	if cr.Result.Absent() {
		l.Warn("channel has no samples in band", fields...)
		return
	}
	l.Debug("channel analyzed", append(fields,
		zap.Float64("deviation_db", cr.Result.Deviation),
		zap.Int("designated_bin", cr.Result.DesignatedBin),
		zap.Bool("bin_match", cr.Result.BinMatch),
	)...)
}

// IsChannelError reports whether err is one of the per-channel error kinds.
func IsChannelError(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrShortPeakSet) ||
		errors.Is(err, ErrMissingColumns)
}
