// Package report renders the per-run multitone report.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	multitone "github.com/tphakala/go-multitone-check"
)

// Input kinds, used to label where a channel's data came from.
const (
	InputColumns = "columns"
	InputRows    = "rows"
	InputWAV     = "wav"
)

// Markers printed per channel.
const (
	markPass  = "PASS"
	markFail  = "FAIL"
	markError = "ERROR"
)

// Report is the rendered outcome of one run.
type Report struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Source      string          `json:"source"`
	Input       string          `json:"input"`
	Profile     ProfileSummary  `json:"profile"`
	Channels    []ChannelReport `json:"channels"`
	Tally       multitone.Tally `json:"tally"`
}

// ProfileSummary describes the profile a run used.
type ProfileSummary struct {
	Name            string          `json:"name"`
	SampleRate      float64         `json:"sample_rate"`
	FFTSize         int             `json:"fft_size"`
	Band            multitone.Band  `json:"band"`
	StatsBand       *multitone.Band `json:"stats_band,omitempty"`
	MinSpacingHz    float64         `json:"min_spacing_hz"`
	Cap             int             `json:"cap"`
	ExpectedBins    []int           `json:"expected_bins"`
	BinTolerance    int             `json:"bin_tolerance"`
	PassThresholdDB float64         `json:"pass_threshold_db"`
}

// ChannelReport is one channel line. Values that could not be computed are nil.
type ChannelReport struct {
	Channel       int      `json:"channel"`
	Pair          string   `json:"pair"`
	Verdict       string   `json:"verdict"`
	MaxDBFS       *float64 `json:"max_dbfs"`
	MinDBFS       *float64 `json:"min_dbfs"`
	DeviationDB   *float64 `json:"deviation_db"`
	DeviationPass bool     `json:"deviation_pass"`
	DesignatedHz  *float64 `json:"designated_hz"`
	DesignatedBin *int     `json:"designated_bin"`
	NearestBin    *int     `json:"nearest_expected_bin,omitempty"`
	BinDistance   *int     `json:"bin_distance,omitempty"`
	BinMatch      bool     `json:"bin_match"`
	Peaks         int      `json:"peaks"`
	Error         string   `json:"error,omitempty"`
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return uuid.NewString()
}

// New assembles the report of a run.
func New(runID, source, input string, p multitone.Profile, results *multitone.ChannelResults) *Report {
	r := &Report{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Input:       input,
		Profile: ProfileSummary{
			Name:            p.Name,
			SampleRate:      p.SampleRate,
			FFTSize:         p.FFTSize,
			Band:            p.Band,
			StatsBand:       p.StatsBand,
			MinSpacingHz:    p.MinSpacingHz,
			Cap:             p.Cap,
			ExpectedBins:    p.ExpectedBins,
			BinTolerance:    p.BinTolerance,
			PassThresholdDB: p.PassThresholdDB,
		},
		Tally: results.Tally(),
	}

	for ch, cr := range results.All() {
		res := cr.Result
		line := ChannelReport{
			Channel:       ch,
			Pair:          pairLabel(input, ch),
			Verdict:       cr.Verdict.String(),
			MaxDBFS:       finite(res.MaxAmplitude),
			MinDBFS:       finite(res.MinAmplitude),
			DeviationDB:   finite(res.Deviation),
			DeviationPass: res.DeviationPass,
			DesignatedHz:  finite(res.DesignatedFreq),
			BinMatch:      res.BinMatch,
			Peaks:         res.PeakCount,
		}
		if res.DesignatedBin >= 0 {
			bin := res.DesignatedBin
			line.DesignatedBin = &bin
			if dist, nearest, ok := multitone.NearestBinDistance(bin, p.ExpectedBins); ok {
				line.NearestBin = &nearest
				line.BinDistance = &dist
			}
		}
		if cr.Err != nil {
			line.Error = cr.Err.Error()
		}
		r.Channels = append(r.Channels, line)
	}

	return r
}

// OK reports whether every channel passed.
func (r *Report) OK() bool {
	return r.Tally.OK()
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes the human-readable report.
func (r *Report) WriteText(w io.Writer) error {
	p := r.Profile
	var b strings.Builder
	fmt.Fprintf(&b, "Multitone report %s\n", r.RunID)
	fmt.Fprintf(&b, "Source: %s (%s)\n", r.Source, r.Input)
	fmt.Fprintf(&b, "Profile: %s, %g Hz, FFT %d, band %s, spacing %g Hz, cap %d\n",
		p.Name, p.SampleRate, p.FFTSize, p.Band, p.MinSpacingHz, p.Cap)
	if p.StatsBand != nil {
		fmt.Fprintf(&b, "Statistics band: %s\n", *p.StatsBand)
	}
	fmt.Fprintf(&b, "Criteria: deviation <= %.2f dB, designated bin within %d of %v\n\n",
		p.PassThresholdDB, p.BinTolerance, p.ExpectedBins)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range r.Channels {
		if _, err := fmt.Fprintf(tw, "Channel %d (%s):\t%s\t%s\n", c.Channel, c.Pair, marker(c.Verdict), c.detail(p.PassThresholdDB, p.BinTolerance)); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	t := r.Tally
	_, err := fmt.Fprintf(w, "\nSummary: %d pass, %d fail, %d error (%d no data)\n",
		t.Pass, t.Fail, t.Error+t.NoData, t.NoData)
	return err
}

func (c *ChannelReport) detail(threshold float64, tolerance int) string {
	switch c.Verdict {
	case multitone.VerdictNoData.String():
		return "no samples inside the selection band"
	case multitone.VerdictError.String():
		if c.DeviationDB != nil {
			return fmt.Sprintf("%s (deviation %.2f dB over %d peaks)", c.Error, *c.DeviationDB, c.Peaks)
		}
		return c.Error
	}

	var b strings.Builder
	if c.DeviationDB != nil {
		fmt.Fprintf(&b, "max %.2f dBFS, min %.2f dBFS, deviation %.2f dB %s %.2f",
			*c.MaxDBFS, *c.MinDBFS, *c.DeviationDB, cmpMark(c.DeviationPass), threshold)
	} else {
		b.WriteString("no peaks inside the statistics band")
	}
	if c.DesignatedBin != nil {
		fmt.Fprintf(&b, "; bin %d", *c.DesignatedBin)
		if c.BinDistance != nil {
			fmt.Fprintf(&b, " vs %d (distance %d %s %d)", *c.NearestBin, *c.BinDistance, cmpMark(c.BinMatch), tolerance)
		}
	}
	return b.String()
}

func marker(verdict string) string {
	switch verdict {
	case multitone.VerdictPass.String():
		return markPass
	case multitone.VerdictFail.String():
		return markFail
	default:
		return markError
	}
}

func cmpMark(ok bool) string {
	if ok {
		return "<="
	}
	return ">"
}

func pairLabel(input string, ch int) string {
	first := (ch-1)*2 + 1
	switch input {
	case InputRows:
		return fmt.Sprintf("rows %d-%d", first, first+1)
	case InputWAV:
		return fmt.Sprintf("wav channel %d", ch)
	default:
		return fmt.Sprintf("columns %d-%d", first, first+1)
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
