package main

import (
	"fmt"

	"go.uber.org/zap"

	multitone "github.com/tphakala/go-multitone-check"
	"github.com/tphakala/go-multitone-check/internal/metrics"
	"github.com/tphakala/go-multitone-check/internal/report"
	"github.com/tphakala/go-multitone-check/internal/spectrum"
	"github.com/tphakala/go-multitone-check/internal/table"
)

// analyzer runs the checks for one input file at a time.
type analyzer struct {
	profile  multitone.Profile
	window   string
	parallel bool
	logger   *zap.Logger
	recorder *metrics.Recorder
}

// analyze loads one input and returns its report.
func (a *analyzer) analyze(path string, wav bool) (*report.Report, error) {
	runID := report.NewRunID()
	opts := a.runOptions(runID, path)
	cfg := a.profile.Config()

	if wav {
		clip, series, err := spectrum.AnalyzeFile(path, spectrum.Options{
			FFTSize: a.profile.FFTSize,
			Window:  spectrum.Window(a.window),
		})
		if err != nil {
			return nil, err
		}
		if float64(clip.SampleRate) != a.profile.SampleRate {
			a.logger.Warn("recording sample rate differs from profile",
				zap.String("source", path),
				zap.Int("recording_hz", clip.SampleRate),
				zap.Float64("profile_hz", a.profile.SampleRate),
			)
		}
		results, err := multitone.RunSeries(series, cfg, opts...)
		if err != nil {
			return nil, err
		}
		return report.New(runID, path, report.InputWAV, a.profile, results), nil
	}

	t, err := table.Open(path, table.Options{
		HeaderRows: a.profile.HeaderRows,
		Layout:     a.profile.Layout,
	})
	if err != nil {
		return nil, err
	}
	if have := t.ChannelCount(); have < a.profile.Channels {
		a.logger.Warn("export holds fewer channel pairs than the profile expects",
			zap.String("source", path),
			zap.Int("have", have),
			zap.Int("want", a.profile.Channels),
		)
	}

	results, err := multitone.Run(t, a.profile.Channels, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	input := report.InputColumns
	if t.Layout() == multitone.LayoutRows {
		input = report.InputRows
	}
	return report.New(runID, path, input, a.profile, results), nil
}

func (a *analyzer) runOptions(runID, path string) []multitone.RunOption {
	opts := []multitone.RunOption{
		multitone.WithParallel(a.parallel),
		multitone.WithLogger(a.logger.With(zap.String("run_id", runID), zap.String("source", path))),
	}
	if a.recorder != nil {
		opts = append(opts, multitone.WithObserver(a.recorder.Observe))
	}
	return opts
}
