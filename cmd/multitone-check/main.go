// Command multitone-check validates multitone spectra exported by an audio
// analyzer, or computed from multitone WAV recordings.
//
// Usage:
//
//	multitone-check -profile 48k 48k_raw_data.csv
//	multitone-check -profile 96k -json 96k_raw_data.csv > report.json
//	multitone-check -profile 48k -wav 48k_multitone_1.wav 48k_multitone_2.wav
//	multitone-check -config lab.yaml -metrics-file /var/lib/node_exporter/multitone.prom export.csv
//
// For every channel the tool selects the strongest spaced tones, checks their
// peak-to-peak deviation and cross-checks the designated tone's FFT bin. The
// exit status is 0 when every channel passes, 1 when a channel fails or
// cannot be evaluated, and 2 on usage or I/O errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tphakala/go-multitone-check/internal/config"
	"github.com/tphakala/go-multitone-check/internal/logging"
	"github.com/tphakala/go-multitone-check/internal/metrics"
)

const (
	exitChecksFailed = 1
	exitUsage        = 2

	minRequiredArgs = 1
)

// errChecksFailed is returned when at least one channel did not pass.
var errChecksFailed = errors.New("multitone checks failed")

func main() {
	err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errChecksFailed):
		os.Exit(exitChecksFailed)
	default:
		fmt.Fprintf(os.Stderr, "multitone-check: %v\n", err)
		os.Exit(exitUsage)
	}
}

// cliOptions holds the parsed command line.
type cliOptions struct {
	configPath  string
	profile     string
	channels    int
	wav         bool
	jsonOut     bool
	parallel    bool
	metricsFile string
	logLevel    string
	inputs      []string
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	fs := flag.NewFlagSet("multitone-check", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &cliOptions{}
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file (default $"+config.EnvConfig+")")
	fs.StringVar(&o.profile, "profile", "", "Sample-rate profile, e.g. 48k or 96k (overrides config)")
	fs.IntVar(&o.channels, "channels", 0, "Number of channels to analyze (default from profile)")
	fs.BoolVar(&o.wav, "wav", false, "Inputs are WAV recordings instead of CSV exports")
	fs.BoolVar(&o.jsonOut, "json", false, "Write the report as JSON")
	fs.BoolVar(&o.parallel, "parallel", false, "Analyze channels concurrently")
	fs.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: multitone-check [options] input...\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  multitone-check -profile 48k 48k_raw_data.csv\n")
		fmt.Fprintf(stderr, "  multitone-check -profile 96k -wav 96k_multitone_1.wav\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.inputs = fs.Args()
	if len(o.inputs) < minRequiredArgs {
		fs.Usage()
		return nil, fmt.Errorf("no input files")
	}
	if o.channels < 0 {
		return nil, fmt.Errorf("channels must not be negative")
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx, opts.configPath)
	if err != nil {
		return err
	}
	if opts.profile != "" {
		cfg.Profile = opts.profile
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.parallel {
		cfg.Parallel = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	profile, err := cfg.Active()
	if err != nil {
		return err
	}
	if opts.channels > 0 {
		profile.Channels = opts.channels
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, logging.WithField("profile", profile.Name))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var recorder *metrics.Recorder
	if opts.metricsFile != "" {
		recorder = metrics.New(profile.Name)
	}

	a := &analyzer{
		profile:  profile,
		window:   cfg.Window,
		parallel: cfg.Parallel,
		logger:   logger,
		recorder: recorder,
	}

	allOK := true
	for _, input := range opts.inputs {
		rep, err := a.analyze(input, opts.wav)
		if err != nil {
			return err
		}
		if opts.jsonOut {
			err = rep.WriteJSON(stdout)
		} else {
			err = rep.WriteText(stdout)
		}
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if !rep.OK() {
			allOK = false
		}
		logger.Info("input analyzed",
			zap.String("source", input),
			zap.String("run_id", rep.RunID),
			zap.Int("pass", rep.Tally.Pass),
			zap.Int("fail", rep.Tally.Fail),
			zap.Int("error", rep.Tally.Error+rep.Tally.NoData),
		)
	}

	if recorder != nil {
		recorder.MarkRun(time.Now())
		if err := recorder.WriteTextfile(opts.metricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	if !allOK {
		return errChecksFailed
	}
	return nil
}
