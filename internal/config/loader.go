package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	multitone "github.com/tphakala/go-multitone-check"
)

// Environment variable names.
const (
	EnvPrefix = "MULTITONE_"
	EnvConfig = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, an optional YAML file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New), including the built-in profiles
//  2. file (YAML) at path, or at $MULTITONE_CONFIG when path is empty
//  3. env (prefix MULTITONE_), top-level keys only
//
// Profile entries in the file are merged key by key over the built-ins, so a
// file may override a single threshold of the 48k profile.
func Load(_ context.Context, path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(defaultsProvider(New()), nil); err != nil {
		return nil, fmt.Errorf("%w: defaults: %w", ErrLoadConfig, err)
	}

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// MULTITONE_LOG_LEVEL -> log_level. MULTITONE_CONFIG names the file and is skipped.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if s == "config" {
			return ""
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	for name, p := range cfg.Profiles {
		if p.Name == "" {
			p.Name = name
			cfg.Profiles[name] = p
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mapProvider serves an in-memory nested map to koanf.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("map provider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}

// defaultsProvider flattens c into the nested key layout used by the file.
func defaultsProvider(c *Config) mapProvider {
	profiles := make(map[string]any, len(c.Profiles))
	for name, p := range c.Profiles {
		profiles[name] = profileMap(p)
	}
	return mapProvider{
		"profile":    c.Profile,
		"log_level":  c.LogLevel,
		"log_format": c.LogFormat,
		"parallel":   c.Parallel,
		"window":     c.Window,
		"profiles":   profiles,
	}
}

func profileMap(p multitone.Profile) map[string]any {
	m := map[string]any{
		"name":              p.Name,
		"sample_rate":       p.SampleRate,
		"fft_size":          p.FFTSize,
		"channels":          p.Channels,
		"header_rows":       p.HeaderRows,
		"layout":            string(p.Layout),
		"band":              bandMap(p.Band),
		"min_spacing_hz":    p.MinSpacingHz,
		"cap":               p.Cap,
		"require_full_set":  p.RequireFullSet,
		"sort_by_frequency": p.SortByFrequency,
		"designated_index":  p.DesignatedIndex,
		"bin_tolerance":     p.BinTolerance,
		"pass_threshold_db": p.PassThresholdDB,
	}
	bins := make([]any, len(p.ExpectedBins))
	for i, b := range p.ExpectedBins {
		bins[i] = b
	}
	m["expected_bins"] = bins
	if p.StatsBand != nil {
		m["stats_band"] = bandMap(*p.StatsBand)
	}
	return m
}

func bandMap(b multitone.Band) map[string]any {
	return map[string]any{"low": b.Low, "high": b.High}
}
