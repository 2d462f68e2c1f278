// Package config builds the run configuration of the checker.
//
// Built-in sample-rate profiles are layered with an optional YAML file and
// MULTITONE_* environment variables. Nothing here is global: Load returns a
// value that callers pass down explicitly.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	multitone "github.com/tphakala/go-multitone-check"
)

// Sentinel error kinds for this package.
var (
	ErrUnknownProfile = errors.New("unknown profile")
	ErrLoadConfig     = errors.New("load config failed")
	ErrInvalidConfig  = errors.New("invalid config")
)

// Config is the process configuration.
type Config struct {
	// Profile names the sample-rate profile used for the run.
	Profile string `koanf:"profile"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects console or json log encoding.
	LogFormat string `koanf:"log_format"`

	// Parallel analyzes channels concurrently.
	Parallel bool `koanf:"parallel"`

	// Window is the FFT window used when analyzing WAV recordings.
	Window string `koanf:"window"`

	// Profiles holds the built-in profiles plus any defined in the file.
	// Entries in the file override built-in fields key by key.
	Profiles map[string]multitone.Profile `koanf:"profiles"`
}

// New returns a Config holding defaults and the built-in profiles.
func New() *Config {
	return &Config{
		Profile:   multitone.Profile48kName,
		LogLevel:  "info",
		LogFormat: "console",
		Window:    "hann",
		Profiles:  multitone.BuiltinProfiles(),
	}
}

// ProfileNames returns the configured profile names, sorted.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the named profile.
func (c *Config) Lookup(name string) (multitone.Profile, error) {
	p, ok := c.Profiles[strings.TrimSpace(name)]
	if !ok {
		return multitone.Profile{}, fmt.Errorf("%w: %q (have %s)", ErrUnknownProfile, name,
			strings.Join(c.ProfileNames(), ", "))
	}
	if p.Name == "" {
		p.Name = name
	}
	return p, nil
}

// Active returns the profile selected by c.Profile.
func (c *Config) Active() (multitone.Profile, error) {
	return c.Lookup(c.Profile)
}

// Validate checks the selected profile and log settings.
func (c *Config) Validate() error {
	p, err := c.Active()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
