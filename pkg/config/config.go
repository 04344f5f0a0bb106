// Package config loads the fable CLI configuration from a YAML file with
// FABLE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-fable/pkg/validation"
)

// Environment overrides
const (
	EnvLogLevel          = "FABLE_LOG_LEVEL"
	EnvLogFormat         = "FABLE_LOG_FORMAT"
	EnvCatalogue         = "FABLE_CATALOGUE"
	EnvShareBaseURL      = "FABLE_SHARE_BASE_URL"
	EnvWarnOnLargeTokens = "FABLE_WARN_LARGE_TOKENS"
)

// Defaults
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

var (
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"json", "console"}
)

// Config is the CLI configuration.
type Config struct {
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	CataloguePath string `yaml:"catalogue_path"`
	ShareBaseURL  string `yaml:"share_base_url"`
	// WarnOnLargeTokens logs a warning when a share token exceeds the
	// advisory length. Defaults to true.
	WarnOnLargeTokens *bool `yaml:"warn_on_large_tokens"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path (if non-empty), applies the process environment and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config: %w", err)
		}
		defer f.Close()

		c, err = Parse(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes a YAML config document. Unknown keys are rejected; an empty
// document yields a zero Config.
func Parse(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &c, nil
}

// ApplyEnv overrides fields from FABLE_* variables found by lookup.
// Variables that are set but empty are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.LogFormat = v
	}
	if v, ok := lookup(EnvCatalogue); ok && v != "" {
		c.CataloguePath = v
	}
	if v, ok := lookup(EnvShareBaseURL); ok && v != "" {
		c.ShareBaseURL = v
	}
	if v, ok := lookup(EnvWarnOnLargeTokens); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", EnvWarnOnLargeTokens, v)
		}
		c.WarnOnLargeTokens = &b
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.LogLevel = strings.ToLower(validation.DefaultOr(c.LogLevel, DefaultLogLevel))
	c.LogFormat = strings.ToLower(validation.DefaultOr(c.LogFormat, DefaultLogFormat))
	if c.WarnOnLargeTokens == nil {
		warn := true
		c.WarnOnLargeTokens = &warn
	}
}

// WarnLargeTokens reports whether oversized tokens should be logged.
func (c *Config) WarnLargeTokens() bool {
	return c.WarnOnLargeTokens == nil || *c.WarnOnLargeTokens
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	return validation.NewConfigValidator("config").
		OneOf("log_level", c.LogLevel, logLevels).
		OneOf("log_format", c.LogFormat, logFormats).
		When(c.ShareBaseURL != "", func(cv *validation.ConfigValidator) {
			cv.AbsoluteURL("share_base_url", c.ShareBaseURL)
		}).
		When(c.CataloguePath != "", func(cv *validation.ConfigValidator) {
			cv.Custom("catalogue_path", func() error {
				info, err := os.Stat(c.CataloguePath)
				if err != nil {
					return err
				}
				if info.IsDir() {
					return fmt.Errorf("%s is a directory", c.CataloguePath)
				}
				return nil
			})
		}).
		Validate()
}
