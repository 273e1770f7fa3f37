// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the project configuration from gherkit.yaml and
// GHERKIT_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/gherkit/internal/tracing"
	gerrors "github.com/tombee/gherkit/pkg/errors"
)

// FileName is the project configuration file searched in the working
// directory.
const FileName = "gherkit.yaml"

// Config is the project configuration.
type Config struct {
	Features FeaturesConfig `yaml:"features" json:"features"`
	Run      RunConfig      `yaml:"run" json:"run"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	History  HistoryConfig  `yaml:"history" json:"history"`
	Tracing  TracingConfig  `yaml:"tracing" json:"tracing"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
	Log      LogConfig      `yaml:"log" json:"log"`
}

// FeaturesConfig says where feature files live.
type FeaturesConfig struct {
	// Paths are searched when no path arguments are given.
	Paths []string `yaml:"paths" json:"paths"`

	// Include globs select files inside directories.
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`

	// Exclude globs drop files and directories.
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// RunConfig holds runner defaults.
type RunConfig struct {
	// Tags is a tag expression such as "@smoke and not @slow".
	Tags string `yaml:"tags,omitempty" json:"tags,omitempty"`

	StopOnFailure bool `yaml:"stop_on_failure" json:"stop_on_failure"`
}

// OutputConfig selects the reporter.
type OutputConfig struct {
	// Format is one of pretty, progress, junit, json.
	Format string `yaml:"format" json:"format"`

	// File writes the report to a file instead of stdout.
	File string `yaml:"file,omitempty" json:"file,omitempty"`

	// Color is auto, always or never.
	Color string `yaml:"color" json:"color"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Path defaults to $XDG_DATA_HOME/gherkit/history.db.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Keep prunes older runs after each save; zero keeps everything.
	Keep int `yaml:"keep,omitempty" json:"keep,omitempty"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	// Exporter is none, stdout, otlp-http or otlp-grpc.
	Exporter string            `yaml:"exporter" json:"exporter"`
	Endpoint string            `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Insecure bool              `yaml:"insecure,omitempty" json:"insecure,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// MetricsConfig configures the metrics textfile.
type MetricsConfig struct {
	// Textfile is written after each run when set.
	Textfile string `yaml:"textfile,omitempty" json:"textfile,omitempty"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Features: FeaturesConfig{
			Paths: []string{"features"},
		},
		Output: OutputConfig{
			Format: "pretty",
			Color:  "auto",
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    100,
		},
		Tracing: TracingConfig{
			Exporter: tracing.ExporterNone,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads the configuration. An empty path looks for gherkit.yaml in the
// working directory and silently uses the defaults when it is absent; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(FileName); err == nil {
			path = FileName
		}
	}
	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, &gerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", path),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		// empty file
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// applyDefaults fills zero values left by a partial file.
func (c *Config) applyDefaults() {
	defaults := Default()

	if len(c.Features.Paths) == 0 {
		c.Features.Paths = defaults.Features.Paths
	}
	if c.Output.Format == "" {
		c.Output.Format = defaults.Output.Format
	}
	if c.Output.Color == "" {
		c.Output.Color = defaults.Output.Color
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = defaults.Tracing.Exporter
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(DataDir(), "history.db")
	}
}

// loadFromEnv applies GHERKIT_* overrides.
func (c *Config) loadFromEnv() {
	if val := os.Getenv("GHERKIT_FEATURES"); val != "" {
		c.Features.Paths = splitList(val)
	}
	if val := os.Getenv("GHERKIT_TAGS"); val != "" {
		c.Run.Tags = val
	}
	if val := os.Getenv("GHERKIT_STOP_ON_FAILURE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Run.StopOnFailure = b
		}
	}
	if val := os.Getenv("GHERKIT_FORMAT"); val != "" {
		c.Output.Format = strings.ToLower(val)
	}
	if val := os.Getenv("GHERKIT_HISTORY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.History.Enabled = b
		}
	}
	if val := os.Getenv("GHERKIT_HISTORY_DB"); val != "" {
		c.History.Path = val
	}
	if val := os.Getenv("GHERKIT_TRACE_EXPORTER"); val != "" {
		c.Tracing.Exporter = strings.ToLower(val)
	}
	if val := os.Getenv("GHERKIT_TRACE_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}
	if val := os.Getenv("GHERKIT_METRICS_TEXTFILE"); val != "" {
		c.Metrics.Textfile = val
	}
	if val := os.Getenv("GHERKIT_LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("NO_COLOR"); val != "" {
		c.Output.Color = "never"
	}
}

// Validate reports the first invalid setting as a ConfigError.
func (c *Config) Validate() error {
	validFormats := map[string]bool{"pretty": true, "progress": true, "junit": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &gerrors.ConfigError{
			Key:    "output.format",
			Reason: fmt.Sprintf("must be one of [pretty, progress, junit, json], got %q", c.Output.Format),
		}
	}

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[c.Output.Color] {
		return &gerrors.ConfigError{
			Key:    "output.color",
			Reason: fmt.Sprintf("must be one of [auto, always, never], got %q", c.Output.Color),
		}
	}

	if c.History.Keep < 0 {
		return &gerrors.ConfigError{Key: "history.keep", Reason: "must not be negative"}
	}

	if err := c.TracingConfig().Validate(); err != nil {
		return err
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		return &gerrors.ConfigError{
			Key:    "log.level",
			Reason: fmt.Sprintf("must be one of [trace, debug, info, warn, error], got %q", c.Log.Level),
		}
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Log.Format] {
		return &gerrors.ConfigError{
			Key:    "log.format",
			Reason: fmt.Sprintf("must be one of [json, text], got %q", c.Log.Format),
		}
	}
	return nil
}

// TracingConfig converts the tracing section for tracing.NewProvider.
func (c *Config) TracingConfig() tracing.Config {
	tc := tracing.DefaultConfig()
	tc.Exporter = c.Tracing.Exporter
	tc.Endpoint = c.Tracing.Endpoint
	tc.Insecure = c.Tracing.Insecure
	tc.Headers = c.Tracing.Headers
	return tc
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
