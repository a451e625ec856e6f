// Package config loads sitebuilder.yaml.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "sitebuilder.yaml"

// Config represents the application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Layouts LayoutsConfig `yaml:"layouts"`
	Build   BuildConfig   `yaml:"build"`
	Preview PreviewConfig `yaml:"preview"`
}

// SiteConfig holds site-wide values passed to every layout.
type SiteConfig struct {
	Title    string `yaml:"title"`
	BaseURL  string `yaml:"base_url"`
	Language string `yaml:"language,omitempty"`
}

// SourceConfig points at the directory tree the site is built from.
type SourceConfig struct {
	Directory string `yaml:"directory"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     *bool  `yaml:"clean,omitempty"` // Clear output directory before build (default true)
}

// LayoutsConfig points at optional user layouts (<name>.html).
type LayoutsConfig struct {
	Directory string `yaml:"directory,omitempty"`
}

// BuildConfig controls a single build run.
type BuildConfig struct {
	Manifest string `yaml:"manifest,omitempty"`  // Path of the JSON build manifest; empty disables it
	FailFast bool   `yaml:"fail_fast,omitempty"` // Stop at the first file that fails
}

// PreviewConfig controls the local preview server.
type PreviewConfig struct {
	Port     int    `yaml:"port"`
	Metrics  *bool  `yaml:"metrics,omitempty"`
	Debounce string `yaml:"debounce,omitempty"` // Quiet window before a rebuild, e.g. "300ms"
}

// ShouldClean reports whether the output directory is cleared before a build.
func (o OutputConfig) ShouldClean() bool {
	return o.Clean == nil || *o.Clean
}

// MetricsEnabled reports whether the preview server exposes /metrics.
func (p PreviewConfig) MetricsEnabled() bool {
	return p.Metrics == nil || *p.Metrics
}

// DebounceDuration parses Debounce, falling back to the default on error.
func (p PreviewConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(p.Debounce)
	if err != nil || d <= 0 {
		return defaultDebounce
	}
	return d
}

// Load reads the configuration file at configPath. Environment variables from
// .env and .env.local are loaded first and ${VAR} references in the file are
// expanded. A missing file yields the defaults.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

const exampleConfig = `# sitebuilder configuration
site:
  title: "Disconnected Systems"
  base_url: "/"

source:
  # Directory holding pages (.md, .html, .htm) and assets.
  directory: "site"

output:
  directory: "dist"
  clean: true

layouts:
  # Optional directory of <name>.html templates; overrides the built-in
  # "default" and "home" layouts.
  directory: ""

build:
  # Write a JSON manifest of every output file. Empty disables it.
  manifest: ""
  fail_fast: false

preview:
  port: 1316
  metrics: true
  debounce: "300ms"
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	// #nosec G306 -- configuration is not secret
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
