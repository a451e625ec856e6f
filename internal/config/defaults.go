package config

import "time"

const (
	defaultTitle           = "Disconnected Systems"
	defaultBaseURL         = "/"
	defaultLanguage        = "en"
	defaultSourceDirectory = "site"
	defaultOutputDirectory = "dist"
	defaultPreviewPort     = 1316
	defaultDebounce        = 300 * time.Millisecond
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config)
	Domain() string
}

type siteDefaults struct{}

func (siteDefaults) Domain() string { return "site" }

func (siteDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Site.Title == "" {
		cfg.Site.Title = defaultTitle
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = defaultBaseURL
	}
	if cfg.Site.Language == "" {
		cfg.Site.Language = defaultLanguage
	}
}

type pathDefaults struct{}

func (pathDefaults) Domain() string { return "paths" }

func (pathDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Source.Directory == "" {
		cfg.Source.Directory = defaultSourceDirectory
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = defaultOutputDirectory
	}
}

type previewDefaults struct{}

func (previewDefaults) Domain() string { return "preview" }

func (previewDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Preview.Port == 0 {
		cfg.Preview.Port = defaultPreviewPort
	}
	if cfg.Preview.Debounce == "" {
		cfg.Preview.Debounce = defaultDebounce.String()
	}
}

var defaultAppliers = []DefaultApplier{siteDefaults{}, pathDefaults{}, previewDefaults{}}

func applyDefaults(cfg *Config) {
	for _, a := range defaultAppliers {
		a.ApplyDefaults(cfg)
	}
}
