package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config   string           `short:"c" help:"Configuration file path" default:"sitebuilder.yaml" type:"path"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	LogLevel string           `name:"log-level" env:"SITEBUILDER_LOG_LEVEL" help:"Log level (debug, info, warn, error); overrides --verbose"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the site into the output directory"`
	Preview PreviewCmd `cmd:"" help:"Build, serve and rebuild the site on change"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	if err := observability.ValidateLevel(c.LogLevel); err != nil {
		return ferrors.ValidationError("invalid log level").
			WithCause(err).
			WithContext("log_level", c.LogLevel).
			Build()
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, observability.ParseLevel(c.LogLevel, c.Verbose)))
	return nil
}

// loadConfig loads and validates the configuration after applying overrides.
func loadConfig(path string, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, ferrors.ConfigError("failed to load configuration").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
