package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/preview"
)

// PreviewCmd serves the output directory and rebuilds when sources change.
type PreviewCmd struct {
	Source    string `short:"s" help:"Source directory (overrides source.directory)" type:"path"`
	Output    string `short:"o" help:"Output directory (overrides output.directory)" type:"path"`
	Layouts   string `short:"l" help:"Layouts directory (overrides layouts.directory)" type:"path"`
	Port      int    `short:"p" help:"Preview server port (overrides preview.port)"`
	NoMetrics bool   `name:"no-metrics" help:"Do not expose /metrics"`
}

func (p *PreviewCmd) apply(cfg *config.Config) {
	if p.Source != "" {
		cfg.Source.Directory = p.Source
	}
	if p.Output != "" {
		cfg.Output.Directory = p.Output
	}
	if p.Layouts != "" {
		cfg.Layouts.Directory = p.Layouts
	}
	if p.Port != 0 {
		cfg.Preview.Port = p.Port
	}
	if p.NoMetrics {
		disabled := false
		cfg.Preview.Metrics = &disabled
	}
}

func (p *PreviewCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, p.apply)
	if err != nil {
		return err
	}
	g.Logger.Info("Starting preview",
		slog.String("source", cfg.Source.Directory),
		slog.Int("port", cfg.Preview.Port))

	// Setup signal-based context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Serving %s on http://localhost:%d/\n", cfg.Output.Directory, cfg.Preview.Port)
	return preview.New(cfg).Run(ctx)
}
