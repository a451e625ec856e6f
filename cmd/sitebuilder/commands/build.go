package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Source   string `short:"s" help:"Source directory (overrides source.directory)" type:"path"`
	Output   string `short:"o" help:"Output directory (overrides output.directory)" type:"path"`
	Layouts  string `short:"l" help:"Layouts directory (overrides layouts.directory)" type:"path"`
	Manifest string `short:"m" help:"Write a build manifest to this path (overrides build.manifest)" type:"path"`
	FailFast bool   `name:"fail-fast" help:"Abort on the first file that cannot be built"`
	NoClean  bool   `name:"no-clean" help:"Keep existing files in the output directory"`
}

// apply copies the flags that were set onto cfg.
func (b *BuildCmd) apply(cfg *config.Config) {
	if b.Source != "" {
		cfg.Source.Directory = b.Source
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Layouts != "" {
		cfg.Layouts.Directory = b.Layouts
	}
	if b.Manifest != "" {
		cfg.Build.Manifest = b.Manifest
	}
	if b.FailFast {
		cfg.Build.FailFast = true
	}
	if b.NoClean {
		clean := false
		cfg.Output.Clean = &clean
	}
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, b.apply)
	if err != nil {
		return err
	}
	g.Logger.Info("Starting build",
		slog.String("source", cfg.Source.Directory),
		slog.String("output", cfg.Output.Directory))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := RunBuild(ctx, cfg)
	if report != nil {
		_, _ = fmt.Fprintln(os.Stdout, report.Summary())
		for _, f := range report.Failures {
			_, _ = fmt.Fprintf(os.Stdout, "  skipped %s (%s): %v\n", f.Source, f.Stage, f.Err)
		}
	}
	return err
}

// RunBuild runs a single build of cfg.
func RunBuild(ctx context.Context, cfg *config.Config, opts ...build.Option) (*build.Report, error) {
	return build.New(cfg, opts...).Run(ctx)
}
