package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	g.Logger.Debug("Initializing configuration", slog.String("path", root.Config), slog.Bool("force", i.Force))
	return RunInit(root.Config, i.Force)
}

func RunInit(configPath string, force bool) error {
	fmt.Printf("Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return ferrors.ConfigError("initialization failed").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	fmt.Println("initialized successfully")
	return nil
}
