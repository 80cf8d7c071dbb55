package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/soundcheck/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config, err := shared.ResolveConfig(defaultConfigPath)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		Logger:     logger,
	})

	app := appCommand(runner)

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrMissingCredentials) {
			logger.Error("missing Spotify credentials, run 'soundcheck config init' and fill in the client id and secret")
		}
		logger.Fatalf("application error: %v", err)
	}
}

// appCommand builds the root command with the global flags and every subcommand.
func appCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "soundcheck",
		Usage:   "Preview Spotify playlists through a local token broker",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}
