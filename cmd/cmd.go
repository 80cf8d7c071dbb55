// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the token broker
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the OAuth token broker and serve the player page",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the login page in the browser",
			},
		},
		Action: r.Serve,
	}
}

// tokenCommand asks a running broker for its token
func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Print the broker's current access token",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Token,
	}
}

// playlistsCommand runs the player's data fetch path without a terminal UI
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"ls"},
		Usage:   "Fetch and print the playlists the player would show",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, csv, markdown, json)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the login URL instead of opening it on a 401",
			},
		},
		Action: r.Playlists,
	}
}

// playCommand returns the top-level command for the interactive player.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "play",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive terminal player",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Only play the built-in previews, do not contact the broker",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log file path",
				Value: "./tmp/soundcheck-tui.log",
			},
		},
		Action: r.Play,
	}
}

// recentCommand reads the recently played list from local storage
func recentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "Show recently played tracks",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Forget recently played tracks",
				Action: r.RecentClear,
			},
		},
		Action: r.Recent,
	}
}

// prefsCommand reads and writes stored player preferences
func prefsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "prefs",
		Aliases: []string{"preferences"},
		Usage:   "Show or change stored player preferences",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "theme",
				Usage: "Set the theme (light, dark or system)",
			},
			&cli.StringFlag{
				Name:  "volume",
				Usage: "Set the volume (0 to 1)",
			},
		},
		Action: r.Prefs,
	}
}

// configCommand handles configuration and storage setup.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the config file to create",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:   "storage",
				Usage:  "Create the local storage database and run migrations",
				Action: r.SetupStorage,
			},
			{
				Name:   "show",
				Usage:  "Print the resolved configuration (secrets masked)",
				Action: r.ConfigShow,
			},
		},
	}
}
