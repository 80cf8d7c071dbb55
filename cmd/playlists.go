package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundcheck/internal/formatter"
	"github.com/desertthunder/soundcheck/internal/library"
	"github.com/desertthunder/soundcheck/internal/shared"
	"github.com/desertthunder/soundcheck/internal/web"
	"github.com/urfave/cli/v3"
)

// logNavigator reports login redirects instead of opening a browser.
type logNavigator struct {
	logger *log.Logger
}

func (n logNavigator) Navigate(url string) {
	n.logger.Warn("login required", "url", url)
}

// Playlists runs the player's data fetch path behind a spinner and prints what the page would render.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	var nav library.Navigator = shared.NewBrowserNavigator(r.logger)
	if cmd.Bool("no-browser") {
		nav = logNavigator{logger: r.logger}
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var playlists []library.Playlist
	load := func(ctx context.Context) error {
		var err error
		playlists, err = r.loadPlaylists(ctx, nav)
		return err
	}

	if err := spinner.New().Title("Loading playlists...").Context(ctx).ActionWithErr(load).Run(); err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(format, playlists, path); err != nil {
			return err
		}
		r.logger.Info("playlists exported", "path", path, "format", format, "count", len(playlists))
		return r.writePlain("✓ Exported %d playlists to %s\n", len(playlists), path)
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	case format == formatter.FormatText:
		return r.printPlaylists(playlists)
	}

	data, err := formatter.Render(format, playlists)
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

// loadPlaylists renders the user's playlists into a fresh copy of the player page.
func (r *Runner) loadPlaylists(ctx context.Context, nav library.Navigator) ([]library.Playlist, error) {
	doc, err := web.ParsePage()
	if err != nil {
		return nil, err
	}

	loader := library.New(library.Options{
		Document:  doc,
		Broker:    r.broker,
		API:       r.spotify,
		Navigator: nav,
		Logger:    r.logger,
	})
	return loader.Load(ctx)
}

func (r *Runner) printPlaylists(playlists []library.Playlist) error {
	if len(playlists) == 0 {
		return r.writePlain("%s\n", library.EmptyMessage)
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	_, err := r.output.Write(formatter.ExportToText(playlists))
	return err
}
