package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/soundcheck/internal/player"
	"github.com/desertthunder/soundcheck/internal/shared"
	"github.com/desertthunder/soundcheck/internal/storage"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set credentials.spotify.client_id and client_secret (or %s/%s)\n", shared.EnvClientID, shared.EnvClientSecret)
	r.writePlain("2. Run 'soundcheck serve --open' and log in\n")
	return nil
}

// SetupStorage creates the local storage database and runs migrations.
func (r *Runner) SetupStorage(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing storage", "path", r.config.Storage.Path)

	store, release, err := r.openStore()
	if err != nil {
		return fmt.Errorf("failed to set up storage: %w", err)
	}
	defer release()

	keys, err := store.Keys()
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for storage: %v", r.config.Storage.Path)
	return r.writePlain("✓ Storage ready at %s (%d keys)\n", r.config.Storage.Path, len(keys))
}

// ConfigShow prints the resolved configuration as TOML with the client secret masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	masked := *r.config
	if secret := masked.Credentials.Spotify.ClientSecret; secret != "" {
		masked.Credentials.Spotify.ClientSecret = mask(secret)
	}

	if err := toml.NewEncoder(r.output).Encode(masked); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}

// Recent prints the recently played list, newest first.
func (r *Runner) Recent(ctx context.Context, cmd *cli.Command) error {
	store, release, err := r.openStore()
	if err != nil {
		return err
	}
	defer release()

	entries := player.LoadRecent(store)
	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		return r.writePlain("Nothing played yet\n")
	}
	r.writePlainHeader("Recently played")
	for _, e := range entries {
		r.writePlain("%-40s %s\n", e.Title, e.Time().Format("1/2/2006 15:04"))
	}
	return nil
}

// RecentClear removes the recently played list.
func (r *Runner) RecentClear(ctx context.Context, cmd *cli.Command) error {
	store, release, err := r.openStore()
	if err != nil {
		return err
	}
	defer release()

	if err := store.RemoveItem(storage.KeyRecentlyPlayed); err != nil {
		return err
	}
	return r.writePlain("✓ Recently played cleared\n")
}

// Prefs applies --theme and --volume when given, then prints the stored preferences.
func (r *Runner) Prefs(ctx context.Context, cmd *cli.Command) error {
	store, release, err := r.openStore()
	if err != nil {
		return err
	}
	defer release()

	if raw := cmd.String("theme"); raw != "" {
		t, ok := player.ParseTheme(raw)
		if !ok {
			return fmt.Errorf("%w: unknown theme %q (want light, dark or system)", shared.ErrInvalidArgument, raw)
		}
		if err := store.SetItem(storage.KeyTheme, string(t)); err != nil {
			return err
		}
	}

	if raw := cmd.String("volume"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			return fmt.Errorf("%w: volume must be a number between 0 and 1, got %q", shared.ErrInvalidArgument, raw)
		}
		if err := store.SetItem(storage.KeyVolume, strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
			return err
		}
	}

	return r.printPrefs(store)
}

func (r *Runner) printPrefs(store storage.Store) error {
	theme, ok := store.GetItem(storage.KeyTheme)
	if !ok {
		theme = "(not set)"
	}

	volume := "(not set)"
	if raw, ok := store.GetItem(storage.KeyVolume); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			volume = player.FormatPercent(v)
		}
	}

	r.writePlain("theme:  %s\n", theme)
	r.writePlain("volume: %s\n", volume)
	r.writePlain("recent: %d tracks\n", len(player.LoadRecent(store)))
	return nil
}
