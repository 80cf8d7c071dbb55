package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/soundcheck/internal/library"
	"github.com/desertthunder/soundcheck/internal/shared"
	"github.com/desertthunder/soundcheck/internal/ui"
	"github.com/desertthunder/soundcheck/internal/web"
	"github.com/urfave/cli/v3"
)

// Play launches the interactive terminal player.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	store, release, err := r.openStore()
	if err != nil {
		return err
	}
	defer release()

	doc, err := web.ParsePage()
	if err != nil {
		return err
	}

	var loader *library.Loader
	if !cmd.Bool("offline") {
		loader = library.New(library.Options{
			Document: doc,
			Broker:   r.broker,
			API:      r.spotify,
			Logger:   r.logger,
		})
	}

	model := ui.NewModel(ctx, ui.Options{
		Document:   doc,
		Store:      store,
		Loader:     loader,
		Logger:     r.logger,
		SystemDark: lipgloss.HasDarkBackground(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
