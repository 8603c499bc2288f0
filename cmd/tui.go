package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
	"github.com/khinvi/spotify-apple-music-converter/internal/ui"
)

// TUI launches the interactive terminal UI for playlist conversion.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSpotify(); err != nil {
		return err
	}
	if _, err := r.requireConverter(); err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := r.restoreSpotifyToken(db); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	if err := os.MkdirAll("./tmp", 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	fileLogger, err := shared.NewFileLogger("./tmp/s2am-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.spotify, r.converter)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand launches the interactive interface.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse and convert playlists interactively",
		Action: r.TUI,
	}
}
