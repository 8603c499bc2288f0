package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/khinvi/spotify-apple-music-converter/internal/formatter"
	"github.com/khinvi/spotify-apple-music-converter/internal/models"
	"github.com/khinvi/spotify-apple-music-converter/internal/repositories"
	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
	"github.com/khinvi/spotify-apple-music-converter/internal/tasks"
)

// requireConverter returns the conversion engine or an error when either
// service is missing.
func (r *Runner) requireConverter() (*tasks.Converter, error) {
	if r.converter == nil {
		return nil, fmt.Errorf("%w: conversion engine not initialized (both Spotify and Apple Music credentials are required)", shared.ErrServiceUnavailable)
	}
	return r.converter, nil
}

// resolvePlaylist accepts a playlist ID or name. Names are matched
// case-insensitively against the user's playlists when the ID lookup fails.
func (r *Runner) resolvePlaylist(ctx context.Context, idOrName string) (*models.Playlist, error) {
	playlist, err := r.spotify.GetPlaylist(ctx, idOrName)
	if err == nil {
		return playlist, nil
	}

	playlists, listErr := r.spotify.GetPlaylists(ctx)
	if listErr != nil {
		return nil, err
	}
	for i := range playlists {
		if strings.EqualFold(playlists[i].Name, idOrName) {
			return &playlists[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, idOrName)
}

// ConvertRun converts one Spotify playlist to a new Apple Music playlist.
func (r *Runner) ConvertRun(ctx context.Context, cmd *cli.Command) error {
	converter, err := r.requireConverter()
	if err != nil {
		return err
	}

	playlistID := cmd.StringArg("id")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID or name", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := r.restoreSpotifyToken(db); err != nil {
		return err
	}

	playlist, err := r.resolvePlaylist(ctx, playlistID)
	if err != nil {
		return err
	}

	r.logger.Info("starting conversion", "playlist", playlist.Name, "tracks", playlist.TrackCount)
	r.writePlain("Converting '%s' (%d tracks)...\n\n", playlist.Name, playlist.TrackCount)

	// Progress updates stream through a channel so the conversion loop never
	// blocks on terminal output.
	progress := tasks.NewChannelProgress(50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress.Updates() {
			r.writePlain("  [%d/%d] %d matched, %d missed: %s\n",
				update.Completed, update.Total, update.Successful, update.Failed, update.CurrentTrack)
		}
	}()

	result := converter.ConvertPlaylist(ctx, *playlist, progress.Callback())
	progress.Close()
	<-done

	r.printConversionResult(result)

	if _, err := repositories.NewConversionRepository(db).Save(result); err != nil {
		r.logger.Warn("failed to record conversion", "error", err)
	}

	if cmd.Bool("save") || cmd.String("output") != "" {
		path, err := formatter.WriteReport(result, cmd.String("format"), cmd.String("output"))
		if err != nil {
			return err
		}
		r.writePlain("\nReport written to %s\n", path)
	}

	if result.Err != "" {
		return fmt.Errorf("conversion failed: %s", result.Err)
	}
	return nil
}

// ConvertAll converts every Spotify playlist sequentially.
func (r *Runner) ConvertAll(ctx context.Context, cmd *cli.Command) error {
	converter, err := r.requireConverter()
	if err != nil {
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

	playlists, err := r.spotify.GetPlaylists(ctx)
	if err != nil {
		return err
	}
	if len(playlists) == 0 {
		r.writePlain("No playlists to convert.\n")
		return nil
	}

	r.writePlain("Converting %d playlists...\n", len(playlists))

	results := converter.ConvertPlaylists(ctx, playlists, func(index int, p models.ConversionProgress) {
		if p.Completed == 0 {
			r.writePlain("\n[%d/%d] %s\n", index+1, len(playlists), playlists[index].Name)
		}
	})

	repo := repositories.NewConversionRepository(db)
	var succeeded, failed int
	for _, result := range results {
		if _, err := repo.Save(result); err != nil {
			r.logger.Warn("failed to record conversion", "playlist", result.Playlist.ID, "error", err)
		}
		if result.Err == "" {
			succeeded++
		} else {
			failed++
		}
	}

	r.writePlain("\n")
	r.writePlainHeader("Conversion Complete")
	r.writePlain("Playlists converted: %d\n", succeeded)
	if failed > 0 {
		r.writePlain("Playlists failed: %d\n", failed)
		for _, result := range results {
			if result.Err != "" {
				r.writePlain("  - %s: %s\n", result.Playlist.Name, result.Err)
			}
		}
	}

	return nil
}

// ConvertHistory lists stored conversion runs, or shows one run in detail.
func (r *Runner) ConvertHistory(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewConversionRepository(db)

	if id := cmd.String("id"); id != "" {
		record, tracks, err := repo.Get(id)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(map[string]any{"conversion": record, "tracks": tracks}, cmd.Bool("pretty"))
		}

		r.writePlainHeader(record.PlaylistName)
		r.writePlain("Converted: %s\n", record.CreatedAt.Format("2006-01-02 15:04"))
		r.writePlain("Matched %d of %d tracks (%d failed)\n", record.SuccessfulTracks, record.TotalTracks, record.FailedTracks)
		if record.ApplePlaylistID != "" {
			r.writePlain("Apple Music playlist: %s\n", record.ApplePlaylistID)
		}
		if record.Error != "" {
			r.writePlain("Error: %s\n", record.Error)
		}
		for i, track := range tracks {
			marker := "ok"
			if track.Status == models.StatusFailed {
				marker = "MISS"
			}
			r.writePlain("%d. [%s] %s - %s\n", i+1, marker, track.SpotifyTrack.PrimaryArtist(), track.SpotifyTrack.Title)
		}
		return nil
	}

	records, err := repo.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	if len(records) == 0 {
		r.writePlain("No conversions recorded yet.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Conversion History (%d)", len(records)))
	for _, record := range records {
		r.writePlain("%s  %s  %d/%d matched\n",
			record.CreatedAt.Format("2006-01-02 15:04"), record.PlaylistName,
			record.SuccessfulTracks, record.TotalTracks)
		r.writePlain("   ID: %s\n", record.ID)
	}

	return nil
}

// ConvertReport renders a stored conversion as a report file.
func (r *Runner) ConvertReport(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("%w: --id flag is required", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	record, tracks, err := repositories.NewConversionRepository(db).Get(id)
	if err != nil {
		return err
	}

	result := &models.PlaylistConversionResult{
		Playlist:         models.Playlist{ID: record.PlaylistID, Name: record.PlaylistName},
		TotalTracks:      record.TotalTracks,
		SuccessfulTracks: record.SuccessfulTracks,
		FailedTracks:     record.FailedTracks,
		Results:          tracks,
		ApplePlaylistID:  record.ApplePlaylistID,
		Err:              record.Error,
	}

	path, err := formatter.WriteReport(result, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.writePlain("Report written to %s\n", path)
	return nil
}

// printConversionResult writes the post-run summary for a single playlist.
func (r *Runner) printConversionResult(result *models.PlaylistConversionResult) {
	r.writePlain("\n")
	r.writePlainHeader("Conversion Complete")
	r.writePlain("Playlist: %s\n", result.Playlist.Name)
	if result.ApplePlaylistID != "" {
		r.writePlain("Apple Music playlist: %s\n", result.ApplePlaylistID)
	}
	r.writePlain("Matched: %d/%d (%.1f%%)\n", result.SuccessfulTracks, result.TotalTracks, result.SuccessRate()*100)

	if result.FailedTracks > 0 && len(result.Results) > 0 {
		r.writePlain("\nFailed to match %d tracks:\n", result.FailedTracks)
		for _, track := range result.Results {
			if track.Status == models.StatusFailed {
				r.writePlain("  - %s - %s\n", track.SpotifyTrack.PrimaryArtist(), track.SpotifyTrack.Title)
			}
		}
	}
	if result.Err != "" {
		r.writePlain("\nError: %s\n", result.Err)
	}
}

// convertCommand handles playlist conversion operations.
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert playlists from Spotify to Apple Music",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Convert one playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "save", Usage: "Write a conversion report"},
					&cli.StringFlag{Name: "format", Usage: "Report format (csv, markdown, text, json)", Value: formatter.FormatText},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Report file path"},
				},
				Action: r.ConvertRun,
			},
			{
				Name:   "all",
				Usage:  "Convert every playlist, one at a time",
				Action: r.ConvertAll,
			},
			{
				Name:  "report",
				Usage: "Render a stored conversion as a report file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Conversion record ID", Required: true},
					&cli.StringFlag{Name: "format", Usage: "Report format (csv, markdown, text, json)", Value: formatter.FormatText},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Report file path"},
				},
				Action: r.ConvertReport,
			},
			{
				Name:  "history",
				Usage: "Show past conversions",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Show one conversion in detail"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of runs to list", Value: 20},
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Indent JSON output"},
				},
				Action: r.ConvertHistory,
			},
		},
	}
}
