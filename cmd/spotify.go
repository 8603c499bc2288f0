package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/khinvi/spotify-apple-music-converter/internal/formatter"
	"github.com/khinvi/spotify-apple-music-converter/internal/repositories"
	"github.com/khinvi/spotify-apple-music-converter/internal/server"
	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
)

const oauthTimeout = 5 * time.Minute

// SpotifyAuth runs the OAuth authorization-code flow against a local
// callback server and stores the resulting token.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	spotify, err := r.requireSpotify()
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}

	handler := server.NewOAuthHandler(spotify.OAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	authURL := spotify.AuthURL(state)
	r.writePlain("Opening your browser for Spotify authorization...\n")
	r.writePlain("If it does not open, visit:\n%s\n", authURL)

	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
	}

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.logger.Info("waiting for OAuth callback", "addr", addr)

	token, err := server.WaitForOAuth(ctx, addr, handler, router, oauthTimeout)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	spotify.SetToken(token)
	if err := repositories.NewTokenRepository(db).Save("spotify", token); err != nil {
		return err
	}

	r.writePlainln("✓ Spotify connected")
	return nil
}

// SpotifyLogout removes the stored Spotify token.
func (r *Runner) SpotifyLogout(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewTokenRepository(db).Delete("spotify"); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			r.writePlain("No stored Spotify session.\n")
			return nil
		}
		return err
	}

	r.writePlain("✓ Spotify session removed\n")
	return nil
}

// SpotifyPlaylists lists the authenticated user's playlists.
func (r *Runner) SpotifyPlaylists(ctx context.Context, cmd *cli.Command) error {
	spotify, err := r.requireSpotify()
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

	playlists, err := spotify.GetPlaylists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Spotify Playlists (%d)", len(playlists)))
	for i, playlist := range playlists {
		r.writePlain("%d. %s (%d tracks, %s)\n", i+1, playlist.Name,
			playlist.TrackCount, shared.VisibilityString(playlist.Public))
		if playlist.Description != "" {
			r.writePlain("   %s\n", playlist.Description)
		}
		r.writePlain("   ID: %s\n", playlist.ID)
	}

	return nil
}

// SpotifyExport lists or exports every track of a playlist.
func (r *Runner) SpotifyExport(ctx context.Context, cmd *cli.Command) error {
	spotify, err := r.requireSpotify()
	if err != nil {
		return err
	}

	playlistID := cmd.StringArg("id")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := r.restoreSpotifyToken(db); err != nil {
		return err
	}

	playlist, err := spotify.GetPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}

	tracks, err := spotify.ListAllTracks(ctx, playlistID)
	if err != nil {
		return err
	}

	if outputPath := cmd.String("output"); outputPath != "" {
		data, err := formatter.TracksToCSV(tracks)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		r.writePlain("✓ Exported %d tracks to %s\n", len(tracks), outputPath)
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d tracks)", playlist.Name, len(tracks)))
	for i, track := range tracks {
		r.writePlain("%d. %s - %s (%s)\n", i+1, track.PrimaryArtist(), track.Title,
			shared.FormatDuration(track.DurationMS))
	}

	return nil
}

// spotifyCommand handles Spotify authentication and playlist browsing.
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "spotify",
		Usage: "Spotify authentication and playlist access",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authorize with Spotify via the browser",
				Action: r.SpotifyAuth,
			},
			{
				Name:   "logout",
				Usage:  "Remove the stored Spotify session",
				Action: r.SpotifyLogout,
			},
			{
				Name:  "playlists",
				Usage: "List your Spotify playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Indent JSON output"},
				},
				Action: r.SpotifyPlaylists,
			},
			{
				Name:      "export",
				Usage:     "List or export the tracks of a playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Indent JSON output"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write tracks to a CSV file"},
				},
				Action: r.SpotifyExport,
			},
		},
	}
}
