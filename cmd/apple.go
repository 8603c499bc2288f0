package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
)

// AppleSearch searches the Apple Music catalog for songs.
func (r *Runner) AppleSearch(ctx context.Context, cmd *cli.Command) error {
	apple, err := r.requireApple()
	if err != nil {
		return err
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	tracks, err := apple.SearchTracks(ctx, query, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	if len(tracks) == 0 {
		r.writePlain("No songs found for %q\n", query)
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Apple Music results for %q", query))
	for i, track := range tracks {
		r.writePlain("%d. %s - %s", i+1, track.ArtistName, track.Title)
		if track.AlbumName != "" {
			r.writePlain(" (%s)", track.AlbumName)
		}
		r.writePlain(" [%s]\n", shared.FormatDuration(track.DurationMS))
		r.writePlain("   ID: %s", track.ID)
		if track.ISRC != "" {
			r.writePlain("  ISRC: %s", track.ISRC)
		}
		r.writePlain("\n")
	}

	return nil
}

// AppleCreate creates an empty Apple Music library playlist.
func (r *Runner) AppleCreate(ctx context.Context, cmd *cli.Command) error {
	apple, err := r.requireApple()
	if err != nil {
		return err
	}

	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	id, err := apple.CreatePlaylist(ctx, name, cmd.String("description"))
	if err != nil {
		return err
	}

	r.writePlain("✓ Created playlist '%s'\n", name)
	r.writePlain("  ID: %s\n", id)
	return nil
}

// AppleStorefront prints the storefront used for catalog lookups.
func (r *Runner) AppleStorefront(ctx context.Context, cmd *cli.Command) error {
	apple, err := r.requireApple()
	if err != nil {
		return err
	}

	r.writePlain("Storefront: %s\n", apple.Storefront(ctx))
	return nil
}

// appleCommand handles Apple Music catalog operations.
func appleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "apple",
		Usage: "Apple Music catalog access",
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search the Apple Music catalog for songs",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of results", Value: 10},
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Indent JSON output"},
				},
				Action: r.AppleSearch,
			},
			{
				Name:      "create",
				Usage:     "Create an empty library playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Playlist description"},
				},
				Action: r.AppleCreate,
			},
			{
				Name:   "storefront",
				Usage:  "Show the storefront used for catalog lookups",
				Action: r.AppleStorefront,
			},
		},
	}
}
