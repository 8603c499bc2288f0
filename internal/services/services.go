// package services contains the catalog clients the conversion engine
// depends on. The engine consumes the interfaces below; the Spotify and
// Apple Music implementations own their HTTP details, auth handling, and
// request pacing.
package services

import (
	"context"

	"github.com/khinvi/spotify-apple-music-converter/internal/models"
)

// SourceCatalog reads playlists and tracks from the source music service.
type SourceCatalog interface {
	// GetPlaylists returns every playlist owned or followed by the user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)
	// GetPlaylist returns a single playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)
	// ListAllTracks returns every track of a playlist in playlist order,
	// following pagination internally.
	ListAllTracks(ctx context.Context, playlistID string) ([]models.SpotifyTrack, error)
}

// TargetCatalog searches the target music service's catalog.
type TargetCatalog interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]models.AppleTrack, error)
	// SearchByISRC returns the track whose industry code equals isrc, or nil
	// when there is no exact match.
	SearchByISRC(ctx context.Context, isrc string) (*models.AppleTrack, error)
}

// TargetLibrary mutates the user's library on the target music service.
type TargetLibrary interface {
	// CreatePlaylist creates a library playlist and returns its ID.
	CreatePlaylist(ctx context.Context, name, description string) (string, error)
	// AddTracks inserts catalog track IDs into a library playlist, chunking
	// into batches internally.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
}
