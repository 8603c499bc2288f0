// package tasks contains the playlist conversion orchestrator. It drives the
// track matcher over every track of a source playlist, aggregates per-track
// outcomes, and reports incremental progress to the caller.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/khinvi/spotify-apple-music-converter/internal/match"
	"github.com/khinvi/spotify-apple-music-converter/internal/models"
	"github.com/khinvi/spotify-apple-music-converter/internal/services"
)

// ProgressFunc receives progress snapshots during a conversion. It is called
// synchronously from the conversion loop and must not block indefinitely.
type ProgressFunc func(models.ConversionProgress)

// TrackMatcher resolves a single source track against the target catalog.
type TrackMatcher interface {
	FindMatch(ctx context.Context, track models.SpotifyTrack) match.MatchOutcome
}

// Converter orchestrates playlist conversions. All collaborators are
// injected; the converter holds no session state of its own.
type Converter struct {
	source  services.SourceCatalog
	matcher TrackMatcher
	library services.TargetLibrary
	logger  *log.Logger
	now     func() time.Time
}

// NewConverter creates a Converter.
func NewConverter(source services.SourceCatalog, matcher TrackMatcher, library services.TargetLibrary, logger *log.Logger) *Converter {
	return &Converter{
		source:  source,
		matcher: matcher,
		library: library,
		logger:  logger,
		now:     time.Now,
	}
}

// ConvertPlaylist converts one source playlist into a new target playlist.
//
// Setup failures (empty playlist, target playlist creation) are reported in
// the result's Err field; per-track failures are recorded in Results and
// never abort the run. The returned Results preserve source order. Progress
// is reported once after listing succeeds and once after every track; list
// failures and empty playlists report no progress at all.
func (c *Converter) ConvertPlaylist(ctx context.Context, playlist models.Playlist, onProgress ProgressFunc) *models.PlaylistConversionResult {
	result := &models.PlaylistConversionResult{Playlist: playlist, Results: []models.ConversionResult{}}

	tracks, err := c.source.ListAllTracks(ctx, playlist.ID)
	if err != nil {
		c.logger.Error("failed to list playlist tracks", "playlist", playlist.ID, "error", err)
		result.Err = err.Error()
		return result
	}

	total := len(tracks)
	result.TotalTracks = total
	if total == 0 {
		result.Err = "Playlist is empty"
		return result
	}

	emit := func(p models.ConversionProgress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	emit(models.ConversionProgress{
		Total:        total,
		Status:       models.ProgressConverting,
		CurrentTrack: tracks[0].Title,
	})

	description := playlist.Description
	if description == "" {
		description = fmt.Sprintf("Converted from Spotify on %s", c.now().Format("2006-01-02"))
	}

	applePlaylistID, err := c.library.CreatePlaylist(ctx, playlist.Name, description)
	if err != nil {
		c.logger.Error("failed to create target playlist", "playlist", playlist.Name, "error", err)
		result.FailedTracks = total
		result.Err = "Failed to create Apple Music playlist"
		return result
	}
	result.ApplePlaylistID = applePlaylistID

	var matchedIDs []string
	for i, track := range tracks {
		outcome := c.matcher.FindMatch(ctx, track)

		if outcome.Track != nil {
			result.Results = append(result.Results, models.ConversionResult{
				SpotifyTrack: track,
				AppleTrack:   outcome.Track,
				Status:       models.StatusSuccess,
				Confidence:   outcome.Confidence,
			})
			matchedIDs = append(matchedIDs, outcome.Track.ID)
			result.SuccessfulTracks++
		} else {
			result.Results = append(result.Results, models.ConversionResult{
				SpotifyTrack: track,
				Status:       models.StatusFailed,
				Err:          "No matching track found",
			})
			result.FailedTracks++
		}

		emit(models.ConversionProgress{
			Total:        total,
			Completed:    i + 1,
			Successful:   result.SuccessfulTracks,
			Failed:       result.FailedTracks,
			Status:       models.ProgressConverting,
			CurrentTrack: tracks[min(i+1, total-1)].Title,
		})
	}

	// Best effort: a write failure here does not change the computed
	// per-track outcomes.
	if len(matchedIDs) > 0 {
		if err := c.library.AddTracks(ctx, applePlaylistID, matchedIDs); err != nil {
			c.logger.Error("failed to add tracks to target playlist",
				"playlist", applePlaylistID, "tracks", len(matchedIDs), "error", err)
		}
	}

	return result
}

// ConvertPlaylists converts several playlists strictly sequentially, one
// fully completed before the next begins. The per-playlist progress callback
// receives the index of the playlist being converted.
func (c *Converter) ConvertPlaylists(ctx context.Context, playlists []models.Playlist, onProgress func(int, models.ConversionProgress)) []*models.PlaylistConversionResult {
	results := make([]*models.PlaylistConversionResult, 0, len(playlists))

	for i, playlist := range playlists {
		var cb ProgressFunc
		if onProgress != nil {
			index := i
			cb = func(p models.ConversionProgress) { onProgress(index, p) }
		}
		results = append(results, c.ConvertPlaylist(ctx, playlist, cb))
	}

	return results
}
