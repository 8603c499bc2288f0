// package models defines the domain types exchanged between the catalog
// services, the matching pipeline, and the conversion orchestrator, plus the
// persistence contracts implemented in internal/repositories.
package models

import "fmt"

// SpotifyTrack is a track read from the source catalog.
type SpotifyTrack struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	DurationMS int      `json:"duration_ms"`
	ISRC       string   `json:"isrc,omitempty"`
}

// PrimaryArtist returns the first credited artist, or "" when none are listed.
func (t SpotifyTrack) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// AppleTrack is a candidate track from the target catalog.
type AppleTrack struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ArtistName string `json:"artist_name"`
	AlbumName  string `json:"album_name"`
	DurationMS int    `json:"duration_ms"`
	ISRC       string `json:"isrc,omitempty"`
}

// Playlist is a reference to a source playlist.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// ConversionStatus enumerates per-track outcomes.
type ConversionStatus string

const (
	StatusSuccess ConversionStatus = "success"
	StatusFailed  ConversionStatus = "failed"
)

// ConversionResult records the outcome of matching a single source track.
type ConversionResult struct {
	SpotifyTrack SpotifyTrack     `json:"spotify_track"`
	AppleTrack   *AppleTrack      `json:"apple_track,omitempty"`
	Status       ConversionStatus `json:"status"`
	Confidence   float64          `json:"confidence"`
	Err          string           `json:"error,omitempty"`
}

// ProgressStatus enumerates the lifecycle phases of a conversion.
type ProgressStatus string

const (
	ProgressIdle       ProgressStatus = "idle"
	ProgressConverting ProgressStatus = "converting"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressError      ProgressStatus = "error"
)

// ConversionProgress is a snapshot of a running conversion.
type ConversionProgress struct {
	Total        int            `json:"total"`
	Completed    int            `json:"completed"`
	Successful   int            `json:"successful"`
	Failed       int            `json:"failed"`
	CurrentTrack string         `json:"current_track"`
	Status       ProgressStatus `json:"status"`
}

// PlaylistConversionResult is the summary returned for one converted playlist.
type PlaylistConversionResult struct {
	Playlist         Playlist           `json:"playlist"`
	TotalTracks      int                `json:"total_tracks"`
	SuccessfulTracks int                `json:"successful_tracks"`
	FailedTracks     int                `json:"failed_tracks"`
	Results          []ConversionResult `json:"results"`
	ApplePlaylistID  string             `json:"apple_playlist_id,omitempty"`
	Err              string             `json:"error,omitempty"`
}

// SuccessRate returns the fraction of tracks matched, in [0, 1].
func (r PlaylistConversionResult) SuccessRate() float64 {
	if r.TotalTracks == 0 {
		return 0
	}
	return float64(r.SuccessfulTracks) / float64(r.TotalTracks)
}

// Model is the minimal contract for persisted entities.
type Model interface {
	ID() string
	Validate() error
}

// Repository defines CRUD operations for a persisted model type.
type Repository[T Model] interface {
	Create(entity T) error
	Get(id string) (T, error)
	Update(entity T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}

// ValidateRequired returns an error naming the first empty field.
func ValidateRequired(fields map[string]string) error {
	for name, value := range fields {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}
