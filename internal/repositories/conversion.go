package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/khinvi/spotify-apple-music-converter/internal/models"
	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
)

// ConversionRecord is a stored summary of one completed conversion run.
type ConversionRecord struct {
	ID               string    `json:"id"`
	Seq              int       `json:"-"`
	PlaylistID       string    `json:"playlist_id"`
	PlaylistName     string    `json:"playlist_name"`
	ApplePlaylistID  string    `json:"apple_playlist_id,omitempty"`
	TotalTracks      int       `json:"total_tracks"`
	SuccessfulTracks int       `json:"successful_tracks"`
	FailedTracks     int       `json:"failed_tracks"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ConversionRepository persists conversion runs and their per-track outcomes.
//
// The engine itself never writes here; the CLI records the returned result
// after a run completes.
type ConversionRepository struct {
	db *sql.DB
}

// NewConversionRepository creates a ConversionRepository with the given database connection.
func NewConversionRepository(db *sql.DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}

// Save stores a completed conversion run with its per-track outcomes and
// returns the record's generated ID.
func (r *ConversionRepository) Save(result *models.PlaylistConversionResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("%w: result is required", shared.ErrInvalidInput)
	}

	seq, err := NextSequence(r.db, "conversions")
	if err != nil {
		return "", fmt.Errorf("failed to generate sequence: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := shared.GenerateID()
	_, err = tx.Exec(`
		INSERT INTO conversions (id, seq, playlist_id, playlist_name, apple_playlist_id,
			total_tracks, successful_tracks, failed_tracks, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, seq, result.Playlist.ID, result.Playlist.Name, result.ApplePlaylistID,
		result.TotalTracks, result.SuccessfulTracks, result.FailedTracks, result.Err, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to insert conversion: %w", err)
	}

	for i, track := range result.Results {
		appleID := ""
		if track.AppleTrack != nil {
			appleID = track.AppleTrack.ID
		}
		_, err = tx.Exec(`
			INSERT INTO conversion_tracks (id, conversion_id, position, spotify_track_id,
				title, artist, apple_track_id, status, confidence, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			shared.GenerateID(), id, i, track.SpotifyTrack.ID,
			track.SpotifyTrack.Title, track.SpotifyTrack.PrimaryArtist(),
			appleID, string(track.Status), track.Confidence, track.Err)
		if err != nil {
			return "", fmt.Errorf("failed to insert conversion track %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit conversion: %w", err)
	}

	return id, nil
}

// List returns stored conversion runs, most recent first. A non-positive
// limit returns everything.
func (r *ConversionRepository) List(limit int) ([]ConversionRecord, error) {
	query := `
		SELECT id, seq, playlist_id, playlist_name, COALESCE(apple_playlist_id, ''),
			total_tracks, successful_tracks, failed_tracks, COALESCE(error, ''), created_at
		FROM conversions
		ORDER BY seq DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer rows.Close()

	var records []ConversionRecord
	for rows.Next() {
		var rec ConversionRecord
		err := rows.Scan(&rec.ID, &rec.Seq, &rec.PlaylistID, &rec.PlaylistName, &rec.ApplePlaylistID,
			&rec.TotalTracks, &rec.SuccessfulTracks, &rec.FailedTracks, &rec.Error, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Get returns one stored conversion with its per-track outcomes.
func (r *ConversionRepository) Get(id string) (*ConversionRecord, []models.ConversionResult, error) {
	var rec ConversionRecord
	err := r.db.QueryRow(`
		SELECT id, seq, playlist_id, playlist_name, COALESCE(apple_playlist_id, ''),
			total_tracks, successful_tracks, failed_tracks, COALESCE(error, ''), created_at
		FROM conversions
		WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Seq, &rec.PlaylistID, &rec.PlaylistName, &rec.ApplePlaylistID,
			&rec.TotalTracks, &rec.SuccessfulTracks, &rec.FailedTracks, &rec.Error, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("conversion not found: %s", id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load conversion: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT spotify_track_id, title, artist, COALESCE(apple_track_id, ''),
			status, confidence, COALESCE(error, '')
		FROM conversion_tracks
		WHERE conversion_id = ?
		ORDER BY position ASC`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query conversion tracks: %w", err)
	}
	defer rows.Close()

	var results []models.ConversionResult
	for rows.Next() {
		var (
			spotifyID, title, artist, appleID, status, trackErr string
			confidence                                          float64
		)
		if err := rows.Scan(&spotifyID, &title, &artist, &appleID, &status, &confidence, &trackErr); err != nil {
			return nil, nil, fmt.Errorf("failed to scan conversion track: %w", err)
		}

		result := models.ConversionResult{
			SpotifyTrack: models.SpotifyTrack{ID: spotifyID, Title: title, Artists: []string{artist}},
			Status:       models.ConversionStatus(status),
			Confidence:   confidence,
			Err:          trackErr,
		}
		if appleID != "" {
			result.AppleTrack = &models.AppleTrack{ID: appleID}
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("row iteration error: %w", err)
	}

	return &rec, results, nil
}
