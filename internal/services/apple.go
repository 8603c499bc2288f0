// Apple Music implementation of [TargetCatalog] and [TargetLibrary]
//
// Response types based on https://developer.apple.com/documentation/applemusicapi
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/khinvi/spotify-apple-music-converter/internal/models"
	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
)

const (
	appleBaseURL      = "https://api.music.apple.com/v1"
	defaultStorefront = "us"
	defaultBatchSize  = 100
)

// AppleSongAttributes holds the catalog metadata of a song resource.
type AppleSongAttributes struct {
	Name             string `json:"name"`
	ArtistName       string `json:"artistName"`
	AlbumName        string `json:"albumName"`
	DurationInMillis int    `json:"durationInMillis"`
	ISRC             string `json:"isrc"`
}

// AppleSong represents a song resource from the catalog.
type AppleSong struct {
	ID         string              `json:"id"`
	Type       string              `json:"type"`
	Attributes AppleSongAttributes `json:"attributes"`
}

type appleSearchResponse struct {
	Results struct {
		Songs struct {
			Data []AppleSong `json:"data"`
		} `json:"songs"`
	} `json:"results"`
}

type appleStorefrontResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type applePlaylistResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type libraryResource struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// AppleMusicService implements [TargetCatalog] and [TargetLibrary] against
// the Apple Music API.
//
// Catalog reads authenticate with the developer token; library writes also
// send the music user token. Requests are paced by an internal rate limiter.
type AppleMusicService struct {
	developerToken string
	musicUserToken string
	storefront     string
	httpClient     *http.Client
	baseURL        string
	limiter        *rate.Limiter
	batchSize      int
	logger         *log.Logger
}

// NewAppleMusicService creates an Apple Music client from credentials. An
// empty baseURL selects the public API endpoint.
func NewAppleMusicService(cfg shared.AppleMusicConfig, baseURL string, logger *log.Logger) (*AppleMusicService, error) {
	if cfg.DeveloperToken == "" {
		return nil, fmt.Errorf("%w: apple developer_token", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = appleBaseURL
	}

	return &AppleMusicService{
		developerToken: cfg.DeveloperToken,
		musicUserToken: cfg.MusicUserToken,
		storefront:     cfg.Storefront,
		httpClient:     http.DefaultClient,
		baseURL:        baseURL,
		limiter:        rate.NewLimiter(rate.Limit(10), 1),
		batchSize:      defaultBatchSize,
		logger:         logger,
	}, nil
}

func (s *AppleMusicService) Name() string { return "Apple Music" }

// SetSearchRate adjusts the request pacing. Non-positive values are ignored.
func (s *AppleMusicService) SetSearchRate(perSecond float64) {
	if perSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// SetBatchSize adjusts how many tracks are added per library write.
// Non-positive values are ignored.
func (s *AppleMusicService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// doRequest performs an authenticated request against the Apple Music API.
func (s *AppleMusicService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.developerToken)
	req.Header.Set("Content-Type", "application/json")
	if s.musicUserToken != "" {
		req.Header.Set("Music-User-Token", s.musicUserToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: apple music status %d", shared.ErrNotAuthenticated, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: apple music status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Storefront returns the user's storefront, looking it up once and caching
// the answer on the service. Falls back to "us".
func (s *AppleMusicService) Storefront(ctx context.Context) string {
	if s.storefront != "" {
		return s.storefront
	}

	var resp appleStorefrontResponse
	if err := s.doRequest(ctx, http.MethodGet, "/me/storefront", nil, &resp); err != nil {
		s.logger.Warn("storefront lookup failed, using default", "error", err)
		s.storefront = defaultStorefront
		return s.storefront
	}

	if len(resp.Data) > 0 && resp.Data[0].ID != "" {
		s.storefront = resp.Data[0].ID
	} else {
		s.storefront = defaultStorefront
	}

	return s.storefront
}

// SearchTracks searches the catalog for songs matching a free-text query.
func (s *AppleMusicService) SearchTracks(ctx context.Context, query string, limit int) ([]models.AppleTrack, error) {
	if limit <= 0 {
		limit = 25
	}

	endpoint := fmt.Sprintf("/catalog/%s/search?term=%s&types=songs&limit=%d",
		s.Storefront(ctx), url.QueryEscape(query), limit)

	var resp appleSearchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	songs := resp.Results.Songs.Data
	tracks := make([]models.AppleTrack, 0, len(songs))
	for _, song := range songs {
		tracks = append(tracks, convertSong(song))
	}

	return tracks, nil
}

// SearchByISRC returns the catalog song carrying exactly the given industry
// code, or nil when the top result's code differs.
func (s *AppleMusicService) SearchByISRC(ctx context.Context, isrc string) (*models.AppleTrack, error) {
	tracks, err := s.SearchTracks(ctx, isrc, 1)
	if err != nil {
		return nil, err
	}

	if len(tracks) > 0 && tracks[0].ISRC == isrc {
		return &tracks[0], nil
	}

	return nil, nil
}

// GetTrack fetches a single catalog song by ID.
func (s *AppleMusicService) GetTrack(ctx context.Context, trackID string) (*models.AppleTrack, error) {
	endpoint := fmt.Sprintf("/catalog/%s/songs/%s", s.Storefront(ctx), trackID)

	var resp struct {
		Data []AppleSong `json:"data"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: song %s", shared.ErrTrackNotFound, trackID)
	}

	track := convertSong(resp.Data[0])
	return &track, nil
}

// CreatePlaylist creates a library playlist and returns its ID.
func (s *AppleMusicService) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	if s.musicUserToken == "" {
		return "", fmt.Errorf("%w: music user token required for library writes", shared.ErrNotAuthenticated)
	}

	attributes := map[string]any{"name": name}
	if description != "" {
		attributes["description"] = map[string]string{"standard": description}
	}
	body := map[string]any{
		"data": []map[string]any{{"attributes": attributes}},
	}

	var resp applePlaylistResponse
	if err := s.doRequest(ctx, http.MethodPost, "/me/library/playlists", body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrPlaylistCreate, err)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("%w: empty creation response", shared.ErrPlaylistCreate)
	}

	return resp.Data[0].ID, nil
}

// AddTracks inserts catalog song IDs into a library playlist, one request
// per batch of at most batchSize IDs.
func (s *AppleMusicService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("/me/library/playlists/%s/tracks", playlistID)

	for start := 0; start < len(trackIDs); start += s.batchSize {
		end := min(start+s.batchSize, len(trackIDs))

		batch := make([]libraryResource, 0, end-start)
		for _, id := range trackIDs[start:end] {
			batch = append(batch, libraryResource{ID: id, Type: "songs"})
		}

		body := map[string]any{"data": batch}
		if err := s.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			return fmt.Errorf("failed to add tracks batch at %d: %w", start, err)
		}
	}

	return nil
}

func convertSong(song AppleSong) models.AppleTrack {
	return models.AppleTrack{
		ID:         song.ID,
		Title:      song.Attributes.Name,
		ArtistName: song.Attributes.ArtistName,
		AlbumName:  song.Attributes.AlbumName,
		DurationMS: song.Attributes.DurationInMillis,
		ISRC:       song.Attributes.ISRC,
	}
}
