// Spotify implementation of [SourceCatalog]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/khinvi/spotify-apple-music-converter/internal/models"
	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	playlistTracksFields = "items(track(id,name,duration_ms,external_ids,artists,album)),total,next"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	URI         string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	ExternalIDs externalIDs     `json:"external_ids"`
	URI         string          `json:"uri"`
}

type playlistTrackItem struct {
	Track *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks represents one page of a playlist's tracks.
type SpotifyPaginatedTracks struct {
	Items []playlistTrackItem `json:"items"`
	Total int                 `json:"total"`
	Next  *string             `json:"next"`
}

type playlistTracksRef struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Public      bool              `json:"public"`
	Tracks      playlistTracksRef `json:"tracks"`
	Images      []SpotifyImage    `json:"images"`
	URI         string            `json:"uri"`
}

// SpotifyPaginatedPlaylists represents one page of the user's playlists.
type SpotifyPaginatedPlaylists struct {
	Items []SpotifyPlaylist `json:"items"`
	Total int               `json:"total"`
	Next  *string           `json:"next"`
}

// SpotifyService implements [SourceCatalog] against the Spotify Web API.
//
// Requests are paced by an internal rate limiter. A 401 response triggers
// exactly one token refresh and retry; a second 401 surfaces as
// [shared.ErrTokenExpired].
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewSpotifyService creates a Spotify client from credentials. An empty
// baseURL selects the public API endpoint.
func NewSpotifyService(cfg shared.SpotifyConfig, baseURL string, logger *log.Logger) (*SpotifyService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"playlist-read-private",
			"playlist-read-collaborative",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(10), 1),
		logger:     logger,
	}, nil
}

func (s *SpotifyService) Name() string { return "Spotify" }

// SetSearchRate adjusts the request pacing. Non-positive values are ignored.
func (s *SpotifyService) SetSearchRate(perSecond float64) {
	if perSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and installs it.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	s.token = token
	return token, nil
}

// OAuthConfig exposes the OAuth2 configuration, for the callback server.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// SetToken installs a previously stored token.
func (s *SpotifyService) SetToken(token *oauth2.Token) {
	s.token = token
}

// Token returns the current token, or nil before authentication.
func (s *SpotifyService) Token() *oauth2.Token {
	return s.token
}

// refreshToken exchanges the refresh token for a new access token.
func (s *SpotifyService) refreshToken(ctx context.Context) error {
	if s.token == nil || s.token.RefreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	refreshed, err := s.config.TokenSource(ctx, s.token).Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	s.token = refreshed
	return nil
}

// doRequest performs an authenticated GET against the Spotify API, refreshing
// the token once on a 401 before giving up.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	return s.request(ctx, endpoint, result, true)
}

func (s *SpotifyService) request(ctx context.Context, endpoint string, result any, allowRefresh bool) error {
	if s.token == nil {
		return shared.ErrNotAuthenticated
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if !allowRefresh {
			return fmt.Errorf("%w: still unauthorized after refresh", shared.ErrTokenExpired)
		}
		s.logger.Debug("spotify token rejected, refreshing", "endpoint", endpoint)
		if err := s.refreshToken(ctx); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
		}
		return s.request(ctx, endpoint, result, false)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// GetPlaylists retrieves all playlists for the authenticated user.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	limit := 50
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

		var page SpotifyPaginatedPlaylists
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return nil, err
		}

		for _, sp := range page.Items {
			playlists = append(playlists, convertPlaylist(sp))
		}

		if page.Next == nil {
			break
		}
		offset += limit
	}

	return playlists, nil
}

// GetPlaylist retrieves a specific playlist by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	var sp SpotifyPlaylist
	if err := s.doRequest(ctx, fmt.Sprintf("/playlists/%s", playlistID), &sp); err != nil {
		return nil, err
	}

	playlist := convertPlaylist(sp)
	return &playlist, nil
}

// ListAllTracks retrieves every track of a playlist, following pagination.
// Unavailable entries (deleted or region-locked tracks come back null) are
// skipped.
func (s *SpotifyService) ListAllTracks(ctx context.Context, playlistID string) ([]models.SpotifyTrack, error) {
	var tracks []models.SpotifyTrack
	limit := 100
	offset := 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d&fields=%s",
			playlistID, limit, offset, url.QueryEscape(playlistTracksFields))

		var page SpotifyPaginatedTracks
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil || item.Track.ID == "" {
				continue
			}
			tracks = append(tracks, convertTrack(*item.Track))
		}

		if page.Next == nil {
			break
		}
		offset += limit
	}

	return tracks, nil
}

func convertPlaylist(sp SpotifyPlaylist) models.Playlist {
	return models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
	}
}

func convertTrack(st SpotifyTrack) models.SpotifyTrack {
	artists := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, a.Name)
	}

	return models.SpotifyTrack{
		ID:         st.ID,
		Title:      st.Name,
		Artists:    artists,
		Album:      st.Album.Name,
		DurationMS: st.DurationMS,
		ISRC:       st.ExternalIDs.ISRC,
	}
}
