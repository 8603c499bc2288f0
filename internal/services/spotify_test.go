package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
)

func newTestSpotify(t *testing.T, baseURL string) *SpotifyService {
	t.Helper()

	svc, err := NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "client",
		ClientSecret: "secret",
	}, baseURL, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewSpotifyService: %v", err)
	}

	svc.limiter = rate.NewLimiter(rate.Inf, 0)
	svc.SetToken(&oauth2.Token{AccessToken: "valid-token"})
	return svc
}

func TestNewSpotifyService(t *testing.T) {
	t.Run("Missing Credentials", func(t *testing.T) {
		_, err := NewSpotifyService(shared.SpotifyConfig{}, "", shared.NewLogger(io.Discard))
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Default BaseURL", func(t *testing.T) {
		svc, err := NewSpotifyService(shared.SpotifyConfig{ClientID: "a", ClientSecret: "b"}, "", shared.NewLogger(io.Discard))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if svc.baseURL != spotifyBaseURL {
			t.Errorf("expected default baseURL, got %s", svc.baseURL)
		}
	})

	t.Run("Default Redirect URI", func(t *testing.T) {
		svc, _ := NewSpotifyService(shared.SpotifyConfig{ClientID: "a", ClientSecret: "b"}, "", shared.NewLogger(io.Discard))
		if svc.config.RedirectURL != "http://localhost:8080/callback" {
			t.Errorf("unexpected redirect URL %s", svc.config.RedirectURL)
		}
	})
}

func TestGetPlaylistsPagination(t *testing.T) {
	requests := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		offset := r.URL.Query().Get("offset")

		page := SpotifyPaginatedPlaylists{Total: 3}
		if offset == "0" {
			next := server.URL + "/me/playlists?offset=50"
			page.Next = &next
			page.Items = []SpotifyPlaylist{
				{ID: "p1", Name: "First", Tracks: playlistTracksRef{Total: 10}},
				{ID: "p2", Name: "Second", Public: true},
			}
		} else {
			page.Items = []SpotifyPlaylist{{ID: "p3", Name: "Third"}}
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	svc := newTestSpotify(t, server.URL)

	playlists, err := svc.GetPlaylists(context.Background())
	if err != nil {
		t.Fatalf("GetPlaylists: %v", err)
	}

	if len(playlists) != 3 {
		t.Fatalf("expected 3 playlists, got %d", len(playlists))
	}
	if requests != 2 {
		t.Errorf("expected 2 page requests, got %d", requests)
	}
	if playlists[0].ID != "p1" || playlists[0].TrackCount != 10 {
		t.Errorf("unexpected first playlist %+v", playlists[0])
	}
	if !playlists[1].Public {
		t.Error("expected second playlist to be public")
	}
}

func TestListAllTracks(t *testing.T) {
	t.Run("Filters Null Tracks And Paginates", func(t *testing.T) {
		requests := 0
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			offset := r.URL.Query().Get("offset")
			if r.URL.Query().Get("fields") == "" {
				t.Error("expected fields filter in query")
			}

			if offset == "0" {
				next := server.URL + "/next"
				fmt.Fprintf(w, `{
					"items": [
						{"track": {"id": "t1", "name": "Alpha", "duration_ms": 200000,
							"artists": [{"name": "Band"}, {"name": "Guest"}],
							"album": {"name": "Record"},
							"external_ids": {"isrc": "CODE1"}}},
						{"track": null},
						{"track": {"id": "t2", "name": "Beta", "duration_ms": 180000,
							"artists": [{"name": "Band"}], "album": {"name": "Record"}}}
					],
					"total": 3, "next": %q}`, next)
				return
			}
			fmt.Fprint(w, `{"items": [{"track": {"id": "t3", "name": "Gamma",
				"artists": [{"name": "Band"}], "album": {"name": "Record"}}}],
				"total": 3, "next": null}`)
		}))
		defer server.Close()

		svc := newTestSpotify(t, server.URL)

		tracks, err := svc.ListAllTracks(context.Background(), "playlist1")
		if err != nil {
			t.Fatalf("ListAllTracks: %v", err)
		}

		if len(tracks) != 3 {
			t.Fatalf("expected 3 tracks after filtering, got %d", len(tracks))
		}
		if requests != 2 {
			t.Errorf("expected 2 page requests, got %d", requests)
		}
		if tracks[0].ID != "t1" || tracks[0].ISRC != "CODE1" {
			t.Errorf("unexpected first track %+v", tracks[0])
		}
		if len(tracks[0].Artists) != 2 || tracks[0].Artists[0] != "Band" {
			t.Errorf("unexpected artists %v", tracks[0].Artists)
		}
		if tracks[2].Title != "Gamma" {
			t.Errorf("order not preserved: %+v", tracks[2])
		}
	})

	t.Run("Not Authenticated", func(t *testing.T) {
		svc := newTestSpotify(t, "http://example.com")
		svc.token = nil

		_, err := svc.ListAllTracks(context.Background(), "p")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestUnauthorizedRetry(t *testing.T) {
	t.Run("Refreshes Once Then Succeeds", func(t *testing.T) {
		apiCalls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/token" {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"access_token": "fresh-token", "token_type": "Bearer", "refresh_token": "r2"}`)
				return
			}

			apiCalls++
			if r.Header.Get("Authorization") != "Bearer fresh-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprint(w, `{"id": "p1", "name": "Mix", "tracks": {"total": 1}}`)
		}))
		defer server.Close()

		svc := newTestSpotify(t, server.URL)
		svc.config.Endpoint.TokenURL = server.URL + "/token"
		svc.SetToken(&oauth2.Token{
			AccessToken:  "stale-token",
			RefreshToken: "r1",
			Expiry:       time.Now().Add(-time.Hour),
		})

		playlist, err := svc.GetPlaylist(context.Background(), "p1")
		if err != nil {
			t.Fatalf("GetPlaylist: %v", err)
		}
		if playlist.Name != "Mix" {
			t.Errorf("unexpected playlist %+v", playlist)
		}
		if apiCalls != 2 {
			t.Errorf("expected exactly 2 API calls, got %d", apiCalls)
		}
	})

	t.Run("Second 401 Surfaces ErrTokenExpired", func(t *testing.T) {
		apiCalls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/token" {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"access_token": "fresh-token", "token_type": "Bearer"}`)
				return
			}
			apiCalls++
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		svc := newTestSpotify(t, server.URL)
		svc.config.Endpoint.TokenURL = server.URL + "/token"
		svc.SetToken(&oauth2.Token{
			AccessToken:  "stale-token",
			RefreshToken: "r1",
			Expiry:       time.Now().Add(-time.Hour),
		})

		_, err := svc.GetPlaylist(context.Background(), "p1")
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
		if apiCalls != 2 {
			t.Errorf("expected exactly 2 API calls (no retry loop), got %d", apiCalls)
		}
	})

	t.Run("No Refresh Token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		svc := newTestSpotify(t, server.URL)

		_, err := svc.GetPlaylist(context.Background(), "p1")
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})
}
