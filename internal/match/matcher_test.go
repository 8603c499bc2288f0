package match

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/khinvi/spotify-apple-music-converter/internal/models"
	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
)

// mockCatalog implements Catalog with overridable behavior and call counters.
type mockCatalog struct {
	searchFunc  func(ctx context.Context, query string, limit int) ([]models.AppleTrack, error)
	isrcFunc    func(ctx context.Context, isrc string) (*models.AppleTrack, error)
	searchCalls int
	isrcCalls   int
}

func (m *mockCatalog) SearchTracks(ctx context.Context, query string, limit int) ([]models.AppleTrack, error) {
	m.searchCalls++
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockCatalog) SearchByISRC(ctx context.Context, isrc string) (*models.AppleTrack, error) {
	m.isrcCalls++
	if m.isrcFunc != nil {
		return m.isrcFunc(ctx, isrc)
	}
	return nil, nil
}

func testLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

func TestFindMatchISRCShortCircuit(t *testing.T) {
	source := models.SpotifyTrack{
		ID:         "sp1",
		Title:      "Shape of You",
		Artists:    []string{"Ed Sheeran"},
		DurationMS: 233712,
		ISRC:       "GBAHT1600463",
	}
	// Candidate text would score terribly; the identifier is authoritative.
	candidate := models.AppleTrack{
		ID:         "am1",
		Title:      "Completely Different Title",
		ArtistName: "Someone Else",
		DurationMS: 100000,
		ISRC:       "GBAHT1600463",
	}

	catalog := &mockCatalog{
		isrcFunc: func(ctx context.Context, isrc string) (*models.AppleTrack, error) {
			if isrc != source.ISRC {
				t.Errorf("searched wrong code %q", isrc)
			}
			return &candidate, nil
		},
	}

	m := NewMatcher(catalog, testLogger())
	outcome := m.FindMatch(context.Background(), source)

	if outcome.Track == nil || outcome.Track.ID != "am1" {
		t.Fatalf("expected candidate am1, got %+v", outcome.Track)
	}
	if outcome.Confidence != 0.99 {
		t.Errorf("confidence = %v, want 0.99", outcome.Confidence)
	}
	if outcome.Strategy != "ISRC" {
		t.Errorf("strategy = %q, want ISRC", outcome.Strategy)
	}
	if catalog.searchCalls != 0 {
		t.Errorf("text search called %d times after identifier match", catalog.searchCalls)
	}
}

func TestFindMatchISRCCodeMismatchRejected(t *testing.T) {
	source := models.SpotifyTrack{Title: "A", Artists: []string{"B"}, ISRC: "CODE1"}
	catalog := &mockCatalog{
		isrcFunc: func(ctx context.Context, isrc string) (*models.AppleTrack, error) {
			return &models.AppleTrack{ID: "am1", ISRC: "CODE2"}, nil
		},
	}

	m := NewMatcher(catalog, testLogger())
	outcome := m.FindMatch(context.Background(), source)

	if outcome.Strategy == "ISRC" {
		t.Error("mismatched code must not be accepted by the identifier strategy")
	}
	if catalog.searchCalls == 0 {
		t.Error("cascade should fall through to text strategies")
	}
}

func TestFindMatchSkipsISRCWithoutCode(t *testing.T) {
	source := models.SpotifyTrack{Title: "A", Artists: []string{"B"}}
	catalog := &mockCatalog{}

	m := NewMatcher(catalog, testLogger())
	m.FindMatch(context.Background(), source)

	if catalog.isrcCalls != 0 {
		t.Errorf("identifier search called %d times for a track with no code", catalog.isrcCalls)
	}
}

func TestFindMatchExactTitleArtist(t *testing.T) {
	source := models.SpotifyTrack{
		ID:         "sp1",
		Title:      "Hello (Live)",
		Artists:    []string{"Adele"},
		Album:      "25",
		DurationMS: 295000,
	}
	candidate := models.AppleTrack{
		ID:         "am1",
		Title:      "Hello",
		ArtistName: "Adele",
		AlbumName:  "25",
		DurationMS: 295500,
	}

	catalog := &mockCatalog{
		searchFunc: func(ctx context.Context, query string, limit int) ([]models.AppleTrack, error) {
			return []models.AppleTrack{candidate}, nil
		},
	}

	m := NewMatcher(catalog, testLogger())
	outcome := m.FindMatch(context.Background(), source)

	if outcome.Track == nil || outcome.Track.ID != "am1" {
		t.Fatalf("expected candidate am1, got %+v", outcome.Track)
	}
	if outcome.Confidence != 0.90 {
		t.Errorf("confidence = %v, want 0.90", outcome.Confidence)
	}
	if outcome.Strategy != "Exact Title + Artist" {
		t.Errorf("strategy = %q", outcome.Strategy)
	}
	if catalog.searchCalls != 1 {
		t.Errorf("search called %d times, want 1", catalog.searchCalls)
	}
}

func TestFindMatchStrategyErrorFallsThrough(t *testing.T) {
	source := models.SpotifyTrack{
		Title:      "Shape of You",
		Artists:    []string{"Ed Sheeran"},
		Album:      "Divide",
		DurationMS: 233712,
		ISRC:       "GBAHT1600463",
	}
	candidate := models.AppleTrack{
		ID:         "am1",
		Title:      "Shape of You",
		ArtistName: "Ed Sheeran",
		AlbumName:  "Divide",
		DurationMS: 233712,
	}

	catalog := &mockCatalog{
		isrcFunc: func(ctx context.Context, isrc string) (*models.AppleTrack, error) {
			return nil, fmt.Errorf("%w: catalog down", shared.ErrAPIRequest)
		},
		searchFunc: func(ctx context.Context, query string, limit int) ([]models.AppleTrack, error) {
			return []models.AppleTrack{candidate}, nil
		},
	}

	m := NewMatcher(catalog, testLogger())
	outcome := m.FindMatch(context.Background(), source)

	if outcome.Track == nil {
		t.Fatal("failed strategy must not abort the cascade")
	}
	if outcome.Strategy != "Exact Title + Artist" {
		t.Errorf("strategy = %q, want the next tier", outcome.Strategy)
	}
}

func TestFindMatchExhaustion(t *testing.T) {
	source := models.SpotifyTrack{
		Title:      "Obscure B-Side",
		Artists:    []string{"Unknown Band"},
		Album:      "Demos",
		DurationMS: 180000,
	}

	catalog := &mockCatalog{
		searchFunc: func(ctx context.Context, query string, limit int) ([]models.AppleTrack, error) {
			// Nothing remotely similar.
			return []models.AppleTrack{{
				Title:      "Polka Medley",
				ArtistName: "Oompah Orchestra",
				AlbumName:  "Festive Hits",
				DurationMS: 400000,
			}}, nil
		},
	}

	m := NewMatcher(catalog, testLogger())
	outcome := m.FindMatch(context.Background(), source)

	if outcome.Track != nil {
		t.Errorf("expected no candidate, got %+v", outcome.Track)
	}
	if outcome.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", outcome.Confidence)
	}
	if outcome.Strategy != NoMatch {
		t.Errorf("strategy = %q, want %q", outcome.Strategy, NoMatch)
	}
	if catalog.searchCalls != 3 {
		t.Errorf("search called %d times, want one per text strategy", catalog.searchCalls)
	}
}

func TestStrategyQuery(t *testing.T) {
	track := models.SpotifyTrack{Title: "Hello (Live)", Artists: []string{"Adele"}}

	tests := []struct {
		name     string
		strategy Strategy
		want     string
	}{
		{"raw", Strategy{Kind: SearchRawTitleArtist}, "Hello (Live) Adele"},
		{"normalized", Strategy{Kind: SearchNormalizedTitleArtist}, "hello adele"},
		{"title only", Strategy{Kind: SearchTitleOnly}, "Hello (Live)"},
		{"isrc has no text query", Strategy{Kind: SearchISRC}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.strategy.Query(track); got != tt.want {
				t.Errorf("Query() = %q, want %q", got, tt.want)
			}
		})
	}
}
