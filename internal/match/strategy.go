package match

import (
	"fmt"

	"github.com/khinvi/spotify-apple-music-converter/internal/models"
)

// SearchKind selects how a strategy queries the target catalog.
type SearchKind int

const (
	// SearchISRC queries by industry code; equality is authoritative.
	SearchISRC SearchKind = iota
	// SearchRawTitleArtist queries with the raw title and primary artist.
	SearchRawTitleArtist
	// SearchNormalizedTitleArtist queries with normalized title and artist.
	SearchNormalizedTitleArtist
	// SearchTitleOnly queries with the raw title alone.
	SearchTitleOnly
)

// Strategy describes one tier of the matching cascade. Strategies are data;
// the Matcher evaluates them in order with a generic driver.
//
// Confidence is the fixed trust level reported when the strategy accepts a
// candidate. Threshold is the minimum composite score a candidate must reach
// to be accepted; it is ignored for SearchISRC. Limit caps the number of
// search results considered.
type Strategy struct {
	Name       string
	Confidence float64
	Threshold  float64
	Kind       SearchKind
	Limit      int
}

// DefaultStrategies returns the standard cascade, ordered from most to least
// authoritative.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "ISRC", Confidence: 0.99, Kind: SearchISRC},
		{Name: "Exact Title + Artist", Confidence: 0.90, Threshold: 0.85, Kind: SearchRawTitleArtist, Limit: 10},
		{Name: "Fuzzy Title + Artist", Confidence: 0.80, Threshold: 0.75, Kind: SearchNormalizedTitleArtist, Limit: 15},
		{Name: "Title Only", Confidence: 0.60, Threshold: 0.70, Kind: SearchTitleOnly, Limit: 20},
	}
}

// Query builds the catalog search text for this strategy, or "" when the
// strategy does not search by text.
func (s Strategy) Query(track models.SpotifyTrack) string {
	switch s.Kind {
	case SearchRawTitleArtist:
		return fmt.Sprintf("%s %s", track.Title, track.PrimaryArtist())
	case SearchNormalizedTitleArtist:
		return fmt.Sprintf("%s %s", NormalizeTitle(track.Title), NormalizeArtist(track.PrimaryArtist()))
	case SearchTitleOnly:
		return track.Title
	}
	return ""
}
