package match

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/khinvi/spotify-apple-music-converter/internal/models"
)

// Composite score weights. Title and artist are the most discriminating
// fields; duration and album corroborate.
const (
	titleWeight    = 0.40
	artistWeight   = 0.35
	durationWeight = 0.15
	albumWeight    = 0.10
)

// StringSimilarity returns an edit-distance ratio in [0, 1] between two
// strings, case-insensitive and whitespace-trimmed. Identical strings score 1.
func StringSimilarity(a, b string) float64 {
	s1 := strings.TrimSpace(strings.ToLower(a))
	s2 := strings.TrimSpace(strings.ToLower(b))

	if s1 == s2 {
		return 1
	}

	maxLen := max(utf8.RuneCountInString(s1), utf8.RuneCountInString(s2))
	if maxLen == 0 {
		return 1
	}

	dist := levenshtein.ComputeDistance(s1, s2)
	return 1 - float64(dist)/float64(maxLen)
}

// DurationSimilarity scores two track durations in milliseconds.
//
// Small deltas are common across catalogs (intro silence, fade edits), so
// differences up to two seconds score 1, with stepped tolerance beyond that.
func DurationSimilarity(d1, d2 int) float64 {
	diff := d1 - d2
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff <= 2000:
		return 1
	case diff <= 5000:
		return 0.8
	case diff <= 10000:
		return 0.5
	}

	// Clamped so the score never climbs back above the 10s tier.
	return max(0, min(0.5, 1-float64(diff)/60000))
}

// ArtistSimilarity scores a candidate artist against every credited source
// artist and returns the best score. A substring containment in either
// direction counts as an exact match.
func ArtistSimilarity(sourceArtists []string, candidateArtist string) float64 {
	candidate := NormalizeArtist(candidateArtist)

	best := 0.0
	for _, artist := range sourceArtists {
		source := NormalizeArtist(artist)

		if strings.Contains(candidate, source) || strings.Contains(source, candidate) {
			return 1
		}

		if sim := StringSimilarity(source, candidate); sim > best {
			best = sim
		}
	}

	return best
}

// MatchScore computes the weighted composite similarity between a source
// track and a target catalog candidate.
func MatchScore(source models.SpotifyTrack, candidate models.AppleTrack) float64 {
	titleSim := StringSimilarity(NormalizeTitle(source.Title), NormalizeTitle(candidate.Title))
	artistSim := ArtistSimilarity(source.Artists, candidate.ArtistName)
	durationSim := DurationSimilarity(source.DurationMS, candidate.DurationMS)
	albumSim := StringSimilarity(NormalizeTitle(source.Album), NormalizeTitle(candidate.AlbumName))

	return titleSim*titleWeight +
		artistSim*artistWeight +
		durationSim*durationWeight +
		albumSim*albumWeight
}
