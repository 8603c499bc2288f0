package match

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/khinvi/spotify-apple-music-converter/internal/models"
)

// NoMatch is the strategy name reported when the cascade is exhausted.
const NoMatch = "None"

// Catalog is the target catalog search surface the matcher depends on.
type Catalog interface {
	// SearchTracks returns up to limit candidates for a free-text query.
	SearchTracks(ctx context.Context, query string, limit int) ([]models.AppleTrack, error)
	// SearchByISRC returns the candidate whose industry code equals isrc, or
	// nil when the catalog has no exact match.
	SearchByISRC(ctx context.Context, isrc string) (*models.AppleTrack, error)
}

// MatchOutcome is the result of resolving one source track.
type MatchOutcome struct {
	Track      *models.AppleTrack
	Confidence float64
	Strategy   string
}

// Matcher drives the strategy cascade over the target catalog.
type Matcher struct {
	catalog    Catalog
	strategies []Strategy
	logger     *log.Logger
}

// NewMatcher creates a Matcher using the default strategy cascade.
func NewMatcher(catalog Catalog, logger *log.Logger) *Matcher {
	return &Matcher{catalog: catalog, strategies: DefaultStrategies(), logger: logger}
}

// NewMatcherWithStrategies creates a Matcher with a custom cascade.
func NewMatcherWithStrategies(catalog Catalog, strategies []Strategy, logger *log.Logger) *Matcher {
	return &Matcher{catalog: catalog, strategies: strategies, logger: logger}
}

// FindMatch evaluates the cascade in order and returns the first accepted
// candidate with its strategy's fixed confidence. A strategy that fails with
// a retrieval error is logged and skipped. When no strategy accepts a
// candidate the outcome is {nil, 0, "None"}.
func (m *Matcher) FindMatch(ctx context.Context, track models.SpotifyTrack) MatchOutcome {
	for _, strategy := range m.strategies {
		candidate, err := m.evaluate(ctx, strategy, track)
		if err != nil {
			m.logger.Warn("match strategy failed",
				"strategy", strategy.Name, "track", track.Title, "error", err)
			continue
		}
		if candidate != nil {
			return MatchOutcome{Track: candidate, Confidence: strategy.Confidence, Strategy: strategy.Name}
		}
	}

	return MatchOutcome{Confidence: 0, Strategy: NoMatch}
}

// evaluate runs one strategy and returns the accepted candidate, or nil when
// the strategy does not apply or no candidate reaches its threshold.
func (m *Matcher) evaluate(ctx context.Context, strategy Strategy, track models.SpotifyTrack) (*models.AppleTrack, error) {
	if strategy.Kind == SearchISRC {
		if track.ISRC == "" {
			return nil, nil
		}
		candidate, err := m.catalog.SearchByISRC(ctx, track.ISRC)
		if err != nil {
			return nil, err
		}
		if candidate == nil || candidate.ISRC != track.ISRC {
			return nil, nil
		}
		return candidate, nil
	}

	results, err := m.catalog.SearchTracks(ctx, strategy.Query(track), strategy.Limit)
	if err != nil {
		return nil, err
	}

	best, score := bestCandidate(track, results)
	if best == nil || score < strategy.Threshold {
		return nil, nil
	}
	return best, nil
}

// bestCandidate scores every candidate and returns the highest scorer.
func bestCandidate(track models.SpotifyTrack, candidates []models.AppleTrack) (*models.AppleTrack, float64) {
	var best *models.AppleTrack
	bestScore := 0.0

	for i := range candidates {
		score := MatchScore(track, candidates[i])
		if best == nil || score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}

	return best, bestScore
}
