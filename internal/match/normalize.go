// package match implements the track resolution pipeline: text
// normalization, field similarity scoring, and the ordered strategy cascade
// that resolves a source track to a target catalog candidate.
package match

import (
	"regexp"
	"strings"
)

var (
	featPattern    = regexp.MustCompile(`(?i)\s*\(feat\..*?\)\s*`)
	ftPattern      = regexp.MustCompile(`(?i)\s*\(ft\..*?\)\s*`)
	withPattern    = regexp.MustCompile(`(?i)\s*\(with.*?\)\s*`)
	livePattern    = regexp.MustCompile(`(?i)\s*\(live\b.*?\)\s*`)
	versionPattern = regexp.MustCompile(`(?i)\s*-\s*(remaster|remastered|remix|edit|version|deluxe|explicit|clean).*$`)
	bracketPattern = regexp.MustCompile(`\s*\[.*?\]\s*`)
	commaPattern   = regexp.MustCompile(`\s*,\s*`)
	ampPattern     = regexp.MustCompile(`\s*&\s*`)
	symbolPattern  = regexp.MustCompile(`[^\w\s]`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// NormalizeTitle canonicalizes a track or album title for comparison.
//
// Lower-cases, strips featured-artist and live parentheticals, trailing
// remaster/remix/edition qualifiers, and bracketed segments, then replaces
// punctuation with spaces and collapses whitespace. Idempotent.
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)
	s = featPattern.ReplaceAllString(s, "")
	s = ftPattern.ReplaceAllString(s, "")
	s = withPattern.ReplaceAllString(s, "")
	s = livePattern.ReplaceAllString(s, "")
	s = versionPattern.ReplaceAllString(s, "")
	s = bracketPattern.ReplaceAllString(s, "")
	s = symbolPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeArtist canonicalizes an artist name for comparison.
//
// Lower-cases, turns comma separators into spaces, spells out "&" as "and",
// replaces punctuation with spaces, and collapses whitespace. Idempotent.
func NormalizeArtist(s string) string {
	s = strings.ToLower(s)
	s = commaPattern.ReplaceAllString(s, " ")
	s = ampPattern.ReplaceAllString(s, " and ")
	s = symbolPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
