// package formatter renders conversion reports and playlist exports to CSV,
// Markdown, plain text, and JSON.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/khinvi/spotify-apple-music-converter/internal/models"
	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
)

// Format names accepted by WriteReport.
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatJSON     = "json"
)

// ReportToCSV renders a conversion result as CSV with one row per track.
func ReportToCSV(result *models.PlaylistConversionResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Artist", "Album", "Status", "Confidence", "AppleTrackID", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range result.Results {
		appleID := ""
		if r.AppleTrack != nil {
			appleID = r.AppleTrack.ID
		}
		record := []string{
			r.SpotifyTrack.Title,
			strings.Join(r.SpotifyTrack.Artists, "; "),
			r.SpotifyTrack.Album,
			string(r.Status),
			strconv.FormatFloat(r.Confidence, 'f', 2, 64),
			appleID,
			r.Err,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown renders a conversion result as a Markdown summary with a
// per-track table.
func ReportToMarkdown(result *models.PlaylistConversionResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", result.Playlist.Name))

	if result.Err != "" {
		buf.WriteString(fmt.Sprintf("**Error**: %s\n\n", result.Err))
	}
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", result.TotalTracks))
	buf.WriteString(fmt.Sprintf("**Matched**: %d\n", result.SuccessfulTracks))
	buf.WriteString(fmt.Sprintf("**Unmatched**: %d\n", result.FailedTracks))
	buf.WriteString(fmt.Sprintf("**Success rate**: %.0f%%\n", result.SuccessRate()*100))
	if result.ApplePlaylistID != "" {
		buf.WriteString(fmt.Sprintf("**Apple Music playlist**: %s\n", result.ApplePlaylistID))
	}
	buf.WriteString("\n")

	if len(result.Results) > 0 {
		buf.WriteString("## Tracks\n\n")
		buf.WriteString("| # | Title | Artist | Status | Confidence |\n")
		buf.WriteString("|---|-------|--------|--------|------------|\n")
		for i, r := range result.Results {
			status := string(r.Status)
			if r.Err != "" {
				status = fmt.Sprintf("%s (%s)", status, r.Err)
			}
			buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %.2f |\n",
				i+1, r.SpotifyTrack.Title, r.SpotifyTrack.PrimaryArtist(), status, r.Confidence))
		}
	}

	return buf.Bytes(), nil
}

// ReportToText renders a conversion result as plain text.
func ReportToText(result *models.PlaylistConversionResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", result.Playlist.Name))
	if result.Err != "" {
		buf.WriteString(fmt.Sprintf("Error: %s\n", result.Err))
	}
	buf.WriteString(fmt.Sprintf("Matched %d of %d tracks (%d failed)\n\n",
		result.SuccessfulTracks, result.TotalTracks, result.FailedTracks))

	for i, r := range result.Results {
		marker := "ok"
		if r.Status == models.StatusFailed {
			marker = "MISS"
		}
		buf.WriteString(fmt.Sprintf("%d. [%s] %s - %s\n", i+1, marker,
			r.SpotifyTrack.PrimaryArtist(), r.SpotifyTrack.Title))
	}

	return buf.Bytes(), nil
}

// ReportToJSON renders a conversion result as indented JSON.
func ReportToJSON(result *models.PlaylistConversionResult) ([]byte, error) {
	return shared.MarshalJSON(result, true)
}

// WriteReport renders a conversion result in the named format and writes it
// to path. An empty path derives a filename from the playlist ID.
func WriteReport(result *models.PlaylistConversionResult, format, path string) (string, error) {
	var (
		data []byte
		err  error
		ext  string
	)

	switch format {
	case FormatCSV:
		data, err = ReportToCSV(result)
		ext = "csv"
	case FormatMarkdown:
		data, err = ReportToMarkdown(result)
		ext = "md"
	case FormatText, "":
		data, err = ReportToText(result)
		ext = "txt"
	case FormatJSON:
		data, err = ReportToJSON(result)
		ext = "json"
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	if path == "" {
		path = fmt.Sprintf("%s_conversion.%s", result.Playlist.ID, ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

// TracksToCSV renders a playlist's tracks as CSV, for the source playlist
// export command.
func TracksToCSV(tracks []models.SpotifyTrack) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "ISRC"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Title,
			strings.Join(track.Artists, "; "),
			track.Album,
			shared.FormatDuration(track.DurationMS),
			track.ISRC,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}
