package formatter

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khinvi/spotify-apple-music-converter/internal/models"
)

func sampleResult() *models.PlaylistConversionResult {
	return &models.PlaylistConversionResult{
		Playlist:         models.Playlist{ID: "p1", Name: "Road Trip"},
		TotalTracks:      2,
		SuccessfulTracks: 1,
		FailedTracks:     1,
		ApplePlaylistID:  "lib.9",
		Results: []models.ConversionResult{
			{
				SpotifyTrack: models.SpotifyTrack{ID: "sp1", Title: "Alpha", Artists: []string{"Band", "Guest"}, Album: "Record"},
				AppleTrack:   &models.AppleTrack{ID: "am1"},
				Status:       models.StatusSuccess,
				Confidence:   0.99,
			},
			{
				SpotifyTrack: models.SpotifyTrack{ID: "sp2", Title: "Beta", Artists: []string{"Band"}},
				Status:       models.StatusFailed,
				Err:          "No matching track found",
			},
		},
	}
}

func TestReportToCSV(t *testing.T) {
	data, err := ReportToCSV(sampleResult())
	if err != nil {
		t.Fatalf("ReportToCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Title,Artist,Album") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "Band; Guest") || !strings.Contains(lines[1], "0.99") {
		t.Errorf("unexpected row %q", lines[1])
	}
	if !strings.Contains(lines[2], "No matching track found") {
		t.Errorf("unexpected row %q", lines[2])
	}
}

func TestReportToMarkdown(t *testing.T) {
	data, err := ReportToMarkdown(sampleResult())
	if err != nil {
		t.Fatalf("ReportToMarkdown: %v", err)
	}

	text := string(data)
	for _, want := range []string{
		"# Road Trip",
		"**Matched**: 1",
		"**Success rate**: 50%",
		"**Apple Music playlist**: lib.9",
		"| 1 | Alpha | Band | success | 0.99 |",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q:\n%s", want, text)
		}
	}
}

func TestReportToText(t *testing.T) {
	data, err := ReportToText(sampleResult())
	if err != nil {
		t.Fatalf("ReportToText: %v", err)
	}

	text := string(data)
	if !strings.Contains(text, "Matched 1 of 2 tracks (1 failed)") {
		t.Errorf("unexpected summary:\n%s", text)
	}
	if !strings.Contains(text, "[ok] Band - Alpha") || !strings.Contains(text, "[MISS] Band - Beta") {
		t.Errorf("unexpected track lines:\n%s", text)
	}
}

func TestReportToJSON(t *testing.T) {
	data, err := ReportToJSON(sampleResult())
	if err != nil {
		t.Fatalf("ReportToJSON: %v", err)
	}

	var decoded models.PlaylistConversionResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Playlist.Name != "Road Trip" || len(decoded.Results) != 2 {
		t.Errorf("unexpected decoded result %+v", decoded)
	}
}

func TestWriteReport(t *testing.T) {
	t.Run("Writes Named Format", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.md")

		got, err := WriteReport(sampleResult(), FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteReport: %v", err)
		}
		if got != path {
			t.Errorf("path = %q, want %q", got, path)
		}
	})

	t.Run("Derives Filename", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		got, err := WriteReport(sampleResult(), FormatCSV, "")
		if err != nil {
			t.Fatalf("WriteReport: %v", err)
		}
		if got != "p1_conversion.csv" {
			t.Errorf("derived path = %q", got)
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		if _, err := WriteReport(sampleResult(), "yaml", ""); err == nil {
			t.Error("expected an error for unknown format")
		}
	})
}

func TestTracksToCSV(t *testing.T) {
	tracks := []models.SpotifyTrack{
		{ID: "sp1", Title: "Alpha", Artists: []string{"Band"}, Album: "Record", DurationMS: 200000, ISRC: "CODE1"},
	}

	data, err := TracksToCSV(tracks)
	if err != nil {
		t.Fatalf("TracksToCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "3:20") {
		t.Errorf("expected formatted duration, got %q", lines[1])
	}
}
