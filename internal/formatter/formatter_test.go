package formatter

import (
	"encoding/csv"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/soundcheck/internal/library"
	"github.com/desertthunder/soundcheck/internal/shared"
	th "github.com/desertthunder/soundcheck/internal/testing"
)

var playlists = []library.Playlist{
	{
		ID:   "p1",
		Name: "Road Trip",
		Tracks: []library.Track{
			{ID: "t1", Name: "Song One", Artist: "Artist One", Preview: "https://p.scdn.co/1.mp3", Cover: "c1.jpg"},
			{ID: "t2", Name: "Song, Two", Artist: "Artist Two"},
		},
	},
	{ID: "p2", Name: "Empty", Tracks: []library.Track{}},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"CSV", FormatCSV},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"json", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(playlists)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header and 2 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "Playlist,ID,Title,Artist,Preview,Cover" {
			t.Errorf("unexpected headers %v", records[0])
		}
		if records[2][2] != "Song, Two" {
			t.Errorf("expected quoted title to round trip, got %q", records[2][2])
		}
		if records[1][4] != "https://p.scdn.co/1.mp3" {
			t.Errorf("unexpected preview %q", records[1][4])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		output := string(ExportToMarkdown(playlists))

		for _, want := range []string{
			"# Playlists",
			"## Road Trip",
			"1. Song One - Artist One [preview](https://p.scdn.co/1.mp3)",
			"2. Song, Two - Artist Two\n",
			"## Empty",
			"_No tracks_",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown without playlists", func(t *testing.T) {
		if output := string(ExportToMarkdown(nil)); !strings.Contains(output, library.EmptyMessage) {
			t.Errorf("expected empty message, got %q", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		output := string(ExportToText(playlists))

		if !strings.Contains(output, "Road Trip (2 tracks)") {
			t.Errorf("text missing header, got:\n%s", output)
		}
		if !strings.Contains(output, "  ♪ Song One - Artist One\n") {
			t.Errorf("text missing preview marker, got:\n%s", output)
		}
		if !strings.Contains(output, "    Song, Two - Artist Two\n") {
			t.Errorf("text missing plain track, got:\n%s", output)
		}
	})

	t.Run("ExportToText without playlists", func(t *testing.T) {
		if output := string(ExportToText(nil)); output != library.EmptyMessage+"\n" {
			t.Errorf("unexpected output %q", output)
		}
	})

	t.Run("Render JSON", func(t *testing.T) {
		data, err := Render(FormatJSON, playlists)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if !strings.Contains(string(data), `"name": "Road Trip"`) {
			t.Errorf("unexpected JSON %s", data)
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("writes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "playlists.md")
		if err := WriteExport(FormatMarkdown, playlists, path); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "## Road Trip") {
			t.Errorf("unexpected file content:\n%s", content)
		}
	})

	t.Run("unwritable path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "out.csv")
		if err := WriteExport(FormatCSV, playlists, path); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
