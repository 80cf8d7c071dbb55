// package formatter renders loaded playlists as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/soundcheck/internal/library"
	"github.com/desertthunder/soundcheck/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name (case-insensitive, "md" for Markdown).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatCSV, FormatMarkdown, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (want text, csv, markdown or json)", shared.ErrInvalidArgument, s)
}

// Render converts playlists to the given format.
func Render(f Format, playlists []library.Playlist) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(playlists)
	case FormatMarkdown:
		return ExportToMarkdown(playlists), nil
	case FormatJSON:
		data, err := json.MarshalIndent(playlists, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return ExportToText(playlists), nil
	}
}

// ExportToCSV writes one row per track with columns: Playlist, ID, Title, Artist, Preview, Cover
func ExportToCSV(playlists []library.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Playlist", "ID", "Title", "Artist", "Preview", "Cover"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range playlists {
		for _, track := range p.Tracks {
			record := []string{p.Name, track.ID, track.Name, track.Artist, track.Preview, track.Cover}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a section per playlist with numbered tracks linking to their previews
func ExportToMarkdown(playlists []library.Playlist) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Playlists\n")
	if len(playlists) == 0 {
		buf.WriteString("\n" + library.EmptyMessage + "\n")
	}

	for _, p := range playlists {
		fmt.Fprintf(&buf, "\n## %s\n\n", p.Name)
		if len(p.Tracks) == 0 {
			buf.WriteString("_No tracks_\n")
			continue
		}
		for i, track := range p.Tracks {
			preview := ""
			if track.Preview != "" {
				preview = fmt.Sprintf(" [preview](%s)", track.Preview)
			}
			fmt.Fprintf(&buf, "%d. %s%s\n", i+1, track.Label(), preview)
		}
	}

	return buf.Bytes()
}

// ExportToText renders playlists the way the terminal lists them; ♪ marks tracks with a preview
func ExportToText(playlists []library.Playlist) []byte {
	var buf bytes.Buffer

	if len(playlists) == 0 {
		buf.WriteString(library.EmptyMessage + "\n")
		return buf.Bytes()
	}

	for i, p := range playlists {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "%s (%d tracks)\n", p.Name, len(p.Tracks))
		for _, track := range p.Tracks {
			marker := " "
			if track.Preview != "" {
				marker = "♪"
			}
			fmt.Fprintf(&buf, "  %s %s\n", marker, track.Label())
		}
	}

	return buf.Bytes()
}

// WriteExport renders playlists and writes them to path.
func WriteExport(f Format, playlists []library.Playlist, path string) error {
	data, err := Render(f, playlists)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return nil
}
