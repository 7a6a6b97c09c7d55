// package formatter renders fetch results as JSON (the machine contract) or as CSV, Markdown and plain text for people
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/ytfetch/internal/models"
	"github.com/desertthunder/ytfetch/internal/shared"
)

// Format selects an output rendering.
type Format string

const (
	JSON     Format = "json"
	Text     Format = "text"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// Formats lists the accepted --format values.
var Formats = []Format{JSON, Text, CSV, Markdown}

// ParseFormat validates a --format value. Empty selects JSON.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return JSON, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrUsage, s)
}

// WriteJSON writes v as a single line of JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// RenderPlaylist writes a playlist in the given format.
func RenderPlaylist(w io.Writer, p *models.Playlist, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case JSON, "":
		return WriteJSON(w, p)
	case CSV:
		data, err = TracksToCSV(p.Tracks)
	case Markdown:
		data, err = PlaylistToMarkdown(p)
	case Text:
		data, err = PlaylistToText(p)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrUsage, format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// RenderSearch writes search results in the given format.
func RenderSearch(w io.Writer, results models.SearchResults, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case JSON, "":
		return WriteJSON(w, results)
	case CSV:
		data, err = TracksToCSV(results)
	case Markdown:
		data, err = TracksToMarkdown(results)
	case Text:
		data, err = TracksToText(results)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrUsage, format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// TracksToCSV converts tracks to CSV with columns: ID, Title, Channel, Duration, Thumbnail
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Channel", "Duration", "Thumbnail"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{track.ID, track.Title, track.Channel, track.Duration, track.Thumbnail}
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

// PlaylistToMarkdown renders a playlist with its cover image and a numbered track list
func PlaylistToMarkdown(p *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", p.Name)
	if p.CoverImage != nil {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", *p.CoverImage)
	}
	if p.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", p.Description)
	}
	fmt.Fprintf(&buf, "**Author**: %s\n", p.Author)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(p.Tracks))

	buf.WriteString("## Tracks\n\n")
	tracks, _ := TracksToMarkdown(p.Tracks)
	buf.Write(tracks)

	return buf.Bytes(), nil
}

// TracksToMarkdown renders a numbered list linking each track to its watch page
func TracksToMarkdown(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. [%s](https://www.youtube.com/watch?v=%s) - %s%s\n",
			i+1, track.Title, track.ID, track.Channel, durationSuffix(track))
	}
	return buf.Bytes(), nil
}

// PlaylistToText converts a playlist to plain text format
func PlaylistToText(p *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", p.Name)
	fmt.Fprintf(&buf, "Author: %s\n", p.Author)
	if p.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", p.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(p.Tracks))

	tracks, _ := TracksToText(p.Tracks)
	buf.Write(tracks)
	return buf.Bytes(), nil
}

// TracksToText renders one "n. Channel - Title [duration]" line per track
func TracksToText(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, track.Channel, track.Title, durationSuffix(track))
	}
	return buf.Bytes(), nil
}

func durationSuffix(track models.Track) string {
	if track.Duration == "" {
		return ""
	}
	return " [" + track.Duration + "]"
}
