package services

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytfetch/internal/models"
	"github.com/desertthunder/ytfetch/internal/shared"
)

// FieldSeparator joins fields in yt-dlp --print templates.
const FieldSeparator = "|||"

// Print templates for the yt-dlp strategies.
var (
	TrackTemplate    = strings.Join([]string{"%(id)s", "%(title)s", "%(uploader)s", "%(duration_string)s"}, FieldSeparator)
	PlaylistTemplate = strings.Join([]string{"%(playlist_title)s", "%(playlist_uploader)s", "%(playlist_id)s"}, FieldSeparator)
)

// ParseTrackLine parses "id|||title|||uploader|||duration".
//
// Only id and title are required. Missing uploader becomes [models.UnknownChannel] and a
// missing duration [models.UnknownDuration].
func ParseTrackLine(line string) (models.Track, error) {
	fields := splitFields(line)
	if len(fields) < 2 {
		return models.Track{}, fmt.Errorf("%w: %q", shared.ErrMalformedLine, line)
	}

	id := fields[0]
	if id == "" || id == models.SentinelID {
		return models.Track{}, fmt.Errorf("%w: %q", shared.ErrSentinelID, line)
	}
	if fields[1] == "" {
		return models.Track{}, fmt.Errorf("%w: empty title in %q", shared.ErrMalformedLine, line)
	}

	var channel, duration string
	if len(fields) > 2 {
		channel = fields[2]
	}
	if len(fields) > 3 {
		duration = fields[3]
	}
	if duration == "" || duration == models.SentinelID {
		duration = models.UnknownDuration
	}

	return models.NewTrack(id, fields[1], channel, duration), nil
}

// ParseTrackLines parses every non-blank line of out, skipping the ones [ParseTrackLine] rejects.
//
// The returned slice is never nil.
func ParseTrackLines(out []byte, logger *log.Logger) []models.Track {
	tracks := []models.Track{}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		track, err := ParseTrackLine(line)
		if err != nil {
			if logger != nil {
				logger.Warn("skipping line", "line", lineNo, "err", err)
			}
			continue
		}
		tracks = append(tracks, track)
	}

	if err := scanner.Err(); err != nil && logger != nil {
		logger.Warn("stopped reading yt-dlp output", "err", err)
	}
	return tracks
}

// ParsePlaylistLine parses "title|||uploader|||id" from the metadata call.
func ParsePlaylistLine(line string) (models.PlaylistMeta, error) {
	fields := splitFields(line)
	if len(fields) < 3 {
		return models.PlaylistMeta{}, fmt.Errorf("%w: %q", shared.ErrMalformedLine, line)
	}

	meta := models.PlaylistMeta{Name: fields[0], Author: fields[1], ID: fields[2]}
	for _, f := range []*string{&meta.Name, &meta.Author, &meta.ID} {
		if *f == models.SentinelID {
			*f = ""
		}
	}
	return meta, nil
}

func splitFields(line string) []string {
	fields := strings.Split(strings.TrimSpace(line), FieldSeparator)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
