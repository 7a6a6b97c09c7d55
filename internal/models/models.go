// package models defines the data model for ytfetch output
package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const (
	MaxPlaylistTracks = 50 // MaxPlaylistTracks caps playlist imports
	MaxSearchResults  = 10 // MaxSearchResults caps search results

	// SentinelID is printed by yt-dlp for fields it could not resolve.
	SentinelID = "NA"

	UntitledTrack       = "Untitled"
	UnknownChannel      = "Unknown Channel"
	UnknownDuration     = "Unknown"
	DefaultPlaylistName = "YouTube Playlist"
	UnknownAuthor       = "Unknown"
)

const thumbnailURLFormat = "https://img.youtube.com/vi/%s/mqdefault.jpg"

// ThumbnailURL derives the medium quality thumbnail for a video id.
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf(thumbnailURLFormat, videoID)
}

// Track is a single playable item.
type Track struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	Thumbnail string `json:"thumbnail"`
	Duration  string `json:"duration,omitempty"`
}

// NewTrack builds a [Track], filling missing title and channel with their defaults.
//
// An empty duration stays empty and is omitted from the JSON output.
func NewTrack(id, title, channel, duration string) Track {
	return Track{
		ID:        id,
		Title:     orDefault(title, UntitledTrack),
		Channel:   orDefault(channel, UnknownChannel),
		Thumbnail: ThumbnailURL(id),
		Duration:  clean(duration),
	}
}

// PlaylistMeta holds the descriptive fields of a playlist as reported upstream.
type PlaylistMeta struct {
	ID          string
	Name        string
	Description string
	Author      string
}

// Playlist is an ordered collection of tracks plus descriptive metadata.
type Playlist struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IsYouTube   bool    `json:"isYouTube"`
	Author      string  `json:"author"`
	CoverImage  *string `json:"coverImage"`
	Tracks      []Track `json:"tracks"`
}

// NewPlaylist builds a [Playlist] from upstream metadata and tracks.
//
// Tracks keep upstream order and are capped at [MaxPlaylistTracks].
// The cover image is the first track's thumbnail, or nil when there are no tracks.
func NewPlaylist(meta PlaylistMeta, tracks []Track) *Playlist {
	author := orDefault(meta.Author, UnknownAuthor)
	tracks = lo.Subset(tracks, 0, MaxPlaylistTracks)
	if tracks == nil {
		tracks = []Track{}
	}

	p := &Playlist{
		ID:          meta.ID,
		Name:        orDefault(meta.Name, DefaultPlaylistName),
		Description: orDefault(meta.Description, "by "+author),
		IsYouTube:   true,
		Author:      author,
		Tracks:      tracks,
	}

	if len(tracks) > 0 {
		cover := tracks[0].Thumbnail
		p.CoverImage = &cover
	}
	return p
}

// SearchResults is a relevance-ordered list of tracks.
type SearchResults []Track

// NewSearchResults caps tracks at [MaxSearchResults]. The result is never nil.
func NewSearchResults(tracks []Track) SearchResults {
	tracks = lo.Subset(tracks, 0, MaxSearchResults)
	if tracks == nil {
		return SearchResults{}
	}
	return SearchResults(tracks)
}

// MarshalJSON encodes a nil list as an empty array.
func (s SearchResults) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Track(s))
}

// PlaylistRef is a playlist id with the main-site URL it resolves to.
type PlaylistRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// FormatDuration renders seconds the way yt-dlp's duration_string does (3:07, 1:02:03).
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return UnknownDuration
	}

	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// clean trims a field and drops the upstream sentinel.
func clean(v string) string {
	v = strings.TrimSpace(v)
	if v == SentinelID {
		return ""
	}
	return v
}

func orDefault(v, fallback string) string {
	return lo.Ternary(clean(v) == "", fallback, clean(v))
}
