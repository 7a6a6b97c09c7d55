package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/ytfetch/internal/shared"
)

// Tried in order, first capture wins.
var playlistIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[&?]list=([^&]+)`),
	regexp.MustCompile(`playlist\?list=([^&]+)`),
	regexp.MustCompile(`playlist/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`music\.youtube\.com.*[&?]list=([^&]+)`),
}

const canonicalPlaylistURL = "https://www.youtube.com/playlist?list=%s"

// ExtractPlaylistID returns the playlist identifier embedded in a URL.
func ExtractPlaylistID(url string) (string, bool) {
	for _, re := range playlistIDPatterns {
		if m := re.FindStringSubmatch(url); m != nil && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// CanonicalPlaylistURL rewrites YouTube Music playlist URLs to the main site.
// Other URLs are returned unchanged.
func CanonicalPlaylistURL(url string) (string, error) {
	id, ok := ExtractPlaylistID(url)
	if !ok {
		return "", fmt.Errorf("%w: %s", shared.ErrPlaylistID, url)
	}
	if strings.Contains(url, "music.youtube.com") {
		return fmt.Sprintf(canonicalPlaylistURL, id), nil
	}
	return url, nil
}

// PlaylistURL is the main-site URL for a playlist id.
func PlaylistURL(id string) string {
	return fmt.Sprintf(canonicalPlaylistURL, id)
}
