package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytfetch/internal/models"
	"github.com/desertthunder/ytfetch/internal/shared"
	"github.com/raitonoberu/ytmusic"
	"github.com/samber/lo"
)

// YtDLPSearch searches through yt-dlp's ytsearch pseudo-URL.
type YtDLPSearch struct {
	ytdlp   *YtDLP
	timeout time.Duration
	logger  *log.Logger
}

// NewYtDLPSearch creates a yt-dlp backed searcher.
func NewYtDLPSearch(ytdlp *YtDLP, timeout time.Duration, logger *log.Logger) *YtDLPSearch {
	return &YtDLPSearch{ytdlp: ytdlp, timeout: timeout, logger: orDiscard(logger)}
}

func (s *YtDLPSearch) Name() string { return StrategyYtDLP }

// SearchArgs builds the flat, print-only yt-dlp search invocation.
func SearchArgs(query string) []string {
	return []string{
		"--flat-playlist",
		"--no-warnings",
		"--print", TrackTemplate,
		"--",
		"ytsearch" + strconv.Itoa(models.MaxSearchResults) + ":" + query,
	}
}

// Fetch runs one search. Zero parsed lines is an empty success.
func (s *YtDLPSearch) Fetch(ctx context.Context, query string) (models.SearchResults, error) {
	out, err := s.ytdlp.run(ctx, s.timeout, SearchArgs(query)...)
	if err != nil {
		return nil, err
	}
	return models.NewSearchResults(ParseTrackLines(out, s.logger)), nil
}

// TrackSearchFunc returns the first page of track results for a query.
type TrackSearchFunc func(query string) ([]*ytmusic.TrackItem, error)

// YTMusicSearch searches the YouTube Music catalogue.
type YTMusicSearch struct {
	search TrackSearchFunc
}

// NewYTMusicSearch creates a searcher backed by the ytmusic client.
func NewYTMusicSearch() *YTMusicSearch {
	return &YTMusicSearch{search: searchTracks}
}

// NewYTMusicSearchWith creates a searcher with a custom lookup, used by tests.
func NewYTMusicSearchWith(fn TrackSearchFunc) *YTMusicSearch {
	return &YTMusicSearch{search: fn}
}

func searchTracks(query string) ([]*ytmusic.TrackItem, error) {
	result, err := ytmusic.Search(query).Next()
	if err != nil {
		return nil, err
	}
	return result.Tracks, nil
}

func (s *YTMusicSearch) Name() string { return StrategyYTMusic }

// Fetch runs the lookup on its own goroutine so ctx cancellation is honored.
func (s *YTMusicSearch) Fetch(ctx context.Context, query string) (models.SearchResults, error) {
	type reply struct {
		items []*ytmusic.TrackItem
		err   error
	}
	done := make(chan reply, 1)
	go func() {
		items, err := s.search(query)
		done <- reply{items, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("ytmusic: %w: %v", shared.ErrUpstream, r.err)
		}
		return models.NewSearchResults(lo.FilterMap(r.items, trackFromItem)), nil
	}
}

func trackFromItem(item *ytmusic.TrackItem, _ int) (models.Track, bool) {
	if item == nil || item.VideoID == "" {
		return models.Track{}, false
	}

	artists := make([]string, 0, len(item.Artists))
	for _, a := range item.Artists {
		artists = append(artists, a.Name)
	}
	channel := strings.Join(lo.Compact(artists), ", ")
	return models.NewTrack(item.VideoID, item.Title, channel, models.FormatDuration(item.Duration)), true
}
