package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytfetch/internal/models"
	"github.com/desertthunder/ytfetch/internal/shared"
	"github.com/samber/lo"
)

const (
	defaultScrapeBaseURL = "https://www.youtube.com"
	defaultScrapeTimeout = 10 * time.Second
	maxPageSize          = 8 << 20
)

var (
	videoRunsRe       = regexp.MustCompile(`"videoId":"([^"]+)".*?"title":\{"runs":\[\{"text":"([^"]+)".*?"ownerText":\{"runs":\[\{"text":"([^"]+)"`)
	videoSimpleTextRe = regexp.MustCompile(`"videoId":"([^"]+)".*?"simpleText":"([^"]+)"`)
	playlistVideoRe   = regexp.MustCompile(`"videoId":"([^"]+)".*?"title":\{"runs":\[\{"text":"([^"]+)"`)
	playlistTitleRe   = regexp.MustCompile(`"title":"([^"]+)".*?"ownerText"`)
	playlistOwnerRe   = regexp.MustCompile(`"ownerText":\{"runs":\[\{"text":"([^"]+)"`)
)

// Scraper fetches YouTube pages the way a browser would.
type Scraper struct {
	BaseURL   string
	UserAgent string
	// Headers, when set, are copied onto every request.
	Headers *shared.CurlHeaders

	client *http.Client
	logger *log.Logger
}

// NewScraper creates a scraper from configuration.
func NewScraper(config shared.ScrapeConfig, logger *log.Logger) *Scraper {
	timeout := lo.Ternary(config.Timeout.Duration > 0, config.Timeout.Duration, defaultScrapeTimeout)
	return &Scraper{
		BaseURL:   lo.CoalesceOrEmpty(strings.TrimRight(config.BaseURL, "/"), defaultScrapeBaseURL),
		UserAgent: config.UserAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    orDiscard(logger),
	}
}

// WithClient replaces the HTTP client.
func (s *Scraper) WithClient(c *http.Client) *Scraper {
	s.client = c
	return s
}

func (s *Scraper) get(ctx context.Context, endpoint string, query url.Values) (string, error) {
	pageURL := s.BaseURL + endpoint
	if len(query) > 0 {
		pageURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	s.Headers.Apply(req)

	s.logger.Debug("fetching page", "url", pageURL)
	resp, err := s.client.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		switch {
		case errors.Is(err, context.Canceled):
			return "", context.Canceled
		case errors.As(err, &netErr) && netErr.Timeout():
			return "", fmt.Errorf("GET %s: %w", endpoint, shared.ErrTimeout)
		}
		return "", fmt.Errorf("GET %s: %w: %v", endpoint, shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("GET %s: %w: status %d", endpoint, shared.ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", fmt.Errorf("GET %s: %w: reading body: %v", endpoint, shared.ErrUpstream, err)
	}
	return string(body), nil
}

// ScrapeSearch parses the results page.
type ScrapeSearch struct {
	scraper *Scraper
}

// NewScrapeSearch creates a results page searcher.
func NewScrapeSearch(scraper *Scraper) *ScrapeSearch {
	return &ScrapeSearch{scraper: scraper}
}

func (s *ScrapeSearch) Name() string { return StrategyScrape }

// Fetch returns an empty result when the page has no recognizable video records.
func (s *ScrapeSearch) Fetch(ctx context.Context, query string) (models.SearchResults, error) {
	page, err := s.scraper.get(ctx, "/results", url.Values{"search_query": {query}})
	if err != nil {
		return nil, err
	}
	return models.NewSearchResults(ParseResultsPage(page)), nil
}

// ParseResultsPage extracts up to [models.MaxSearchResults] tracks from a results page.
//
// Records with an owner are preferred. Without any, the looser simpleText shape is used and the
// channel is unknown.
func ParseResultsPage(page string) []models.Track {
	tracks := []models.Track{}
	for _, m := range videoRunsRe.FindAllStringSubmatch(page, models.MaxSearchResults) {
		tracks = append(tracks, models.NewTrack(m[1], unescape(m[2]), unescape(m[3]), ""))
	}
	if len(tracks) > 0 {
		return tracks
	}

	for _, m := range videoSimpleTextRe.FindAllStringSubmatch(page, models.MaxSearchResults) {
		tracks = append(tracks, models.NewTrack(m[1], unescape(m[2]), models.UnknownChannel, ""))
	}
	return tracks
}

// ScrapePlaylist parses the playlist page.
type ScrapePlaylist struct {
	scraper *Scraper
}

// NewScrapePlaylist creates a playlist page importer.
func NewScrapePlaylist(scraper *Scraper) *ScrapePlaylist {
	return &ScrapePlaylist{scraper: scraper}
}

func (s *ScrapePlaylist) Name() string { return StrategyScrape }

func (s *ScrapePlaylist) Fetch(ctx context.Context, playlistURL string) (*models.Playlist, error) {
	id, ok := ExtractPlaylistID(playlistURL)
	if !ok {
		return nil, shared.ErrPlaylistID
	}

	page, err := s.scraper.get(ctx, "/playlist", url.Values{"list": {id}})
	if err != nil {
		return nil, err
	}
	return ParsePlaylistPage(id, page)
}

// ParsePlaylistPage extracts playlist metadata and up to [models.MaxPlaylistTracks] tracks.
func ParsePlaylistPage(id, page string) (*models.Playlist, error) {
	meta := models.PlaylistMeta{ID: id}
	if m := playlistTitleRe.FindStringSubmatch(page); m != nil {
		meta.Name = unescape(m[1])
	}
	if m := playlistOwnerRe.FindStringSubmatch(page); m != nil {
		meta.Author = unescape(m[1])
	}

	matches := playlistVideoRe.FindAllStringSubmatch(page, models.MaxPlaylistTracks)
	if len(matches) == 0 {
		matches = videoSimpleTextRe.FindAllStringSubmatch(page, models.MaxPlaylistTracks)
	}
	if len(matches) == 0 {
		return nil, shared.ErrNoMatches
	}

	channel := lo.CoalesceOrEmpty(meta.Author, models.UnknownChannel)
	tracks := lo.Map(matches, func(m []string, _ int) models.Track {
		return models.NewTrack(m[1], unescape(m[2]), channel, models.UnknownDuration)
	})
	return models.NewPlaylist(meta, tracks), nil
}

// unescape decodes JSON escapes such as \u0026 left in text captured from page data.
func unescape(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}
