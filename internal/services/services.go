package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytfetch/internal/models"
	"github.com/desertthunder/ytfetch/internal/retry"
	"github.com/desertthunder/ytfetch/internal/shared"
	"github.com/kkdai/youtube/v2"
)

// Strategy names as they appear in configuration.
const (
	StrategyYtDLP     = "ytdlp"
	StrategyYtDLPJSON = "ytdlp-json"
	StrategyYTMusic   = "ytmusic"
	StrategyInnertube = "innertube"
	StrategyScrape    = "scrape"
)

// Strategy is one way of producing a result of type T from a string input.
type Strategy[T any] interface {
	// Name identifies the strategy in configuration and log output.
	Name() string

	// Fetch performs a single attempt. Retrying is the caller's concern.
	Fetch(ctx context.Context, input string) (T, error)
}

// SearchStrategy turns a free-text query into search results.
type SearchStrategy = Strategy[models.SearchResults]

// PlaylistStrategy turns a canonical playlist URL into a playlist.
type PlaylistStrategy = Strategy[*models.Playlist]

// Registry builds strategies by name from configuration.
type Registry struct {
	config  *shared.Config
	logger  *log.Logger
	ytdlp   *YtDLP
	scraper *Scraper
}

// NewRegistry prepares the shared yt-dlp runner and scraper.
//
// A configured headers file that cannot be parsed is an error.
func NewRegistry(config *shared.Config, logger *log.Logger) (*Registry, error) {
	logger = orDiscard(logger)
	scraper := NewScraper(config.Scrape, logger)
	if path := config.Scrape.HeadersFile; path != "" {
		headers, err := shared.ParseCurlFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: scrape.headers_file: %v", shared.ErrInvalidConfig, err)
		}
		scraper.Headers = headers
	}

	return &Registry{
		config:  config,
		logger:  logger,
		ytdlp:   NewYtDLP(config.YtDLP, logger),
		scraper: scraper,
	}, nil
}

// YtDLP returns the shared yt-dlp runner.
func (r *Registry) YtDLP() *YtDLP {
	return r.ytdlp
}

// Searchers returns the search strategies in the given order.
func (r *Registry) Searchers(names []string) ([]SearchStrategy, error) {
	strategies := make([]SearchStrategy, 0, len(names))
	for _, name := range names {
		switch name {
		case StrategyYtDLP:
			strategies = append(strategies, NewYtDLPSearch(r.ytdlp, r.config.YtDLP.SearchTimeout.Duration, r.logger))
		case StrategyYTMusic:
			strategies = append(strategies, NewYTMusicSearch())
		case StrategyScrape:
			strategies = append(strategies, NewScrapeSearch(r.scraper))
		default:
			return nil, fmt.Errorf("%w: search strategy %q", shared.ErrUnknownStrategy, name)
		}
	}
	return strategies, nil
}

// Importers returns the playlist strategies in the given order.
func (r *Registry) Importers(names []string) ([]PlaylistStrategy, error) {
	strategies := make([]PlaylistStrategy, 0, len(names))
	for _, name := range names {
		switch name {
		case StrategyYtDLPJSON:
			strategies = append(strategies, NewYtDLPJSONPlaylist(r.ytdlp, r.config.YtDLP.DumpTimeout.Duration, r.logger))
		case StrategyYtDLP:
			strategies = append(strategies, NewYtDLPPlaylist(r.ytdlp,
				r.config.YtDLP.MetadataTimeout.Duration, r.config.YtDLP.ItemsTimeout.Duration, r.logger))
		case StrategyInnertube:
			client := &youtube.Client{HTTPClient: &http.Client{Timeout: r.config.YtDLP.ItemsTimeout.Duration}}
			strategies = append(strategies, NewInnertubePlaylist(client, retry.FromConfig(r.config.Playlist.LibraryRetry), r.logger))
		case StrategyScrape:
			strategies = append(strategies, NewScrapePlaylist(r.scraper))
		default:
			return nil, fmt.Errorf("%w: playlist strategy %q", shared.ErrUnknownStrategy, name)
		}
	}
	return strategies, nil
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
