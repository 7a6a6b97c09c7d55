package tasks

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/desertthunder/ytfetch/internal/models"
	"github.com/desertthunder/ytfetch/internal/retry"
	"github.com/desertthunder/ytfetch/internal/services"
	"github.com/desertthunder/ytfetch/internal/shared"
)

// Streamer copies one video's audio to a writer.
type Streamer interface {
	Stream(ctx context.Context, w io.Writer, videoID string, preset shared.AudioPreset, chunkSize int) (*services.StreamResult, error)
}

// FetchEngine defines the operations behind each subcommand.
type FetchEngine interface {
	// Search returns up to ten tracks for a query. The results are never nil, even on error.
	Search(ctx context.Context, query string, progress chan<- ProgressUpdate) (models.SearchResults, error)

	// ImportPlaylist resolves a playlist URL and returns its first fifty tracks.
	ImportPlaylist(ctx context.Context, url string, progress chan<- ProgressUpdate) (*models.Playlist, error)

	// Stream writes a video's audio to w using the named preset ("" selects the default).
	Stream(ctx context.Context, w io.Writer, videoID, preset string, progress chan<- ProgressUpdate) (*services.StreamResult, error)

	// ResolvePlaylist extracts the playlist ID from a URL without any network access.
	ResolvePlaylist(url string) (*models.PlaylistRef, error)

	// DroppedUpdates is the number of progress updates discarded because the channel was full.
	DroppedUpdates() int64
}

// EngineOpts configures an [Engine]. Zero policies mean a single attempt.
type EngineOpts struct {
	Searchers      []services.SearchStrategy
	Importers      []services.PlaylistStrategy
	Streamer       Streamer
	Audio          shared.AudioConfig
	SearchPolicy   retry.Policy
	PlaylistPolicy retry.Policy
}

// Engine implements [FetchEngine] over ordered strategy chains.
type Engine struct {
	searchers      []services.SearchStrategy
	importers      []services.PlaylistStrategy
	streamer       Streamer
	audio          shared.AudioConfig
	searchPolicy   retry.Policy
	playlistPolicy retry.Policy
	dropped        atomic.Int64
}

// NewEngine creates an Engine from explicit dependencies.
func NewEngine(opts EngineOpts) *Engine {
	return &Engine{
		searchers:      opts.Searchers,
		importers:      opts.Importers,
		streamer:       opts.Streamer,
		audio:          opts.Audio,
		searchPolicy:   opts.SearchPolicy,
		playlistPolicy: opts.PlaylistPolicy,
	}
}

// NewEngineFromConfig builds the strategy chains named in config.
func NewEngineFromConfig(config *shared.Config, registry *services.Registry) (*Engine, error) {
	searchers, err := registry.Searchers(config.Search.Strategies)
	if err != nil {
		return nil, err
	}
	importers, err := registry.Importers(config.Playlist.Strategies)
	if err != nil {
		return nil, err
	}

	return NewEngine(EngineOpts{
		Searchers:      searchers,
		Importers:      importers,
		Streamer:       registry.YtDLP(),
		Audio:          config.Audio,
		SearchPolicy:   retry.FromConfig(config.Search.Retry),
		PlaylistPolicy: retry.FromConfig(config.Playlist.Retry),
	}), nil
}

// sendProgress sends a progress update through the channel without blocking.
// Updates that do not fit are counted in [Engine.DroppedUpdates].
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		e.dropped.Add(1)
	}
}

func (e *Engine) DroppedUpdates() int64 {
	return e.dropped.Load()
}

func (e *Engine) emitter(progress chan<- ProgressUpdate) func(ProgressUpdate) {
	return func(u ProgressUpdate) { e.sendProgress(progress, u) }
}

// Search runs the search chain. A strategy that finds nothing still succeeds.
func (e *Engine) Search(ctx context.Context, query string, progress chan<- ProgressUpdate) (models.SearchResults, error) {
	results, name, err := RunChain(ctx, e.searchPolicy, query, e.searchers, e.emitter(progress))
	if err != nil {
		return models.SearchResults{}, err
	}

	results = models.NewSearchResults(results)
	e.sendProgress(progress, completeUpdate(name, len(results)))
	return results, nil
}

// ImportPlaylist extracts the playlist ID, canonicalizes the URL and runs the playlist chain.
func (e *Engine) ImportPlaylist(ctx context.Context, url string, progress chan<- ProgressUpdate) (*models.Playlist, error) {
	canonical, err := services.CanonicalPlaylistURL(url)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, resolveUpdate(url, canonical))

	playlist, name, err := RunChain(ctx, e.playlistPolicy, canonical, e.importers, e.emitter(progress))
	if err != nil {
		return nil, err
	}

	if playlist.ID == "" {
		playlist.ID, _ = services.ExtractPlaylistID(canonical)
	}
	e.sendProgress(progress, completeUpdate(name, len(playlist.Tracks)))
	return playlist, nil
}

// Stream looks up the preset and hands off to the streamer.
func (e *Engine) Stream(ctx context.Context, w io.Writer, videoID, preset string, progress chan<- ProgressUpdate) (*services.StreamResult, error) {
	if preset == "" {
		preset = e.audio.DefaultPreset
	}
	p, ok := e.audio.Presets[preset]
	if !ok {
		return nil, fmt.Errorf("%w: unknown audio preset %q", shared.ErrInvalidConfig, preset)
	}
	if e.streamer == nil {
		return nil, fmt.Errorf("%w: no streamer configured", shared.ErrInvalidConfig)
	}

	e.sendProgress(progress, streamUpdate(videoID, preset))
	return e.streamer.Stream(ctx, w, videoID, p, e.audio.ChunkSize)
}

// ResolvePlaylist returns the playlist ID and its main-site URL.
func (e *Engine) ResolvePlaylist(url string) (*models.PlaylistRef, error) {
	id, ok := services.ExtractPlaylistID(url)
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistID, url)
	}
	return &models.PlaylistRef{ID: id, URL: services.PlaylistURL(id)}, nil
}
