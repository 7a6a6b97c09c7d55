package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytfetch/internal/models"
	"github.com/desertthunder/ytfetch/internal/retry"
	"github.com/desertthunder/ytfetch/internal/shared"
	"github.com/kkdai/youtube/v2"
	"github.com/samber/lo"
)

var playlistItems = "1:" + strconv.Itoa(models.MaxPlaylistTracks)

// YtDLPJSONPlaylist reads a flat JSON dump of the playlist from yt-dlp's extractor.
type YtDLPJSONPlaylist struct {
	ytdlp   *YtDLP
	timeout time.Duration
	logger  *log.Logger
}

// NewYtDLPJSONPlaylist creates the JSON dump importer.
func NewYtDLPJSONPlaylist(ytdlp *YtDLP, timeout time.Duration, logger *log.Logger) *YtDLPJSONPlaylist {
	return &YtDLPJSONPlaylist{ytdlp: ytdlp, timeout: timeout, logger: orDiscard(logger)}
}

func (p *YtDLPJSONPlaylist) Name() string { return StrategyYtDLPJSON }

type ytdlpDump struct {
	Type        string        `json:"_type"`
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Uploader    string        `json:"uploader"`
	Channel     string        `json:"channel"`
	Entries     []*ytdlpEntry `json:"entries"`
}

type ytdlpEntry struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Uploader       string   `json:"uploader"`
	Channel        string   `json:"channel"`
	Duration       *float64 `json:"duration"`
	DurationString string   `json:"duration_string"`
}

func (e *ytdlpEntry) duration() string {
	if e.DurationString != "" {
		return e.DurationString
	}
	if e.Duration != nil {
		return models.FormatDuration(int(*e.Duration))
	}
	return models.UnknownDuration
}

// Fetch tolerates a non-zero exit when yt-dlp still printed a dump, since --ignore-errors
// reports skipped entries through the exit status.
func (p *YtDLPJSONPlaylist) Fetch(ctx context.Context, url string) (*models.Playlist, error) {
	out, err := p.ytdlp.run(ctx, p.timeout,
		"-J", "--flat-playlist", "--ignore-errors", "--no-warnings",
		"--playlist-items", playlistItems, "--", url)
	if err != nil {
		if len(bytes.TrimSpace(out)) == 0 || !errors.Is(err, shared.ErrUpstream) {
			return nil, err
		}
		p.logger.Warn("yt-dlp reported errors, using partial dump", "err", err)
	}

	var dump ytdlpDump
	if err := json.Unmarshal(out, &dump); err != nil {
		return nil, fmt.Errorf("yt-dlp dump: %w: %v", shared.ErrUpstream, err)
	}
	return dump.playlist()
}

func (d *ytdlpDump) playlist() (*models.Playlist, error) {
	if d.Type != "playlist" {
		return nil, fmt.Errorf("%w: yt-dlp reported type %q", shared.ErrNotPlaylist, d.Type)
	}
	if len(d.Entries) == 0 {
		return nil, shared.ErrNoEntries
	}

	author := lo.CoalesceOrEmpty(d.Uploader, d.Channel)
	tracks := lo.FilterMap(d.Entries, func(e *ytdlpEntry, _ int) (models.Track, bool) {
		if e == nil || strings.TrimSpace(e.ID) == "" {
			return models.Track{}, false
		}
		channel := lo.CoalesceOrEmpty(e.Uploader, e.Channel, author)
		return models.NewTrack(e.ID, e.Title, channel, e.duration()), true
	})
	if len(tracks) == 0 {
		return nil, shared.ErrNoValidVideos
	}

	meta := models.PlaylistMeta{ID: d.ID, Name: d.Title, Description: d.Description, Author: author}
	return models.NewPlaylist(meta, tracks), nil
}

// YtDLPPlaylist prints playlist metadata and items with two yt-dlp calls.
type YtDLPPlaylist struct {
	ytdlp           *YtDLP
	metadataTimeout time.Duration
	itemsTimeout    time.Duration
	logger          *log.Logger
}

// NewYtDLPPlaylist creates the two-call importer.
func NewYtDLPPlaylist(ytdlp *YtDLP, metadataTimeout, itemsTimeout time.Duration, logger *log.Logger) *YtDLPPlaylist {
	return &YtDLPPlaylist{ytdlp: ytdlp, metadataTimeout: metadataTimeout, itemsTimeout: itemsTimeout, logger: orDiscard(logger)}
}

func (p *YtDLPPlaylist) Name() string { return StrategyYtDLP }

// Fetch continues with default metadata when the metadata call fails.
func (p *YtDLPPlaylist) Fetch(ctx context.Context, url string) (*models.Playlist, error) {
	meta, err := p.metadata(ctx, url)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, shared.ErrToolNotFound) {
			return nil, err
		}
		p.logger.Warn("playlist metadata unavailable, using defaults", "err", err)
	}
	if meta.ID == "" {
		meta.ID, _ = ExtractPlaylistID(url)
	}

	out, err := p.ytdlp.run(ctx, p.itemsTimeout,
		"--flat-playlist", "--no-warnings",
		"--print", TrackTemplate,
		"--playlist-items", playlistItems, "--", url)
	if err != nil {
		return nil, err
	}

	tracks := ParseTrackLines(out, p.logger)
	if len(tracks) == 0 {
		return nil, shared.ErrNoValidVideos
	}
	if meta.Author != "" {
		for i := range tracks {
			if tracks[i].Channel == models.UnknownChannel {
				tracks[i].Channel = meta.Author
			}
		}
	}
	return models.NewPlaylist(meta, tracks), nil
}

func (p *YtDLPPlaylist) metadata(ctx context.Context, url string) (models.PlaylistMeta, error) {
	out, err := p.ytdlp.run(ctx, p.metadataTimeout,
		"--flat-playlist", "--no-warnings",
		"--print", PlaylistTemplate,
		"--playlist-items", "1", "--", url)
	if err != nil {
		return models.PlaylistMeta{}, err
	}

	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) != "" {
			return ParsePlaylistLine(line)
		}
	}
	return models.PlaylistMeta{}, fmt.Errorf("%w: empty metadata output", shared.ErrMalformedLine)
}

// PlaylistClient fetches playlist entries from the innertube API.
type PlaylistClient interface {
	GetPlaylistContext(ctx context.Context, url string) (*youtube.Playlist, error)
}

// InnertubePlaylist reads playlists through the kkdai/youtube client.
type InnertubePlaylist struct {
	client PlaylistClient
	policy retry.Policy
	logger *log.Logger
}

// NewInnertubePlaylist creates the library importer. policy governs retries of the whole walk.
func NewInnertubePlaylist(client PlaylistClient, policy retry.Policy, logger *log.Logger) *InnertubePlaylist {
	return &InnertubePlaylist{client: client, policy: policy, logger: orDiscard(logger)}
}

func (p *InnertubePlaylist) Name() string { return StrategyInnertube }

func (p *InnertubePlaylist) Fetch(ctx context.Context, url string) (*models.Playlist, error) {
	var playlist *models.Playlist
	err := retry.Do(ctx, p.policy, nil,
		func(attempt int, err error, next time.Duration) {
			p.logger.Debug("innertube walk failed, retrying", "attempt", attempt, "next", next, "err", err)
		},
		func(ctx context.Context) error {
			pl, err := p.client.GetPlaylistContext(ctx, url)
			if err != nil {
				if errors.Is(err, youtube.ErrInvalidPlaylist) {
					return fmt.Errorf("%w: %v", shared.ErrNotPlaylist, err)
				}
				if errors.Is(err, context.Canceled) {
					return err
				}
				return fmt.Errorf("innertube: %w: %v", shared.ErrUpstream, err)
			}

			playlist, err = fromInnertube(pl)
			return err
		})
	if err != nil {
		return nil, err
	}
	return playlist, nil
}

func fromInnertube(pl *youtube.Playlist) (*models.Playlist, error) {
	if pl == nil || len(pl.Videos) == 0 {
		return nil, shared.ErrNoEntries
	}

	tracks := lo.FilterMap(pl.Videos, func(e *youtube.PlaylistEntry, _ int) (models.Track, bool) {
		if e == nil || e.ID == "" {
			return models.Track{}, false
		}
		channel := lo.CoalesceOrEmpty(e.Author, pl.Author)
		return models.NewTrack(e.ID, e.Title, channel, models.FormatDuration(int(e.Duration.Seconds()))), true
	})
	if len(tracks) == 0 {
		return nil, shared.ErrNoValidVideos
	}

	meta := models.PlaylistMeta{ID: pl.ID, Name: pl.Title, Description: pl.Description, Author: pl.Author}
	return models.NewPlaylist(meta, tracks), nil
}
