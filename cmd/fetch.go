package main

import (
	"bufio"
	"context"
	"fmt"

	"github.com/desertthunder/ytfetch/internal/formatter"
	"github.com/desertthunder/ytfetch/internal/models"
	"github.com/desertthunder/ytfetch/internal/shared"
	"github.com/urfave/cli/v3"
)

const mp3Preset = "mp3"

// Search prints up to ten tracks for the query.
//
// A JSON array is written even when every strategy fails so callers can always parse stdout;
// the failure is reported through the configured exit code.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query, err := r.requireArg(cmd)
	if err != nil {
		return err
	}

	if err := r.prepare(cmd); err != nil {
		if writeErr := r.writeJSON(models.SearchResults{}); writeErr != nil {
			return writeErr
		}
		return err
	}

	progress, wait := r.narrate()
	results, err := r.engine.Search(ctx, query, progress)
	wait()

	if renderErr := formatter.RenderSearch(r.output, results, r.format); renderErr != nil {
		return fmt.Errorf("failed to write output: %w", renderErr)
	}
	if err != nil {
		r.logger.Error("search failed", "query", query, "err", err)
		return &shared.ExitError{Code: r.config.Search.FailureExitCode, Err: err}
	}

	r.logger.Debug("search complete", "query", query, "results", len(results))
	return nil
}

// ImportPlaylist prints playlist metadata and its first 50 tracks. Nothing is written to stdout
// on failure.
func (r *Runner) ImportPlaylist(ctx context.Context, cmd *cli.Command) error {
	url, err := r.requireArg(cmd)
	if err != nil {
		return err
	}
	if err := r.prepare(cmd); err != nil {
		return err
	}

	progress, wait := r.narrate()
	playlist, err := r.engine.ImportPlaylist(ctx, url, progress)
	wait()

	if err != nil {
		r.logger.Error("playlist import failed", "url", url, "err", err)
		return &shared.ExitError{Code: 1, Err: err}
	}

	r.logger.Info("playlist imported", "id", playlist.ID, "tracks", len(playlist.Tracks))
	if err := formatter.RenderPlaylist(r.output, playlist, r.format); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// PlaylistID prints the playlist ID and canonical URL extracted from the argument.
func (r *Runner) PlaylistID(ctx context.Context, cmd *cli.Command) error {
	url, err := r.requireArg(cmd)
	if err != nil {
		return err
	}
	if err := r.prepare(cmd); err != nil {
		return err
	}

	ref, err := r.engine.ResolvePlaylist(url)
	if err != nil {
		r.logger.Error("could not extract playlist ID", "url", url, "err", err)
		return &shared.ExitError{Code: 1, Err: err}
	}
	return r.writeJSON(ref)
}

// Stream pipes audio using the --preset flag, or the configured default preset.
func (r *Runner) Stream(ctx context.Context, cmd *cli.Command) error {
	return r.stream(ctx, cmd, cmd.String("preset"))
}

// StreamMP3 pipes audio transcoded to MP3.
func (r *Runner) StreamMP3(ctx context.Context, cmd *cli.Command) error {
	return r.stream(ctx, cmd, mp3Preset)
}

// stream writes raw audio bytes to stdout and mirrors the exit status of yt-dlp.
func (r *Runner) stream(ctx context.Context, cmd *cli.Command, preset string) error {
	videoID, err := r.requireArg(cmd)
	if err != nil {
		return err
	}
	if err := r.prepare(cmd); err != nil {
		return err
	}

	out := bufio.NewWriterSize(r.output, r.config.Audio.ChunkSize)
	progress, wait := r.narrate()
	result, err := r.engine.Stream(ctx, out, videoID, preset, progress)
	flushErr := out.Flush()
	wait()

	if err != nil {
		r.logger.Error("stream failed", "video", videoID, "err", err)
		return &shared.ExitError{Code: 1, Err: err}
	}
	if result.Stderr != "" {
		r.logger.Error("yt-dlp reported errors", "video", videoID, "stderr", result.Stderr)
	}
	if flushErr != nil {
		r.logger.Error("failed to flush output", "video", videoID, "err", flushErr)
		return &shared.ExitError{Code: 1, Err: flushErr}
	}

	r.logger.Info("stream finished", "video", videoID, "bytes", result.Bytes, "exit", result.ExitCode)
	if result.ExitCode != 0 {
		return &shared.ExitError{Code: result.ExitCode, Err: fmt.Errorf("yt-dlp exited with status %d", result.ExitCode)}
	}
	return nil
}
