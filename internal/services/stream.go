package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/desertthunder/ytfetch/internal/shared"
	"golang.org/x/time/rate"
)

// DefaultChunkSize is the copy buffer used when none is configured.
const DefaultChunkSize = 8192

// WatchURL is the page yt-dlp resolves a bare video ID against.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// StreamResult describes a finished audio stream.
type StreamResult struct {
	// Bytes copied to the writer.
	Bytes int64
	// ExitCode of the yt-dlp process. A child killed by a signal reports 1.
	ExitCode int
	// Stderr with benign warnings removed.
	Stderr string
}

type flusher interface {
	Flush() error
}

// StreamArgs builds the yt-dlp arguments that write one video's audio to stdout.
func StreamArgs(videoID string, preset shared.AudioPreset) []string {
	return []string{
		"-f", preset.Format,
		"-o", "-",
		"--no-playlist",
		"--no-warnings",
		"--extract-audio",
		"--audio-format", preset.Codec,
		"--audio-quality", preset.Quality,
		"--",
		WatchURL(videoID),
	}
}

// Stream runs yt-dlp for videoID and copies its stdout to w until EOF.
//
// A non-zero child exit is reported through [StreamResult.ExitCode], not as an error.
// Errors are reserved for failures to start the child or to write to w.
func (y *YtDLP) Stream(ctx context.Context, w io.Writer, videoID string, preset shared.AudioPreset, chunkSize int) (*StreamResult, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	cmdCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := y.command(cmdCtx, StreamArgs(videoID, preset)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open yt-dlp stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, y.classify(ctx, cmdCtx, err, "", 0)
	}

	progress := rate.Sometimes{Interval: time.Second}
	written, copyErr := CopyChunks(w, stdout, chunkSize, func(total int64) {
		if y.logger == nil {
			return
		}
		progress.Do(func() { y.logger.Debug("streaming", "video", videoID, "bytes", total) })
	})
	if copyErr != nil {
		cancel()
		_, _ = io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()
	result := &StreamResult{Bytes: written, ExitCode: exitCode(cmd.ProcessState), Stderr: Diagnostics(stderr.String())}

	switch {
	case copyErr != nil:
		return result, fmt.Errorf("failed to copy audio stream: %w", copyErr)
	case errors.Is(ctx.Err(), context.Canceled):
		return result, context.Canceled
	case waitErr != nil && cmd.ProcessState == nil:
		return result, fmt.Errorf("yt-dlp: %w: %v", shared.ErrUpstream, waitErr)
	}

	if y.logger != nil {
		y.logger.Debug("stream finished", "video", videoID, "bytes", written, "exit", result.ExitCode)
	}
	return result, nil
}

func exitCode(state *os.ProcessState) int {
	if state == nil {
		return 1
	}
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	return 1
}

// CopyChunks copies r to w in reads of at most size bytes.
//
// When w has a Flush method it is flushed after every chunk. onChunk, when set, receives the
// running total after each write.
func CopyChunks(w io.Writer, r io.Reader, size int, onChunk func(total int64)) (int64, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	f, canFlush := w.(flusher)
	buf := make([]byte, size)

	var total int64
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			wn, err := w.Write(buf[:n])
			total += int64(wn)
			if err != nil {
				return total, err
			}
			if wn != n {
				return total, io.ErrShortWrite
			}
			if canFlush {
				if err := f.Flush(); err != nil {
					return total, err
				}
			}
			if onChunk != nil {
				onChunk(total)
			}
		}

		if errors.Is(readErr, io.EOF) {
			return total, nil
		}
		if readErr != nil {
			return total, readErr
		}
	}
}
