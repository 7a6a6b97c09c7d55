package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytfetch/internal/shared"
)

const (
	defaultYtDLPPath = "yt-dlp"
	waitDelay        = 2 * time.Second
	maxStderrInError = 512
)

// YtDLP runs the yt-dlp executable.
type YtDLP struct {
	// Path to the executable. Defaults to "yt-dlp" resolved through PATH.
	Path string

	// ExtraArgs are inserted before the per-call arguments.
	ExtraArgs []string

	logger *log.Logger
}

// NewYtDLP creates a runner from configuration.
func NewYtDLP(config shared.YtDLPConfig, logger *log.Logger) *YtDLP {
	return &YtDLP{Path: config.Path, ExtraArgs: config.ExtraArgs, logger: orDiscard(logger)}
}

func (y *YtDLP) path() string {
	if y.Path != "" {
		return y.Path
	}
	return defaultYtDLPPath
}

func (y *YtDLP) command(ctx context.Context, args ...string) *exec.Cmd {
	full := append(append([]string{}, y.ExtraArgs...), args...)
	cmd := exec.CommandContext(ctx, y.path(), full...)
	cmd.WaitDelay = waitDelay
	return cmd
}

// run executes yt-dlp under timeout and returns its stdout.
//
// Stdout is returned alongside an [shared.ErrUpstream] error so callers running with
// --ignore-errors can still use partial output.
func (y *YtDLP) run(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := y.command(cmdCtx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if y.logger != nil {
		y.logger.Debug("running yt-dlp", "path", y.path(), "args", strings.Join(args, " "), "timeout", timeout)
	}

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	return stdout.Bytes(), y.classify(ctx, cmdCtx, err, stderr.String(), timeout)
}

func (y *YtDLP) classify(parent, cmdCtx context.Context, err error, stderr string, timeout time.Duration) error {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return context.Canceled
	case errors.Is(cmdCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("yt-dlp after %s: %w", timeout, shared.ErrTimeout)
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", y.path(), shared.ErrToolNotFound)
	}

	msg := strings.TrimSpace(Diagnostics(stderr))
	if len(msg) > maxStderrInError {
		msg = msg[:maxStderrInError] + "..."
	}
	if msg == "" {
		return fmt.Errorf("yt-dlp: %w: %v", shared.ErrUpstream, err)
	}
	return fmt.Errorf("yt-dlp: %w: %v: %s", shared.ErrUpstream, err, msg)
}

// Diagnostics drops benign warning lines from yt-dlp stderr output.
func Diagnostics(stderr string) string {
	var kept []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "WARNING") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
