package shared

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("search started", "query", "lofi")

		out := buf.String()
		if !strings.Contains(out, "search started") || !strings.Contains(out, "query=lofi") {
			t.Errorf("unexpected log output %q", out)
		}
		if !strings.Contains(out, "ytfetch") {
			t.Errorf("expected prefix in %q", out)
		}
	})

	t.Run("child logger carries fields", func(t *testing.T) {
		var buf bytes.Buffer
		WithLogger(NewLogger(&buf), "cmd", "search").Info("done")
		if !strings.Contains(buf.String(), "cmd=search") {
			t.Errorf("expected cmd field in %q", buf.String())
		}
	})
}

func TestSetLogLevel(t *testing.T) {
	logger := NewLogger(&bytes.Buffer{})

	if err := SetLogLevel(logger, "warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.GetLevel() != log.WarnLevel {
		t.Errorf("expected warn level, got %s", logger.GetLevel())
	}

	if err := SetLogLevel(logger, "loud"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique IDs")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("expected a valid uuid, got %s", a)
	}
}

func TestExitStatus(t *testing.T) {
	tt := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", ErrUsage, 1},
		{"exit error", &ExitError{Code: 3, Err: ErrAllStrategiesFailed}, 3},
		{"wrapped exit error", fmt.Errorf("search: %w", &ExitError{Code: 0}), 0},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitStatus(tc.err); got != tc.want {
				t.Errorf("ExitStatus() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestIsPermanent(t *testing.T) {
	tt := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("yt-dlp: %w", ErrToolNotFound), true},
		{context.Canceled, true},
		{ErrNoMatches, true},
		{fmt.Errorf("exit 1: %w", ErrUpstream), false},
		{ErrTimeout, false},
	}

	for _, tc := range tt {
		t.Run(tc.err.Error(), func(t *testing.T) {
			if got := IsPermanent(tc.err); got != tc.want {
				t.Errorf("IsPermanent(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
