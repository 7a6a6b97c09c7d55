// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

// FakeStrategy is a scripted strategy double.
//
// Call n returns Errs[n] when set, otherwise Results[n] (the last result repeats).
type FakeStrategy[T any] struct {
	ID      string
	Results []T
	Errs    []error

	mu     sync.Mutex
	inputs []string
}

func (f *FakeStrategy[T]) Name() string { return f.ID }

func (f *FakeStrategy[T]) Fetch(ctx context.Context, input string) (T, error) {
	f.mu.Lock()
	call := len(f.inputs)
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()

	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if call < len(f.Errs) && f.Errs[call] != nil {
		return zero, f.Errs[call]
	}
	if len(f.Results) == 0 {
		return zero, nil
	}
	return f.Results[min(call, len(f.Results)-1)], nil
}

// Calls is the number of times Fetch ran.
func (f *FakeStrategy[T]) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

// Inputs returns every input Fetch received.
func (f *FakeStrategy[T]) Inputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inputs...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

// FlushRecorder counts Flush calls on top of a buffer.
type FlushRecorder struct {
	bytes.Buffer
	Flushes int
}

func (f *FlushRecorder) Flush() error {
	f.Flushes++
	return nil
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// WriteScript writes an executable shell script standing in for yt-dlp and returns its path.
func WriteScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("Failed to write stub script: %v", err)
	}
	return path
}

// NewLogger returns a debug level logger writing to buf, or discarding when buf is nil.
func NewLogger(buf *bytes.Buffer) *log.Logger {
	var w io.Writer = io.Discard
	if buf != nil {
		w = buf
	}
	logger := log.New(w)
	logger.SetLevel(log.DebugLevel)
	return logger
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
