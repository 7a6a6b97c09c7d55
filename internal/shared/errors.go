package shared

import (
	"context"
	"errors"
	"fmt"
)

var (
	// Usage & configuration errors
	ErrUsage           = fmt.Errorf("usage")
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrUnknownStrategy = fmt.Errorf("unknown strategy")

	// Input errors
	ErrPlaylistID = fmt.Errorf("could not extract playlist ID from URL")

	// Upstream tool and page errors
	ErrToolNotFound = fmt.Errorf("external tool not found")
	ErrUpstream     = fmt.Errorf("upstream failure")
	ErrTimeout      = fmt.Errorf("operation timed out")

	// Parse errors, skipped line by line
	ErrMalformedLine = fmt.Errorf("malformed result line")
	ErrSentinelID    = fmt.Errorf("missing or sentinel video ID")

	// Result validation errors
	ErrNotPlaylist   = fmt.Errorf("URL does not point to a playlist")
	ErrNoEntries     = fmt.Errorf("playlist has no entries")
	ErrNoValidVideos = fmt.Errorf("no valid videos found")
	ErrNoMatches     = fmt.Errorf("could not extract video information from page")

	ErrAllStrategiesFailed = fmt.Errorf("all strategies failed")
)

// IsPermanent reports whether retrying the same call cannot change the outcome.
func IsPermanent(err error) bool {
	for _, target := range []error{
		context.Canceled, ErrToolNotFound, ErrPlaylistID, ErrNotPlaylist,
		ErrNoEntries, ErrNoValidVideos, ErrNoMatches, ErrUnknownStrategy,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ExitError carries an explicit process exit status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitStatus maps an error returned by a command to the process exit status.
//
// nil is 0, an [ExitError] carries its own code and anything else is 1.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
