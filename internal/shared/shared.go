// package shared defines shared helpers
package shared

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// level badge colors: debug, info, warn, error
var levelColors = map[log.Level]string{
	log.DebugLevel: "#626262",
	log.InfoLevel:  "#04B575",
	log.WarnLevel:  "#FFA500",
	log.ErrorLevel: "#FF0000",
	log.FatalLevel: "#7D56F4",
}

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps enabled.
//
// The writer defaults to [os.Stderr]. Standard output is reserved for command results.
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, Prefix: "ytfetch"}
	logger := log.NewWithOptions(w, opts)
	logger.SetStyles(levelStyles())
	return logger
}

func levelStyles() *log.Styles {
	styles := log.DefaultStyles()
	for level, color := range levelColors {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(strings.ToUpper(level.String())).
			Bold(true).
			MaxWidth(5).
			Foreground(lipgloss.Color(color))
	}
	return styles
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel parses a level name (debug, info, warn, error) and applies it to the [log.Logger].
func SetLogLevel(l *log.Logger, level string) error {
	ll, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	l.SetLevel(ll)
	return nil
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}
