package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// DefaultConfigPath is read when present; its absence is not an error.
const DefaultConfigPath = "ytfetch.toml"

// Environment overrides, applied after the config file.
const (
	EnvYtDLPPath = "YTFETCH_YTDLP_PATH"
	EnvLogLevel  = "YTFETCH_LOG_LEVEL"
	EnvUserAgent = "YTFETCH_USER_AGENT"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Log      LogConfig      `toml:"log"`
	YtDLP    YtDLPConfig    `toml:"ytdlp"`
	Audio    AudioConfig    `toml:"audio"`
	Search   SearchConfig   `toml:"search"`
	Playlist PlaylistConfig `toml:"playlist"`
	Scrape   ScrapeConfig   `toml:"scrape"`
}

// LogConfig controls diagnostic narration on stderr.
type LogConfig struct {
	Level string `toml:"level"`
}

// YtDLPConfig configures the yt-dlp executable and its per-call timeouts.
type YtDLPConfig struct {
	Path            string   `toml:"path"`
	SearchTimeout   Duration `toml:"search_timeout"`
	MetadataTimeout Duration `toml:"metadata_timeout"`
	ItemsTimeout    Duration `toml:"items_timeout"`
	DumpTimeout     Duration `toml:"dump_timeout"`
	ExtraArgs       []string `toml:"extra_args"`
}

// AudioConfig configures audio streaming.
type AudioConfig struct {
	ChunkSize     int                    `toml:"chunk_size"`
	DefaultPreset string                 `toml:"default_preset"`
	Presets       map[string]AudioPreset `toml:"presets"`
}

// AudioPreset is a yt-dlp format preference list plus the transcode target.
type AudioPreset struct {
	Format  string `toml:"format"`
	Codec   string `toml:"codec"`
	Quality string `toml:"quality"`
}

// RetryConfig is the number of attempts per strategy and the pause between them.
type RetryConfig struct {
	Attempts int      `toml:"attempts"`
	Backoff  Duration `toml:"backoff"`
}

// SearchConfig orders search strategies and sets the total-failure policy.
type SearchConfig struct {
	Strategies      []string    `toml:"strategies"`
	FailureExitCode int         `toml:"failure_exit_code"`
	Retry           RetryConfig `toml:"retry"`
}

// PlaylistConfig orders playlist import strategies.
type PlaylistConfig struct {
	Strategies   []string    `toml:"strategies"`
	Retry        RetryConfig `toml:"retry"`
	LibraryRetry RetryConfig `toml:"library_retry"`
}

// ScrapeConfig configures direct page requests.
type ScrapeConfig struct {
	BaseURL     string   `toml:"base_url"`
	UserAgent   string   `toml:"user_agent"`
	Timeout     Duration `toml:"timeout"`
	HeadersFile string   `toml:"headers_file"`
}

// Duration decodes TOML strings such as "20s" or "1m30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads a TOML configuration file on top of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if _, err := toml.Decode(string(data), config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, path, err)
	}

	return config, nil
}

// ResolveConfig loads the config at path, falling back to defaults when path is the
// default location and nothing exists there, then applies environment overrides.
//
// A .env file in the working directory is loaded first when present.
func ResolveConfig(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	config := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	} else if path != DefaultConfigPath {
		return nil, fmt.Errorf("%w: config file %s: %v", ErrInvalidConfig, path, err)
	}

	config.ApplyEnv(os.Getenv)
	return config, nil
}

// ApplyEnv overrides config values from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvYtDLPPath)); v != "" {
		c.YtDLP.Path = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(getenv(EnvUserAgent)); v != "" {
		c.Scrape.UserAgent = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.YtDLP.Path == "":
		return fmt.Errorf("%w: ytdlp.path is empty", ErrInvalidConfig)
	case c.Audio.ChunkSize <= 0:
		return fmt.Errorf("%w: audio.chunk_size must be positive", ErrInvalidConfig)
	case len(c.Search.Strategies) == 0:
		return fmt.Errorf("%w: search.strategies is empty", ErrInvalidConfig)
	case len(c.Playlist.Strategies) == 0:
		return fmt.Errorf("%w: playlist.strategies is empty", ErrInvalidConfig)
	case c.Search.FailureExitCode < 0 || c.Search.FailureExitCode > 255:
		return fmt.Errorf("%w: search.failure_exit_code must be between 0 and 255", ErrInvalidConfig)
	case c.Scrape.Timeout.Duration <= 0:
		return fmt.Errorf("%w: scrape.timeout must be positive", ErrInvalidConfig)
	}

	if _, ok := c.Audio.Presets[c.Audio.DefaultPreset]; !ok {
		return fmt.Errorf("%w: audio.default_preset %q is not defined", ErrInvalidConfig, c.Audio.DefaultPreset)
	}

	for name, r := range map[string]RetryConfig{
		"search.retry":           c.Search.Retry,
		"playlist.retry":         c.Playlist.Retry,
		"playlist.library_retry": c.Playlist.LibraryRetry,
	} {
		if r.Attempts < 1 {
			return fmt.Errorf("%w: %s.attempts must be at least 1", ErrInvalidConfig, name)
		}
	}

	for name, d := range map[string]Duration{
		"ytdlp.search_timeout":   c.YtDLP.SearchTimeout,
		"ytdlp.metadata_timeout": c.YtDLP.MetadataTimeout,
		"ytdlp.items_timeout":    c.YtDLP.ItemsTimeout,
		"ytdlp.dump_timeout":     c.YtDLP.DumpTimeout,
	} {
		if d.Duration <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}

	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
