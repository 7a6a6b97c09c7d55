package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.YtDLP.Path != "yt-dlp" {
			t.Errorf("expected yt-dlp path yt-dlp, got %s", config.YtDLP.Path)
		}
		if config.YtDLP.SearchTimeout.Duration != 20*time.Second {
			t.Errorf("expected search timeout 20s, got %s", config.YtDLP.SearchTimeout)
		}
		if config.Audio.ChunkSize != 8192 {
			t.Errorf("expected chunk size 8192, got %d", config.Audio.ChunkSize)
		}
		if config.Audio.Presets["mp3"].Codec != "mp3" {
			t.Errorf("expected mp3 preset codec mp3, got %+v", config.Audio.Presets["mp3"])
		}
		if got := config.Search.Strategies; len(got) != 3 || got[0] != "ytdlp" {
			t.Errorf("unexpected search strategies %v", got)
		}
		if got := config.Playlist.Strategies; len(got) != 4 || got[0] != "ytdlp-json" {
			t.Errorf("unexpected playlist strategies %v", got)
		}
		if config.Search.Retry.Attempts != 3 || config.Search.Retry.Backoff.Duration != time.Second {
			t.Errorf("unexpected search retry %+v", config.Search.Retry)
		}
		if config.Scrape.Timeout.Duration != 10*time.Second {
			t.Errorf("expected scrape timeout 10s, got %s", config.Scrape.Timeout)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "ytfetch.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.YtDLP.Path != DefaultConfig().YtDLP.Path {
			t.Errorf("created config yt-dlp path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig overlays defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "ytfetch.toml")
		content := `
[ytdlp]
path = "/opt/bin/yt-dlp"
search_timeout = "5s"

[search]
strategies = ["scrape"]
failure_exit_code = 0
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.YtDLP.Path != "/opt/bin/yt-dlp" {
			t.Errorf("expected path /opt/bin/yt-dlp, got %s", config.YtDLP.Path)
		}
		if config.YtDLP.SearchTimeout.Duration != 5*time.Second {
			t.Errorf("expected search timeout 5s, got %s", config.YtDLP.SearchTimeout)
		}
		if config.YtDLP.ItemsTimeout.Duration != 30*time.Second {
			t.Errorf("expected default items timeout 30s, got %s", config.YtDLP.ItemsTimeout)
		}
		if len(config.Search.Strategies) != 1 || config.Search.FailureExitCode != 0 {
			t.Errorf("unexpected search config %+v", config.Search)
		}
		if config.Audio.ChunkSize != 8192 {
			t.Errorf("expected default chunk size, got %d", config.Audio.ChunkSize)
		}
	})

	t.Run("LoadConfig rejects bad durations", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "ytfetch.toml")
		if err := os.WriteFile(configPath, []byte("[scrape]\ntimeout = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/ytfetch.toml"); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		config := DefaultConfig()
		env := map[string]string{
			EnvYtDLPPath: "/usr/local/bin/yt-dlp",
			EnvLogLevel:  "debug",
			EnvUserAgent: "",
		}
		config.ApplyEnv(func(k string) string { return env[k] })

		if config.YtDLP.Path != "/usr/local/bin/yt-dlp" {
			t.Errorf("expected env path, got %s", config.YtDLP.Path)
		}
		if config.Log.Level != "debug" {
			t.Errorf("expected debug level, got %s", config.Log.Level)
		}
		if config.Scrape.UserAgent != DefaultConfig().Scrape.UserAgent {
			t.Errorf("empty env value should not override user agent")
		}
	})

	t.Run("ResolveConfig explicit path must exist", func(t *testing.T) {
		_, err := ResolveConfig(filepath.Join(t.TempDir(), "missing.toml"))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tt := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty yt-dlp path", func(c *Config) { c.YtDLP.Path = "" }},
		{"zero chunk size", func(c *Config) { c.Audio.ChunkSize = 0 }},
		{"no search strategies", func(c *Config) { c.Search.Strategies = nil }},
		{"no playlist strategies", func(c *Config) { c.Playlist.Strategies = []string{} }},
		{"exit code out of range", func(c *Config) { c.Search.FailureExitCode = 300 }},
		{"unknown default preset", func(c *Config) { c.Audio.DefaultPreset = "flac" }},
		{"zero attempts", func(c *Config) { c.Playlist.LibraryRetry.Attempts = 0 }},
		{"zero timeout", func(c *Config) { c.YtDLP.DumpTimeout = Duration{} }},
		{"zero scrape timeout", func(c *Config) { c.Scrape.Timeout = Duration{} }},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)
			if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
