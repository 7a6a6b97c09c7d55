// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/ytfetch/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

// app builds the root command. Help and errors from the CLI itself go to stderr so that
// stdout only ever carries command results.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:      "ytfetch",
		Usage:     "Fetch YouTube search results, playlists and audio streams",
		Version:   version,
		Writer:    r.errOutput,
		ErrWriter: r.errOutput,
		Flags:     globalFlags(),
		Commands:  r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	constructors := []func(*Runner) *cli.Command{
		streamCommand,
		mp3Command,
		searchCommand,
		playlistCommand,
		playlistIDCommand,
		configCommand,
	}

	commands := make([]*cli.Command, 0, len(constructors))
	for _, fn := range constructors {
		commands = append(commands, fn(r))
	}
	return commands
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   shared.DefaultConfigPath,
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "ytdlp",
			Usage: "Path to the yt-dlp executable",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format for search and playlist results (json, text, csv, markdown)",
			Value:   "json",
		},
	}
}

// streamCommand pipes the audio track of a video to stdout.
func streamCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "stream",
		Usage:     "Stream the audio of a video to stdout",
		ArgsUsage: "<video-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "preset",
				Usage: "Audio preset from the [audio.presets] config table",
			},
		},
		Action: r.Stream,
	}
}

func mp3Command(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "mp3",
		Usage:     "Stream the audio of a video to stdout as MP3",
		ArgsUsage: "<video-id>",
		Action:    r.StreamMP3,
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search YouTube and print up to 10 tracks",
		ArgsUsage: "<query>",
		Action:    r.Search,
	}
}

func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "playlist",
		Aliases:   []string{"import"},
		Usage:     "Import a playlist and print its metadata and first 50 tracks",
		ArgsUsage: "<playlist-url>",
		Action:    r.ImportPlaylist,
	}
}

func playlistIDCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "playlist-id",
		Usage:     "Extract the playlist ID from a URL",
		ArgsUsage: "<playlist-url>",
		Action:    r.PlaylistID,
	}
}

// configCommand handles configuration file operations.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path for the configuration file",
						Value:   shared.DefaultConfigPath,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the resolved configuration as TOML",
				Action: r.ConfigShow,
			},
		},
	}
}

