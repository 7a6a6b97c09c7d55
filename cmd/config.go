package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/ytfetch/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the embedded default configuration. It does not need a valid config to run.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")

	if cmd.Bool("force") {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("configuration written", "path", path)
	return nil
}

// ConfigShow prints the configuration after file, .env and environment overlays are applied.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	if err := toml.NewEncoder(r.output).Encode(r.config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
