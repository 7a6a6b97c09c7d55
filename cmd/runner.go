package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytfetch/internal/formatter"
	"github.com/desertthunder/ytfetch/internal/services"
	"github.com/desertthunder/ytfetch/internal/shared"
	"github.com/desertthunder/ytfetch/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Standard output carries only command results. Help, usage and log lines go to errOutput.
type Runner struct {
	config    *shared.Config
	engine    tasks.FetchEngine
	logger    *log.Logger
	output    io.Writer
	errOutput io.Writer
	format    formatter.Format
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is resolved from --config and the environment on first use; a nil Engine is built
// from the resolved config.
type RunnerOpts struct {
	Config    *shared.Config
	Engine    tasks.FetchEngine
	Logger    *log.Logger
	Output    io.Writer
	ErrOutput io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(opts.ErrOutput)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:    opts.Config,
		engine:    opts.Engine,
		logger:    opts.Logger,
		output:    opts.Output,
		errOutput: opts.ErrOutput,
		format:    formatter.JSON,
	}
}

// Run executes the CLI and returns the process exit status.
func (r *Runner) Run(ctx context.Context, args []string) int {
	err := r.app().Run(ctx, args)

	var exitErr *shared.ExitError
	switch {
	case err == nil, errors.Is(err, shared.ErrUsage), errors.As(err, &exitErr):
		// usage was printed or the action reported its own failure
	default:
		r.logger.Error("command failed", "err", err)
	}
	return shared.ExitStatus(err)
}

// configure resolves configuration and applies global flag overrides.
func (r *Runner) configure(cmd *cli.Command) error {
	if r.config == nil {
		config, err := shared.ResolveConfig(cmd.String("config"))
		if err != nil {
			return err
		}
		r.config = config
	}

	if cmd.IsSet("log-level") {
		r.config.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("ytdlp") {
		r.config.YtDLP.Path = cmd.String("ytdlp")
	}
	if err := r.config.Validate(); err != nil {
		return err
	}
	if err := shared.SetLogLevel(r.logger, r.config.Log.Level); err != nil {
		return err
	}
	return nil
}

// prepare configures the runner and builds the engine.
func (r *Runner) prepare(cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	r.format = format
	r.logger = shared.WithLogger(r.logger, "run", shared.GenerateID(), "cmd", cmd.Name)

	if r.engine == nil {
		registry, err := services.NewRegistry(r.config, r.logger)
		if err != nil {
			return err
		}
		engine, err := tasks.NewEngineFromConfig(r.config, registry)
		if err != nil {
			return err
		}
		r.engine = engine
	}
	return nil
}

// requireArg returns the single positional argument or prints usage to stderr.
func (r *Runner) requireArg(cmd *cli.Command) (string, error) {
	if cmd.NArg() != 1 {
		fmt.Fprintf(r.errOutput, "Usage: ytfetch %s %s\n", cmd.Name, cmd.ArgsUsage)
		return "", fmt.Errorf("%w: %s expects exactly one argument, got %d", shared.ErrUsage, cmd.Name, cmd.NArg())
	}
	return cmd.Args().First(), nil
}

func (r *Runner) writeJSON(data any) error {
	if err := formatter.WriteJSON(r.output, data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

const progressBuffer = 64

// narrate renders progress updates from the engine as log lines until the returned func is called.
func (r *Runner) narrate() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, progressBuffer)
	done := make(chan struct{})
	logger := r.logger

	go func() {
		defer close(done)
		for update := range progress {
			renderProgress(logger, update)
		}
	}()

	return progress, func() {
		close(progress)
		<-done
		if n := r.engine.DroppedUpdates(); n > 0 {
			logger.Warn("progress updates dropped", "count", n)
		}
	}
}

func renderProgress(logger *log.Logger, u tasks.ProgressUpdate) {
	kv := []any{"phase", u.Phase.String(), "step", fmt.Sprintf("%d/%d", u.Step, u.Total)}
	switch d := u.Data.(type) {
	case tasks.StrategyData:
		kv = append(kv, "strategy", d.Strategy)
		if d.Attempt > 0 {
			kv = append(kv, "attempt", d.Attempt)
		}
		if d.Err != nil {
			kv = append(kv, "err", d.Err)
		}
	case tasks.CompleteData:
		kv = append(kv, "strategy", d.Strategy, "count", d.Count)
	}

	switch u.Phase {
	case tasks.StrategyFailed:
		logger.Warn(u.Message, kv...)
	case tasks.RetryStrategy, tasks.ResolveInput:
		logger.Debug(u.Message, kv...)
	default:
		logger.Info(u.Message, kv...)
	}
}
