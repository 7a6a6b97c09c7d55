package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := NewRunner(RunnerOpts{}).Run(ctx, os.Args)
	stop()
	os.Exit(status)
}
