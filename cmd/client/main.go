// Package main is the gophtasks command line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/GophTasks/internal/cli"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, version, buildDate)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
