// Package main is the command-line installer for services built on
// servicekit: create, delete, query, start and stop.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"servicekit/internal/admin"
	"servicekit/internal/logger"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const (
	exitFailure = 1
	// exitTimeout means the service was still transitioning when the wait
	// ran out; running the command again may succeed.
	exitTimeout = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(admin.NewConnector(), admin.NewWaiter(), os.Stdout)
	err := root.ExecuteContext(ctx)
	logger.Close()
	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, admin.ErrTimeout) {
		return exitTimeout
	}
	return exitFailure
}

func versionString() string {
	return fmt.Sprintf("svcinstaller %s (built %s)", version, buildTime)
}
