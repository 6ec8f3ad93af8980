// Package service binds a lifecycle.Host to the operating system's service
// manager.
package service

import (
	"context"
	"fmt"

	"servicekit/internal/lifecycle"
)

// Service defines the interface for platform-specific service management.
type Service interface {
	// Run starts the service. It blocks until every worker has returned.
	Run(ctx context.Context) error

	// Stop requests the service to stop.
	Stop() error

	// IsService returns true if running under a system service manager.
	IsService() bool
}

// Options tune how a Service attaches to the platform.
type Options struct {
	// Console runs the service in the foreground even when started by the
	// service manager. Only meaningful on Windows.
	Console bool
}

// stopOnDone forwards cancellation of ctx to the host as a Stop event.
func stopOnDone(ctx context.Context, host *lifecycle.Host, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		host.Translator().Handle(lifecycle.ControlStop)
	case <-done:
	}
}

func exitError(name string, code uint32) error {
	if code == lifecycle.ExitSuccess {
		return nil
	}
	return fmt.Errorf("service %s exited with code %d", name, code)
}
