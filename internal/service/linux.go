//go:build !windows
// +build !windows

package service

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"servicekit/internal/lifecycle"
	"servicekit/internal/logger"
)

// LinuxService runs a lifecycle.Host in the foreground, turning SIGINT and
// SIGTERM into Stop requests.
type LinuxService struct {
	host    *lifecycle.Host
	signals chan os.Signal
}

// NewService creates a new platform-specific service.
func NewService(host *lifecycle.Host, opts Options) Service {
	return &LinuxService{
		host:    host,
		signals: make(chan os.Signal, 1),
	}
}

// Run starts the host and handles signals for graceful shutdown. A second
// signal abandons the workers and returns immediately.
func (s *LinuxService) Run(ctx context.Context) error {
	log := logger.WithComponent("linux-service")

	signal.Notify(s.signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.signals)

	done := make(chan uint32, 1)
	go func() {
		done <- s.host.Run(lifecycle.StatusHandleFunc(logStatus))
	}()

	log.Info().Str("service", s.host.Name()).Msg("Service started")

	select {
	case sig := <-s.signals:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		s.Stop()

		select {
		case code := <-done:
			return exitError(s.host.Name(), code)
		case sig := <-s.signals:
			log.Warn().Str("signal", sig.String()).Msg("Received second signal, forcing exit")
			return nil
		}

	case <-ctx.Done():
		s.Stop()
		return exitError(s.host.Name(), <-done)

	case code := <-done:
		return exitError(s.host.Name(), code)
	}
}

// Stop requests the service to stop.
func (s *LinuxService) Stop() error {
	s.host.Translator().Handle(lifecycle.ControlStop)
	return nil
}

// IsService reports whether stdin is detached, which is how systemd starts
// units.
func (s *LinuxService) IsService() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) == 0
}

func logStatus(st lifecycle.Status) error {
	log := logger.WithComponent("linux-service")
	log.Debug().
		Str("state", st.State.String()).
		Str("accepts", st.Accepts.String()).
		Uint32("checkpoint", st.CheckPoint).
		Msg("Service status")
	return nil
}
