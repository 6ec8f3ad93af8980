//go:build windows
// +build windows

package service

import (
	"context"

	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/debug"

	"servicekit/internal/lifecycle"
	"servicekit/internal/logger"
)

// WindowsService runs a lifecycle.Host under the Windows service control
// manager.
type WindowsService struct {
	host    *lifecycle.Host
	console bool
}

// NewService creates a new platform-specific service.
func NewService(host *lifecycle.Host, opts Options) Service {
	return &WindowsService{
		host:    host,
		console: opts.Console,
	}
}

// Run registers with the SCM and blocks until the service has stopped. In
// console mode the same handler is driven by svc/debug, which turns Ctrl+C
// into a Stop request.
func (s *WindowsService) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go stopOnDone(ctx, s.host, done)

	run := svc.Run
	if s.console || !s.IsService() {
		run = debug.Run
	}
	if err := run(s.host.Name(), s); err != nil {
		return &lifecycle.RegistrationError{Service: s.host.Name(), Err: err}
	}
	return nil
}

// Stop requests the service to stop.
func (s *WindowsService) Stop() error {
	s.host.Translator().Handle(lifecycle.ControlStop)
	return nil
}

// IsService returns true if running as a Windows service.
func (s *WindowsService) IsService() bool {
	isService, err := svc.IsWindowsService()
	if err != nil {
		return false
	}
	return isService
}

// Execute implements the svc.Handler interface. Status records flow from the
// lifecycle driver onto changes; control requests are routed through the
// host's translator until the driver returns.
func (s *WindowsService) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (svcSpecificEC bool, exitCode uint32) {
	log := logger.WithComponent("windows-service")

	handle := lifecycle.StatusHandleFunc(func(st lifecycle.Status) error {
		changes <- st.ToSvc()
		return nil
	})

	done := make(chan uint32, 1)
	go func() {
		done <- s.host.Run(handle)
	}()

	translator := s.host.Translator()
	for {
		select {
		case c := <-r:
			ev := lifecycle.ControlEventFromCmd(c.Cmd)
			if ev == lifecycle.ControlInterrogate {
				changes <- c.CurrentStatus
				continue
			}
			if res := translator.Handle(ev); res != lifecycle.NoError {
				log.Debug().Uint32("cmd", uint32(c.Cmd)).Str("result", res.String()).Msg("Control request not handled")
			}

		case code := <-done:
			return false, code
		}
	}
}
