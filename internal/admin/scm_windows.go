//go:build windows
// +build windows

package admin

import (
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/eventlog"
	"golang.org/x/sys/windows/svc/mgr"

	"servicekit/internal/lifecycle"
	"servicekit/internal/logger"
)

type scmConnector struct{}

// NewConnector returns the connector for the local service control manager.
func NewConnector() Connector {
	return scmConnector{}
}

func (scmConnector) Connect(access ManagerAccess) (Manager, error) {
	h, err := windows.OpenSCManager(nil, nil, uint32(access))
	if err != nil {
		return nil, err
	}
	return &scmManager{m: &mgr.Mgr{Handle: h}}, nil
}

type scmManager struct {
	m *mgr.Mgr
}

func (s *scmManager) OpenService(name string, access ServiceAccess) (Handle, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.OpenService(s.m.Handle, p, uint32(access))
	if err != nil {
		return nil, err
	}
	return &scmHandle{s: &mgr.Service{Name: name, Handle: h}}, nil
}

func (s *scmManager) CreateService(opts CreateOptions) error {
	startType := uint32(mgr.StartManual)
	if opts.AutoStart {
		startType = mgr.StartAutomatic
	}

	service, err := s.m.CreateService(opts.Name, opts.BinaryPath, mgr.Config{
		DisplayName:  opts.DisplayName,
		Description:  opts.Description,
		StartType:    startType,
		ErrorControl: mgr.ErrorNormal,
	})
	if err != nil {
		return err
	}
	defer service.Close()

	// Lets the service write startup failures to the Application log.
	if err := eventlog.InstallAsEventCreate(opts.Name, eventlog.Error|eventlog.Warning|eventlog.Info); err != nil {
		service.Delete()
		return fmt.Errorf("failed to register event log source: %w", err)
	}
	return nil
}

func (s *scmManager) Disconnect() error {
	return s.m.Disconnect()
}

type scmHandle struct {
	s *mgr.Service
}

func (h *scmHandle) Query() (lifecycle.Status, error) {
	st, err := h.s.Query()
	if err != nil {
		return lifecycle.Status{}, err
	}
	return lifecycle.StatusFromSvc(st), nil
}

func (h *scmHandle) Start() error {
	return h.s.Start()
}

func (h *scmHandle) Stop() error {
	_, err := h.s.Control(svc.Stop)
	return err
}

func (h *scmHandle) Delete() error {
	if err := h.s.Delete(); err != nil {
		return err
	}
	if err := eventlog.Remove(h.s.Name); err != nil {
		log := logger.WithComponent("admin")
		log.Debug().Err(err).Str("service", h.s.Name).Msg("No event log source removed")
	}
	return nil
}

func (h *scmHandle) Close() error {
	return h.s.Close()
}
