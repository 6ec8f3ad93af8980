// Package admin administers an installed service from outside its process:
// create, query, start, stop and delete, plus the polling and uninstall state
// machines that keep those operations safe while the service is mid-transition.
package admin

import (
	"errors"

	"servicekit/internal/lifecycle"
)

// ManagerAccess is the access mask requested on the service control manager.
type ManagerAccess uint32

const (
	ManagerConnect       ManagerAccess = 0x0001
	ManagerCreateService ManagerAccess = 0x0002
)

// ServiceAccess is the access mask requested on a single service.
type ServiceAccess uint32

const (
	ServiceChangeConfig ServiceAccess = 0x0002
	ServiceQueryStatus  ServiceAccess = 0x0004
	ServiceStart        ServiceAccess = 0x0010
	ServiceStop         ServiceAccess = 0x0020
	ServiceDelete       ServiceAccess = 0x10000
)

// ErrUnsupportedPlatform is returned by the default connector on systems
// without a Windows service control manager.
var ErrUnsupportedPlatform = errors.New("service control manager is not available on this platform")

// CreateOptions describes a new service registration.
type CreateOptions struct {
	Name        string
	DisplayName string
	Description string
	AutoStart   bool
	BinaryPath  string
}

// Connector opens a connection to the service control manager.
type Connector interface {
	Connect(access ManagerAccess) (Manager, error)
}

// Manager is an open connection to the service control manager.
type Manager interface {
	OpenService(name string, access ServiceAccess) (Handle, error)
	CreateService(opts CreateOptions) error
	Disconnect() error
}

// Handle is an open handle to one installed service.
type Handle interface {
	Query() (lifecycle.Status, error)
	Start() error
	Stop() error
	Delete() error
	Close() error
}
