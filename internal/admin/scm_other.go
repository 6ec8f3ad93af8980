//go:build !windows
// +build !windows

package admin

type unsupportedConnector struct{}

// NewConnector returns a connector that always fails: only Windows has a
// service control manager this package can drive.
func NewConnector() Connector {
	return unsupportedConnector{}
}

func (unsupportedConnector) Connect(ManagerAccess) (Manager, error) {
	return nil, ErrUnsupportedPlatform
}
