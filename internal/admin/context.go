package admin

import (
	"sync"

	"servicekit/internal/lifecycle"
	"servicekit/internal/logger"
)

// Context is an open administrative session on one installed service. After
// Delete or Close every operation returns ErrClosed.
type Context struct {
	name string

	mu      sync.Mutex
	manager Manager
	handle  Handle
}

// Open connects to the service control manager and opens the named service
// with the requested access rights.
func Open(conn Connector, name string, managerAccess ManagerAccess, serviceAccess ServiceAccess) (*Context, error) {
	log := logger.WithComponent("admin")

	m, err := conn.Connect(managerAccess)
	if err != nil {
		return nil, newError(ConnectFailed, name, "failed to connect to service manager", err)
	}

	h, err := m.OpenService(name, serviceAccess)
	if err != nil {
		if dErr := m.Disconnect(); dErr != nil {
			log.Warn().Err(dErr).Msg("Failed to disconnect from service manager")
		}
		return nil, newError(OpenFailed, name, "failed to open service", err)
	}

	log.Debug().Str("service", name).Msg("Service opened")
	return &Context{name: name, manager: m, handle: h}, nil
}

// Name returns the service name this context is bound to.
func (c *Context) Name() string { return c.name }

func (c *Context) current() (Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return nil, ErrClosed
	}
	return c.handle, nil
}

// QueryStatus returns the service's current status record.
func (c *Context) QueryStatus() (lifecycle.Status, error) {
	h, err := c.current()
	if err != nil {
		return lifecycle.Status{}, newError(QueryFailed, c.name, "failed to query service status", err)
	}
	st, err := h.Query()
	if err != nil {
		return lifecycle.Status{}, newError(QueryFailed, c.name, "failed to query service status", err)
	}
	return st, nil
}

// Start asks the service control manager to start the service. It does not
// wait for Running.
func (c *Context) Start() error {
	h, err := c.current()
	if err == nil {
		err = h.Start()
	}
	if err != nil {
		return newError(StartFailed, c.name, "failed to start service", err)
	}
	return nil
}

// Stop sends a stop control to the service. It does not wait for Stopped.
func (c *Context) Stop() error {
	h, err := c.current()
	if err == nil {
		err = h.Stop()
	}
	if err != nil {
		return newError(StopFailed, c.name, "failed to stop service", err)
	}
	return nil
}

// Delete marks the service for deletion and releases the context, whether
// or not the delete succeeded.
func (c *Context) Delete() error {
	h, err := c.current()
	if err != nil {
		return newError(DeleteFailed, c.name, "failed to delete service", err)
	}
	delErr := h.Delete()
	c.release()
	if delErr != nil {
		return newError(DeleteFailed, c.name, "failed to delete service", delErr)
	}
	return nil
}

// Close releases the service handle and the manager connection.
func (c *Context) Close() error {
	c.release()
	return nil
}

func (c *Context) release() {
	c.mu.Lock()
	h, m := c.handle, c.manager
	c.handle, c.manager = nil, nil
	c.mu.Unlock()

	log := logger.WithComponent("admin")
	if h != nil {
		if err := h.Close(); err != nil {
			log.Warn().Err(err).Str("service", c.name).Msg("Failed to close service handle")
		}
	}
	if m != nil {
		if err := m.Disconnect(); err != nil {
			log.Warn().Err(err).Msg("Failed to disconnect from service manager")
		}
	}
}

// Create registers a new service. It needs no open context.
func Create(conn Connector, opts CreateOptions) error {
	m, err := conn.Connect(ManagerConnect | ManagerCreateService)
	if err != nil {
		return newError(ConnectFailed, opts.Name, "failed to connect to service manager", err)
	}
	defer func() {
		if dErr := m.Disconnect(); dErr != nil {
			log := logger.WithComponent("admin")
			log.Warn().Err(dErr).Msg("Failed to disconnect from service manager")
		}
	}()

	if err := m.CreateService(opts); err != nil {
		return newError(CreateFailed, opts.Name, "failed to create service", err)
	}

	log := logger.WithComponent("admin")
	log.Info().
		Str("service", opts.Name).
		Str("binary", opts.BinaryPath).
		Bool("auto_start", opts.AutoStart).
		Msg("Service created")
	return nil
}
