package admin

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"servicekit/internal/lifecycle"
	"servicekit/internal/logger"
)

func init() {
	_ = logger.Init(logger.Config{Level: "disabled"})
}

// fakeService replays a scripted sequence of states, one per query, and
// stays on the last one.
type fakeService struct {
	mu       sync.Mutex
	script   []lifecycle.State
	pos      int
	calls    []string
	queryErr error
	stopErr  error
	startErr error
	delErr   error
	closed   bool
}

func (f *fakeService) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeService) Query() (lifecycle.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("query")
	if f.queryErr != nil {
		return lifecycle.Status{}, f.queryErr
	}
	st := f.script[f.pos]
	if f.pos < len(f.script)-1 {
		f.pos++
	}
	return lifecycle.Status{State: st}, nil
}

func (f *fakeService) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("start")
	return f.startErr
}

func (f *fakeService) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stop")
	return f.stopErr
}

func (f *fakeService) Delete() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete")
	return f.delErr
}

func (f *fakeService) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeService) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) count(call string) int {
	n := 0
	for _, c := range f.callLog() {
		if c == call {
			n++
		}
	}
	return n
}

type fakeManager struct {
	services      map[string]*fakeService
	openErr       error
	createErr     error
	created       []CreateOptions
	serviceAccess ServiceAccess
	disconnected  int
}

func (m *fakeManager) OpenService(name string, access ServiceAccess) (Handle, error) {
	m.serviceAccess = access
	if m.openErr != nil {
		return nil, m.openErr
	}
	s, ok := m.services[name]
	if !ok {
		return nil, errors.New("the specified service does not exist as an installed service")
	}
	return s, nil
}

func (m *fakeManager) CreateService(opts CreateOptions) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, opts)
	return nil
}

func (m *fakeManager) Disconnect() error {
	m.disconnected++
	return nil
}

type fakeConnector struct {
	manager    *fakeManager
	connectErr error
	access     ManagerAccess
}

func (c *fakeConnector) Connect(access ManagerAccess) (Manager, error) {
	c.access = access
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return c.manager, nil
}

func newFakeBackend(name string, script ...lifecycle.State) (*fakeConnector, *fakeService) {
	svc := &fakeService{script: script}
	return &fakeConnector{manager: &fakeManager{services: map[string]*fakeService{name: svc}}}, svc
}

// pumpClock runs fn against a waiter on a mock clock, advancing the clock
// until fn returns.
func pumpClock(t *testing.T, fn func(w *Waiter) error) error {
	t.Helper()
	mock := clock.NewMock()
	w := NewWaiterWithClock(mock, time.Second)

	done := make(chan error, 1)
	go func() { done <- fn(w) }()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-done:
			return err
		case <-deadline:
			t.Fatal("waiter did not finish")
			return nil
		default:
			mock.Add(time.Second)
		}
	}
}
